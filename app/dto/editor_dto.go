package dto

import "time"

// Campaign editor step names, indexed from 1
const (
	EditorStepDetails   = 1
	EditorStepQuestions = 2
	EditorStepTeam      = 3
)

// Confirmation kinds the editor stages before committing
const (
	ConfirmToggleCompanyActive   = "TOGGLE_COMPANY_ACTIVE"
	ConfirmToggleCollectUserInfo = "TOGGLE_COLLECT_USER_INFO"
)

// PendingConfirmation is an action waiting for the admin to confirm or cancel
type PendingConfirmation struct {
	Kind     string `json:"kind"`
	TargetID string `json:"targetId,omitempty"`
	Message  string `json:"message"`
}

// CampaignDraft is the editor state of one campaign being created or edited
type CampaignDraft struct {
	ID               string               `json:"id"`
	Step             int                  `json:"step"`
	Campaign         Campaign             `json:"campaign"`
	StartTimeEnabled bool                 `json:"startTimeEnabled"`
	EndTimeEnabled   bool                 `json:"endTimeEnabled"`
	Pending          *PendingConfirmation `json:"pending,omitempty"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// OpenDraftRequest opens a blank draft, or a draft of an existing campaign when CampaignID is set
type OpenDraftRequest struct {
	CampaignID string `json:"campaignId,omitempty" validate:"omitempty,uuid"`
}

// DraftStepRequest moves the editor. Action is next, back or goto; Step is used by goto.
type DraftStepRequest struct {
	Action string `json:"action" validate:"required,oneof=next back goto"`
	Step   int    `json:"step,omitempty"`
}

// UpdateDraftDetailsRequest patches step-1 fields; nil fields are left untouched
type UpdateDraftDetailsRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description      *string `json:"description,omitempty"`
	Theme            *string `json:"theme,omitempty" validate:"omitempty,max=255"`
	LGPDText         *string `json:"lgpdText,omitempty"`
	ResponseGoal     *int    `json:"responseGoal,omitempty"`
	StartDate        *string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate          *string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StartTime        *string `json:"startTime,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime          *string `json:"endTime,omitempty" validate:"omitempty,datetime=15:04"`
	FinalRedirectURL *string `json:"finalRedirectUrl,omitempty"`
	IsActive         *bool   `json:"isActive,omitempty"`
}

// ToggleTimeRequest enables or disables a campaign time window bound
type ToggleTimeRequest struct {
	Enabled bool    `json:"enabled"`
	Value   *string `json:"value,omitempty" validate:"omitempty,datetime=15:04"`
}

// SetDraftQuestionsRequest replaces the draft questionnaire; questions without an id get a temporary one
type SetDraftQuestionsRequest struct {
	Questions []DraftQuestion `json:"questions" validate:"dive"`
}

// DraftQuestion is a questionnaire item as edited; ID may be empty for new questions
type DraftQuestion struct {
	ID      string           `json:"id,omitempty"`
	Text    string           `json:"text" validate:"required"`
	Type    string           `json:"type" validate:"required,oneof=MULTIPLE_CHOICE RATING TEXT"`
	Options []QuestionOption `json:"options" validate:"dive"`
}

// RequestConfirmationRequest stages a confirm-required action
type RequestConfirmationRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=TOGGLE_COMPANY_ACTIVE TOGGLE_COLLECT_USER_INFO"`
	TargetID string `json:"targetId,omitempty" validate:"omitempty,uuid"`
}

// ConfirmationResult reports the committed action and the resulting draft
type ConfirmationResult struct {
	Kind    string        `json:"kind"`
	Draft   CampaignDraft `json:"draft"`
	Company *Company      `json:"company,omitempty"`
}

// TeamCandidatesResponse lists companies and researchers selectable on the team step
type TeamCandidatesResponse struct {
	Companies   []Company    `json:"companies"`
	Researchers []Researcher `json:"researchers"`
}
