package dto

// JumpToEnd is the jumpTo sentinel that finishes the survey
const JumpToEnd = "END_SURVEY"

// QuestionOption is one selectable answer; JumpTo is nil, a question id of the same campaign, or JumpToEnd
type QuestionOption struct {
	ID     string  `json:"id,omitempty"`
	Value  string  `json:"value" validate:"required"`
	JumpTo *string `json:"jumpTo,omitempty"`
}

// Question is one questionnaire item. Draft questions carry temporary ids prefixed with "q_".
type Question struct {
	ID      string           `json:"id" validate:"required"`
	Text    string           `json:"text" validate:"required"`
	Type    string           `json:"type" validate:"required,oneof=MULTIPLE_CHOICE RATING TEXT"`
	Options []QuestionOption `json:"options" validate:"dive"`
}

// Campaign is the domain view of a campaign with its questionnaire and links
type Campaign struct {
	ID               string     `json:"id,omitempty"`
	Name             string     `json:"name"`
	Description      *string    `json:"description,omitempty"`
	Theme            string     `json:"theme"`
	IsActive         bool       `json:"isActive"`
	StartDate        *string    `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate          *string    `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StartTime        *string    `json:"startTime,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime          *string    `json:"endTime,omitempty" validate:"omitempty,datetime=15:04"`
	LGPDText         *string    `json:"lgpdText,omitempty"`
	CollectUserInfo  bool       `json:"collectUserInfo"`
	ResponseGoal     int        `json:"responseGoal"`
	FinalRedirectURL *string    `json:"finalRedirectUrl,omitempty"`
	Questions        []Question `json:"questions" validate:"dive"`
	CompanyIDs       []string   `json:"companyIds"`
	ResearcherIDs    []string   `json:"researcherIds"`
	Version          int        `json:"version"`
}

// SaveCampaignRequest represents a direct campaign save; Version is required for updates
type SaveCampaignRequest struct {
	Campaign
}

// SaveCampaignResponse represents the persisted campaign identity
type SaveCampaignResponse struct {
	Message    string `json:"message"`
	CampaignID string `json:"campaignId"`
	Version    int    `json:"version"`
}

// ListCampaignsResponse wraps a list of full campaigns
type ListCampaignsResponse struct {
	Campaigns []Campaign `json:"campaigns"`
}

// AvailableCampaign is a campaign offered to a researcher with its progress
type AvailableCampaign struct {
	Campaign      Campaign `json:"campaign"`
	ResponseCount int64    `json:"responseCount"`
	Goal          int      `json:"goal"`
	GoalMet       bool     `json:"goalMet"`
	Progress      float64  `json:"progress"`
}

// ListAvailableCampaignsResponse wraps campaigns available to a researcher
type ListAvailableCampaignsResponse struct {
	Campaigns []AvailableCampaign `json:"campaigns"`
}
