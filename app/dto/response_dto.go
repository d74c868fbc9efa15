package dto

import "time"

// SurveyAnswer is one answered question
type SurveyAnswer struct {
	QuestionID string `json:"questionId" validate:"required,uuid"`
	Value      string `json:"value"`
}

// SurveyResponse is the domain view of a submitted survey
type SurveyResponse struct {
	ID           string         `json:"id"`
	CampaignID   string         `json:"campaignId"`
	ResearcherID string         `json:"researcherId"`
	UserName     *string        `json:"userName,omitempty"`
	UserPhone    *string        `json:"userPhone,omitempty"`
	UserAge      *int           `json:"userAge,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	Answers      []SurveyAnswer `json:"answers"`
}

// SubmitResponseRequest represents a completed survey sent by a researcher
type SubmitResponseRequest struct {
	CampaignID string         `json:"campaignId" validate:"required,uuid"`
	UserName   *string        `json:"userName,omitempty" validate:"omitempty,max=255"`
	UserPhone  *string        `json:"userPhone,omitempty" validate:"omitempty,max=30"`
	UserAge    *int           `json:"userAge,omitempty" validate:"omitempty,gte=0,lte=150"`
	Answers    []SurveyAnswer `json:"answers" validate:"required,min=1,dive"`
}

// SubmitResponseResponse represents the stored response identity
type SubmitResponseResponse struct {
	Message    string `json:"message"`
	ResponseID string `json:"responseId"`
}

// NextQuestionRequest carries the answer given to the current question
type NextQuestionRequest struct {
	CurrentQuestionID string `json:"currentQuestionId" validate:"required"`
	Answer            string `json:"answer"`
}

// NextQuestionResponse tells the runner where to go next
type NextQuestionResponse struct {
	Finished         bool      `json:"finished"`
	Question         *Question `json:"question,omitempty"`
	FinalRedirectURL *string   `json:"finalRedirectUrl,omitempty"`
}

// ListResponsesResponse wraps a list of survey responses
type ListResponsesResponse struct {
	Responses []SurveyResponse `json:"responses"`
}
