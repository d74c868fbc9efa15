package models

import (
	"time"

	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SurveyResponse is a row of the respostas_pesquisas table, one per completed survey
type SurveyResponse struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CampaignID      uuid.UUID `gorm:"column:id_campanha;type:uuid;not null;index" json:"campaign_id"`
	ResearcherID    uuid.UUID `gorm:"column:id_pesquisador;type:uuid;not null;index" json:"researcher_id"`
	RespondentName  *string   `gorm:"column:nome_usuario;size:255" json:"respondent_name,omitempty"`
	RespondentPhone *string   `gorm:"column:telefone_usuario;size:30" json:"respondent_phone,omitempty"`
	RespondentAge   *int      `gorm:"column:idade_usuario" json:"respondent_age,omitempty"`
	SubmittedAt     time.Time `gorm:"column:data_envio;not null;index" json:"submitted_at"`
}

func (SurveyResponse) TableName() string {
	return "respostas_pesquisas"
}

func (r *SurveyResponse) BeforeCreate(tx *gorm.DB) error {
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = utils.UTCNow()
	}
	return nil
}

// SurveyResponseFilter represents filter criteria for survey response queries
type SurveyResponseFilter struct {
	ID              *uuid.UUID
	CampaignIDs     []uuid.UUID
	ResearcherID    *uuid.UUID
	SubmittedAfter  *time.Time
	SubmittedBefore *time.Time
}

// SurveyAnswer is a row of the respostas table
type SurveyAnswer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ResponseID uuid.UUID `gorm:"column:id_resposta_pesquisa;type:uuid;not null;index" json:"response_id"`
	QuestionID uuid.UUID `gorm:"column:id_pergunta;type:uuid;not null" json:"question_id"`
	Value      string    `gorm:"column:valor;type:text;not null" json:"value"`
	Order      int       `gorm:"column:ordem;not null;default:0" json:"order"`
}

func (SurveyAnswer) TableName() string {
	return "respostas"
}

// SurveyAnswerFilter represents filter criteria for answer queries
type SurveyAnswerFilter struct {
	ResponseIDs []uuid.UUID
}
