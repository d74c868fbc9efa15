package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Question is a row of the perguntas table. CorrelationKey is written once on
// insert so callers can match persisted rows back to the draft they came from.
type Question struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CampaignID     uuid.UUID    `gorm:"column:id_campanha;type:uuid;not null;index" json:"campaign_id"`
	Text           string       `gorm:"column:texto;type:text;not null" json:"text"`
	Type           QuestionType `gorm:"column:tipo;size:20;not null" json:"type"`
	Order          int          `gorm:"column:ordem;not null" json:"order"`
	CorrelationKey uuid.UUID    `gorm:"column:chave_correlacao;type:uuid;not null" json:"-"`
}

func (Question) TableName() string {
	return "perguntas"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.CorrelationKey == uuid.Nil {
		q.CorrelationKey = uuid.New()
	}
	return nil
}

// QuestionOption is a row of the opcoes_perguntas table.
// JumpToQuestionID and JumpToEnd are never both set.
type QuestionOption struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	QuestionID       uuid.UUID  `gorm:"column:id_pergunta;type:uuid;not null;index" json:"question_id"`
	Value            string     `gorm:"column:valor;type:text;not null" json:"value"`
	JumpToQuestionID *uuid.UUID `gorm:"column:pular_para_pergunta;type:uuid" json:"jump_to_question_id,omitempty"`
	JumpToEnd        bool       `gorm:"column:pular_para_final;not null;default:false" json:"jump_to_end"`
	Order            int        `gorm:"column:ordem;not null" json:"order"`
}

func (QuestionOption) TableName() string {
	return "opcoes_perguntas"
}

// QuestionFilter represents filter criteria for question queries
type QuestionFilter struct {
	ID          *uuid.UUID
	CampaignID  *uuid.UUID
	CampaignIDs []uuid.UUID
}

// QuestionOptionFilter represents filter criteria for option queries
type QuestionOptionFilter struct {
	QuestionIDs []uuid.UUID
}
