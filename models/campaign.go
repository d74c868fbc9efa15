package models

import (
	"time"

	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultResponseGoal is applied when a campaign is saved without a positive goal
const DefaultResponseGoal = 100

// Campaign is a row of the campanhas table.
// Version is bumped on every update and guards concurrent edits.
type Campaign struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name             string     `gorm:"column:nome;size:255;not null" json:"name"`
	Description      *string    `gorm:"column:descricao;type:text" json:"description,omitempty"`
	Theme            string     `gorm:"column:tema;size:255;not null" json:"theme"`
	IsActive         bool       `gorm:"column:esta_ativa;not null;default:false" json:"is_active"`
	StartDate        *time.Time `gorm:"column:data_inicio;type:date" json:"start_date,omitempty"`
	EndDate          *time.Time `gorm:"column:data_fim;type:date" json:"end_date,omitempty"`
	StartTime        *string    `gorm:"column:hora_inicio;size:5" json:"start_time,omitempty"`
	EndTime          *string    `gorm:"column:hora_fim;size:5" json:"end_time,omitempty"`
	LGPDText         *string    `gorm:"column:texto_lgpd;type:text" json:"lgpd_text,omitempty"`
	CollectUserInfo  bool       `gorm:"column:coletar_info_usuario;not null;default:false" json:"collect_user_info"`
	ResponseGoal     int        `gorm:"column:meta_respostas;not null;default:100" json:"response_goal"`
	FinalRedirectURL *string    `gorm:"column:url_redirecionamento_final;type:text" json:"final_redirect_url,omitempty"`
	Version          int        `gorm:"column:versao;not null;default:1" json:"version"`
	CreatedAt        time.Time  `gorm:"column:criado_em;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        *time.Time `gorm:"column:atualizado_em" json:"updated_at,omitempty"`
}

func (Campaign) TableName() string {
	return "campanhas"
}

func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// CampaignFilter represents filter criteria for campaign queries
type CampaignFilter struct {
	ID       *uuid.UUID
	IDs      []uuid.UUID
	IsActive *bool
	Theme    *string
	NameLike *string
}

// CampaignCompany links a campaign to a participating company
type CampaignCompany struct {
	CampaignID uuid.UUID `gorm:"column:id_campanha;type:uuid;primaryKey" json:"campaign_id"`
	CompanyID  uuid.UUID `gorm:"column:id_empresa;type:uuid;primaryKey" json:"company_id"`
}

func (CampaignCompany) TableName() string {
	return "campanhas_empresas"
}

// CampaignResearcher links a campaign to an assigned researcher
type CampaignResearcher struct {
	CampaignID   uuid.UUID `gorm:"column:id_campanha;type:uuid;primaryKey" json:"campaign_id"`
	ResearcherID uuid.UUID `gorm:"column:id_pesquisador;type:uuid;primaryKey" json:"researcher_id"`
}

func (CampaignResearcher) TableName() string {
	return "campanhas_pesquisadores"
}

// CampaignLinkFilter selects campaign link rows of either link table
type CampaignLinkFilter struct {
	CampaignID  *uuid.UUID
	CampaignIDs []uuid.UUID
	MemberID    *uuid.UUID
}
