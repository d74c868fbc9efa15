package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID      *uuid.UUID `gorm:"column:id_ator;type:uuid;index" json:"actor_id,omitempty"`
	ActorRole    *string    `gorm:"column:papel_ator;size:20" json:"actor_role,omitempty"`
	Action       string     `gorm:"column:acao;size:64;not null;index" json:"action"`
	Description  *string    `gorm:"column:descricao;type:text" json:"description,omitempty"`
	IPAddress    *string    `gorm:"column:ip;size:64" json:"ip_address,omitempty"`
	UserAgent    *string    `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	RequestID    *string    `gorm:"column:id_requisicao;size:255" json:"request_id,omitempty"`
	Success      bool       `gorm:"column:sucesso;not null" json:"success"`
	ErrorMessage *string    `gorm:"column:mensagem_erro;type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `gorm:"column:criado_em;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "registro_auditoria"
}

// Audit action constants
const (
	AuditActionLoginSuccess          = "login_success"
	AuditActionLoginFailed           = "login_failed"
	AuditActionLogout                = "logout"
	AuditActionCampaignCreated       = "campaign_created"
	AuditActionCampaignUpdated       = "campaign_updated"
	AuditActionCampaignSaveFailed    = "campaign_save_failed"
	AuditActionCompanyCreated        = "company_created"
	AuditActionCompanyActivated      = "company_activated"
	AuditActionCompanyDeactivated    = "company_deactivated"
	AuditActionCompanyLogoUpdated    = "company_logo_updated"
	AuditActionResearcherCreated     = "researcher_created"
	AuditActionVoucherCreated        = "voucher_created"
	AuditActionVoucherRedeemed       = "voucher_redeemed"
	AuditActionSurveyResponseCreated = "survey_response_created"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ActorID       *uuid.UUID
	Action        *string
	Success       *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return !a.Success
}
