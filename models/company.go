package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is a row of the empresas table
type Company struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name          string    `gorm:"column:nome;size:255;not null" json:"name"`
	LogoURL       *string   `gorm:"column:url_logo;type:text" json:"logo_url,omitempty"`
	CNPJ          *string   `gorm:"column:cnpj;size:20" json:"cnpj,omitempty"`
	ContactEmail  *string   `gorm:"column:email_contato;size:255;uniqueIndex" json:"contact_email,omitempty"`
	ContactPhone  *string   `gorm:"column:telefone_contato;size:30" json:"contact_phone,omitempty"`
	ContactPerson *string   `gorm:"column:pessoa_contato;size:255" json:"contact_person,omitempty"`
	Instagram     *string   `gorm:"column:instagram;size:255" json:"instagram,omitempty"`
	CreatedAt     time.Time `gorm:"column:data_criacao;default:CURRENT_TIMESTAMP" json:"created_at"`
	IsActive      bool      `gorm:"column:esta_ativa;not null" json:"is_active"`
	PasswordHash  *string   `gorm:"column:hash_senha;size:255" json:"-"`
}

func (Company) TableName() string {
	return "empresas"
}

// CompanyFilter represents filter criteria for company queries
type CompanyFilter struct {
	ID           *uuid.UUID
	IDs          []uuid.UUID
	ContactEmail *string
	IsActive     *bool
	NameLike     *string
}
