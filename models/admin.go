// Package models contains the persistent rows of the survey platform
package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin is a row of the administradores table
type Admin struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string     `gorm:"column:nome;size:255;not null" json:"name"`
	Email        string     `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Phone        *string    `gorm:"column:telefone;size:30" json:"phone,omitempty"`
	BirthDate    *time.Time `gorm:"column:data_nascimento;type:date" json:"birth_date,omitempty"`
	PhotoURL     *string    `gorm:"column:url_foto;type:text" json:"photo_url,omitempty"`
	IsActive     bool       `gorm:"column:esta_ativo;not null" json:"is_active"`
	PasswordHash *string    `gorm:"column:hash_senha;size:255" json:"-"`
	CreatedAt    time.Time  `gorm:"column:criado_em;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Admin) TableName() string {
	return "administradores"
}

// AdminFilter represents filter criteria for admin queries
type AdminFilter struct {
	ID       *uuid.UUID
	Email    *string
	IsActive *bool
}
