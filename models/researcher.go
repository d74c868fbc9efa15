package models

import (
	"time"

	"github.com/google/uuid"
)

// Researcher genders as stored in pesquisadores.genero
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"
)

// Researcher is a row of the pesquisadores table
type Researcher struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string     `gorm:"column:nome;size:255;not null" json:"name"`
	Email        string     `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Phone        *string    `gorm:"column:telefone;size:30" json:"phone,omitempty"`
	Gender       *string    `gorm:"column:genero;size:10" json:"gender,omitempty"`
	BirthDate    *time.Time `gorm:"column:data_nascimento;type:date" json:"birth_date,omitempty"`
	PhotoURL     *string    `gorm:"column:url_foto;type:text" json:"photo_url,omitempty"`
	IsActive     bool       `gorm:"column:esta_ativo;not null" json:"is_active"`
	Color        *string    `gorm:"column:cor;size:20" json:"color,omitempty"`
	PasswordHash *string    `gorm:"column:hash_senha;size:255" json:"-"`
	CreatedAt    time.Time  `gorm:"column:criado_em;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Researcher) TableName() string {
	return "pesquisadores"
}

// ResearcherFilter represents filter criteria for researcher queries
type ResearcherFilter struct {
	ID       *uuid.UUID
	Email    *string
	IsActive *bool
	NameLike *string
}
