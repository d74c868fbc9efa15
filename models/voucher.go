package models

import (
	"time"

	"github.com/google/uuid"
)

// Voucher is a row of the vouchers table. UsedQuantity never exceeds TotalQuantity.
type Voucher struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CompanyID     uuid.UUID `gorm:"column:id_empresa;type:uuid;not null;index" json:"company_id"`
	Title         string    `gorm:"column:titulo;size:255;not null" json:"title"`
	Description   *string   `gorm:"column:descricao;type:text" json:"description,omitempty"`
	QRCodeValue   string    `gorm:"column:valor_qrcode;size:512;not null" json:"qr_code_value"`
	IsActive      bool      `gorm:"column:esta_ativo;not null" json:"is_active"`
	LogoURL       *string   `gorm:"column:url_logo;type:text" json:"logo_url,omitempty"`
	TotalQuantity int       `gorm:"column:quantidade_total;not null" json:"total_quantity"`
	UsedQuantity  int       `gorm:"column:quantidade_usada;not null;default:0" json:"used_quantity"`
	CreatedAt     time.Time `gorm:"column:criado_em;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Voucher) TableName() string {
	return "vouchers"
}

// Remaining returns how many redemptions are still available
func (v *Voucher) Remaining() int {
	if v.UsedQuantity >= v.TotalQuantity {
		return 0
	}
	return v.TotalQuantity - v.UsedQuantity
}

// VoucherFilter represents filter criteria for voucher queries
type VoucherFilter struct {
	ID        *uuid.UUID
	CompanyID *uuid.UUID
	IsActive  *bool
}
