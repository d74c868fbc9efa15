package dto

import "time"

// Admin is the domain view of an administrator
type Admin struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
	PhotoURL  *string `json:"photoUrl,omitempty"`
	IsActive  bool    `json:"isActive"`
}

// Company is the domain view of a participating company
type Company struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	LogoURL       *string   `json:"logoUrl,omitempty"`
	CNPJ          *string   `json:"cnpj,omitempty"`
	ContactEmail  *string   `json:"contactEmail,omitempty"`
	ContactPhone  *string   `json:"contactPhone,omitempty"`
	ContactPerson *string   `json:"contactPerson,omitempty"`
	Instagram     *string   `json:"instagram,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	IsActive      bool      `json:"isActive"`
}

// Researcher is the domain view of a field researcher
type Researcher struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
	PhotoURL  *string `json:"photoUrl,omitempty"`
	IsActive  bool    `json:"isActive"`
	Color     *string `json:"color,omitempty"`
}

// Voucher is the domain view of a company voucher
type Voucher struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"companyId"`
	Title         string  `json:"title"`
	Description   *string `json:"description,omitempty"`
	QRCodeValue   string  `json:"qrCodeValue"`
	IsActive      bool    `json:"isActive"`
	LogoURL       *string `json:"logoUrl,omitempty"`
	TotalQuantity int     `json:"totalQuantity"`
	UsedCount     int     `json:"usedCount"`
}

// CreateCompanyRequest represents the request to register a company
type CreateCompanyRequest struct {
	Name          string  `json:"name" validate:"required,max=255"`
	CNPJ          *string `json:"cnpj,omitempty" validate:"omitempty,max=20"`
	ContactEmail  string  `json:"contactEmail" validate:"required,email"`
	ContactPhone  *string `json:"contactPhone,omitempty" validate:"omitempty,max=30"`
	ContactPerson *string `json:"contactPerson,omitempty" validate:"omitempty,max=255"`
	Instagram     *string `json:"instagram,omitempty" validate:"omitempty,max=255"`
	Password      string  `json:"password" validate:"required,min=8,max=100"`
	IsActive      *bool   `json:"isActive,omitempty"`
}

// CreateResearcherRequest represents the request to register a researcher
type CreateResearcherRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Gender    *string `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	BirthDate *string `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Color     *string `json:"color,omitempty" validate:"omitempty,max=20"`
	Password  string  `json:"password" validate:"required,min=8,max=100"`
}

// CreateVoucherRequest represents the request to issue a voucher
type CreateVoucherRequest struct {
	CompanyID     string  `json:"companyId" validate:"required,uuid"`
	Title         string  `json:"title" validate:"required,max=255"`
	Description   *string `json:"description,omitempty"`
	QRCodeValue   string  `json:"qrCodeValue" validate:"required,max=512"`
	LogoURL       *string `json:"logoUrl,omitempty" validate:"omitempty,url"`
	TotalQuantity int     `json:"totalQuantity" validate:"required,gte=1"`
}

// RedeemVoucherResponse reports the voucher after a successful redemption
type RedeemVoucherResponse struct {
	Message string  `json:"message"`
	Voucher Voucher `json:"voucher"`
}

// ToggleCompanyActiveResponse reports the new company state
type ToggleCompanyActiveResponse struct {
	Company Company `json:"company"`
}

// ListAdminsResponse wraps the administrator directory
type ListAdminsResponse struct {
	Admins []Admin `json:"admins"`
}

// ListCompaniesResponse wraps the company directory
type ListCompaniesResponse struct {
	Companies []Company `json:"companies"`
}

// ListResearchersResponse wraps the researcher directory
type ListResearchersResponse struct {
	Researchers []Researcher `json:"researchers"`
}

// ListVouchersResponse wraps vouchers visible to the caller
type ListVouchersResponse struct {
	Vouchers []Voucher `json:"vouchers"`
}
