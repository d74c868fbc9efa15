package businessflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/services"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// DirectoryFlow manages admins, companies, researchers and vouchers
type DirectoryFlow interface {
	ListAdmins(ctx context.Context, session *Session) (*dto.ListAdminsResponse, error)
	ListCompanies(ctx context.Context, session *Session) (*dto.ListCompaniesResponse, error)
	CreateCompany(ctx context.Context, session *Session, req *dto.CreateCompanyRequest) (*dto.Company, error)
	ToggleCompanyActive(ctx context.Context, session *Session, companyID string) (*dto.ToggleCompanyActiveResponse, error)
	UploadCompanyLogo(ctx context.Context, session *Session, companyID string, file io.Reader) (*dto.Company, error)
	ListResearchers(ctx context.Context, session *Session) (*dto.ListResearchersResponse, error)
	CreateResearcher(ctx context.Context, session *Session, req *dto.CreateResearcherRequest) (*dto.Researcher, error)
	ListVouchers(ctx context.Context, session *Session) (*dto.ListVouchersResponse, error)
	CreateVoucher(ctx context.Context, session *Session, req *dto.CreateVoucherRequest) (*dto.Voucher, error)
	RedeemVoucher(ctx context.Context, session *Session, voucherID string) (*dto.RedeemVoucherResponse, error)
}

// DirectoryFlowImpl implements the directory business flow
type DirectoryFlowImpl struct {
	adminRepo      repository.AdminRepository
	companyRepo    repository.CompanyRepository
	researcherRepo repository.ResearcherRepository
	voucherRepo    repository.VoucherRepository
	logos          services.LogoStorage
	bcryptCost     int
	audit          auditLogger
}

// NewDirectoryFlow creates a new directory flow instance
func NewDirectoryFlow(
	adminRepo repository.AdminRepository,
	companyRepo repository.CompanyRepository,
	researcherRepo repository.ResearcherRepository,
	voucherRepo repository.VoucherRepository,
	auditRepo repository.AuditLogRepository,
	logos services.LogoStorage,
	bcryptCost int,
) DirectoryFlow {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &DirectoryFlowImpl{
		adminRepo:      adminRepo,
		companyRepo:    companyRepo,
		researcherRepo: researcherRepo,
		voucherRepo:    voucherRepo,
		logos:          logos,
		bcryptCost:     bcryptCost,
		audit:          auditLogger{repo: auditRepo},
	}
}

func (f *DirectoryFlowImpl) ListAdmins(ctx context.Context, session *Session) (*dto.ListAdminsResponse, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}
	rows, err := f.adminRepo.ByFilter(ctx, models.AdminFilter{}, "nome ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LIST_FAILED", "Failed to fetch admins", err)
	}
	out := &dto.ListAdminsResponse{Admins: make([]dto.Admin, 0, len(rows))}
	for _, row := range rows {
		out.Admins = append(out.Admins, ToAdminDTO(row))
	}
	return out, nil
}

func (f *DirectoryFlowImpl) ListCompanies(ctx context.Context, session *Session) (*dto.ListCompaniesResponse, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}
	rows, err := f.companyRepo.ByFilter(ctx, models.CompanyFilter{}, "nome ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LIST_FAILED", "Failed to fetch companies", err)
	}
	out := &dto.ListCompaniesResponse{Companies: make([]dto.Company, 0, len(rows))}
	for _, row := range rows {
		out.Companies = append(out.Companies, ToCompanyDTO(row))
	}
	return out, nil
}

func (f *DirectoryFlowImpl) CreateCompany(ctx context.Context, session *Session, req *dto.CreateCompanyRequest) (*dto.Company, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.ContactEmail))
	existing, err := f.companyRepo.ByContactEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("COMPANY_CREATE_FAILED", "Failed to create company", err)
	}
	if existing != nil {
		return nil, NewBusinessError("EMAIL_ALREADY_EXISTS", "A company with this contact email already exists", ErrEmailAlreadyExists)
	}

	hash, err := f.hashPassword(req.Password)
	if err != nil {
		return nil, NewBusinessError("COMPANY_CREATE_FAILED", "Failed to create company", err)
	}

	row := &models.Company{
		Name:          strings.TrimSpace(req.Name),
		CNPJ:          req.CNPJ,
		ContactEmail:  &email,
		ContactPhone:  req.ContactPhone,
		ContactPerson: req.ContactPerson,
		Instagram:     req.Instagram,
		CreatedAt:     utils.UTCNow(),
		IsActive:      req.IsActive == nil || *req.IsActive,
		PasswordHash:  &hash,
	}
	if err := f.companyRepo.Save(ctx, row); err != nil {
		return nil, NewBusinessError("COMPANY_CREATE_FAILED", "Failed to create company", err)
	}

	f.audit.record(ctx, session, models.AuditActionCompanyCreated, fmt.Sprintf("Company created: %s", row.ID), true, nil)
	out := ToCompanyDTO(row)
	return &out, nil
}

// ToggleCompanyActive flips the company's active flag. Campaign links are left as they are.
func (f *DirectoryFlowImpl) ToggleCompanyActive(ctx context.Context, session *Session, companyID string) (*dto.ToggleCompanyActiveResponse, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(companyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	row, err := f.companyRepo.ToggleActive(ctx, id)
	if err != nil {
		errMsg := err.Error()
		f.audit.record(ctx, session, models.AuditActionCompanyDeactivated, fmt.Sprintf("Company toggle failed: %s", id), false, &errMsg)
		return nil, NewBusinessError("COMPANY_UPDATE_FAILED", "Failed to update company status", err)
	}
	if row == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	action := models.AuditActionCompanyDeactivated
	if row.IsActive {
		action = models.AuditActionCompanyActivated
	}
	f.audit.record(ctx, session, action, fmt.Sprintf("Company status changed: %s", id), true, nil)

	return &dto.ToggleCompanyActiveResponse{Company: ToCompanyDTO(row)}, nil
}

func (f *DirectoryFlowImpl) UploadCompanyLogo(ctx context.Context, session *Session, companyID string, file io.Reader) (*dto.Company, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(companyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	row, err := f.companyRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("COMPANY_FETCH_FAILED", "Failed to fetch company", err)
	}
	if row == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	url, err := f.logos.StoreLogo(ctx, id, file)
	if err != nil {
		if errors.Is(err, services.ErrInvalidImage) || errors.Is(err, services.ErrImageTooLarge) {
			return nil, NewBusinessError("INVALID_LOGO", err.Error(), ErrInvalidLogo)
		}
		return nil, NewBusinessError("LOGO_UPLOAD_FAILED", "Failed to store logo", err)
	}
	if err := f.companyRepo.UpdateLogoURL(ctx, id, url); err != nil {
		return nil, NewBusinessError("LOGO_UPLOAD_FAILED", "Failed to store logo", err)
	}
	row.LogoURL = &url

	f.audit.record(ctx, session, models.AuditActionCompanyLogoUpdated, fmt.Sprintf("Company logo updated: %s", id), true, nil)
	out := ToCompanyDTO(row)
	return &out, nil
}

func (f *DirectoryFlowImpl) ListResearchers(ctx context.Context, session *Session) (*dto.ListResearchersResponse, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}
	rows, err := f.researcherRepo.ByFilter(ctx, models.ResearcherFilter{}, "nome ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("RESEARCHER_LIST_FAILED", "Failed to fetch researchers", err)
	}
	out := &dto.ListResearchersResponse{Researchers: make([]dto.Researcher, 0, len(rows))}
	for _, row := range rows {
		out.Researchers = append(out.Researchers, ToResearcherDTO(row))
	}
	return out, nil
}

func (f *DirectoryFlowImpl) CreateResearcher(ctx context.Context, session *Session, req *dto.CreateResearcherRequest) (*dto.Researcher, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := f.researcherRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("RESEARCHER_CREATE_FAILED", "Failed to create researcher", err)
	}
	if existing != nil {
		return nil, NewBusinessError("EMAIL_ALREADY_EXISTS", "A researcher with this email already exists", ErrEmailAlreadyExists)
	}

	var birthDate *time.Time
	if v := nonEmpty(req.BirthDate); v != nil {
		t, err := time.Parse(dateLayout, *v)
		if err != nil {
			return nil, NewBusinessError("VALIDATION_ERROR", "Birth date must be formatted as YYYY-MM-DD", err)
		}
		birthDate = &t
	}

	hash, err := f.hashPassword(req.Password)
	if err != nil {
		return nil, NewBusinessError("RESEARCHER_CREATE_FAILED", "Failed to create researcher", err)
	}

	row := &models.Researcher{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        req.Phone,
		Gender:       req.Gender,
		BirthDate:    birthDate,
		IsActive:     true,
		Color:        req.Color,
		PasswordHash: &hash,
		CreatedAt:    utils.UTCNow(),
	}
	if err := f.researcherRepo.Save(ctx, row); err != nil {
		return nil, NewBusinessError("RESEARCHER_CREATE_FAILED", "Failed to create researcher", err)
	}

	f.audit.record(ctx, session, models.AuditActionResearcherCreated, fmt.Sprintf("Researcher created: %s", row.ID), true, nil)
	out := ToResearcherDTO(row)
	return &out, nil
}

// ListVouchers returns every voucher to admins and only its own to a company
func (f *DirectoryFlowImpl) ListVouchers(ctx context.Context, session *Session) (*dto.ListVouchersResponse, error) {
	if err := session.Require(models.UserRoleAdmin, models.UserRoleCompany); err != nil {
		return nil, err
	}

	filter := models.VoucherFilter{}
	if session.Role == models.UserRoleCompany {
		filter.CompanyID = &session.ProfileID
	}
	rows, err := f.voucherRepo.ByFilter(ctx, filter, "criado_em DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("VOUCHER_LIST_FAILED", "Failed to fetch vouchers", err)
	}
	out := &dto.ListVouchersResponse{Vouchers: make([]dto.Voucher, 0, len(rows))}
	for _, row := range rows {
		out.Vouchers = append(out.Vouchers, ToVoucherDTO(row))
	}
	return out, nil
}

func (f *DirectoryFlowImpl) CreateVoucher(ctx context.Context, session *Session, req *dto.CreateVoucherRequest) (*dto.Voucher, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}
	company, err := f.companyRepo.ByID(ctx, companyID)
	if err != nil {
		return nil, NewBusinessError("VOUCHER_CREATE_FAILED", "Failed to create voucher", err)
	}
	if company == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	row := &models.Voucher{
		CompanyID:     companyID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		QRCodeValue:   req.QRCodeValue,
		IsActive:      true,
		LogoURL:       req.LogoURL,
		TotalQuantity: req.TotalQuantity,
		CreatedAt:     utils.UTCNow(),
	}
	if err := f.voucherRepo.Save(ctx, row); err != nil {
		return nil, NewBusinessError("VOUCHER_CREATE_FAILED", "Failed to create voucher", err)
	}

	f.audit.record(ctx, session, models.AuditActionVoucherCreated, fmt.Sprintf("Voucher created: %s", row.ID), true, nil)
	out := ToVoucherDTO(row)
	return &out, nil
}

// RedeemVoucher consumes one unit of a company's own voucher while units remain
func (f *DirectoryFlowImpl) RedeemVoucher(ctx context.Context, session *Session, voucherID string) (*dto.RedeemVoucherResponse, error) {
	if err := session.Require(models.UserRoleCompany); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(voucherID)
	if err != nil {
		return nil, NewBusinessError("VOUCHER_NOT_FOUND", "Voucher not found", ErrVoucherNotFound)
	}

	row, err := f.voucherRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("VOUCHER_REDEEM_FAILED", "Failed to redeem voucher", err)
	}
	if row == nil {
		return nil, NewBusinessError("VOUCHER_NOT_FOUND", "Voucher not found", ErrVoucherNotFound)
	}
	if row.CompanyID != session.ProfileID {
		return nil, NewBusinessError("VOUCHER_ACCESS_DENIED", "Voucher belongs to another company", ErrVoucherAccessDenied)
	}

	ok, err := f.voucherRepo.Redeem(ctx, id)
	if err != nil {
		return nil, NewBusinessError("VOUCHER_REDEEM_FAILED", "Failed to redeem voucher", err)
	}
	if !ok {
		return nil, NewBusinessError("VOUCHER_EXHAUSTED", "Voucher has no remaining redemptions", ErrVoucherExhausted)
	}

	updated, err := f.voucherRepo.ByID(ctx, id)
	if err != nil || updated == nil {
		// the redemption already happened; report the row as it was plus one
		log.WithError(err).WithField("voucher_id", id).Warn("failed to reload redeemed voucher")
		row.UsedQuantity++
		updated = row
	}

	f.audit.record(ctx, session, models.AuditActionVoucherRedeemed, fmt.Sprintf("Voucher redeemed: %s", id), true, nil)
	return &dto.RedeemVoucherResponse{Message: "Voucher redeemed successfully", Voucher: ToVoucherDTO(updated)}, nil
}

func (f *DirectoryFlowImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), f.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
