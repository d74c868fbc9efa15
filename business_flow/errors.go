// Package businessflow contains the core business logic and use cases of the survey platform
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrIncorrectPassword   = errors.New("incorrect password")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrCaptchaInvalid      = errors.New("captcha verification failed")
	ErrRoleNotAllowed      = errors.New("role not allowed for this operation")
	ErrSessionRequired     = errors.New("session is required")
	ErrCompanyNotFound     = errors.New("company not found")
	ErrResearcherNotFound  = errors.New("researcher not found")
	ErrCompanyInactive     = errors.New("company is inactive")
	ErrInvalidLogo         = errors.New("invalid logo image")
	ErrVoucherNotFound     = errors.New("voucher not found")
	ErrVoucherExhausted    = errors.New("voucher has no remaining redemptions")
	ErrVoucherAccessDenied = errors.New("voucher belongs to another company")

	// Campaign errors
	ErrCampaignNotFound            = errors.New("campaign not found")
	ErrCampaignNameRequired        = errors.New("campaign name is required")
	ErrCampaignThemeRequired       = errors.New("campaign theme is required")
	ErrCampaignEndTimeWithoutStart = errors.New("campaign end time requires a start time")
	ErrCampaignVersionConflict     = errors.New("campaign was modified by someone else")
	ErrCampaignVersionRequired     = errors.New("campaign version is required for updates")
	ErrInvalidCampaignID           = errors.New("invalid campaign id")
	ErrInvalidQuestionType         = errors.New("invalid question type")
	ErrInvalidCampaignDate         = errors.New("campaign dates must be formatted as YYYY-MM-DD")
	ErrDuplicateQuestionID         = errors.New("question ids must be unique within a campaign")

	// Editor errors
	ErrDraftNotFound              = errors.New("campaign draft not found")
	ErrInvalidEditorStep          = errors.New("editor step must be between 1 and 3")
	ErrEndTimeRequiresStartTime   = errors.New("end time can only be enabled after start time")
	ErrNoPendingConfirmation      = errors.New("no action is waiting for confirmation")
	ErrConfirmationAlreadyPending = errors.New("another action is waiting for confirmation")
	ErrUnknownConfirmationKind    = errors.New("unknown confirmation kind")
	ErrDraftStoreUnavailable      = errors.New("draft store unavailable")

	// Survey runner errors
	ErrCampaignNotAssigned    = errors.New("campaign is not assigned to researcher")
	ErrCampaignInactive       = errors.New("campaign is inactive")
	ErrQuestionNotFound       = errors.New("question not found in campaign")
	ErrAnswerQuestionMismatch = errors.New("answer references a question outside the campaign")

	// Tracking errors
	ErrInvalidRouteDate = errors.New("route date must be formatted as YYYY-MM-DD")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsCaptchaInvalid(err error) bool {
	return errors.Is(err, ErrCaptchaInvalid)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignVersionConflict(err error) bool {
	return errors.Is(err, ErrCampaignVersionConflict)
}

// IsCampaignValidationError reports errors caused by an incomplete campaign draft
func IsCampaignValidationError(err error) bool {
	return errors.Is(err, ErrCampaignNameRequired) ||
		errors.Is(err, ErrCampaignThemeRequired) ||
		errors.Is(err, ErrCampaignEndTimeWithoutStart) ||
		errors.Is(err, ErrCampaignVersionRequired) ||
		errors.Is(err, ErrInvalidQuestionType) ||
		errors.Is(err, ErrInvalidCampaignDate) ||
		errors.Is(err, ErrDuplicateQuestionID)
}

func IsDraftNotFound(err error) bool {
	return errors.Is(err, ErrDraftNotFound)
}

// IsEditorStateError reports editor transitions that the current draft state rejects
func IsEditorStateError(err error) bool {
	return errors.Is(err, ErrInvalidEditorStep) ||
		errors.Is(err, ErrEndTimeRequiresStartTime) ||
		errors.Is(err, ErrNoPendingConfirmation) ||
		errors.Is(err, ErrConfirmationAlreadyPending) ||
		errors.Is(err, ErrUnknownConfirmationKind) ||
		errors.Is(err, ErrCompanyInactive)
}

func IsCompanyNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound)
}

func IsCompanyInactive(err error) bool {
	return errors.Is(err, ErrCompanyInactive)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsVoucherNotFound(err error) bool {
	return errors.Is(err, ErrVoucherNotFound)
}

func IsVoucherExhausted(err error) bool {
	return errors.Is(err, ErrVoucherExhausted)
}

func IsInvalidLogo(err error) bool {
	return errors.Is(err, ErrInvalidLogo)
}

// IsAccessDenied reports errors caused by a session acting outside its scope
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrRoleNotAllowed) ||
		errors.Is(err, ErrSessionRequired) ||
		errors.Is(err, ErrVoucherAccessDenied) ||
		errors.Is(err, ErrCampaignNotAssigned)
}

func IsSurveyRejected(err error) bool {
	return errors.Is(err, ErrCampaignInactive) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAnswerQuestionMismatch)
}

func IsInvalidRouteDate(err error) bool {
	return errors.Is(err, ErrInvalidRouteDate)
}
