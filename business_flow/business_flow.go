// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// Session identifies the authenticated caller of a flow operation.
// Every flow receives it explicitly; nothing reads the current user from ambient state.
type Session struct {
	Role      models.UserRole
	ProfileID uuid.UUID
	Name      string
	TokenID   string
	ExpiresAt time.Time
	Metadata  *ClientMetadata
}

// Require fails unless the session exists and carries one of the given roles
func (s *Session) Require(roles ...models.UserRole) error {
	if s == nil || s.ProfileID == uuid.Nil {
		return ErrSessionRequired
	}
	for _, r := range roles {
		if s.Role == r {
			return nil
		}
	}
	return ErrRoleNotAllowed
}

func (s *Session) metadata() *ClientMetadata {
	if s == nil || s.Metadata == nil {
		return &ClientMetadata{}
	}
	return s.Metadata
}

// auditLogger writes audit entries; failures are logged and never returned to callers
type auditLogger struct {
	repo repository.AuditLogRepository
}

func (a auditLogger) record(ctx context.Context, session *Session, action, description string, success bool, errMsg *string) {
	if a.repo == nil {
		return
	}

	meta := session.metadata()
	entry := &models.AuditLog{
		Action:       action,
		Description:  &description,
		Success:      success,
		ErrorMessage: errMsg,
		CreatedAt:    utils.UTCNow(),
	}
	if session != nil && session.ProfileID != uuid.Nil {
		entry.ActorID = &session.ProfileID
		entry.ActorRole = utils.ToPtr(session.Role.String())
	}
	if meta.IPAddress != "" {
		entry.IPAddress = &meta.IPAddress
	}
	if meta.UserAgent != "" {
		entry.UserAgent = &meta.UserAgent
	}
	if meta.RequestID != "" {
		entry.RequestID = &meta.RequestID
	}

	if err := a.repo.Save(ctx, entry); err != nil {
		log.WithError(err).WithField("action", action).Warn("failed to write audit log")
	}
}
