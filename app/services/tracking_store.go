package services

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	trackingKeyPrefix = "tracking:"
	notifiedKeyPrefix = "tracking-notified:"
)

// TrackingStore records which researchers currently have an active location tracking session
type TrackingStore interface {
	// Start opens a new tracking session and returns its id
	Start(ctx context.Context, researcherID uuid.UUID) (string, error)
	Stop(ctx context.Context, researcherID uuid.UUID) error
	// Active returns the current session id, or "" when tracking is off
	Active(ctx context.Context, researcherID uuid.UUID) (string, error)
	// MarkPermissionNotified reports true only the first time it is called for a session
	MarkPermissionNotified(ctx context.Context, researcherID uuid.UUID, sessionID string) (bool, error)
}

// StateTrackingStore implements TrackingStore on a StateStore; sessions expire after ttl without a restart
type StateTrackingStore struct {
	store StateStore
	ttl   time.Duration
}

func NewTrackingStore(store StateStore, ttl time.Duration) *StateTrackingStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &StateTrackingStore{store: store, ttl: ttl}
}

func (s *StateTrackingStore) Start(ctx context.Context, researcherID uuid.UUID) (string, error) {
	sessionID := uuid.NewString()
	if err := s.store.Set(ctx, trackingKeyPrefix+researcherID.String(), []byte(sessionID), s.ttl); err != nil {
		return "", err
	}
	return sessionID, nil
}

func (s *StateTrackingStore) Stop(ctx context.Context, researcherID uuid.UUID) error {
	return s.store.Delete(ctx, trackingKeyPrefix+researcherID.String())
}

func (s *StateTrackingStore) Active(ctx context.Context, researcherID uuid.UUID) (string, error) {
	raw, found, err := s.store.Get(ctx, trackingKeyPrefix+researcherID.String())
	if err != nil || !found {
		return "", err
	}
	return string(raw), nil
}

func (s *StateTrackingStore) MarkPermissionNotified(ctx context.Context, researcherID uuid.UUID, sessionID string) (bool, error) {
	return s.store.SetNX(ctx, notifiedKeyPrefix+researcherID.String()+":"+sessionID, []byte("1"), s.ttl)
}
