package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/google/uuid"
)

const draftKeyPrefix = "draft:"

// DraftStore keeps campaign editor drafts between requests, scoped to the admin editing them
type DraftStore interface {
	// Load returns nil when the draft does not exist or has expired
	Load(ctx context.Context, adminID uuid.UUID, draftID string) (*dto.CampaignDraft, error)
	Save(ctx context.Context, adminID uuid.UUID, draft *dto.CampaignDraft) error
	Delete(ctx context.Context, adminID uuid.UUID, draftID string) error
}

// StateDraftStore serializes drafts as JSON into a StateStore; every save refreshes the TTL
type StateDraftStore struct {
	store StateStore
	ttl   time.Duration
}

func NewDraftStore(store StateStore, ttl time.Duration) *StateDraftStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &StateDraftStore{store: store, ttl: ttl}
}

func draftKey(adminID uuid.UUID, draftID string) string {
	return draftKeyPrefix + adminID.String() + ":" + draftID
}

func (s *StateDraftStore) Load(ctx context.Context, adminID uuid.UUID, draftID string) (*dto.CampaignDraft, error) {
	raw, found, err := s.store.Get(ctx, draftKey(adminID, draftID))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var draft dto.CampaignDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("corrupt draft %s: %w", draftID, err)
	}
	return &draft, nil
}

func (s *StateDraftStore) Save(ctx context.Context, adminID uuid.UUID, draft *dto.CampaignDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, draftKey(adminID, draft.ID), raw, s.ttl)
}

func (s *StateDraftStore) Delete(ctx context.Context, adminID uuid.UUID, draftID string) error {
	return s.store.Delete(ctx, draftKey(adminID, draftID))
}
