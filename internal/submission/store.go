package submission

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aiwars-hackathon/hackdash/internal/storage"
)

// DraftStore persists drafts under submissionDraft:<teamId>.
type DraftStore struct {
	kv storage.KV
}

// NewDraftStore wraps kv.
func NewDraftStore(kv storage.KV) *DraftStore {
	return &DraftStore{kv: kv}
}

// Load returns the stored draft for teamID and whether one exists.
// A corrupt draft is reported as absent.
func (s *DraftStore) Load(ctx context.Context, teamID string) (Draft, bool, error) {
	raw, ok, err := s.kv.Get(ctx, storage.DraftKey(teamID))
	if err != nil || !ok {
		return Draft{}, false, err
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Draft{}, false, nil
	}
	return d, true, nil
}

// Save writes d for teamID.
func (s *DraftStore) Save(ctx context.Context, teamID string, d Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.kv.Set(ctx, storage.DraftKey(teamID), string(data))
}

// Discard removes the draft for teamID.
func (s *DraftStore) Discard(ctx context.Context, teamID string) error {
	return s.kv.Delete(ctx, storage.DraftKey(teamID))
}

// Teams lists team ids that have a stored draft.
func (s *DraftStore) Teams(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx, storage.DraftKey(""))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	prefix := len(storage.DraftKey(""))
	for _, k := range keys {
		ids = append(ids, k[prefix:])
	}
	return ids, nil
}
