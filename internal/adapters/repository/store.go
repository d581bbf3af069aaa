package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/pkg/metrics"
)

// Collection names the logical record collections the store manages.
type Collection string

// Named collections. The session pointer is a single record, not a list.
const (
	CollectionAccounts Collection = "accounts"
	CollectionProfiles Collection = "profiles"
	CollectionDebates  Collection = "debates"
	CollectionMessages Collection = "debate_messages"
	CollectionAnalyses Collection = "media_analyses"
	collectionSession  Collection = "session"
)

// Store persists whole-collection snapshots on a Medium.
//
// Every read returns the full collection and every write replaces it. The
// store performs no locking or compare-and-swap: callers must not issue
// more than one in-flight mutating call per collection at a time. Each call
// sleeps for a configurable artificial latency so the UI layer sees
// network-shaped loading states even on a local medium.
type Store struct {
	medium    Medium
	latency   time.Duration
	keyPrefix string
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLatency sets the artificial per-call delay.
func WithLatency(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.latency = d
		}
	}
}

// WithKeyPrefix sets the prefix prepended to every collection key.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.keyPrefix = prefix
	}
}

// NewStore creates a Store over the given medium.
func NewStore(medium Medium, opts ...Option) *Store {
	s := &Store{
		medium:    medium,
		keyPrefix: "agon_",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// load reads a collection snapshot into out (a pointer to a slice). An
// absent key leaves out empty. An unparseable snapshot is ErrCorruptData.
func (s *Store) load(ctx context.Context, col Collection, out any) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLoadLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := s.delay(ctx); err != nil {
		return err
	}

	raw, ok, err := s.medium.Get(ctx, s.key(col))
	if err != nil {
		metrics.RecordStoreFault()
		return err
	}
	if !ok {
		return nil
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		metrics.RecordStoreCorruptData()
		return fmt.Errorf("%w: %s: %w", ErrCorruptData, col, err)
	}
	return nil
}

// replace writes records as the new full snapshot of the collection.
func (s *Store) replace(ctx context.Context, col Collection, records any) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreSaveLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := s.delay(ctx); err != nil {
		return err
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", col, err)
	}
	if err := s.medium.Set(ctx, s.key(col), string(raw)); err != nil {
		metrics.RecordStoreFault()
		return err
	}
	return nil
}

// Accounts returns the full accounts collection.
func (s *Store) Accounts(ctx context.Context) ([]model.Account, error) {
	records := []model.Account{}
	if err := s.load(ctx, CollectionAccounts, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ReplaceAccounts replaces the accounts collection.
func (s *Store) ReplaceAccounts(ctx context.Context, records []model.Account) error {
	return s.replace(ctx, CollectionAccounts, records)
}

// Profiles returns the full profiles collection.
func (s *Store) Profiles(ctx context.Context) ([]model.Profile, error) {
	records := []model.Profile{}
	if err := s.load(ctx, CollectionProfiles, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ReplaceProfiles replaces the profiles collection.
func (s *Store) ReplaceProfiles(ctx context.Context, records []model.Profile) error {
	return s.replace(ctx, CollectionProfiles, records)
}

// Debates returns the full debates collection.
func (s *Store) Debates(ctx context.Context) ([]model.Debate, error) {
	records := []model.Debate{}
	if err := s.load(ctx, CollectionDebates, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ReplaceDebates replaces the debates collection.
func (s *Store) ReplaceDebates(ctx context.Context, records []model.Debate) error {
	return s.replace(ctx, CollectionDebates, records)
}

// Messages returns the full debate-message collection, in append order.
func (s *Store) Messages(ctx context.Context) ([]model.DebateMessage, error) {
	records := []model.DebateMessage{}
	if err := s.load(ctx, CollectionMessages, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ReplaceMessages replaces the debate-message collection.
func (s *Store) ReplaceMessages(ctx context.Context, records []model.DebateMessage) error {
	return s.replace(ctx, CollectionMessages, records)
}

// Analyses returns the full media-analysis collection.
func (s *Store) Analyses(ctx context.Context) ([]model.MediaAnalysis, error) {
	records := []model.MediaAnalysis{}
	if err := s.load(ctx, CollectionAnalyses, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ReplaceAnalyses replaces the media-analysis collection.
func (s *Store) ReplaceAnalyses(ctx context.Context, records []model.MediaAnalysis) error {
	return s.replace(ctx, CollectionAnalyses, records)
}

// CurrentAccount resolves the session pointer. An empty id means no one is
// signed in.
func (s *Store) CurrentAccount(ctx context.Context) (string, error) {
	if err := s.delay(ctx); err != nil {
		return "", err
	}

	id, _, err := s.medium.Get(ctx, s.key(collectionSession))
	if err != nil {
		metrics.RecordStoreFault()
		return "", err
	}
	return id, nil
}

// SetCurrentAccount stores the session pointer; an empty id clears it.
func (s *Store) SetCurrentAccount(ctx context.Context, id string) error {
	if err := s.delay(ctx); err != nil {
		return err
	}

	var err error
	if id == "" {
		err = s.medium.Delete(ctx, s.key(collectionSession))
	} else {
		err = s.medium.Set(ctx, s.key(collectionSession), id)
	}
	if err != nil {
		metrics.RecordStoreFault()
		return err
	}
	return nil
}

func (s *Store) key(col Collection) string {
	return s.keyPrefix + string(col)
}

// delay sleeps for the configured artificial latency, honoring ctx.
func (s *Store) delay(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("store call cancelled: %w", ctx.Err())
	case <-time.After(s.latency):
		return nil
	}
}
