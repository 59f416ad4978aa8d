package history

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/arenalab/promptarena/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MemoryStore keeps query records in process memory, newest-first. A mutex
// serializes writers so concurrent sessions cannot race insert against
// delete. Each call sleeps a bounded random delay to behave like a real
// network round-trip; zero bounds disable the delay.
type MemoryStore struct {
	mu       sync.RWMutex
	records  []models.QueryRecord
	minDelay time.Duration
	maxDelay time.Duration
	logger   *logrus.Logger
}

func NewMemoryStore(minDelay, maxDelay time.Duration, logger *logrus.Logger) *MemoryStore {
	return &MemoryStore{
		records:  make([]models.QueryRecord, 0),
		minDelay: minDelay,
		maxDelay: maxDelay,
		logger:   logger,
	}
}

// Insert assigns a fresh id, stamps the record if unstamped, and prepends it.
func (s *MemoryStore) Insert(ctx context.Context, record *models.QueryRecord) (string, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return "", err
	}

	if err := record.Validate(); err != nil {
		return "", err
	}

	stored := *record
	stored.ID = uuid.NewString()
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}
	stored.Models = append([]string(nil), record.Models...)
	stored.Responses = make(map[string]string, len(record.Responses))
	for k, v := range record.Responses {
		stored.Responses[k] = v
	}

	s.mu.Lock()
	s.records = append([]models.QueryRecord{stored}, s.records...)
	total := len(s.records)
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"record_id": stored.ID,
		"user_id":   stored.UserID,
		"total":     total,
	}).Debug("History record inserted")

	return stored.ID, nil
}

// Query filters by owner and optional category, sorts by timestamp
// descending (insertion order breaks ties, newest kept first), and slices
// out the requested page. An out-of-range page yields an empty slice.
func (s *MemoryStore) Query(ctx context.Context, userID string, opts models.QueryOptions) ([]models.QueryRecord, int, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return nil, 0, err
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 10
	}

	s.mu.RLock()
	filtered := make([]models.QueryRecord, 0)
	for _, record := range s.records {
		if record.UserID != userID {
			continue
		}
		if opts.Category != "" && opts.Category != models.CategoryAll && record.Category != opts.Category {
			continue
		}
		filtered = append(filtered, record)
	}
	s.mu.RUnlock()

	// Records are held newest-inserted-first, so a stable sort keeps that
	// order for equal timestamps.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	total := len(filtered)
	start := (page - 1) * limit
	if start >= total {
		return []models.QueryRecord{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	return filtered[start:end], total, nil
}

// Delete removes the matching record. Deleting an unknown id is a no-op.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := s.simulateLatency(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, record := range s.records {
		if record.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.logger.WithField("record_id", id).Debug("History record deleted")
			return nil
		}
	}

	return nil
}

// GetByID returns the record or nil when absent.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*models.QueryRecord, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.ID == id {
			found := record
			return &found, nil
		}
	}

	return nil, nil
}

func (s *MemoryStore) simulateLatency(ctx context.Context) error {
	if s.maxDelay <= 0 {
		return ctx.Err()
	}

	delay := s.minDelay
	if spread := s.maxDelay - s.minDelay; spread > 0 {
		delay += time.Duration(rand.Int63n(int64(spread)))
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
