package playground

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arenalab/promptarena/internal/history"
	"github.com/arenalab/promptarena/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubInvoker returns canned text per model, fails the models listed in
// failing, and optionally blocks until its context is cancelled.
type stubInvoker struct {
	mu        sync.Mutex
	responses map[string]string
	failing   map[string]bool
	blocking  map[string]bool
	calls     []string
}

func (s *stubInvoker) Generate(ctx context.Context, prompt, modelID, category string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, modelID)
	blocking := s.blocking[modelID]
	failing := s.failing[modelID]
	text, ok := s.responses[modelID]
	s.mu.Unlock()

	if blocking {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if failing {
		return "", &models.GenerationError{ModelID: modelID, Err: errors.New("provider unavailable")}
	}
	if !ok {
		text = "stub response"
	}
	return text, nil
}

func (s *stubInvoker) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestService(invoker Invoker) (*Service, *history.MemoryStore) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	store := history.NewMemoryStore(0, 0, logger)
	return NewService(invoker, store, nil, 0, logger), store
}

func TestGenerate_ProducesSlotForEveryModel(t *testing.T) {
	invoker := &stubInvoker{responses: map[string]string{
		"gpt-4o":          "answer a",
		"claude-3-opus":   "answer b",
		"claude-3-sonnet": "answer c",
	}}
	service, _ := newTestService(invoker)

	result, err := service.Generate(context.Background(), "u1", "compare yourselves", models.CategoryAll,
		[]string{"gpt-4o", "claude-3-opus", "claude-3-sonnet"})
	require.NoError(t, err)

	assert.Len(t, result.Responses, 3)
	assert.Equal(t, "answer a", result.Responses["gpt-4o"])
	assert.Equal(t, "answer b", result.Responses["claude-3-opus"])
	assert.Equal(t, "answer c", result.Responses["claude-3-sonnet"])
	assert.Empty(t, result.FailedModels)
	assert.Equal(t, 3, invoker.callCount())
}

func TestGenerate_FailureIsolatedToOneSlot(t *testing.T) {
	invoker := &stubInvoker{
		responses: map[string]string{"gpt-4o": "fine", "claude-3-sonnet": "also fine"},
		failing:   map[string]bool{"claude-3-opus": true},
	}
	service, store := newTestService(invoker)

	result, err := service.Generate(context.Background(), "u1", "a prompt", models.CategoryAll,
		[]string{"gpt-4o", "claude-3-opus", "claude-3-sonnet"})
	require.NoError(t, err)

	assert.Equal(t, "fine", result.Responses["gpt-4o"])
	assert.Equal(t, ErrorPlaceholder, result.Responses["claude-3-opus"])
	assert.Equal(t, "also fine", result.Responses["claude-3-sonnet"])
	assert.Equal(t, []string{"claude-3-opus"}, result.FailedModels)

	// The record still persists, placeholder included.
	record, err := store.GetByID(context.Background(), result.RecordID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, ErrorPlaceholder, record.Responses["claude-3-opus"])
}

func TestGenerate_ValidatesInput(t *testing.T) {
	service, store := newTestService(&stubInvoker{})

	_, err := service.Generate(context.Background(), "u1", "   ", models.CategoryAll, []string{"gpt-4o"})
	assert.ErrorIs(t, err, models.ErrEmptyPrompt)

	_, err = service.Generate(context.Background(), "u1", "prompt", models.CategoryAll, nil)
	assert.ErrorIs(t, err, models.ErrNoModelsSelected)

	// Neither failed cycle reached the store.
	_, total, err := store.Query(context.Background(), "u1", models.QueryOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGenerate_PersistsStubbedRecord(t *testing.T) {
	invoker := &stubInvoker{responses: map[string]string{"gpt-4o": "Hi there"}}
	service, store := newTestService(invoker)

	result, err := service.Generate(context.Background(), "u1", "Hello", models.CategoryConversation, []string{"gpt-4o"})
	require.NoError(t, err)
	require.NotEmpty(t, result.RecordID)

	record, err := store.GetByID(context.Background(), result.RecordID)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "u1", record.UserID)
	assert.Equal(t, "Hello", record.Prompt)
	assert.Equal(t, models.CategoryConversation, record.Category)
	assert.Equal(t, []string{"gpt-4o"}, record.Models)
	assert.Equal(t, map[string]string{"gpt-4o": "Hi there"}, record.Responses)
}

func TestGenerate_TrimsPromptBeforePersisting(t *testing.T) {
	invoker := &stubInvoker{responses: map[string]string{"gpt-4o": "ok"}}
	service, store := newTestService(invoker)

	result, err := service.Generate(context.Background(), "u1", "  padded  ", "", []string{"gpt-4o"})
	require.NoError(t, err)

	record, err := store.GetByID(context.Background(), result.RecordID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "padded", record.Prompt)
	assert.Equal(t, models.CategoryAll, record.Category)
}

func TestGenerate_NewBatchSupersedesInFlight(t *testing.T) {
	invoker := &stubInvoker{
		responses: map[string]string{"gpt-4o": "second answer"},
		blocking:  map[string]bool{"claude-3-opus": true},
	}
	service, store := newTestService(invoker)

	firstDone := make(chan error, 1)
	go func() {
		_, err := service.Generate(context.Background(), "u1", "first prompt", models.CategoryAll, []string{"claude-3-opus"})
		firstDone <- err
	}()

	// Wait until the first batch is in flight.
	require.Eventually(t, func() bool {
		return invoker.callCount() >= 1
	}, time.Second, 5*time.Millisecond)

	result, err := service.Generate(context.Background(), "u1", "second prompt", models.CategoryAll, []string{"gpt-4o"})
	require.NoError(t, err)

	select {
	case err := <-firstDone:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("superseded batch did not settle")
	}

	// Only the second batch persisted.
	items, total, err := store.Query(context.Background(), "u1", models.QueryOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "second prompt", items[0].Prompt)
	assert.Equal(t, result.RecordID, items[0].ID)
}

func TestGenerate_BatchesForDifferentUsersDoNotInterfere(t *testing.T) {
	invoker := &stubInvoker{responses: map[string]string{"gpt-4o": "ok"}}
	service, store := newTestService(invoker)

	var wg sync.WaitGroup
	for _, userID := range []string{"u1", "u2", "u3"} {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := service.Generate(context.Background(), userID, "prompt", models.CategoryAll, []string{"gpt-4o"})
			assert.NoError(t, err)
		}(userID)
	}
	wg.Wait()

	for _, userID := range []string{"u1", "u2", "u3"} {
		_, total, err := store.Query(context.Background(), userID, models.QueryOptions{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	}
}

func TestSaveSnapshot(t *testing.T) {
	service, store := newTestService(&stubInvoker{})
	ctx := context.Background()

	_, err := service.SaveSnapshot(ctx, "u1", "prompt", models.CategoryAll, []string{"gpt-4o"}, nil)
	assert.ErrorIs(t, err, models.ErrNothingToSave)

	_, err = service.SaveSnapshot(ctx, "u1", "", models.CategoryAll, []string{"gpt-4o"},
		map[string]string{"gpt-4o": "text"})
	assert.ErrorIs(t, err, models.ErrEmptyPrompt)

	id, err := service.SaveSnapshot(ctx, "u1", "prompt", models.CategoryCreative, []string{"gpt-4o"},
		map[string]string{"gpt-4o": "text"})
	require.NoError(t, err)

	record, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "text", record.Responses["gpt-4o"])
	assert.Equal(t, models.CategoryCreative, record.Category)
}

// hookRepo lets a test run code right after a record lands in the store.
type hookRepo struct {
	models.HistoryRepository
	afterInsert func()
}

func (r *hookRepo) Insert(ctx context.Context, record *models.QueryRecord) (string, error) {
	id, err := r.HistoryRepository.Insert(ctx, record)
	if err == nil && r.afterInsert != nil {
		r.afterInsert()
	}
	return id, err
}

func TestGenerate_SupersessionDuringPersistRollsBack(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	invoker := &stubInvoker{responses: map[string]string{
		"claude-3-opus": "first answer",
		"gpt-4o":        "second answer",
	}}
	store := history.NewMemoryStore(0, 0, logger)
	repo := &hookRepo{HistoryRepository: store}
	service := NewService(invoker, repo, nil, 0, logger)

	// The hook fires exactly once, right after the first batch's record
	// lands, and starts a superseding batch for the same user before the
	// first batch has returned.
	var once sync.Once
	repo.afterInsert = func() {
		once.Do(func() {
			_, err := service.Generate(context.Background(), "u1", "second prompt", models.CategoryAll, []string{"gpt-4o"})
			require.NoError(t, err)
		})
	}

	_, err := service.Generate(context.Background(), "u1", "first prompt", models.CategoryAll, []string{"claude-3-opus"})
	assert.ErrorIs(t, err, context.Canceled)

	// The first batch's record was rolled back; only the second remains.
	items, total, err := store.Query(context.Background(), "u1", models.QueryOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "second prompt", items[0].Prompt)
}

// failingRepo simulates a broken history backend.
type failingRepo struct{}

func (f *failingRepo) Insert(ctx context.Context, record *models.QueryRecord) (string, error) {
	return "", errors.New("store offline")
}

func (f *failingRepo) Query(ctx context.Context, userID string, opts models.QueryOptions) ([]models.QueryRecord, int, error) {
	return nil, 0, errors.New("store offline")
}

func (f *failingRepo) Delete(ctx context.Context, id string) error {
	return errors.New("store offline")
}

func (f *failingRepo) GetByID(ctx context.Context, id string) (*models.QueryRecord, error) {
	return nil, errors.New("store offline")
}

func TestGenerate_PersistenceFailureEscalates(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	invoker := &stubInvoker{responses: map[string]string{"gpt-4o": "ok"}}
	service := NewService(invoker, &failingRepo{}, nil, 0, logger)

	_, err := service.Generate(context.Background(), "u1", "prompt", models.CategoryAll, []string{"gpt-4o"})
	require.Error(t, err)

	var persistence *models.PersistenceError
	assert.ErrorAs(t, err, &persistence)
}
