package playground

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/arenalab/promptarena/internal/cache"
	"github.com/arenalab/promptarena/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrorPlaceholder fills the slot of a model whose invocation failed.
const ErrorPlaceholder = "Error generating response. Please try again."

// Invoker produces one model's response for a prompt.
type Invoker interface {
	Generate(ctx context.Context, prompt, modelID, category string) (string, error)
}

// GenerationResult is the settled outcome of one generate cycle.
type GenerationResult struct {
	RecordID     string
	Responses    map[string]string
	FailedModels []string
	Elapsed      time.Duration
}

// Service drives a generate cycle: validate, fan out one invocation per
// selected model, join on the whole batch, and persist the finished set.
// Starting a new cycle for a user cancels that user's previous in-flight
// batch; superseded batches are discarded, never persisted.
type Service struct {
	invoker     Invoker
	history     models.HistoryRepository
	cache       *cache.ResponseCache
	callTimeout time.Duration
	logger      *logrus.Logger

	mu     sync.Mutex
	active map[string]*batchHandle
}

type batchHandle struct {
	cancel context.CancelFunc
}

func NewService(invoker Invoker, history models.HistoryRepository, responseCache *cache.ResponseCache, callTimeout time.Duration, logger *logrus.Logger) *Service {
	return &Service{
		invoker:     invoker,
		history:     history,
		cache:       responseCache,
		callTimeout: callTimeout,
		logger:      logger,
		active:      make(map[string]*batchHandle),
	}
}

type modelOutcome struct {
	modelID string
	text    string
	failed  bool
}

// Generate fans the prompt out to every selected model concurrently and
// waits for the whole batch to settle. A model's failure is absorbed into
// its own slot as the placeholder text; only persistence failures escalate.
func (s *Service) Generate(ctx context.Context, userID, prompt, category string, modelIDs []string) (*GenerationResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, models.ErrEmptyPrompt
	}
	if len(modelIDs) == 0 {
		return nil, models.ErrNoModelsSelected
	}
	if category == "" {
		category = models.CategoryAll
	}

	start := time.Now()
	batchCtx, handle := s.beginBatch(ctx, userID)
	defer s.endBatch(userID, handle)

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"models":   modelIDs,
		"category": category,
	}).Info("Starting generation batch")

	// Launch every invocation before awaiting any, so the batch runs
	// concurrently and one slow model only delays the join, not siblings.
	outcomes := make([]modelOutcome, len(modelIDs))
	var wg sync.WaitGroup
	for i, modelID := range modelIDs {
		wg.Add(1)
		go func(slot int, modelID string) {
			defer wg.Done()
			outcomes[slot] = s.invokeModel(batchCtx, prompt, modelID, category)
		}(i, modelID)
	}
	wg.Wait()

	// A superseded or abandoned batch is discarded without persisting.
	if err := batchCtx.Err(); err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"reason":  err.Error(),
		}).Info("Generation batch discarded")
		return nil, err
	}

	responses := make(map[string]string, len(outcomes))
	var failed []string
	for _, outcome := range outcomes {
		responses[outcome.modelID] = outcome.text
		if outcome.failed {
			failed = append(failed, outcome.modelID)
		}
	}

	record := &models.QueryRecord{
		UserID:    userID,
		Prompt:    prompt,
		Category:  category,
		Models:    modelIDs,
		Responses: responses,
		Timestamp: time.Now().UTC(),
	}

	id, err := s.history.Insert(batchCtx, record)
	if err != nil {
		if cerr := batchCtx.Err(); cerr != nil {
			s.logger.WithField("user_id", userID).Info("Generation batch discarded during persist")
			return nil, cerr
		}
		return nil, &models.PersistenceError{Op: "insert", Err: err}
	}

	// A supersession that raced the insert rolls the record back; a stale
	// batch must not land in history.
	if cerr := batchCtx.Err(); cerr != nil {
		if derr := s.history.Delete(ctx, id); derr != nil {
			s.logger.WithError(derr).WithField("record_id", id).Warn("Failed to remove superseded record")
		}
		return nil, cerr
	}

	elapsed := time.Since(start)
	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"record_id":  id,
		"failed":     len(failed),
		"elapsed_ms": elapsed.Milliseconds(),
	}).Info("Generation batch completed")

	return &GenerationResult{
		RecordID:     id,
		Responses:    responses,
		FailedModels: failed,
		Elapsed:      elapsed,
	}, nil
}

// SaveSnapshot re-persists an already-generated response set, for the
// manual save distinct from the generate-triggered one.
func (s *Service) SaveSnapshot(ctx context.Context, userID, prompt, category string, modelIDs []string, responses map[string]string) (string, error) {
	if len(responses) == 0 {
		return "", models.ErrNothingToSave
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", models.ErrEmptyPrompt
	}
	if len(modelIDs) == 0 {
		return "", models.ErrNoModelsSelected
	}
	if category == "" {
		category = models.CategoryAll
	}

	record := &models.QueryRecord{
		UserID:    userID,
		Prompt:    prompt,
		Category:  category,
		Models:    modelIDs,
		Responses: responses,
		Timestamp: time.Now().UTC(),
	}
	if err := record.Validate(); err != nil {
		return "", err
	}

	id, err := s.history.Insert(ctx, record)
	if err != nil {
		return "", &models.PersistenceError{Op: "insert", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"record_id": id,
	}).Info("Snapshot saved to history")

	return id, nil
}

func (s *Service) invokeModel(batchCtx context.Context, prompt, modelID, category string) modelOutcome {
	key := cache.Key(modelID, category, prompt)
	if text, ok := s.cache.Get(batchCtx, key); ok {
		s.logger.WithField("model", modelID).Debug("Response served from cache")
		return modelOutcome{modelID: modelID, text: text}
	}

	callCtx := batchCtx
	var cancel context.CancelFunc
	if s.callTimeout > 0 {
		callCtx, cancel = context.WithTimeout(batchCtx, s.callTimeout)
		defer cancel()
	}

	text, err := s.invoker.Generate(callCtx, prompt, modelID, category)
	if err != nil {
		s.logger.WithError(err).WithField("model", modelID).Warn("Model invocation failed")
		return modelOutcome{modelID: modelID, text: ErrorPlaceholder, failed: true}
	}

	s.cache.Set(batchCtx, key, text)
	return modelOutcome{modelID: modelID, text: text}
}

// beginBatch cancels the user's previous in-flight batch and registers the
// new one's cancel handle.
func (s *Service) beginBatch(ctx context.Context, userID string) (context.Context, *batchHandle) {
	batchCtx, cancel := context.WithCancel(ctx)
	handle := &batchHandle{cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.active[userID]; ok {
		prev.cancel()
	}
	s.active[userID] = handle
	s.mu.Unlock()

	return batchCtx, handle
}

// endBatch releases a batch's cancel handle. Only the owning batch is
// removed; a newer batch that already superseded this one keeps its entry.
func (s *Service) endBatch(userID string, handle *batchHandle) {
	s.mu.Lock()
	if s.active[userID] == handle {
		delete(s.active, userID)
	}
	s.mu.Unlock()

	handle.cancel()
}
