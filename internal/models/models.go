package models

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// User is an authenticated account. ID is always present; name and email
// may be empty for accounts created outside the register flow.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// QueryRecord is one finished playground query: the prompt, the models it
// was sent to, and whatever each model answered. Records are immutable once
// inserted; the only mutation the store supports is deletion by id.
type QueryRecord struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Prompt    string            `json:"prompt"`
	Category  string            `json:"category"`
	Models    []string          `json:"models"`
	Responses map[string]string `json:"responses"`
	Timestamp time.Time         `json:"timestamp"`
}

// Prompt categories. "all" doubles as the no-filter value on history queries.
const (
	CategoryAll           = "all"
	CategoryCreative      = "creative"
	CategoryTechnical     = "technical"
	CategorySummarization = "summarization"
	CategoryConversation  = "conversation"
)

var validCategories = map[string]bool{
	CategoryAll:           true,
	CategoryCreative:      true,
	CategoryTechnical:     true,
	CategorySummarization: true,
	CategoryConversation:  true,
}

func IsValidCategory(category string) bool {
	return validCategories[category]
}

// Validate checks record integrity before insert: owner and prompt present,
// known category, and every response keyed by a selected model.
func (r *QueryRecord) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	if !IsValidCategory(r.Category) {
		return fmt.Errorf("invalid category: %s", r.Category)
	}
	if len(r.Models) == 0 {
		return fmt.Errorf("at least one model is required")
	}

	selected := make(map[string]bool, len(r.Models))
	for _, m := range r.Models {
		selected[m] = true
	}
	for m := range r.Responses {
		if !selected[m] {
			return fmt.Errorf("response for unselected model: %s", m)
		}
	}
	return nil
}

// QueryOptions narrows and pages a history query. Page and Limit are
// 1-based; Category "all" or empty means no category filter.
type QueryOptions struct {
	Page     int
	Limit    int
	Category string
}

// HistoryRepository is the storage contract for query records.
type HistoryRepository interface {
	Insert(ctx context.Context, record *QueryRecord) (string, error)
	Query(ctx context.Context, userID string, opts QueryOptions) ([]QueryRecord, int, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*QueryRecord, error)
}
