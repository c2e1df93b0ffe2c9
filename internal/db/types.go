package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/readability"
	"github.com/jonathan/advision/internal/types"
)

// User represents an account
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	PasswordSet  bool      `json:"password_set" db:"password_set"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Project is a campaign brief owned by one user
type Project struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	types.ProjectBrief
	CreatedAt time.Time `json:"created_at"`
}

// AdCopy is one piece of generated or hand-written marketing copy
type AdCopy struct {
	ID          uuid.UUID         `json:"id"`
	ProjectID   uuid.UUID         `json:"project_id"`
	UserID      uuid.UUID         `json:"user_id"`
	Content     string            `json:"content"`
	Tone        string            `json:"tone"`
	CreatedAt   time.Time         `json:"created_at"`
	Readability *ReadabilityScore `json:"readability,omitempty"` // latest snapshot, when listed
}

// ReadabilityScore is a persisted readability snapshot for an ad copy
type ReadabilityScore struct {
	ID       uuid.UUID `json:"id"`
	AdCopyID uuid.UUID `json:"ad_copy_id"`
	UserID   uuid.UUID `json:"user_id"`
	readability.Snapshot
	CreatedAt time.Time `json:"created_at"`
}

// Keyword is a keyword research record for a project
type Keyword struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	types.KeywordSuggestion
	CreatedAt time.Time `json:"created_at"`
}

// Audience is a target audience segment for a project
type Audience struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	types.AudienceSegment
	CreatedAt time.Time `json:"created_at"`
}

// BrandStyle holds a brand's palette and font
type BrandStyle struct {
	ID        uuid.UUID   `json:"id"`
	ProjectID uuid.UUID   `json:"project_id"`
	UserID    uuid.UUID   `json:"user_id"`
	BrandName string      `json:"brand_name"`
	Colors    StringArray `json:"colors"` // JSONB array
	Font      string      `json:"font"`
	CreatedAt time.Time   `json:"created_at"`
}

// ChatMessage is one turn of a design assistant conversation
type ChatMessage struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	UserID         uuid.UUID `json:"user_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	ProductName    string    `json:"product_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationSummary is a lightweight view of a conversation for listing
type ConversationSummary struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	ProductName    string    `json:"product_name,omitempty"`
	FirstMessage   string    `json:"first_message"`
	MessageCount   int       `json:"message_count"`
	LastMessageAt  time.Time `json:"last_message_at"`
}

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = StringArray{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("type assertion .([]byte) failed")
	}
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}
