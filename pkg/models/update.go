package models

import (
	"time"

	"github.com/google/uuid"
)

// Update is a snapshot of the ticker state published after every change.
// It is never mutated after creation and is safe to share between goroutines.
type Update struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Text      string    `json:"text"`
	Display   string    `json:"display"`
	Quotes    []Quote   `json:"quotes"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUpdate copies quotes so later registry writes cannot leak in.
func NewUpdate(status, text, display string, quotes []Quote) *Update {
	return &Update{
		ID:        uuid.New().String(),
		Status:    status,
		Text:      text,
		Display:   display,
		Quotes:    append([]Quote(nil), quotes...),
		Timestamp: time.Now(),
	}
}
