package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Sender identifies which side of the conversation authored a turn.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Tone values a profile may carry. Anything else is a caller error.
const (
	ToneTough = "tough"
	ToneStoic = "stoic"
	ToneBro   = "bro"
)

// Profile holds a user's coaching preferences. One row per user.
type Profile struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Tone      string    `json:"tone"`
	Intensity int       `json:"intensity"` // 0–100
	Goal      string    `json:"goal"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidTone reports whether tone is one of the enumerated coaching tones.
func ValidTone(tone string) bool {
	switch tone {
	case ToneTough, ToneStoic, ToneBro:
		return true
	}
	return false
}

// Turn is a single persisted message, either user- or AI-authored.
// Rows are append-only; the server never mutates or deletes them.
type Turn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Sender    string    `json:"sender"` // SenderUser or SenderAI
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
