// Package model contains domain entities passed between layers.
package model

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Sender identifies which side of a debate authored a message.
type Sender string

// Message senders.
const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// DebateStatus is the lifecycle status of a persisted debate.
type DebateStatus string

// Debate statuses.
const (
	StatusOngoing   DebateStatus = "ongoing"
	StatusCompleted DebateStatus = "completed"
)

// Account is an authentication record. Owned exclusively by the identity
// manager; the password hash never leaves that package.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the public face of an account, 1:1 by shared id. Counters are
// mutated only by debate completion and explicit profile edits.
type Profile struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	AvatarURL    string    `json:"avatar_url"`
	TotalDebates int       `json:"total_debates"`
	Wins         int       `json:"wins"`
	TotalScore   int       `json:"total_score"`
	Rank         string    `json:"rank"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Debate is one practice session's persisted record. Created at session
// start, mutated exactly once at completion, never deleted.
type Debate struct {
	ID              string       `json:"id"`
	AccountID       string       `json:"user_id"`
	Topic           string       `json:"topic"`
	Persona         string       `json:"persona"`
	Status          DebateStatus `json:"status"`
	UserScore       int          `json:"user_score"`
	AIScore         int          `json:"ai_score"`
	DurationSeconds int          `json:"duration_seconds"`
	Feedback        string       `json:"feedback"`
	CreatedAt       time.Time    `json:"created_at"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
}

// DebateMessage is one message in a debate transcript. Append-only; creation
// order equals chronological order within a debate.
type DebateMessage struct {
	ID          string    `json:"id"`
	DebateID    string    `json:"debate_id"`
	Sender      Sender    `json:"sender"`
	Content     string    `json:"content"`
	ScoreImpact int       `json:"score_impact"`
	Timestamp   time.Time `json:"timestamp"`
}

// MediaAnalysis is a saved topic analysis produced by the AI partner.
type MediaAnalysis struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"user_id"`
	Topic          string    `json:"topic"`
	Summary        string    `json:"summary"`
	Pros           []string  `json:"pros"`
	Cons           []string  `json:"cons"`
	SentimentScore int       `json:"sentiment_score"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewID returns a fresh opaque entity id.
func NewID() string {
	return uuid.NewString()
}

// DefaultAvatarURL derives a deterministic avatar reference from a seed,
// typically the username chosen at sign-up.
func DefaultAvatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(seed)
}

// Completed reports whether the debate has been scored and closed.
func (d Debate) Completed() bool {
	return d.Status == StatusCompleted && d.CompletedAt != nil
}
