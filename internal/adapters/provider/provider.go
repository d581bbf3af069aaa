// Package provider defines the contract for the external AI debate partner.
//
// The session machine consumes this interface only; whether replies come
// from a hosted model or the offline fallback is a wiring decision.
package provider

import (
	"context"

	"github.com/agonhq/agon/internal/domain/model"
)

// Score bounds for transcript verdicts.
const (
	MinScore = 0
	MaxScore = 100
)

// Winner identifies the outcome of a judged debate.
type Winner string

// Verdict winners.
const (
	WinnerUser Winner = "user"
	WinnerAI   Winner = "ai"
	WinnerDraw Winner = "draw"
)

// Message is one transcript entry handed to the partner.
type Message struct {
	Sender  model.Sender
	Content string
}

// Verdict is the judge's assessment of a full transcript.
type Verdict struct {
	UserScore     int    `json:"userScore"`
	AIScore       int    `json:"aiScore"`
	Justification string `json:"justification"`
	Winner        Winner `json:"winner"`
}

// Analysis is a structured breakdown of a debate topic.
type Analysis struct {
	Topic          string   `json:"topic"`
	Summary        string   `json:"summary"`
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	SentimentScore int      `json:"sentimentScore"`
}

// Partner supplies opening lines, turn replies, and transcript scoring.
// Calls may fail with ErrProvider-wrapped errors and are never retried.
type Partner interface {
	// OpenDebate returns the AI's opening line for a persona and topic.
	OpenDebate(ctx context.Context, persona, topic string) (string, error)

	// Reply returns the AI's in-character answer to the user's latest turn.
	Reply(ctx context.Context, transcript []Message, persona, topic, userText string) (string, error)

	// ScoreTranscript judges the full exchange.
	ScoreTranscript(ctx context.Context, transcript []Message, topic, persona string) (Verdict, error)

	// AnalyzeTopic produces a structured topic analysis.
	AnalyzeTopic(ctx context.Context, topic string) (Analysis, error)
}

// clampScore bounds a judge score into [MinScore, MaxScore].
func clampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// deriveWinner recomputes the winner from scores when the judge's own call
// is missing or inconsistent.
func deriveWinner(userScore, aiScore int) Winner {
	switch {
	case userScore > aiScore:
		return WinnerUser
	case aiScore > userScore:
		return WinnerAI
	default:
		return WinnerDraw
	}
}
