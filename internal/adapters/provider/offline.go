package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/agonhq/agon/internal/domain/model"
)

// Offline is a deterministic Partner used when no API credentials are
// configured. It cycles through canned rebuttals and scores transcripts by
// participation, so demos and tests behave the same on every run.
type Offline struct {
	mu      sync.Mutex
	cursor  map[string]int
	replies []string
}

var offlineReplies = []string{
	"That is a common argument, but it overlooks the second-order effects entirely.",
	"I would push back on that. The evidence you cite is far weaker than you suggest.",
	"An interesting point, yet it rests on an assumption I do not grant you.",
	"Even if I accepted that premise, the conclusion would not follow from it.",
	"History offers several counterexamples to exactly that line of reasoning.",
}

// NewOffline returns a ready-to-use offline partner.
func NewOffline() *Offline {
	return &Offline{
		cursor:  make(map[string]int),
		replies: offlineReplies,
	}
}

// OpenDebate implements Partner.
func (o *Offline) OpenDebate(_ context.Context, persona, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("%w: empty topic", ErrProvider)
	}

	return fmt.Sprintf("I am %s, and I will argue against the motion %q. State your first point.", persona, topic), nil
}

// Reply implements Partner. Replies cycle per topic so consecutive turns in
// one debate never repeat until the pool is exhausted.
func (o *Offline) Reply(_ context.Context, _ []Message, _, topic, userText string) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", fmt.Errorf("%w: empty argument", ErrProvider)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	idx := o.cursor[topic]
	o.cursor[topic] = idx + 1

	return o.replies[idx%len(o.replies)], nil
}

// ScoreTranscript implements Partner. Each user turn is worth slightly more
// than each AI turn, so an engaged user wins a long exchange.
func (o *Offline) ScoreTranscript(_ context.Context, transcript []Message, _, _ string) (Verdict, error) {
	if len(transcript) == 0 {
		return Verdict{}, fmt.Errorf("%w: empty transcript", ErrProvider)
	}

	var userScore, aiScore int
	for _, msg := range transcript {
		switch msg.Sender {
		case model.SenderUser:
			userScore += 12
		case model.SenderAI:
			aiScore += 10
		}
	}

	userScore = clampScore(userScore)
	aiScore = clampScore(aiScore)

	verdict := Verdict{
		UserScore:     userScore,
		AIScore:       aiScore,
		Justification: "Scored by participation: sustained engagement and turn count decided the outcome.",
		Winner:        deriveWinner(userScore, aiScore),
	}

	return verdict, nil
}

// AnalyzeTopic implements Partner.
func (o *Offline) AnalyzeTopic(_ context.Context, topic string) (Analysis, error) {
	if strings.TrimSpace(topic) == "" {
		return Analysis{}, fmt.Errorf("%w: empty topic", ErrProvider)
	}

	return Analysis{
		Topic:   topic,
		Summary: fmt.Sprintf("%q is a contested motion with defensible positions on both sides.", topic),
		Pros: []string{
			"Proponents point to clear practical benefits.",
			"The position aligns with widely shared values.",
		},
		Cons: []string{
			"Critics highlight unintended consequences.",
			"Implementation costs are frequently underestimated.",
		},
		SentimentScore: 50,
	}, nil
}
