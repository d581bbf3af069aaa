package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/pkg/logger"
	"github.com/agonhq/agon/pkg/metrics"
)

const defaultAnthropicModel = anthropic.ModelClaudeSonnet4_0

// Anthropic is a Partner backed by the Claude Messages API. The client picks
// up credentials from the environment.
type Anthropic struct {
	client anthropic.Client
	model  anthropic.Model
	log    logger.Logger
}

// NewAnthropic builds an Anthropic partner.
func NewAnthropic(options ...AnthropicOption) *Anthropic {
	a := &Anthropic{
		client: anthropic.NewClient(),
		model:  defaultAnthropicModel,
		log:    logger.Named("provider"),
	}
	for _, opt := range options {
		opt(a)
	}

	return a
}

// AnthropicOption customizes an Anthropic partner.
type AnthropicOption func(*Anthropic)

// WithModel overrides the model identifier.
func WithModel(model string) AnthropicOption {
	return func(a *Anthropic) {
		if model != "" {
			a.model = anthropic.Model(model)
		}
	}
}

// WithClient substitutes a preconfigured API client.
func WithClient(client anthropic.Client) AnthropicOption {
	return func(a *Anthropic) {
		a.client = client
	}
}

// OpenDebate implements Partner.
func (a *Anthropic) OpenDebate(ctx context.Context, persona, topic string) (string, error) {
	prompt := fmt.Sprintf(`You are %s, an AI debate opponent. The motion under debate is: %q.

You argue AGAINST the motion. Open the debate in character with a short,
provocative statement (2-3 sentences) and invite the user to make their first
point. Output only the opening line, no preamble.`, persona, topic)

	text, err := a.complete(ctx, "open", prompt)
	if err != nil {
		return "", err
	}

	return text, nil
}

// Reply implements Partner.
func (a *Anthropic) Reply(ctx context.Context, transcript []Message, persona, topic, userText string) (string, error) {
	var sb strings.Builder
	for _, msg := range transcript {
		role := "Opponent"
		if msg.Sender == model.SenderUser {
			role = "User"
		}
		fmt.Fprintf(&sb, "%s: %s\n", role, msg.Content)
	}

	prompt := fmt.Sprintf(`You are %s, an AI debate opponent arguing AGAINST the motion %q.

Transcript so far:
%s
The user just argued: %q

Rebut the user's latest argument in character. Be sharp but fair, 2-4
sentences. Output only your rebuttal.`, persona, topic, sb.String(), userText)

	return a.complete(ctx, "reply", prompt)
}

// ScoreTranscript implements Partner. The judge returns a strict JSON
// verdict; scores are clamped and the winner re-derived when inconsistent.
func (a *Anthropic) ScoreTranscript(ctx context.Context, transcript []Message, topic, persona string) (Verdict, error) {
	var sb strings.Builder
	for _, msg := range transcript {
		role := "AI"
		if msg.Sender == model.SenderUser {
			role = "USER"
		}
		fmt.Fprintf(&sb, "%s: %s\n", role, msg.Content)
	}

	prompt := fmt.Sprintf(`You are an impartial debate judge. The motion was %q. The AI opponent played %s.

Transcript:
%s
Judge the debate on argument quality, rebuttal strength, and persuasiveness.

Output ONLY a valid JSON object matching this exact schema:
{
  "userScore": <0-100>,
  "aiScore": <0-100>,
  "justification": "<2-3 sentence explanation>",
  "winner": "<user|ai|draw>"
}

No markdown, no explanations outside the JSON.`, topic, persona, sb.String())

	text, err := a.complete(ctx, "score", prompt)
	if err != nil {
		return Verdict{}, err
	}

	jsonStr, err := extractJSON(text)
	if err != nil {
		metrics.RecordProviderError("score")
		return Verdict{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(jsonStr), &verdict); err != nil {
		metrics.RecordProviderError("score")
		return Verdict{}, fmt.Errorf("%w: decode verdict: %v", ErrProvider, err)
	}

	verdict.UserScore = clampScore(verdict.UserScore)
	verdict.AIScore = clampScore(verdict.AIScore)
	switch verdict.Winner {
	case WinnerUser, WinnerAI, WinnerDraw:
	default:
		verdict.Winner = deriveWinner(verdict.UserScore, verdict.AIScore)
	}

	return verdict, nil
}

// AnalyzeTopic implements Partner.
func (a *Anthropic) AnalyzeTopic(ctx context.Context, topic string) (Analysis, error) {
	prompt := fmt.Sprintf(`Analyze the debate motion %q.

Output ONLY a valid JSON object matching this exact schema:
{
  "topic": "<the motion>",
  "summary": "<2-3 sentence neutral summary of the controversy>",
  "pros": ["<argument for>", "..."],
  "cons": ["<argument against>", "..."],
  "sentimentScore": <0-100, where 50 is perfectly balanced>
}

Provide 2-4 pros and 2-4 cons. No markdown, no explanations outside the
JSON.`, topic)

	text, err := a.complete(ctx, "analyze", prompt)
	if err != nil {
		return Analysis{}, err
	}

	jsonStr, err := extractJSON(text)
	if err != nil {
		metrics.RecordProviderError("analyze")
		return Analysis{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(jsonStr), &analysis); err != nil {
		metrics.RecordProviderError("analyze")
		return Analysis{}, fmt.Errorf("%w: decode analysis: %v", ErrProvider, err)
	}
	if analysis.Topic == "" {
		analysis.Topic = topic
	}

	return analysis, nil
}

// complete sends one user message and returns the text of the first content
// block. All failures are wrapped with ErrProvider.
func (a *Anthropic) complete(ctx context.Context, operation, prompt string) (string, error) {
	started := time.Now()
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	metrics.RecordProviderLatency(float64(time.Since(started).Milliseconds()))
	if err != nil {
		metrics.RecordProviderError(operation)
		a.log.Error(ctx, "partner call failed", logger.String("operation", operation), logger.Error(err))

		return "", fmt.Errorf("%w: %s: %v", ErrProvider, operation, err)
	}
	if len(msg.Content) == 0 {
		metrics.RecordProviderError(operation)

		return "", fmt.Errorf("%w: %s: empty response", ErrProvider, operation)
	}

	return strings.TrimSpace(msg.Content[0].Text), nil
}

// extractJSON finds the first complete JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}

	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", fmt.Errorf("response does not contain valid JSON")
	}

	return candidate, nil
}
