// Package session drives one practice debate from persona selection through
// scoring to the persisted result. The machine owns all session-local state;
// everything durable goes through the snapshot store.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agonhq/agon/internal/adapters/provider"
	"github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/dedupe"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/domain/ranking"
	"github.com/agonhq/agon/internal/domain/scoring"
	"github.com/agonhq/agon/pkg/logger"
	"github.com/agonhq/agon/pkg/metrics"
)

// State is the session machine's current phase.
type State string

// Session states.
const (
	StateSelecting   State = "selecting"
	StateDebating    State = "debating"
	StateScoring     State = "scoring"
	StateResults     State = "results"
	StateLeaderboard State = "leaderboard"
)

// The apology appended in place of a reply when the AI partner fails.
const apologyMessage = "I apologize, I lost my train of thought there. Please continue with your argument."

// Feedback strings chosen by the final verdict.
const (
	feedbackWin  = "Outstanding work. Your arguments were sharp, well-supported, and carried the debate."
	feedbackLoss = "A hard-fought debate. Study your opponent's rebuttals and press your strongest points earlier next time."
)

// Machine runs a single user's debate session. All exported methods are safe
// for concurrent use; the single-flight guard serializes turn submissions.
type Machine struct {
	accountID string
	store     *repository.Store
	partner   provider.Partner
	scorer    scoring.TurnScorer
	deduper   dedupe.Deduper
	bus       *Bus
	log       logger.Logger

	mu           sync.Mutex
	state        State
	debate       model.Debate
	transcript   []model.DebateMessage
	userScore    int
	aiScore      int
	turnInFlight bool
	startedAt    time.Time
	frozen       time.Duration
	generation   uint64

	sessionCtx    context.Context
	sessionCancel context.CancelFunc
	tickerCancel  context.CancelFunc
}

func newMachine(accountID string, store *repository.Store, partner provider.Partner,
	scorer scoring.TurnScorer, deduper dedupe.Deduper, bus *Bus, log logger.Logger) *Machine {
	ctx, cancel := context.WithCancel(context.Background())

	return &Machine{
		accountID:     accountID,
		store:         store,
		partner:       partner,
		scorer:        scorer,
		deduper:       deduper,
		bus:           bus,
		log:           log,
		state:         StateSelecting,
		sessionCtx:    ctx,
		sessionCancel: cancel,
	}
}

// Snapshot is a read-only view of the machine for presentation.
type Snapshot struct {
	State      State                 `json:"state"`
	Debate     model.Debate          `json:"debate"`
	Transcript []model.DebateMessage `json:"transcript"`
	UserScore  int                   `json:"user_score"`
	AIScore    int                   `json:"ai_score"`
	Elapsed    int                   `json:"elapsed_seconds"`
}

// View returns the current snapshot.
func (m *Machine) View() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	transcript := make([]model.DebateMessage, len(m.transcript))
	copy(transcript, m.transcript)

	return Snapshot{
		State:      m.state,
		Debate:     m.debate,
		Transcript: transcript,
		UserScore:  m.userScore,
		AIScore:    m.aiScore,
		Elapsed:    int(m.elapsedLocked().Seconds()),
	}
}

// Start begins a debate: it creates the ongoing Debate record, appends the
// AI's opening message, and moves to debating with a live elapsed timer.
func (m *Machine) Start(ctx context.Context, topic, persona string) (model.Debate, model.DebateMessage, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return model.Debate{}, model.DebateMessage{}, fmt.Errorf("%w: empty topic", ErrValidation)
	}
	if persona == "" {
		persona = "The Pragmatist"
	}

	m.mu.Lock()
	if m.state != StateSelecting {
		m.mu.Unlock()

		return model.Debate{}, model.DebateMessage{}, fmt.Errorf("%w: start from %s", ErrInvalidTransition, m.state)
	}
	gen := m.generation
	callCtx := m.callContext(ctx)
	m.mu.Unlock()

	// The partner speaks first; nothing is persisted until it does.
	opening, err := m.partner.OpenDebate(callCtx, persona, topic)
	if err != nil {
		return model.Debate{}, model.DebateMessage{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen || m.state != StateSelecting {
		return model.Debate{}, model.DebateMessage{}, ErrStaleTurn
	}

	now := time.Now().UTC()
	debate := model.Debate{
		ID:        model.NewID(),
		AccountID: m.accountID,
		Topic:     topic,
		Persona:   persona,
		Status:    model.StatusOngoing,
		CreatedAt: now,
	}
	openingMsg := model.DebateMessage{
		ID:        model.NewID(),
		DebateID:  debate.ID,
		Sender:    model.SenderAI,
		Content:   opening,
		Timestamp: now,
	}

	debates, err := m.store.Debates(ctx)
	if err != nil {
		return model.Debate{}, model.DebateMessage{}, fmt.Errorf("load debates: %w", err)
	}
	if err := m.store.ReplaceDebates(ctx, append(debates, debate)); err != nil {
		return model.Debate{}, model.DebateMessage{}, fmt.Errorf("save debates: %w", err)
	}
	if err := m.appendMessagesLocked(ctx, openingMsg); err != nil {
		return model.Debate{}, model.DebateMessage{}, err
	}

	m.debate = debate
	m.transcript = []model.DebateMessage{openingMsg}
	m.userScore = 0
	m.aiScore = 0
	m.startedAt = now
	m.frozen = 0
	m.state = StateDebating
	m.startTickerLocked()

	metrics.RecordDebateStarted()
	m.log.Info(ctx, "debate started",
		logger.String("debate_id", debate.ID),
		logger.String("topic", topic),
		logger.String("persona", persona))

	m.publish(Event{Kind: EventDebateStarted, AccountID: m.accountID, DebateID: debate.ID, Message: &openingMsg, At: now})

	return debate, openingMsg, nil
}

// SubmitTurn appends the user's argument and asks the partner for a reply.
// The user's message and its score impact survive a partner failure; the
// reply is then replaced by a zero-impact apology and the state stays in
// debating.
func (m *Machine) SubmitTurn(ctx context.Context, turnID, text string) (model.DebateMessage, model.DebateMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.DebateMessage{}, model.DebateMessage{}, fmt.Errorf("%w: empty argument", ErrValidation)
	}
	if turnID != "" && m.deduper.SeenAndRecord(ctx, turnID) {
		return model.DebateMessage{}, model.DebateMessage{}, fmt.Errorf("%w: %s", ErrDuplicateTurn, turnID)
	}

	m.mu.Lock()
	if m.state != StateDebating {
		m.mu.Unlock()
		m.unrecord(ctx, turnID)

		return model.DebateMessage{}, model.DebateMessage{}, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, m.state)
	}
	if m.turnInFlight {
		m.mu.Unlock()
		m.unrecord(ctx, turnID)

		return model.DebateMessage{}, model.DebateMessage{}, ErrTurnInFlight
	}

	gen := m.generation
	impact := m.scorer.Impact(text)
	userMsg := model.DebateMessage{
		ID:          model.NewID(),
		DebateID:    m.debate.ID,
		Sender:      model.SenderUser,
		Content:     text,
		ScoreImpact: impact,
		Timestamp:   time.Now().UTC(),
	}
	if err := m.appendMessagesLocked(ctx, userMsg); err != nil {
		m.mu.Unlock()
		m.unrecord(ctx, turnID)

		return model.DebateMessage{}, model.DebateMessage{}, err
	}
	m.transcript = append(m.transcript, userMsg)
	m.userScore += impact
	m.turnInFlight = true
	transcript := m.providerTranscriptLocked()
	callCtx := m.callContext(ctx)
	topic, persona := m.debate.Topic, m.debate.Persona
	m.mu.Unlock()

	metrics.RecordTurnSubmitted()

	// The lock is released while the partner thinks so View and Restart
	// stay responsive. The single-flight flag keeps submissions out.
	replyText, replyErr := m.partner.Reply(callCtx, transcript, persona, topic, text)

	m.mu.Lock()
	defer func() {
		m.turnInFlight = false
		m.mu.Unlock()
	}()

	if m.generation != gen {
		// Restarted while the reply was pending. The reply belongs to a
		// dead session and is dropped.
		return userMsg, model.DebateMessage{}, ErrStaleTurn
	}

	aiMsg := model.DebateMessage{
		ID:        model.NewID(),
		DebateID:  m.debate.ID,
		Sender:    model.SenderAI,
		Timestamp: time.Now().UTC(),
	}
	if replyErr != nil {
		m.log.Warn(ctx, "partner reply failed, absorbing", logger.Error(replyErr))
		aiMsg.Content = apologyMessage
	} else {
		aiMsg.Content = replyText
		aiMsg.ScoreImpact = m.scorer.Impact(replyText)
	}

	if err := m.appendMessagesLocked(ctx, aiMsg); err != nil {
		return userMsg, model.DebateMessage{}, err
	}
	m.transcript = append(m.transcript, aiMsg)
	m.aiScore += aiMsg.ScoreImpact

	m.publish(Event{Kind: EventTurnReceived, AccountID: m.accountID, DebateID: m.debate.ID, Message: &aiMsg, At: aiMsg.Timestamp})

	return userMsg, aiMsg, nil
}

// End freezes the timer, has the partner judge the transcript, persists the
// completed debate, and folds the verdict into the user's profile. A judging
// failure returns the machine to debating with nothing persisted; a store
// failure keeps it in scoring so End can be retried.
func (m *Machine) End(ctx context.Context) (model.Debate, provider.Verdict, error) {
	m.mu.Lock()
	// A rejected End must leave the machine exactly where it was, so the
	// in-flight check comes before any transition.
	if m.turnInFlight {
		m.mu.Unlock()

		return model.Debate{}, provider.Verdict{}, ErrTurnInFlight
	}
	switch m.state {
	case StateDebating:
		m.frozen = m.elapsedLocked()
		m.stopTickerLocked()
		m.state = StateScoring
	case StateScoring:
		// Retry after a previous failure; the frozen duration stands.
	default:
		m.mu.Unlock()

		return model.Debate{}, provider.Verdict{}, fmt.Errorf("%w: end from %s", ErrInvalidTransition, m.state)
	}

	gen := m.generation
	transcript := m.providerTranscriptLocked()
	topic, persona := m.debate.Topic, m.debate.Persona
	callCtx := m.callContext(ctx)
	m.mu.Unlock()

	verdict, err := m.partner.ScoreTranscript(callCtx, transcript, topic, persona)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		return model.Debate{}, provider.Verdict{}, ErrStaleTurn
	}
	if err != nil {
		// Judging failed; the debate resumes where it left off.
		m.state = StateDebating
		m.frozen = 0
		m.startTickerLocked()

		return model.Debate{}, provider.Verdict{}, err
	}

	debate, perr := m.completeLocked(ctx, verdict)
	if perr != nil {
		// Persisting failed. Stay in scoring so the caller may retry End
		// without re-judging side effects beyond another partner call.
		return model.Debate{}, provider.Verdict{}, perr
	}

	m.state = StateResults
	metrics.RecordDebateCompleted()
	metrics.RecordVerdict(string(verdict.Winner))
	m.log.Info(ctx, "debate completed",
		logger.String("debate_id", debate.ID),
		logger.Int("user_score", verdict.UserScore),
		logger.Int("ai_score", verdict.AIScore),
		logger.String("winner", string(verdict.Winner)))

	m.publish(Event{Kind: EventDebateScored, AccountID: m.accountID, DebateID: debate.ID, Verdict: &verdict, At: time.Now().UTC()})

	return debate, verdict, nil
}

// Restart abandons the current run from any state and returns to selection.
// Persisted debates and profiles are untouched; any in-flight partner call
// is cancelled and its result dropped.
func (m *Machine) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessionCancel()
	m.sessionCtx, m.sessionCancel = context.WithCancel(context.Background())
	m.stopTickerLocked()

	m.generation++
	m.state = StateSelecting
	m.debate = model.Debate{}
	m.transcript = nil
	m.userScore = 0
	m.aiScore = 0
	m.turnInFlight = false
	m.startedAt = time.Time{}
	m.frozen = 0

	m.log.Debug(context.Background(), "session restarted", logger.String("account_id", m.accountID))
}

// ViewLeaderboard moves from results to the leaderboard view and returns the
// current standings.
func (m *Machine) ViewLeaderboard(ctx context.Context, limit int) ([]ranking.Entry, error) {
	m.mu.Lock()
	if m.state != StateResults && m.state != StateLeaderboard {
		m.mu.Unlock()

		return nil, fmt.Errorf("%w: leaderboard from %s", ErrInvalidTransition, m.state)
	}
	m.state = StateLeaderboard
	m.mu.Unlock()

	profiles, err := m.store.Profiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	return ranking.Leaderboard(profiles, limit), nil
}

// Back leaves the leaderboard view and returns to selection.
func (m *Machine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateLeaderboard {
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, m.state)
	}
	m.state = StateSelecting
	m.debate = model.Debate{}
	m.transcript = nil
	m.userScore = 0
	m.aiScore = 0

	return nil
}

// Close tears the machine down.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopTickerLocked()
	m.sessionCancel()
}

// completeLocked persists the finished debate and folds the verdict into the
// owner's profile. The judge's scores are the source of truth for what is
// stored; per-turn impacts only drove the live display.
func (m *Machine) completeLocked(ctx context.Context, verdict provider.Verdict) (model.Debate, error) {
	completedAt := time.Now().UTC()
	debate := m.debate
	debate.Status = model.StatusCompleted
	debate.UserScore = verdict.UserScore
	debate.AIScore = verdict.AIScore
	debate.DurationSeconds = int(m.frozen.Seconds())
	debate.CompletedAt = &completedAt
	if verdict.UserScore > verdict.AIScore {
		debate.Feedback = feedbackWin
	} else {
		debate.Feedback = feedbackLoss
	}
	if verdict.Justification != "" {
		debate.Feedback = debate.Feedback + " " + verdict.Justification
	}

	debates, err := m.store.Debates(ctx)
	if err != nil {
		return model.Debate{}, fmt.Errorf("load debates: %w", err)
	}
	for i := range debates {
		if debates[i].ID == debate.ID {
			debates[i] = debate

			break
		}
	}
	if err := m.store.ReplaceDebates(ctx, debates); err != nil {
		return model.Debate{}, fmt.Errorf("save debates: %w", err)
	}

	profiles, err := m.store.Profiles(ctx)
	if err != nil {
		return model.Debate{}, fmt.Errorf("load profiles: %w", err)
	}
	for i := range profiles {
		if profiles[i].ID != m.accountID {
			continue
		}
		profiles[i].TotalDebates++
		if verdict.UserScore > verdict.AIScore {
			profiles[i].Wins++
		}
		profiles[i].TotalScore += verdict.UserScore
		profiles[i].Rank = ranking.LabelFor(profiles[i].TotalScore)
		profiles[i].UpdatedAt = completedAt

		break
	}
	if err := m.store.ReplaceProfiles(ctx, profiles); err != nil {
		return model.Debate{}, fmt.Errorf("save profiles: %w", err)
	}

	m.debate = debate

	return debate, nil
}

// appendMessagesLocked persists new transcript entries in order.
func (m *Machine) appendMessagesLocked(ctx context.Context, msgs ...model.DebateMessage) error {
	stored, err := m.store.Messages(ctx)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	if err := m.store.ReplaceMessages(ctx, append(stored, msgs...)); err != nil {
		return fmt.Errorf("save messages: %w", err)
	}

	return nil
}

func (m *Machine) providerTranscriptLocked() []provider.Message {
	out := make([]provider.Message, 0, len(m.transcript))
	for _, msg := range m.transcript {
		out = append(out, provider.Message{Sender: msg.Sender, Content: msg.Content})
	}

	return out
}

// callContext ties a partner call to both the request and the session, so a
// restart cancels whatever is in flight.
func (m *Machine) callContext(ctx context.Context) context.Context {
	merged, cancel := context.WithCancel(ctx)
	session := m.sessionCtx
	go func() {
		select {
		case <-session.Done():
			cancel()
		case <-merged.Done():
		}
	}()

	return merged
}

func (m *Machine) elapsedLocked() time.Duration {
	if m.frozen > 0 {
		return m.frozen
	}
	if m.startedAt.IsZero() {
		return 0
	}

	return time.Since(m.startedAt)
}

func (m *Machine) startTickerLocked() {
	m.stopTickerLocked()
	ctx, cancel := context.WithCancel(context.Background())
	m.tickerCancel = cancel
	started := m.startedAt
	accountID, debateID := m.accountID, m.debate.ID

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				m.publish(Event{
					Kind:      EventTick,
					AccountID: accountID,
					DebateID:  debateID,
					Elapsed:   now.Sub(started),
					At:        now.UTC(),
				})
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Machine) stopTickerLocked() {
	if m.tickerCancel != nil {
		m.tickerCancel()
		m.tickerCancel = nil
	}
}

func (m *Machine) publish(e Event) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(context.Background(), e)
}

func (m *Machine) unrecord(ctx context.Context, turnID string) {
	if turnID != "" {
		m.deduper.Unrecord(ctx, turnID)
	}
}
