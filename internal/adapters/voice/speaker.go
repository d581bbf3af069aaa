package voice

import (
	"context"

	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/session"
	"github.com/agonhq/agon/pkg/logger"
)

// Speaker consumes session events and speaks AI turns. It runs as a single
// background consumer so the session machine never blocks on audio.
type Speaker struct {
	bus   *session.Bus
	synth Synthesizer
	log   logger.Logger

	shutdown chan struct{}
	done     chan struct{}
}

// NewSpeaker creates a speaker over the given bus.
func NewSpeaker(bus *session.Bus, synth Synthesizer, options ...SpeakerOption) *Speaker {
	s := &Speaker{
		bus:      bus,
		synth:    synth,
		log:      logger.Named("voice"),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}

	return s
}

// SpeakerOption customizes a Speaker.
type SpeakerOption func(*Speaker)

// WithLogger overrides the speaker's logger.
func WithLogger(log logger.Logger) SpeakerOption {
	return func(s *Speaker) {
		if log != nil {
			s.log = log
		}
	}
}

// Run consumes events until the context is cancelled or the bus closes.
func (s *Speaker) Run(ctx context.Context) {
	defer close(s.done)

	events := s.bus.Subscribe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			s.handle(ctx, evt)
		}
	}
}

// Shutdown stops the consumer and waits for the loop to drain.
func (s *Speaker) Shutdown(ctx context.Context) error {
	close(s.shutdown)
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Speaker) handle(ctx context.Context, evt session.Event) {
	switch evt.Kind {
	case session.EventDebateStarted, session.EventTurnReceived:
		if evt.Message == nil || evt.Message.Sender != model.SenderAI {
			return
		}
		if err := s.synth.Speak(ctx, evt.Message.Content, evt.DebateID); err != nil {
			s.log.Warn(ctx, "speech synthesis failed", logger.Error(err))
		}
	case session.EventDebateScored, session.EventTick:
		// Nothing to voice.
	}
}
