// Package voice adapts session events to speech output. Synthesis and
// recognition are optional collaborators; the session machine is correct
// without them.
package voice

import "context"

// Synthesizer speaks text aloud.
type Synthesizer interface {
	Speak(ctx context.Context, text, voiceHint string) error
	// Cancel stops any utterance in progress.
	Cancel()
}

// Listener transcribes one utterance of user speech. One-shot, not
// continuous.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// NoopSynthesizer discards speech requests. Used when no audio backend is
// wired.
type NoopSynthesizer struct{}

// Speak implements Synthesizer.
func (NoopSynthesizer) Speak(context.Context, string, string) error { return nil }

// Cancel implements Synthesizer.
func (NoopSynthesizer) Cancel() {}

// NoopListener always reports an empty transcript.
type NoopListener struct{}

// Listen implements Listener.
func (NoopListener) Listen(context.Context) (string, error) { return "", nil }
