package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agonhq/agon/internal/adapters/provider"
	"github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/domain/ranking"
	"github.com/agonhq/agon/internal/session"
	"github.com/agonhq/agon/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakePartner is a scripted AI partner.
type fakePartner struct {
	replyErr error
	scoreErr error
	verdict  provider.Verdict

	// When set, Reply signals replyEntered and blocks until replyGate closes.
	replyGate    chan struct{}
	replyEntered chan struct{}
}

func (f *fakePartner) OpenDebate(_ context.Context, persona, topic string) (string, error) {
	return "As " + persona + " I oppose: " + topic, nil
}

func (f *fakePartner) Reply(_ context.Context, _ []provider.Message, _, _, userText string) (string, error) {
	if f.replyGate != nil {
		if f.replyEntered != nil {
			f.replyEntered <- struct{}{}
		}
		<-f.replyGate
	}
	if f.replyErr != nil {
		return "", f.replyErr
	}

	return "I disagree with: " + userText, nil
}

func (f *fakePartner) ScoreTranscript(_ context.Context, _ []provider.Message, _, _ string) (provider.Verdict, error) {
	if f.scoreErr != nil {
		return provider.Verdict{}, f.scoreErr
	}

	return f.verdict, nil
}

func (f *fakePartner) AnalyzeTopic(_ context.Context, topic string) (provider.Analysis, error) {
	return provider.Analysis{Topic: topic}, nil
}

// fixedScorer gives every non-empty message the same impact.
type fixedScorer int

func (s fixedScorer) Impact(content string) int {
	if content == "" {
		return 0
	}

	return int(s)
}

// flakyMedium fails writes on demand.
type flakyMedium struct {
	repository.Medium
	failSet bool
}

func (m *flakyMedium) Set(ctx context.Context, key, value string) error {
	if m.failSet {
		return errors.New("disk full")
	}

	return m.Medium.Set(ctx, key, value)
}

type fixture struct {
	store    *repository.Store
	medium   *flakyMedium
	partner  *fakePartner
	registry *session.Registry
	machine  *session.Machine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fm, err := repository.NewFileMedium(t.TempDir())
	So(err, ShouldBeNil)
	medium := &flakyMedium{Medium: fm}
	store := repository.NewStore(medium)

	now := time.Now().UTC()
	profile := model.Profile{
		ID:        "acct-1",
		Username:  "ada",
		Rank:      ranking.LabelNovice,
		CreatedAt: now,
		UpdatedAt: now,
	}
	So(store.ReplaceProfiles(context.Background(), []model.Profile{profile}), ShouldBeNil)

	partner := &fakePartner{verdict: provider.Verdict{
		UserScore:     80,
		AIScore:       40,
		Justification: "Stronger rebuttals throughout.",
		Winner:        provider.WinnerUser,
	}}
	registry := session.NewRegistry(store, partner, session.WithScorer(fixedScorer(10)))
	t.Cleanup(registry.Close)

	return &fixture{
		store:    store,
		medium:   medium,
		partner:  partner,
		registry: registry,
		machine:  registry.Machine("acct-1"),
	}
}

func TestStart(t *testing.T) {
	Convey("Given a fresh session", t, func() {
		f := newFixture(t)
		ctx := context.Background()

		Convey("When starting a debate", func() {
			debate, opening, err := f.machine.Start(ctx, "school uniforms", "Aggressive")

			Convey("Then the debate is ongoing with an AI opening message", func() {
				So(err, ShouldBeNil)
				So(debate.Status, ShouldEqual, model.StatusOngoing)
				So(debate.Topic, ShouldEqual, "school uniforms")
				So(opening.Sender, ShouldEqual, model.SenderAI)
				So(opening.ScoreImpact, ShouldEqual, 0)

				view := f.machine.View()
				So(view.State, ShouldEqual, session.StateDebating)
				So(view.Transcript, ShouldHaveLength, 1)

				debates, err := f.store.Debates(ctx)
				So(err, ShouldBeNil)
				So(debates, ShouldHaveLength, 1)
				So(debates[0].AccountID, ShouldEqual, "acct-1")
			})
		})

		Convey("When the topic is blank", func() {
			_, _, err := f.machine.Start(ctx, "   ", "Aggressive")

			Convey("Then nothing is created", func() {
				So(errors.Is(err, session.ErrValidation), ShouldBeTrue)
				So(f.machine.View().State, ShouldEqual, session.StateSelecting)

				debates, derr := f.store.Debates(ctx)
				So(derr, ShouldBeNil)
				So(debates, ShouldBeEmpty)
			})
		})

		Convey("When starting twice", func() {
			_, _, err := f.machine.Start(ctx, "topic", "Aggressive")
			So(err, ShouldBeNil)
			_, _, err = f.machine.Start(ctx, "another", "Aggressive")

			So(errors.Is(err, session.ErrInvalidTransition), ShouldBeTrue)
		})
	})
}

func TestSubmitTurn(t *testing.T) {
	Convey("Given a debate in progress", t, func() {
		f := newFixture(t)
		ctx := context.Background()

		_, _, err := f.machine.Start(ctx, "school uniforms", "Aggressive")
		So(err, ShouldBeNil)

		Convey("When submitting a turn", func() {
			userMsg, aiMsg, err := f.machine.SubmitTurn(ctx, "turn-1", "uniforms level the playing field")

			Convey("Then both sides gain a message and score", func() {
				So(err, ShouldBeNil)
				So(userMsg.Sender, ShouldEqual, model.SenderUser)
				So(userMsg.ScoreImpact, ShouldEqual, 10)
				So(aiMsg.Sender, ShouldEqual, model.SenderAI)
				So(aiMsg.ScoreImpact, ShouldEqual, 10)

				view := f.machine.View()
				So(view.State, ShouldEqual, session.StateDebating)
				So(view.UserScore, ShouldEqual, 10)
				So(view.AIScore, ShouldEqual, 10)
				So(view.Transcript, ShouldHaveLength, 3)

				messages, err := f.store.Messages(ctx)
				So(err, ShouldBeNil)
				So(messages, ShouldHaveLength, 3)
				So(messages[1].Sender, ShouldEqual, model.SenderUser)
				So(messages[2].Sender, ShouldEqual, model.SenderAI)
			})
		})

		Convey("When reusing a turn id", func() {
			_, _, err := f.machine.SubmitTurn(ctx, "turn-1", "first")
			So(err, ShouldBeNil)
			_, _, err = f.machine.SubmitTurn(ctx, "turn-1", "again")

			So(errors.Is(err, session.ErrDuplicateTurn), ShouldBeTrue)
		})

		Convey("When the argument is blank", func() {
			_, _, err := f.machine.SubmitTurn(ctx, "turn-2", "  ")

			So(errors.Is(err, session.ErrValidation), ShouldBeTrue)
		})

		Convey("When the partner fails to reply", func() {
			f.partner.replyErr = provider.ErrProvider
			userMsg, aiMsg, err := f.machine.SubmitTurn(ctx, "turn-3", "my point stands")

			Convey("Then the user message survives and an apology is absorbed", func() {
				So(err, ShouldBeNil)
				So(userMsg.ScoreImpact, ShouldEqual, 10)
				So(aiMsg.Sender, ShouldEqual, model.SenderAI)
				So(aiMsg.ScoreImpact, ShouldEqual, 0)
				So(aiMsg.Content, ShouldContainSubstring, "apologize")

				view := f.machine.View()
				So(view.State, ShouldEqual, session.StateDebating)
				So(view.UserScore, ShouldEqual, 10)
				So(view.AIScore, ShouldEqual, 0)
			})

			Convey("And the rejected turn id can be retried later", func() {
				So(err, ShouldBeNil)
				f.partner.replyErr = nil
				_, _, err := f.machine.SubmitTurn(ctx, "turn-4", "continuing")
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestEnd(t *testing.T) {
	Convey("Given a debate with one exchanged turn", t, func() {
		f := newFixture(t)
		ctx := context.Background()

		_, _, err := f.machine.Start(ctx, "school uniforms", "Aggressive")
		So(err, ShouldBeNil)
		_, _, err = f.machine.SubmitTurn(ctx, "turn-1", "uniforms build community")
		So(err, ShouldBeNil)

		Convey("When ending and the judge scores 80 to 40", func() {
			debate, verdict, err := f.machine.End(ctx)

			Convey("Then the debate completes and the profile absorbs the win", func() {
				So(err, ShouldBeNil)
				So(verdict.Winner, ShouldEqual, provider.WinnerUser)
				So(debate.Status, ShouldEqual, model.StatusCompleted)
				So(debate.UserScore, ShouldEqual, 80)
				So(debate.AIScore, ShouldEqual, 40)
				So(debate.Feedback, ShouldNotBeEmpty)
				So(debate.CompletedAt, ShouldNotBeNil)
				So(f.machine.View().State, ShouldEqual, session.StateResults)

				profiles, perr := f.store.Profiles(ctx)
				So(perr, ShouldBeNil)
				So(profiles[0].TotalDebates, ShouldEqual, 1)
				So(profiles[0].Wins, ShouldEqual, 1)
				So(profiles[0].TotalScore, ShouldEqual, 80)
				So(profiles[0].Rank, ShouldEqual, ranking.LabelApprentice)
			})
		})

		Convey("When the judge fails", func() {
			f.partner.scoreErr = provider.ErrProvider
			_, _, err := f.machine.End(ctx)

			Convey("Then nothing is persisted and the debate resumes", func() {
				So(errors.Is(err, provider.ErrProvider), ShouldBeTrue)
				So(f.machine.View().State, ShouldEqual, session.StateDebating)

				debates, derr := f.store.Debates(ctx)
				So(derr, ShouldBeNil)
				So(debates[0].Status, ShouldEqual, model.StatusOngoing)

				profiles, perr := f.store.Profiles(ctx)
				So(perr, ShouldBeNil)
				So(profiles[0].TotalDebates, ShouldEqual, 0)
				So(profiles[0].TotalScore, ShouldEqual, 0)
			})

			Convey("And ending again after the judge recovers succeeds", func() {
				So(err, ShouldNotBeNil)
				f.partner.scoreErr = nil
				debate, _, err := f.machine.End(ctx)
				So(err, ShouldBeNil)
				So(debate.Status, ShouldEqual, model.StatusCompleted)
			})
		})

		Convey("When the store fails during completion", func() {
			f.medium.failSet = true
			_, _, err := f.machine.End(ctx)

			Convey("Then the machine stays in scoring for a retry", func() {
				So(err, ShouldNotBeNil)
				So(f.machine.View().State, ShouldEqual, session.StateScoring)
			})

			Convey("And the retry succeeds once the store recovers", func() {
				So(err, ShouldNotBeNil)
				f.medium.failSet = false
				debate, _, err := f.machine.End(ctx)
				So(err, ShouldBeNil)
				So(debate.Status, ShouldEqual, model.StatusCompleted)

				profiles, perr := f.store.Profiles(ctx)
				So(perr, ShouldBeNil)
				So(profiles[0].TotalDebates, ShouldEqual, 1)
			})
		})

		Convey("When ending from selection", func() {
			f.machine.Restart()
			_, _, err := f.machine.End(ctx)

			So(errors.Is(err, session.ErrInvalidTransition), ShouldBeTrue)
		})
	})
}

func TestInFlightTurn(t *testing.T) {
	Convey("Given a turn whose reply is still pending", t, func() {
		f := newFixture(t)
		ctx := context.Background()

		_, _, err := f.machine.Start(ctx, "school uniforms", "Aggressive")
		So(err, ShouldBeNil)

		f.partner.replyGate = make(chan struct{})
		f.partner.replyEntered = make(chan struct{}, 1)

		done := make(chan error, 1)
		go func() {
			_, _, serr := f.machine.SubmitTurn(ctx, "turn-slow", "a slow argument")
			done <- serr
		}()
		<-f.partner.replyEntered

		Convey("When ending mid-turn", func() {
			_, _, err := f.machine.End(ctx)

			Convey("Then the call is rejected and the debate is untouched", func() {
				So(errors.Is(err, session.ErrTurnInFlight), ShouldBeTrue)
				So(f.machine.View().State, ShouldEqual, session.StateDebating)
			})

			close(f.partner.replyGate)
			So(<-done, ShouldBeNil)

			Convey("And the debate can still be played out", func() {
				_, _, err := f.machine.SubmitTurn(ctx, "turn-next", "another point")
				So(err, ShouldBeNil)
				_, _, err = f.machine.End(ctx)
				So(err, ShouldBeNil)
				So(f.machine.View().State, ShouldEqual, session.StateResults)
			})
		})

		Convey("When restarting mid-turn", func() {
			f.machine.Restart()
			close(f.partner.replyGate)
			err := <-done

			Convey("Then the stale reply is dropped", func() {
				So(errors.Is(err, session.ErrStaleTurn), ShouldBeTrue)

				view := f.machine.View()
				So(view.State, ShouldEqual, session.StateSelecting)
				So(view.Transcript, ShouldBeEmpty)

				messages, merr := f.store.Messages(ctx)
				So(merr, ShouldBeNil)
				So(messages, ShouldHaveLength, 2)
				So(messages[len(messages)-1].Sender, ShouldEqual, model.SenderUser)
			})
		})
	})
}

func TestAggregatesAcrossDebates(t *testing.T) {
	Convey("Given several completed debates", t, func() {
		f := newFixture(t)
		ctx := context.Background()

		verdicts := []provider.Verdict{
			{UserScore: 80, AIScore: 40, Winner: provider.WinnerUser},
			{UserScore: 30, AIScore: 70, Winner: provider.WinnerAI},
			{UserScore: 55, AIScore: 55, Winner: provider.WinnerDraw},
		}

		for _, v := range verdicts {
			f.partner.verdict = v
			_, _, err := f.machine.Start(ctx, "topic", "Aggressive")
			So(err, ShouldBeNil)
			_, _, err = f.machine.SubmitTurn(ctx, "", "point")
			So(err, ShouldBeNil)
			_, _, err = f.machine.End(ctx)
			So(err, ShouldBeNil)
			f.machine.Restart()
		}

		Convey("Then the profile matches the sum of verdicts", func() {
			profiles, err := f.store.Profiles(ctx)
			So(err, ShouldBeNil)
			So(profiles[0].TotalDebates, ShouldEqual, 3)
			So(profiles[0].Wins, ShouldEqual, 1)
			So(profiles[0].TotalScore, ShouldEqual, 165)
			So(profiles[0].Rank, ShouldEqual, ranking.LabelAdept)

			debates, derr := f.store.Debates(ctx)
			So(derr, ShouldBeNil)
			completed := 0
			for _, d := range debates {
				if d.Completed() {
					completed++
				}
			}
			So(completed, ShouldEqual, 3)
		})
	})
}

func TestRestartAndLeaderboard(t *testing.T) {
	Convey("Given a debate that reached results", t, func() {
		f := newFixture(t)
		ctx := context.Background()

		_, _, err := f.machine.Start(ctx, "topic", "Aggressive")
		So(err, ShouldBeNil)
		_, _, err = f.machine.SubmitTurn(ctx, "", "point")
		So(err, ShouldBeNil)
		_, _, err = f.machine.End(ctx)
		So(err, ShouldBeNil)

		Convey("When viewing the leaderboard", func() {
			entries, err := f.machine.ViewLeaderboard(ctx, 10)

			Convey("Then standings come back and the state moved", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Username, ShouldEqual, "ada")
				So(f.machine.View().State, ShouldEqual, session.StateLeaderboard)

				So(f.machine.Back(), ShouldBeNil)
				So(f.machine.View().State, ShouldEqual, session.StateSelecting)
			})
		})

		Convey("When restarting", func() {
			f.machine.Restart()

			Convey("Then session state clears but history stays", func() {
				view := f.machine.View()
				So(view.State, ShouldEqual, session.StateSelecting)
				So(view.Transcript, ShouldBeEmpty)
				So(view.UserScore, ShouldEqual, 0)

				debates, derr := f.store.Debates(ctx)
				So(derr, ShouldBeNil)
				So(debates, ShouldHaveLength, 1)
				So(debates[0].Status, ShouldEqual, model.StatusCompleted)
			})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry", t, func() {
		f := newFixture(t)

		Convey("When asking for the same account twice", func() {
			a := f.registry.Machine("acct-1")
			b := f.registry.Machine("acct-1")

			Convey("Then the machine is shared", func() {
				So(a, ShouldEqual, b)
				So(f.registry.Size(), ShouldEqual, 1)
			})
		})

		Convey("When dropping an account", func() {
			f.registry.Machine("acct-2")
			So(f.registry.Size(), ShouldEqual, 2)
			f.registry.Drop("acct-2")
			So(f.registry.Size(), ShouldEqual, 1)
		})
	})
}
