package provider_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agonhq/agon/internal/adapters/provider"
	"github.com/agonhq/agon/internal/domain/model"
)

func TestOfflineOpenDebate(t *testing.T) {
	Convey("Given an offline partner", t, func() {
		p := provider.NewOffline()
		ctx := context.Background()

		Convey("When opening a debate", func() {
			line, err := p.OpenDebate(ctx, "The Skeptic", "school uniforms should be mandatory")

			Convey("Then the opening names the persona and the motion", func() {
				So(err, ShouldBeNil)
				So(line, ShouldContainSubstring, "The Skeptic")
				So(line, ShouldContainSubstring, "school uniforms should be mandatory")
			})
		})

		Convey("When the topic is blank", func() {
			_, err := p.OpenDebate(ctx, "The Skeptic", "   ")

			Convey("Then it fails with the provider error", func() {
				So(errors.Is(err, provider.ErrProvider), ShouldBeTrue)
			})
		})
	})
}

func TestOfflineReply(t *testing.T) {
	Convey("Given an offline partner", t, func() {
		p := provider.NewOffline()
		ctx := context.Background()

		Convey("When submitting several turns on one topic", func() {
			first, err1 := p.Reply(ctx, nil, "The Skeptic", "topic-a", "my point")
			second, err2 := p.Reply(ctx, nil, "The Skeptic", "topic-a", "another point")

			Convey("Then consecutive replies differ", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldNotEqual, second)
			})
		})

		Convey("When the user text is blank", func() {
			_, err := p.Reply(ctx, nil, "The Skeptic", "topic-a", "")

			Convey("Then it fails with the provider error", func() {
				So(errors.Is(err, provider.ErrProvider), ShouldBeTrue)
			})
		})
	})
}

func TestOfflineScoreTranscript(t *testing.T) {
	Convey("Given an offline partner", t, func() {
		p := provider.NewOffline()
		ctx := context.Background()

		Convey("When scoring a transcript where the user spoke more", func() {
			transcript := []provider.Message{
				{Sender: model.SenderAI, Content: "opening"},
				{Sender: model.SenderUser, Content: "point one"},
				{Sender: model.SenderAI, Content: "rebuttal"},
				{Sender: model.SenderUser, Content: "point two"},
				{Sender: model.SenderUser, Content: "point three"},
			}

			verdict, err := p.ScoreTranscript(ctx, transcript, "topic", "persona")

			Convey("Then the user wins with bounded scores", func() {
				So(err, ShouldBeNil)
				So(verdict.Winner, ShouldEqual, provider.WinnerUser)
				So(verdict.UserScore, ShouldBeGreaterThan, verdict.AIScore)
				So(verdict.UserScore, ShouldBeLessThanOrEqualTo, provider.MaxScore)
				So(verdict.Justification, ShouldNotBeEmpty)
			})
		})

		Convey("When scoring the same transcript twice", func() {
			transcript := []provider.Message{
				{Sender: model.SenderAI, Content: "opening"},
				{Sender: model.SenderUser, Content: "point"},
			}

			first, _ := p.ScoreTranscript(ctx, transcript, "topic", "persona")
			second, _ := p.ScoreTranscript(ctx, transcript, "topic", "persona")

			Convey("Then the verdict is deterministic", func() {
				So(first, ShouldResemble, second)
			})
		})

		Convey("When the transcript is empty", func() {
			_, err := p.ScoreTranscript(ctx, nil, "topic", "persona")

			Convey("Then it fails with the provider error", func() {
				So(errors.Is(err, provider.ErrProvider), ShouldBeTrue)
			})
		})
	})
}

func TestOfflineAnalyzeTopic(t *testing.T) {
	Convey("Given an offline partner", t, func() {
		p := provider.NewOffline()

		Convey("When analyzing a topic", func() {
			analysis, err := p.AnalyzeTopic(context.Background(), "remote work")

			Convey("Then both sides are represented", func() {
				So(err, ShouldBeNil)
				So(analysis.Topic, ShouldEqual, "remote work")
				So(analysis.Pros, ShouldNotBeEmpty)
				So(analysis.Cons, ShouldNotBeEmpty)
				So(analysis.SentimentScore, ShouldBeBetweenOrEqual, provider.MinScore, provider.MaxScore)
			})
		})
	})
}
