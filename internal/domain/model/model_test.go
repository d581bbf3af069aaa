package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/agonhq/agon/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewID(t *testing.T) {
	Convey("Given the id generator", t, func() {
		Convey("When generating two ids", func() {
			a := model.NewID()
			b := model.NewID()

			Convey("Then they should be non-empty and distinct", func() {
				So(a, ShouldNotBeEmpty)
				So(b, ShouldNotBeEmpty)
				So(a, ShouldNotEqual, b)
			})
		})
	})
}

func TestDefaultAvatarURL(t *testing.T) {
	Convey("Given the avatar derivation", t, func() {
		Convey("Then the same seed should yield the same URL", func() {
			So(model.DefaultAvatarURL("casey"), ShouldEqual, model.DefaultAvatarURL("casey"))
		})

		Convey("And seeds with spaces should be escaped", func() {
			So(model.DefaultAvatarURL("two words"), ShouldContainSubstring, "seed=two+words")
		})
	})
}

func TestDebateCompleted(t *testing.T) {
	Convey("Given a debate record", t, func() {
		now := time.Now()

		Convey("When status is ongoing", func() {
			d := model.Debate{Status: model.StatusOngoing}
			So(d.Completed(), ShouldBeFalse)
		})

		Convey("When status is completed with a completion time", func() {
			d := model.Debate{Status: model.StatusCompleted, CompletedAt: &now}
			So(d.Completed(), ShouldBeTrue)
		})

		Convey("When status is completed but the completion time is missing", func() {
			d := model.Debate{Status: model.StatusCompleted}
			So(d.Completed(), ShouldBeFalse)
		})
	})
}

func TestJSONFieldNames(t *testing.T) {
	Convey("Given persisted entities", t, func() {
		Convey("Then profile snapshots should use the stored field names", func() {
			raw, err := json.Marshal(model.Profile{ID: "p1", Username: "casey"})
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"total_debates"`)
			So(string(raw), ShouldContainSubstring, `"total_score"`)
			So(string(raw), ShouldContainSubstring, `"avatar_url"`)
		})

		Convey("And debates should store the owning account as user_id", func() {
			raw, err := json.Marshal(model.Debate{ID: "d1", AccountID: "p1"})
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"user_id":"p1"`)
			So(string(raw), ShouldNotContainSubstring, `"completed_at"`)
		})
	})
}
