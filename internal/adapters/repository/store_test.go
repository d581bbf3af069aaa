package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newStore(t *testing.T) (*repository.Store, string) {
	t.Helper()
	dir := t.TempDir()
	medium, err := repository.NewFileMedium(dir)
	if err != nil {
		t.Fatalf("file medium: %v", err)
	}
	return repository.NewStore(medium), dir
}

func TestStoreRoundTrip(t *testing.T) {
	Convey("Given a store over a fresh medium", t, func() {
		store, _ := newStore(t)
		ctx := context.Background()

		Convey("When loading a never-written collection", func() {
			profiles, err := store.Profiles(ctx)

			Convey("Then it should be empty, not an error", func() {
				So(err, ShouldBeNil)
				So(profiles, ShouldBeEmpty)
			})
		})

		Convey("When replacing and reloading a collection", func() {
			now := time.Now().UTC().Truncate(time.Second)
			in := []model.Profile{{
				ID:        "p1",
				Username:  "casey",
				Rank:      "Novice",
				CreatedAt: now,
				UpdatedAt: now,
			}}
			So(store.ReplaceProfiles(ctx, in), ShouldBeNil)

			out, err := store.Profiles(ctx)

			Convey("Then the snapshot should round-trip", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 1)
				So(out[0].ID, ShouldEqual, "p1")
				So(out[0].Username, ShouldEqual, "casey")
				So(out[0].CreatedAt.Equal(now), ShouldBeTrue)
			})
		})

		Convey("When replacing a collection twice", func() {
			So(store.ReplaceDebates(ctx, []model.Debate{{ID: "d1"}, {ID: "d2"}}), ShouldBeNil)
			So(store.ReplaceDebates(ctx, []model.Debate{{ID: "d3"}}), ShouldBeNil)

			out, err := store.Debates(ctx)

			Convey("Then only the last snapshot should survive", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 1)
				So(out[0].ID, ShouldEqual, "d3")
			})
		})
	})
}

func TestStoreSurvivesReopen(t *testing.T) {
	Convey("Given records written through one store handle", t, func() {
		dir := t.TempDir()
		medium, err := repository.NewFileMedium(dir)
		So(err, ShouldBeNil)
		ctx := context.Background()

		first := repository.NewStore(medium)
		So(first.ReplaceAccounts(ctx, []model.Account{{ID: "a1", Email: "x@y.z"}}), ShouldBeNil)
		So(first.SetCurrentAccount(ctx, "a1"), ShouldBeNil)

		Convey("When a new handle opens the same directory", func() {
			reopened, err := repository.NewFileMedium(dir)
			So(err, ShouldBeNil)
			second := repository.NewStore(reopened)

			Convey("Then the data should still be there", func() {
				accounts, err := second.Accounts(ctx)
				So(err, ShouldBeNil)
				So(len(accounts), ShouldEqual, 1)

				current, err := second.CurrentAccount(ctx)
				So(err, ShouldBeNil)
				So(current, ShouldEqual, "a1")
			})
		})
	})
}

func TestSessionPointer(t *testing.T) {
	Convey("Given a store", t, func() {
		store, _ := newStore(t)
		ctx := context.Background()

		Convey("When no pointer was ever set", func() {
			id, err := store.CurrentAccount(ctx)
			So(err, ShouldBeNil)
			So(id, ShouldBeEmpty)
		})

		Convey("When setting and clearing the pointer", func() {
			So(store.SetCurrentAccount(ctx, "a1"), ShouldBeNil)

			id, err := store.CurrentAccount(ctx)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "a1")

			So(store.SetCurrentAccount(ctx, ""), ShouldBeNil)

			id, err = store.CurrentAccount(ctx)
			So(err, ShouldBeNil)
			So(id, ShouldBeEmpty)
		})
	})
}

func TestCorruptSnapshot(t *testing.T) {
	Convey("Given a collection file with unparseable content", t, func() {
		store, dir := newStore(t)
		ctx := context.Background()

		path := filepath.Join(dir, "agon_profiles.json")
		So(os.WriteFile(path, []byte("{not json"), 0o600), ShouldBeNil)

		Convey("When loading the collection", func() {
			_, err := store.Profiles(ctx)

			Convey("Then the corruption should be surfaced, not swallowed", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, repository.ErrCorruptData), ShouldBeTrue)
			})
		})

		Convey("And a later overwrite should repair it", func() {
			So(store.ReplaceProfiles(ctx, []model.Profile{{ID: "p1"}}), ShouldBeNil)
			out, err := store.Profiles(ctx)
			So(err, ShouldBeNil)
			So(len(out), ShouldEqual, 1)
		})
	})
}

func TestArtificialLatency(t *testing.T) {
	Convey("Given a store with artificial latency", t, func() {
		dir := t.TempDir()
		medium, err := repository.NewFileMedium(dir)
		So(err, ShouldBeNil)
		store := repository.NewStore(medium, repository.WithLatency(20*time.Millisecond))

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := store.Profiles(ctx)

			Convey("Then the call should fail fast with the context error", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When loading normally", func() {
			start := time.Now()
			_, err := store.Profiles(context.Background())

			Convey("Then the call should take at least the configured delay", func() {
				So(err, ShouldBeNil)
				So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 20*time.Millisecond)
			})
		})
	})
}
