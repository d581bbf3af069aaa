package session_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agonhq/agon/internal/session"
)

func TestBus(t *testing.T) {
	Convey("Given an event bus", t, func() {
		bus := session.NewBus(4)
		ctx := context.Background()

		Convey("When publishing and subscribing", func() {
			ok := bus.Publish(ctx, session.Event{Kind: session.EventDebateStarted, DebateID: "d1"})
			So(ok, ShouldBeTrue)

			sub := bus.Subscribe(ctx)

			Convey("Then the event is delivered in order", func() {
				select {
				case evt := <-sub:
					So(evt.Kind, ShouldEqual, session.EventDebateStarted)
					So(evt.DebateID, ShouldEqual, "d1")
				case <-time.After(time.Second):
					So("timed out waiting for event", ShouldBeEmpty)
				}
			})

			So(bus.Close(), ShouldBeNil)
		})

		Convey("When the buffer is full", func() {
			for i := 0; i < 4; i++ {
				So(bus.Publish(ctx, session.Event{Kind: session.EventTick}), ShouldBeTrue)
			}

			Convey("Then the next publish is dropped, not blocked", func() {
				So(bus.Publish(ctx, session.Event{Kind: session.EventTick}), ShouldBeFalse)
				So(bus.Len(), ShouldEqual, 4)
			})

			So(bus.Close(), ShouldBeNil)
		})

		Convey("When the bus is closed", func() {
			So(bus.Close(), ShouldBeNil)

			Convey("Then publishing fails and closing again is a no-op", func() {
				So(bus.Publish(ctx, session.Event{Kind: session.EventTick}), ShouldBeFalse)
				So(bus.Close(), ShouldBeNil)
			})
		})
	})
}
