package provider

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExtractJSON(t *testing.T) {
	Convey("Given model output with surrounding prose", t, func() {
		Convey("When the text embeds a JSON object", func() {
			got, err := extractJSON("Here is the verdict:\n{\"winner\": \"user\"}\nThanks.")

			Convey("Then the object alone is returned", func() {
				So(err, ShouldBeNil)
				So(got, ShouldEqual, `{"winner": "user"}`)
			})
		})

		Convey("When the text has no JSON object", func() {
			_, err := extractJSON("no structured data here")

			So(err, ShouldNotBeNil)
		})

		Convey("When the braces do not enclose valid JSON", func() {
			_, err := extractJSON("{broken")

			So(err, ShouldNotBeNil)
		})
	})
}

func TestDeriveWinner(t *testing.T) {
	Convey("Given a pair of judge scores", t, func() {
		So(deriveWinner(80, 60), ShouldEqual, WinnerUser)
		So(deriveWinner(40, 70), ShouldEqual, WinnerAI)
		So(deriveWinner(55, 55), ShouldEqual, WinnerDraw)
	})
}
