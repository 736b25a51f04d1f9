package scoring_test

import (
	"errors"
	"testing"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScheme_Points(t *testing.T) {
	Convey("Given the default scheme", t, func() {
		s := scoring.NewScheme()

		Convey("Then medals score 10/7/5", func() {
			So(s.Points(model.Gold()), ShouldEqual, 10)
			So(s.Points(model.Silver()), ShouldEqual, 7)
			So(s.Points(model.Bronze()), ShouldEqual, 5)
		})

		Convey("Then a participant keeps its own score", func() {
			So(s.Points(model.Participant(3)), ShouldEqual, 3)
		})

		Convey("When applied to an entry", func() {
			e := model.Entry{CommunityID: "nairobi", SportID: "football", Notes: "final"}
			s.Apply(&e, model.Silver())

			Convey("Then score, position and medal agree", func() {
				So(e.Score, ShouldEqual, 7)
				So(e.PositionValue(), ShouldEqual, 2)
				So(e.Medal, ShouldEqual, model.MedalSilver)
				So(e.Notes, ShouldEqual, "final")
				So(e.Validate(), ShouldBeNil)
			})
		})
	})

	Convey("Given a configured scheme", t, func() {
		s := scoring.NewScheme(scoring.WithPoints(25, 18, -1))

		Convey("Then overrides apply and negative values are ignored", func() {
			So(s.Points(model.Gold()), ShouldEqual, 25)
			So(s.Points(model.Silver()), ShouldEqual, 18)
			So(s.Points(model.Bronze()), ShouldEqual, scoring.DefaultBronzePoints)
			So(s.String(), ShouldEqual, "gold=25 silver=18 bronze=5")
		})
	})
}

func TestScheme_Check(t *testing.T) {
	Convey("Given the default scheme", t, func() {
		s := scoring.NewScheme()

		Convey("When a gold entry scores 10", func() {
			e := model.Entry{Score: 10, Position: model.IntPtr(1), Medal: model.MedalGold}
			So(s.Check(e), ShouldBeNil)
		})

		Convey("When a bronze entry scores 9", func() {
			e := model.Entry{Score: 9, Position: model.IntPtr(3), Medal: model.MedalBronze}
			err := s.Check(e)

			Convey("Then it is a validation error", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "position 3 scores 5")
			})
		})

		Convey("When the entry is fourth or unplaced", func() {
			So(s.Check(model.Entry{Score: 42, Position: model.IntPtr(4)}), ShouldBeNil)
			So(s.Check(model.Entry{Score: 1}), ShouldBeNil)
		})
	})
}
