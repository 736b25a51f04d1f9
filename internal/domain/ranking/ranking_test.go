package ranking_test

import (
	"testing"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func entry(id, community, sport string, score int, pos *int, offset time.Duration) model.Entry {
	e := model.Entry{
		ID:          id,
		CommunityID: community,
		SportID:     sport,
		Score:       score,
		Position:    pos,
		CreatedAt:   base.Add(offset),
	}
	e.Normalize()
	return e
}

func TestRankSport(t *testing.T) {
	names := ranking.Names{"nairobi": "Nairobi", "westlands": "Westlands", "parklands": "Parklands", "karen": "Karen"}

	Convey("Given a sport with no entries", t, func() {
		p := ranking.RankSport("football", nil, names)

		Convey("Then every slot is empty and rendered as a dash", func() {
			So(p.SportID, ShouldEqual, "football")
			for i, s := range p.Slots {
				So(s.Position, ShouldEqual, i+1)
				So(s.Empty(), ShouldBeTrue)
				So(s.Display, ShouldEqual, model.EmptySlotLabel)
			}
			So(p.Participants, ShouldBeEmpty)
			So(p.Slots[0].Medal, ShouldEqual, model.MedalGold)
			So(p.Slots[2].Medal, ShouldEqual, model.MedalBronze)
		})
	})

	Convey("Given a sport with only a third place", t, func() {
		p := ranking.RankSport("football", []model.Entry{
			entry("e1", "karen", "football", 5, model.IntPtr(3), 0),
		}, names)

		Convey("Then the podium is sparse", func() {
			So(p.Slots[0].Empty(), ShouldBeTrue)
			So(p.Slots[1].Empty(), ShouldBeTrue)
			So(p.Slots[2].Occupant.CommunityID, ShouldEqual, "karen")
			So(p.Slots[2].Display, ShouldEqual, "Karen")
			So(p.Slots[2].Occupant.Rank, ShouldEqual, 3)
		})
	})

	Convey("Given two entries claiming first place", t, func() {
		p := ranking.RankSport("football", []model.Entry{
			entry("e1", "nairobi", "football", 10, model.IntPtr(1), 0),
			entry("e2", "westlands", "football", 10, model.IntPtr(1), time.Minute),
		}, names)

		Convey("Then the first encountered wins and the other becomes a participant", func() {
			So(p.Slots[0].Occupant.CommunityID, ShouldEqual, "nairobi")
			So(len(p.Participants), ShouldEqual, 1)
			So(p.Participants[0].CommunityID, ShouldEqual, "westlands")
			So(p.Participants[0].Rank, ShouldEqual, 4)
		})
	})

	Convey("Given placed and participation entries", t, func() {
		p := ranking.RankSport("football", []model.Entry{
			entry("e1", "a", "football", 2, nil, 2*time.Minute),
			entry("e2", "b", "football", 4, nil, 3*time.Minute),
			entry("e3", "c", "football", 1, model.IntPtr(5), 0),
			entry("e4", "d", "football", 2, nil, time.Minute),
			entry("e5", "e", "football", 3, model.IntPtr(4), 4*time.Minute),
			entry("e7", "f", "football", 2, nil, time.Minute),
			entry("e6", "g", "football", 10, model.IntPtr(1), 0),
		}, ranking.Names{})

		Convey("Then participants are ordered by position, then score, age and id", func() {
			var got []string
			for _, s := range p.Participants {
				got = append(got, s.CommunityID)
			}
			So(got, ShouldResemble, []string{"e", "c", "b", "d", "f", "a"})
			So(p.Slots[0].Display, ShouldEqual, "g")
			So(p.Participants[0].Rank, ShouldEqual, 4)
			So(p.Participants[5].Rank, ShouldEqual, 9)
		})
	})
}

func TestRankOverall(t *testing.T) {
	names := ranking.Names{"nairobi": "Nairobi", "westlands": "Westlands", "parklands": "Parklands"}

	Convey("Given the football and basketball results", t, func() {
		entries := []model.Entry{
			entry("e1", "nairobi", "football", 10, model.IntPtr(1), 0),
			entry("e2", "westlands", "football", 7, model.IntPtr(2), 0),
			entry("e3", "nairobi", "basketball", 7, model.IntPtr(2), 0),
			entry("e4", "parklands", "basketball", 10, model.IntPtr(1), 0),
		}

		Convey("When ranking overall", func() {
			rows := ranking.RankOverall(entries, names)

			Convey("Then totals, entry counts and ranks are correct", func() {
				So(rows, ShouldResemble, []model.OverallStanding{
					{CommunityID: "nairobi", CommunityName: "Nairobi", TotalScore: 17, EntryCount: 2, Rank: 1},
					{CommunityID: "parklands", CommunityName: "Parklands", TotalScore: 10, EntryCount: 1, Rank: 2},
					{CommunityID: "westlands", CommunityName: "Westlands", TotalScore: 7, EntryCount: 1, Rank: 3},
				})
			})
		})
	})

	Convey("Given tied totals", t, func() {
		entries := []model.Entry{
			entry("e1", "westlands", "football", 17, nil, 0),
			entry("e2", "nairobi", "football", 10, nil, 0),
			entry("e3", "nairobi", "chess", 7, nil, 0),
			entry("e4", "parklands", "football", 10, nil, 0),
		}
		rows := ranking.RankOverall(entries, names)

		Convey("Then ranks follow standard competition ranking", func() {
			So(len(rows), ShouldEqual, 3)
			So([]int{rows[0].Rank, rows[1].Rank, rows[2].Rank}, ShouldResemble, []int{1, 1, 3})
			So(rows[0].CommunityName, ShouldEqual, "Nairobi")
			So(rows[1].CommunityName, ShouldEqual, "Westlands")
		})
	})

	Convey("Given zero-score participation entries", t, func() {
		rows := ranking.RankOverall([]model.Entry{
			entry("e1", "unknown", "football", 0, nil, 0),
		}, names)

		Convey("Then the community is listed with its id as name", func() {
			So(len(rows), ShouldEqual, 1)
			So(rows[0].CommunityName, ShouldEqual, "unknown")
			So(rows[0].EntryCount, ShouldEqual, 1)
			So(rows[0].TotalScore, ShouldEqual, 0)
			So(rows[0].Rank, ShouldEqual, 1)
		})
	})

	Convey("Given no entries", t, func() {
		So(ranking.RankOverall(nil, names), ShouldBeEmpty)
	})
}
