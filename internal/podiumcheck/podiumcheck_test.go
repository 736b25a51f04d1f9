package podiumcheck

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/adapters/directory"
	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
)

func newTestServer(ctx context.Context, scheme scoring.Scheme) (*httptest.Server, *service.Service) {
	dir := directory.NewMemory()
	_ = dir.Apply(ctx, directory.Seed{
		Communities: []directory.Community{
			{ID: "nairobi", Name: "Nairobi"},
			{ID: "westlands", Name: "Westlands"},
			{ID: "parklands", Name: "Parklands"},
			{ID: "karen", Name: "Karen"},
		},
		Sports: []directory.Sport{
			{ID: "football", Name: "Football"},
			{ID: "basketball", Name: "Basketball"},
			{ID: "chess", Name: "Chess"},
		},
	})
	svc := service.New(repository.NewMemoryStore(dir), dir,
		service.WithScheme(scheme),
		service.WithCache(true),
	)
	_ = svc.Start(ctx)
	return httptest.NewServer(api.NewServer(svc, svc).Router()), svc
}

func TestRun(t *testing.T) {
	Convey("Given a leaderboard served over HTTP", t, func() {
		ctx := context.Background()
		scheme := scoring.NewScheme(scoring.WithPoints(5, 3, 1))
		srv, svc := newTestServer(ctx, scheme)
		defer srv.Close()
		defer svc.Stop()

		cfg := &Config{
			BaseURL:     srv.URL,
			Updates:     200,
			Workers:     8,
			Rate:        2000,
			Timeout:     5 * time.Second,
			Sports:      []string{"football", "basketball", "chess"},
			Communities: []string{"nairobi", "westlands", "parklands", "karen"},
			EmptySlotP:  0.2,
			Seed:        42,
			Scheme:      scheme,
		}

		Convey("When concurrent podium updates are submitted", func() {
			stats, err := Run(ctx, cfg, logger.Nop())

			Convey("Then every podium and standing verifies", func() {
				So(err, ShouldBeNil)
				So(stats.UpdatesSubmitted, ShouldEqual, 200)
				So(stats.UpdatesFailed, ShouldEqual, 0)
				So(stats.UpdatesApplied+stats.UpdatesConflicted, ShouldEqual, 200)
				So(stats.PodiumsVerified, ShouldEqual, 3)
				So(stats.StandingsVerified, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the expected points differ from the server's", func() {
			cfg.Scheme = scoring.NewScheme()
			cfg.EmptySlotP = 0
			_, err := Run(ctx, cfg, logger.Nop())

			Convey("Then verification fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "verification failed")
			})
		})

		Convey("When no sports are configured", func() {
			cfg.Sports = nil
			_, err := Run(ctx, cfg, logger.Nop())

			Convey("Then the run is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestGenerateUpdates(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		cfg := &Config{
			Sports:      []string{"football"},
			Communities: []string{"a", "b", "c", "d"},
			EmptySlotP:  0.3,
			Seed:        7,
		}

		Convey("When generating updates twice", func() {
			first := generateUpdates(cfg, 50)
			second := generateUpdates(cfg, 50)

			Convey("Then the output is reproducible and slots are distinct", func() {
				So(len(first), ShouldEqual, 50)
				for i := range first {
					So(model.PodiumRequest{First: first[i].First, Second: first[i].Second, Third: first[i].Third}.Validate(), ShouldBeNil)
					So(deref(first[i].First), ShouldEqual, deref(second[i].First))
					So(deref(first[i].Third), ShouldEqual, deref(second[i].Third))
				}
			})
		})

		Convey("When there are fewer communities than slots", func() {
			cfg.Communities = []string{"a"}
			cfg.EmptySlotP = 0
			u := generateUpdates(cfg, 1)[0]

			Convey("Then the spare slots stay empty", func() {
				So(deref(u.First), ShouldEqual, "a")
				So(u.Second, ShouldBeNil)
				So(u.Third, ShouldBeNil)
			})
		})
	})
}

func TestVerification(t *testing.T) {
	Convey("Given the default scheme", t, func() {
		scheme := scoring.NewScheme()

		Convey("When a podium repeats a community", func() {
			occ := &model.Standing{CommunityID: "a", Score: 10, Position: model.IntPtr(1), Medal: model.MedalGold}
			occ2 := &model.Standing{CommunityID: "a", Score: 7, Position: model.IntPtr(2), Medal: model.MedalSilver}
			p := model.Podium{SportID: "football"}
			p.Slots[0] = model.Slot{Position: 1, Medal: model.MedalGold, Occupant: occ, Display: "A"}
			p.Slots[1] = model.Slot{Position: 2, Medal: model.MedalSilver, Occupant: occ2, Display: "A"}
			p.Slots[2] = model.Slot{Position: 3, Medal: model.MedalBronze, Display: model.EmptySlotLabel}

			Convey("Then it is rejected", func() {
				err := verifyPodium(scheme, p)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "holds slots")
			})
		})

		Convey("When standings break competition ranking", func() {
			standings := []model.OverallStanding{
				{CommunityID: "a", TotalScore: 17, EntryCount: 2, Rank: 1},
				{CommunityID: "b", TotalScore: 17, EntryCount: 1, Rank: 2},
				{CommunityID: "c", TotalScore: 10, EntryCount: 1, Rank: 2},
			}
			entries := map[string][]model.Entry{
				"a": {{Score: 10}, {Score: 7}},
				"b": {{Score: 17}},
				"c": {{Score: 9}},
			}

			Convey("Then each violation is reported", func() {
				err := verifyStandings(standings, entries)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "tied rows 0 and 1")
				So(err.Error(), ShouldContainSubstring, "has rank 2, want 3")
				So(err.Error(), ShouldContainSubstring, "entries sum to 9")
			})
		})

		Convey("When standings are consistent", func() {
			standings := []model.OverallStanding{
				{CommunityID: "a", TotalScore: 17, EntryCount: 2, Rank: 1},
				{CommunityID: "b", TotalScore: 17, EntryCount: 1, Rank: 1},
				{CommunityID: "c", TotalScore: 10, EntryCount: 1, Rank: 3},
			}
			entries := map[string][]model.Entry{
				"a": {{Score: 10}, {Score: 7}},
				"b": {{Score: 17}},
				"c": {{Score: 10}},
			}

			Convey("Then they verify", func() {
				So(verifyStandings(standings, entries), ShouldBeNil)
			})
		})
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
