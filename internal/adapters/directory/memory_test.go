package directory_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/adapters/directory"
)

func TestLoadSeed(t *testing.T) {
	Convey("Given a YAML seed file", t, func() {
		seed, err := directory.LoadSeed("testdata/seed.yaml")

		Convey("Then communities and sports are decoded", func() {
			So(err, ShouldBeNil)
			So(len(seed.Communities), ShouldEqual, 3)
			So(seed.Communities[0], ShouldResemble, directory.Community{ID: "nairobi", Name: "Nairobi"})
			So(len(seed.Sports), ShouldEqual, 2)
		})
	})

	Convey("Given a missing seed file", t, func() {
		_, err := directory.LoadSeed("testdata/missing.yaml")
		So(err, ShouldNotBeNil)
	})
}

func TestMemory(t *testing.T) {
	Convey("Given a seeded memory directory", t, func() {
		ctx := context.Background()
		dir := directory.NewMemory()
		seed, err := directory.LoadSeed("testdata/seed.yaml")
		So(err, ShouldBeNil)
		So(dir.Apply(ctx, seed), ShouldBeNil)

		Convey("Then lookups resolve", func() {
			c, ok, err := dir.GetCommunity(ctx, "westlands")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(c.Name, ShouldEqual, "Westlands")

			ok, _ = dir.CommunityExists(ctx, "karen")
			So(ok, ShouldBeFalse)
			ok, _ = dir.SportExists(ctx, "football")
			So(ok, ShouldBeTrue)

			sports, _ := dir.ListSports(ctx)
			So(sports[0].ID, ShouldEqual, "basketball")
			communities, _ := dir.ListCommunities(ctx)
			So(len(communities), ShouldEqual, 3)
		})

		Convey("When a record is invalid", func() {
			err := dir.AddCommunity(directory.Community{ID: " ", Name: "x"})
			So(errors.Is(err, directory.ErrInvalidRecord), ShouldBeTrue)
			err = dir.AddSport(directory.Sport{ID: "chess"})
			So(errors.Is(err, directory.ErrInvalidRecord), ShouldBeTrue)
		})

		Convey("When a community is removed", func() {
			var removed []string
			dir.OnRemoveCommunity(func(_ context.Context, id string) error {
				removed = append(removed, id)
				// The directory lock is released before hooks run.
				ok, _ := dir.CommunityExists(ctx, id)
				So(ok, ShouldBeFalse)
				return nil
			})
			err := dir.RemoveCommunity(ctx, "nairobi")

			Convey("Then the hooks see the removal", func() {
				So(err, ShouldBeNil)
				So(removed, ShouldResemble, []string{"nairobi"})
			})

			Convey("And removing it again fails", func() {
				So(errors.Is(dir.RemoveCommunity(ctx, "nairobi"), directory.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a sport hook fails", func() {
			boom := errors.New("boom")
			dir.OnRemoveSport(func(context.Context, string) error { return boom })
			err := dir.RemoveSport(ctx, "football")

			Convey("Then the error is returned and the sport is gone", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				ok, _ := dir.SportExists(ctx, "football")
				So(ok, ShouldBeFalse)
			})
		})
	})
}
