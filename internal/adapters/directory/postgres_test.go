package directory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/okian/podium/internal/adapters/directory"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
)

func TestPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("podium"),
		postgres.WithUsername("podium"),
		postgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	defer func() { _ = container.Terminate(context.Background()) }()

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	store, err := repository.NewPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	Convey("Given a postgres directory with seeded records", t, func() {
		dir := directory.NewPostgres(store.Pool())
		seed, err := directory.LoadSeed("testdata/seed.yaml")
		So(err, ShouldBeNil)
		So(dir.Apply(ctx, seed), ShouldBeNil)

		Convey("Then lookups resolve", func() {
			c, ok, err := dir.GetCommunity(ctx, "parklands")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(c.Name, ShouldEqual, "Parklands")

			_, ok, err = dir.GetCommunity(ctx, "karen")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			ok, err = dir.SportExists(ctx, "basketball")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		})

		Convey("When a community with entries is removed", func() {
			So(dir.UpsertCommunity(ctx, directory.Community{ID: "karen", Name: "Karen"}), ShouldBeNil)
			_, err := store.Put(ctx, model.Entry{CommunityID: "karen", SportID: "football", Score: 2})
			So(err, ShouldBeNil)

			var hooked string
			dir.OnRemoveCommunity(func(_ context.Context, id string) error {
				hooked = id
				return nil
			})
			So(dir.RemoveCommunity(ctx, "karen"), ShouldBeNil)

			Convey("Then its entries cascade away", func() {
				So(hooked, ShouldEqual, "karen")
				entries, err := store.ListByCommunity(ctx, "karen")
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
				So(errors.Is(dir.RemoveCommunity(ctx, "karen"), directory.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
