package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itbasis/go-clock"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/domain/model"
)

type fakeRefs struct {
	communities map[string]bool
	sports      map[string]bool
}

func (f fakeRefs) CommunityExists(_ context.Context, id string) (bool, error) {
	return f.communities[id], nil
}

func (f fakeRefs) SportExists(_ context.Context, id string) (bool, error) {
	return f.sports[id], nil
}

func newTestMemoryStore() (*MemoryStore, *clock.Mock) {
	refs := fakeRefs{
		communities: map[string]bool{"nairobi": true, "westlands": true, "parklands": true},
		sports:      map[string]bool{"football": true, "basketball": true},
	}
	mock := clock.NewMock()
	return NewMemoryStore(refs, WithClock(mock)), mock
}

func TestMemoryStore_Put(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		store, mock := newTestMemoryStore()

		Convey("When an entry is created", func() {
			e, err := store.Put(ctx, model.Entry{CommunityID: "nairobi", SportID: "football", Score: 10, Position: model.IntPtr(1)})

			Convey("Then it gets an id, timestamps and a derived medal", func() {
				So(err, ShouldBeNil)
				So(e.ID, ShouldNotBeEmpty)
				So(e.Medal, ShouldEqual, model.MedalGold)
				So(e.CreatedAt.Equal(mock.Now()), ShouldBeTrue)
				So(e.UpdatedAt.Equal(e.CreatedAt), ShouldBeTrue)

				got, ok, err := store.Get(ctx, "nairobi", "football")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(got, ShouldResemble, e)
			})

			Convey("And it is replaced on the same pair", func() {
				mock.Add(time.Minute)
				again, err := store.Put(ctx, model.Entry{CommunityID: "nairobi", SportID: "football", Score: 7, Position: model.IntPtr(2)})

				Convey("Then id and creation time are kept", func() {
					So(err, ShouldBeNil)
					So(again.ID, ShouldEqual, e.ID)
					So(again.CreatedAt.Equal(e.CreatedAt), ShouldBeTrue)
					So(again.UpdatedAt, ShouldHappenAfter, e.CreatedAt)
					So(again.Medal, ShouldEqual, model.MedalSilver)

					n, _ := store.Count(ctx)
					So(n, ShouldEqual, 1)
				})
			})
		})

		Convey("When the community does not exist", func() {
			_, err := store.Put(ctx, model.Entry{CommunityID: "karen", SportID: "football", Score: 1})

			Convey("Then a not found error is returned", func() {
				So(errors.Is(err, ErrReferenceNotFound), ShouldBeTrue)
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the sport does not exist", func() {
			_, err := store.Put(ctx, model.Entry{CommunityID: "nairobi", SportID: "chess", Score: 1})
			So(errors.Is(err, ErrReferenceNotFound), ShouldBeTrue)
		})

		Convey("When the entry is invalid", func() {
			_, err := store.Put(ctx, model.Entry{CommunityID: "nairobi", SportID: "football", Score: -3})
			So(errors.Is(err, model.ErrNegativeScore), ShouldBeTrue)
		})

		Convey("When two communities claim one position", func() {
			_, err := store.Put(ctx, model.Entry{CommunityID: "nairobi", SportID: "football", Score: 10, Position: model.IntPtr(1)})
			So(err, ShouldBeNil)
			_, err = store.Put(ctx, model.Entry{CommunityID: "westlands", SportID: "football", Score: 10, Position: model.IntPtr(1)})

			Convey("Then the second write is rejected and not kept", func() {
				So(errors.Is(err, model.ErrPositionTaken), ShouldBeTrue)
				_, ok, _ := store.Get(ctx, "westlands", "football")
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestMemoryStore_Lists(t *testing.T) {
	Convey("Given entries across sports", t, func() {
		ctx := context.Background()
		store, mock := newTestMemoryStore()
		for _, e := range []model.Entry{
			{CommunityID: "nairobi", SportID: "football", Score: 10, Position: model.IntPtr(1)},
			{CommunityID: "westlands", SportID: "football", Score: 7, Position: model.IntPtr(2)},
			{CommunityID: "nairobi", SportID: "basketball", Score: 7, Position: model.IntPtr(2)},
		} {
			_, err := store.Put(ctx, e)
			So(err, ShouldBeNil)
			mock.Add(time.Second)
		}

		Convey("Then listings are filtered and ordered by creation", func() {
			football, err := store.ListBySport(ctx, "football")
			So(err, ShouldBeNil)
			So(len(football), ShouldEqual, 2)
			So(football[0].CommunityID, ShouldEqual, "nairobi")

			nairobi, _ := store.ListByCommunity(ctx, "nairobi")
			So(len(nairobi), ShouldEqual, 2)
			So(nairobi[0].SportID, ShouldEqual, "football")

			all, _ := store.ListAll(ctx)
			So(len(all), ShouldEqual, 3)
		})

		Convey("Then unknown ids list nothing", func() {
			none, err := store.ListBySport(ctx, "chess")
			So(err, ShouldBeNil)
			So(none, ShouldBeEmpty)
			_, ok, err := store.Get(ctx, "karen", "football")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When looking up by id", func() {
			e, _, _ := store.Get(ctx, "westlands", "football")
			got, err := store.GetByID(ctx, e.ID)
			So(err, ShouldBeNil)
			So(got.CommunityID, ShouldEqual, "westlands")

			_, err = store.GetByID(ctx, "missing")
			So(errors.Is(err, model.ErrEntryNotFound), ShouldBeTrue)
		})

		Convey("When cascading a community removal", func() {
			n, err := store.DeleteByCommunity(ctx, "nairobi")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
			count, _ := store.Count(ctx)
			So(count, ShouldEqual, 1)
		})

		Convey("When cascading a sport removal", func() {
			n, err := store.DeleteBySport(ctx, "football")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
		})
	})
}

func TestMemoryStore_Delete(t *testing.T) {
	Convey("Given one stored entry", t, func() {
		ctx := context.Background()
		store, _ := newTestMemoryStore()
		_, err := store.Put(ctx, model.Entry{CommunityID: "nairobi", SportID: "football", Score: 3})
		So(err, ShouldBeNil)

		Convey("Then deleting it reports a removal", func() {
			ok, err := store.Delete(ctx, "nairobi", "football")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			ok, err = store.Delete(ctx, "nairobi", "football")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Then deleting with an unknown reference fails", func() {
			_, err := store.Delete(ctx, "karen", "football")
			So(errors.Is(err, ErrReferenceNotFound), ShouldBeTrue)
		})
	})
}

func TestMemoryStore_Atomic(t *testing.T) {
	Convey("Given a football podium", t, func() {
		ctx := context.Background()
		store, _ := newTestMemoryStore()
		a, _ := store.Put(ctx, model.Entry{CommunityID: "nairobi", SportID: "football", Score: 10, Position: model.IntPtr(1)})
		b, _ := store.Put(ctx, model.Entry{CommunityID: "westlands", SportID: "football", Score: 7, Position: model.IntPtr(2)})

		Convey("When a transaction swaps first and second place", func() {
			err := store.Atomic(ctx, func(tx Tx) error {
				if err := tx.Lock(ctx, "football"); err != nil {
					return err
				}
				if _, err := tx.Put(ctx, model.Entry{CommunityID: "westlands", SportID: "football", Score: 10, Position: model.IntPtr(1)}); err != nil {
					return err
				}
				_, err := tx.Put(ctx, model.Entry{CommunityID: "nairobi", SportID: "football", Score: 7, Position: model.IntPtr(2)})
				return err
			})

			Convey("Then position uniqueness is checked at commit and ids survive", func() {
				So(err, ShouldBeNil)
				got, _ := store.GetByID(ctx, b.ID)
				So(got.PositionValue(), ShouldEqual, 1)
				got, _ = store.GetByID(ctx, a.ID)
				So(got.PositionValue(), ShouldEqual, 2)
			})
		})

		Convey("When a transaction fails after writing", func() {
			boom := errors.New("boom")
			err := store.Atomic(ctx, func(tx Tx) error {
				if _, err := tx.Delete(ctx, "nairobi", "football"); err != nil {
					return err
				}
				if _, err := tx.Put(ctx, model.Entry{CommunityID: "parklands", SportID: "football", Score: 10, Position: model.IntPtr(1)}); err != nil {
					return err
				}
				if _, err := tx.Put(ctx, model.Entry{CommunityID: "westlands", SportID: "football", Score: 5, Position: model.IntPtr(3)}); err != nil {
					return err
				}
				return boom
			})

			Convey("Then every write is undone", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				all, _ := store.ListAll(ctx)
				So(all, ShouldResemble, []model.Entry{a, b})
			})
		})

		Convey("When the context is cancelled during the transaction", func() {
			cctx, cancel := context.WithCancel(ctx)
			err := store.Atomic(cctx, func(tx Tx) error {
				_, err := tx.Delete(cctx, "westlands", "football")
				cancel()
				return err
			})

			Convey("Then nothing is kept", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				_, ok, _ := store.Get(ctx, "westlands", "football")
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When the store is closed", func() {
			store.Close()
			_, err := store.Put(ctx, model.Entry{CommunityID: "parklands", SportID: "football", Score: 1})
			So(errors.Is(err, ErrStoreClosed), ShouldBeTrue)
		})
	})
}
