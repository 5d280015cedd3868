package tracker_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/courtside/internal/adapters/hotstore"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/tracker"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTracker(t *testing.T) {
	ctx := context.Background()

	snap := model.Snapshot{
		GameID:   100,
		TeamID:   7,
		PlayerID: 23,
		Status:   model.StatusLive,
		Stats:    model.StatLine{Points: 25, MinutesTenths: 355},
	}

	Convey("Given a snapshot tracker over an in-memory store", t, func() {
		store := hotstore.NewMemory()
		tr := tracker.New(store)

		Convey("When no snapshot has been stored", func() {
			got, err := tr.Get(ctx, 100, 23)

			Convey("Then Get returns nil without error", func() {
				So(err, ShouldBeNil)
				So(got, ShouldBeNil)
			})
		})

		Convey("When a snapshot is put and read back", func() {
			So(tr.Put(ctx, snap), ShouldBeNil)

			got, err := tr.Get(ctx, 100, 23)
			So(err, ShouldBeNil)
			So(got, ShouldNotBeNil)
			So(*got, ShouldResemble, snap)
		})

		Convey("When a snapshot is overwritten by a later report", func() {
			So(tr.Put(ctx, snap), ShouldBeNil)

			later := snap
			later.Stats.Points = 30
			So(tr.Put(ctx, later), ShouldBeNil)

			got, _ := tr.Get(ctx, 100, 23)
			So(got.Stats.Points, ShouldEqual, 30)
		})

		Convey("When marking a snapshot finished", func() {
			So(tr.Put(ctx, snap), ShouldBeNil)
			So(tr.MarkFinished(ctx, 100, 23), ShouldBeNil)

			got, _ := tr.Get(ctx, 100, 23)
			So(got.Status, ShouldEqual, model.StatusFinished)

			Convey("Then the stat fields are untouched", func() {
				So(got.Stats.Points, ShouldEqual, 25)
			})

			Convey("Then marking again is a no-op", func() {
				So(tr.MarkFinished(ctx, 100, 23), ShouldBeNil)
				got, _ := tr.Get(ctx, 100, 23)
				So(got.Status, ShouldEqual, model.StatusFinished)
			})
		})

		Convey("When marking a snapshot that never existed", func() {
			So(tr.MarkFinished(ctx, 999, 23), ShouldBeNil)

			got, _ := tr.Get(ctx, 999, 23)
			So(got, ShouldBeNil)
		})

		Convey("When listing players in a game", func() {
			So(tr.Put(ctx, snap), ShouldBeNil)
			other := snap
			other.PlayerID = 30
			So(tr.Put(ctx, other), ShouldBeNil)
			elsewhere := snap
			elsewhere.GameID = 200
			elsewhere.PlayerID = 45
			So(tr.Put(ctx, elsewhere), ShouldBeNil)

			players, err := tr.PlayersInGame(ctx, 100)
			So(err, ShouldBeNil)
			So(len(players), ShouldEqual, 2)
			So(players, ShouldContain, int64(23))
			So(players, ShouldContain, int64(30))
		})

		Convey("When checking for a live game", func() {
			has, err := tr.HasLiveGame(ctx, 23)
			So(err, ShouldBeNil)
			So(has, ShouldBeFalse)

			So(tr.Put(ctx, snap), ShouldBeNil)
			has, _ = tr.HasLiveGame(ctx, 23)
			So(has, ShouldBeTrue)

			Convey("Then a finished snapshot no longer counts as live", func() {
				So(tr.MarkFinished(ctx, 100, 23), ShouldBeNil)
				has, err := tr.HasLiveGame(ctx, 23)
				So(err, ShouldBeNil)
				So(has, ShouldBeFalse)
			})
		})

		Convey("When the lifetime window elapses", func() {
			now := time.Date(2025, 1, 15, 19, 0, 0, 0, time.UTC)
			clocked := hotstore.NewMemory(hotstore.WithClock(func() time.Time { return now }))
			short := tracker.New(clocked, tracker.WithTTL(time.Hour))

			So(short.Put(ctx, snap), ShouldBeNil)
			now = now.Add(2 * time.Hour)

			got, err := short.Get(ctx, 100, 23)
			So(err, ShouldBeNil)
			So(got, ShouldBeNil)
		})
	})
}
