package syncer_test

import (
	"context"
	"testing"

	"github.com/okian/courtside/internal/adapters/durable"
	"github.com/okian/courtside/internal/adapters/hotstore"
	"github.com/okian/courtside/internal/domain/aggregate"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/tracker"
	"github.com/okian/courtside/internal/syncer"
	. "github.com/smartystreets/goconvey/convey"
)

const season = "2024/25"

type fixture struct {
	hot *hotstore.MemoryStore
	db  *durable.MemoryStore
	acc *aggregate.Accumulator
	tr  *tracker.Tracker
	syn *syncer.Syncer
}

func newFixture() *fixture {
	f := &fixture{
		hot: hotstore.NewMemory(),
		db:  durable.NewMemory(),
	}
	f.acc = aggregate.New(f.hot, f.db)
	f.tr = tracker.New(f.hot)
	f.syn = syncer.New(f.hot, f.db, f.acc, f.tr, season)
	return f
}

func (f *fixture) applyDelta(ctx context.Context, sub model.Subject, points, games int64) {
	So(f.acc.EnsureLoaded(ctx, season, sub), ShouldBeNil)
	So(f.acc.ApplyDelta(ctx, season, sub, model.Contribution{
		Stats:     model.StatLine{Points: points},
		GameCount: games,
	}), ShouldBeNil)
}

// racingStore runs a hook just before each aggregate read, standing in
// for a delta that lands while a flush is in flight.
type racingStore struct {
	hotstore.Store
	onHashGetAll func(key string)
}

func (s *racingStore) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	if s.onHashGetAll != nil {
		s.onHashGetAll(key)
	}
	return s.Store.HashGetAll(ctx, key)
}

func TestSyncDirty(t *testing.T) {
	ctx := context.Background()

	Convey("Given dirty aggregates for a player and a team", t, func() {
		f := newFixture()
		player := model.Player(23)
		team := model.Team(7)
		f.applyDelta(ctx, player, 25, 1)
		f.applyDelta(ctx, team, 48, 1)

		Convey("When a sync cycle runs", func() {
			f.syn.SyncDirty(ctx)

			Convey("Then both subjects reach the durable store", func() {
				row, ok := f.db.Row(player, season)
				So(ok, ShouldBeTrue)
				So(row.Sums.Points, ShouldEqual, 25)
				So(row.GamesPlayed, ShouldEqual, 1)

				row, ok = f.db.Row(team, season)
				So(ok, ShouldBeTrue)
				So(row.Sums.Points, ShouldEqual, 48)
			})

			Convey("Then the dirty flags are cleared", func() {
				for _, sub := range []model.Subject{player, team} {
					exists, err := f.hot.Exists(ctx, model.DirtyKey(model.SeasonKey(season, sub)))
					So(err, ShouldBeNil)
					So(exists, ShouldBeFalse)
				}
			})

			Convey("Then the hot aggregates stay in place", func() {
				exists, _ := f.hot.Exists(ctx, model.SeasonKey(season, player))
				So(exists, ShouldBeTrue)
			})

			Convey("Then a second cycle has nothing to do", func() {
				before := f.db.Upserts()
				f.syn.SyncDirty(ctx)
				So(f.db.Upserts(), ShouldEqual, before)
			})
		})

		Convey("When the durable store is down", func() {
			f.db.SetFailing(true)
			f.syn.SyncDirty(ctx)

			Convey("Then the dirty flags are retained for retry", func() {
				exists, err := f.hot.Exists(ctx, model.DirtyKey(model.SeasonKey(season, player)))
				So(err, ShouldBeNil)
				So(exists, ShouldBeTrue)
			})

			Convey("Then recovery drains the backlog on the next cycle", func() {
				f.db.SetFailing(false)
				f.syn.SyncDirty(ctx)

				row, ok := f.db.Row(player, season)
				So(ok, ShouldBeTrue)
				So(row.Sums.Points, ShouldEqual, 25)

				exists, _ := f.hot.Exists(ctx, model.DirtyKey(model.SeasonKey(season, player)))
				So(exists, ShouldBeFalse)
			})
		})

		Convey("When a delta lands while a flush reads the aggregate", func() {
			rs := &racingStore{Store: f.hot}
			syn := syncer.New(rs, f.db, aggregate.New(rs, f.db), tracker.New(rs), season)
			rs.onHashGetAll = func(key string) {
				if key != model.SeasonKey(season, player) {
					return
				}
				rs.onHashGetAll = nil
				So(f.acc.ApplyDelta(ctx, season, player, model.Contribution{
					Stats: model.StatLine{Points: 2},
				}), ShouldBeNil)
			}
			syn.SyncDirty(ctx)

			Convey("Then the mid-flush delta keeps the key dirty", func() {
				exists, err := f.hot.Exists(ctx, model.DirtyKey(model.SeasonKey(season, player)))
				So(err, ShouldBeNil)
				So(exists, ShouldBeTrue)
			})

			Convey("Then the next cycle drains it", func() {
				f.syn.SyncDirty(ctx)

				row, ok := f.db.Row(player, season)
				So(ok, ShouldBeTrue)
				So(row.Sums.Points, ShouldEqual, 27)

				exists, _ := f.hot.Exists(ctx, model.DirtyKey(model.SeasonKey(season, player)))
				So(exists, ShouldBeFalse)
			})
		})

		Convey("When more deltas land after a sync", func() {
			f.syn.SyncDirty(ctx)
			f.applyDelta(ctx, player, -2, 0)
			f.syn.SyncDirty(ctx)

			Convey("Then the durable row reflects the correction", func() {
				row, _ := f.db.Row(player, season)
				So(row.Sums.Points, ShouldEqual, 23)
				So(row.GamesPlayed, ShouldEqual, 1)
			})
		})
	})
}

func TestFlushSubject(t *testing.T) {
	ctx := context.Background()

	Convey("Given a hot aggregate", t, func() {
		f := newFixture()
		player := model.Player(23)
		f.applyDelta(ctx, player, 25, 1)

		Convey("When the subject is flushed explicitly", func() {
			So(f.syn.FlushSubject(ctx, player), ShouldBeNil)

			Convey("Then the row is durable and the hot copy is evicted", func() {
				row, ok := f.db.Row(player, season)
				So(ok, ShouldBeTrue)
				So(row.Sums.Points, ShouldEqual, 25)

				key := model.SeasonKey(season, player)
				exists, _ := f.hot.Exists(ctx, key)
				So(exists, ShouldBeFalse)
				exists, _ = f.hot.Exists(ctx, model.DirtyKey(key))
				So(exists, ShouldBeFalse)
			})
		})

		Convey("When flushing a subject with no hot aggregate", func() {
			before := f.db.Upserts()
			So(f.syn.FlushSubject(ctx, model.Player(999)), ShouldBeNil)
			So(f.db.Upserts(), ShouldEqual, before)
		})
	})
}

func TestFlushSeason(t *testing.T) {
	ctx := context.Background()

	Convey("Given several subjects in one season", t, func() {
		f := newFixture()
		subs := []model.Subject{model.Player(23), model.Player(30), model.Team(7)}
		for _, sub := range subs {
			f.applyDelta(ctx, sub, 10, 1)
		}

		Convey("When the season is flushed", func() {
			f.syn.FlushSeason(ctx, season)

			Convey("Then every subject is durable and evicted", func() {
				for _, sub := range subs {
					_, ok := f.db.Row(sub, season)
					So(ok, ShouldBeTrue)
					exists, _ := f.hot.Exists(ctx, model.SeasonKey(season, sub))
					So(exists, ShouldBeFalse)
				}
			})
		})
	})
}

func TestFlushGame(t *testing.T) {
	ctx := context.Background()

	Convey("Given a completed game's snapshots and aggregates", t, func() {
		f := newFixture()
		f.applyDelta(ctx, model.Player(23), 25, 1)
		f.applyDelta(ctx, model.Player(30), 12, 1)
		f.applyDelta(ctx, model.Team(7), 37, 1)

		for _, playerID := range []int64{23, 30} {
			So(f.tr.Put(ctx, model.Snapshot{
				GameID: 100, TeamID: 7, PlayerID: playerID,
				Status: model.StatusFinished,
			}), ShouldBeNil)
		}

		Convey("When the game is flushed", func() {
			f.syn.FlushGame(ctx, 100)

			Convey("Then every participant's aggregate is durable", func() {
				row, ok := f.db.Row(model.Player(23), season)
				So(ok, ShouldBeTrue)
				So(row.Sums.Points, ShouldEqual, 25)

				_, ok = f.db.Row(model.Player(30), season)
				So(ok, ShouldBeTrue)

				row, ok = f.db.Row(model.Team(7), season)
				So(ok, ShouldBeTrue)
				So(row.Sums.Points, ShouldEqual, 37)
			})

			Convey("Then uninvolved subjects stay hot", func() {
				f2 := newFixture()
				f2.applyDelta(ctx, model.Player(99), 5, 1)
				f2.syn.FlushGame(ctx, 100)

				exists, _ := f2.hot.Exists(ctx, model.SeasonKey(season, model.Player(99)))
				So(exists, ShouldBeTrue)
			})
		})
	})
}
