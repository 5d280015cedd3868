package delta_test

import (
	"testing"

	"github.com/okian/courtside/internal/domain/delta"
	"github.com/okian/courtside/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func snap(points, rebounds, minutesTenths int64) model.Snapshot {
	return model.Snapshot{
		GameID:   100,
		TeamID:   10,
		PlayerID: 1,
		Status:   model.StatusLive,
		Stats: model.StatLine{
			Points:        points,
			Rebounds:      rebounds,
			MinutesTenths: minutesTenths,
		},
	}
}

func TestCompute(t *testing.T) {
	Convey("Given cumulative snapshots for a player in one game", t, func() {
		Convey("When no prior snapshot exists", func() {
			cur := snap(25, 5, 355)
			c := delta.Compute(nil, cur)

			Convey("Then the contribution is the snapshot verbatim and counts a new game", func() {
				So(c.GameCount, ShouldEqual, 1)
				So(c.Stats, ShouldResemble, cur.Stats)
			})
		})

		Convey("When a prior snapshot exists", func() {
			prev := snap(20, 4, 300)
			cur := snap(25, 5, 355)
			c := delta.Compute(&prev, cur)

			Convey("Then the contribution is the field-wise difference with no new game", func() {
				So(c.GameCount, ShouldEqual, 0)
				So(c.Stats.Points, ShouldEqual, 5)
				So(c.Stats.Rebounds, ShouldEqual, 1)
				So(c.Stats.MinutesTenths, ShouldEqual, 55)
			})
		})

		Convey("When the new report corrects a stat downward", func() {
			prev := snap(25, 5, 355)
			cur := snap(23, 5, 355)
			c := delta.Compute(&prev, cur)

			Convey("Then the contribution carries a negative delta", func() {
				So(c.GameCount, ShouldEqual, 0)
				So(c.Stats.Points, ShouldEqual, -2)
				So(c.Stats.Rebounds, ShouldEqual, 0)
			})
		})

		Convey("When a sequence of reports is applied in order", func() {
			reports := []model.Snapshot{
				snap(5, 1, 80),
				snap(12, 2, 150),
				snap(12, 4, 210),
				snap(30, 6, 355),
			}

			var prev *model.Snapshot
			var total model.StatLine
			var games int64
			for i := range reports {
				c := delta.Compute(prev, reports[i])
				total = total.Add(c.Stats)
				games += c.GameCount
				prev = &reports[i]
			}

			Convey("Then the deltas telescope to the final cumulative line", func() {
				So(games, ShouldEqual, 1)
				So(total, ShouldResemble, reports[len(reports)-1].Stats)
			})
		})
	})
}
