package model_test

import (
	"testing"

	"github.com/okian/courtside/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAggregateFields(t *testing.T) {
	Convey("Given a season aggregate", t, func() {
		agg := model.Aggregate{
			Sums: model.StatLine{
				Points:        412,
				Rebounds:      98,
				Assists:       120,
				Steals:        14,
				Blocks:        9,
				Fouls:         31,
				Turnovers:     40,
				MinutesTenths: 4815,
			},
			GamesPlayed: 14,
		}

		Convey("When encoded and decoded through hash fields", func() {
			decoded, bad := model.DecodeAggregate(model.EncodeAggregate(agg))

			Convey("Then the aggregate survives unchanged", func() {
				So(bad, ShouldBeEmpty)
				So(decoded, ShouldResemble, agg)
			})
		})

		Convey("When a field holds a non-numeric value", func() {
			fields := model.EncodeAggregate(agg)
			fields[model.FieldSumPoints] = "not-a-number"
			decoded, bad := model.DecodeAggregate(fields)

			Convey("Then the field decodes as zero and is reported", func() {
				So(bad, ShouldResemble, []string{model.FieldSumPoints})
				So(decoded.Sums.Points, ShouldEqual, 0)
				So(decoded.Sums.Rebounds, ShouldEqual, 98)
			})
		})

		Convey("When fields are missing entirely", func() {
			decoded, bad := model.DecodeAggregate(map[string]string{})

			Convey("Then the aggregate is zero without complaints", func() {
				So(bad, ShouldBeEmpty)
				So(decoded, ShouldResemble, model.Aggregate{})
			})
		})
	})
}

func TestSnapshotFields(t *testing.T) {
	Convey("Given a live game snapshot", t, func() {
		snap := model.Snapshot{
			GameID:   100,
			TeamID:   7,
			PlayerID: 23,
			Status:   model.StatusLive,
			Stats: model.StatLine{
				Points:        25,
				Rebounds:      5,
				Assists:       4,
				MinutesTenths: 355,
			},
		}

		Convey("When encoded and decoded through hash fields", func() {
			decoded, bad := model.DecodeSnapshot(model.EncodeSnapshot(snap))

			So(bad, ShouldBeEmpty)
			So(decoded, ShouldResemble, snap)
		})

		Convey("When the status field is absent", func() {
			fields := model.EncodeSnapshot(snap)
			delete(fields, model.FieldGameStatus)
			decoded, _ := model.DecodeSnapshot(fields)

			Convey("Then the snapshot defaults to live", func() {
				So(decoded.Status, ShouldEqual, model.StatusLive)
			})
		})

		Convey("When encoding a snapshot with an empty status", func() {
			snap.Status = ""
			fields := model.EncodeSnapshot(snap)

			So(fields[model.FieldGameStatus], ShouldEqual, string(model.StatusLive))
		})
	})
}

func TestStatLineArithmetic(t *testing.T) {
	Convey("Given two stat lines", t, func() {
		a := model.StatLine{Points: 10, Rebounds: 3, MinutesTenths: 120}
		b := model.StatLine{Points: 4, Rebounds: 1, MinutesTenths: 65}

		Convey("Then Add and Sub are field-wise and inverse", func() {
			sum := a.Add(b)
			So(sum.Points, ShouldEqual, 14)
			So(sum.MinutesTenths, ShouldEqual, 185)
			So(sum.Sub(b), ShouldResemble, a)
		})

		Convey("Then Minutes converts tenths to decimal minutes", func() {
			So(model.StatLine{MinutesTenths: 355}.Minutes(), ShouldEqual, 35.5)
			So(model.StatLine{}.Minutes(), ShouldEqual, 0.0)
		})
	})
}
