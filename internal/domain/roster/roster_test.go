package roster_test

import (
	"context"
	"testing"

	"github.com/okian/courtside/internal/adapters/durable"
	"github.com/okian/courtside/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDirectory(t *testing.T) {
	ctx := context.Background()

	Convey("Given a name directory over an in-memory durable store", t, func() {
		db := durable.NewMemory()
		db.SetPlayerName(23, "LeBron James")
		db.SetTeamName(7, "Lakers")
		dir := roster.New(db)

		Convey("When the directory has never refreshed", func() {
			Convey("Then every lookup yields the placeholders", func() {
				So(dir.PlayerName(23), ShouldEqual, roster.UnknownPlayer)
				So(dir.TeamName(7), ShouldEqual, roster.UnknownTeam)
			})
		})

		Convey("When the directory refreshes", func() {
			So(dir.Refresh(ctx), ShouldBeNil)

			Convey("Then known ids resolve and unknown ids fall back", func() {
				So(dir.PlayerName(23), ShouldEqual, "LeBron James")
				So(dir.TeamName(7), ShouldEqual, "Lakers")
				So(dir.PlayerName(999), ShouldEqual, roster.UnknownPlayer)
				So(dir.TeamName(999), ShouldEqual, roster.UnknownTeam)
			})
		})

		Convey("When a refresh fails after a good one", func() {
			So(dir.Refresh(ctx), ShouldBeNil)
			db.SetFailing(true)

			err := dir.Refresh(ctx)

			Convey("Then the previous snapshot keeps serving", func() {
				So(err, ShouldNotBeNil)
				So(dir.PlayerName(23), ShouldEqual, "LeBron James")
				So(dir.TeamName(7), ShouldEqual, "Lakers")
			})
		})
	})
}
