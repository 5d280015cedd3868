package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/courtside/internal/adapters/http/api"
	"github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newMux(ctx context.Context) (*http.ServeMux, *app.Service) {
	svc := app.New(app.WithSyncEnabled(false))
	So(svc.Start(ctx), ShouldBeNil)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux, svc
}

func putJSON(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

const validStat = `{
	"gameId": 100, "teamId": 7, "playerId": 23,
	"points": 25, "rebounds": 5, "assists": 4,
	"steals": 1, "blocks": 0, "fouls": 2,
	"turnovers": 3, "minutesPlayed": 35.5
}`

func TestLiveStatEndpoint(t *testing.T) {
	ctx := context.Background()

	Convey("Given the API wired to a running service", t, func() {
		mux, svc := newMux(ctx)
		defer svc.Stop()

		Convey("When a valid stat report is PUT", func() {
			rec := putJSON(mux, "/stat/live/game", validStat)

			Convey("Then the report is accepted", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
			})

			Convey("Then a request id rides the response", func() {
				So(rec.Header().Get("X-Request-Id"), ShouldNotBeEmpty)
			})
		})

		Convey("When the body is not JSON", func() {
			rec := putJSON(mux, "/stat/live/game", "not-json")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a stat is negative", func() {
			rec := putJSON(mux, "/stat/live/game", `{"gameId":100,"teamId":7,"playerId":23,"points":-1}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fouls exceed the limit", func() {
			rec := putJSON(mux, "/stat/live/game", `{"gameId":100,"teamId":7,"playerId":23,"fouls":7}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When minutes exceed regulation plus overtime bounds", func() {
			rec := putJSON(mux, "/stat/live/game", `{"gameId":100,"teamId":7,"playerId":23,"minutesPlayed":50}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When an id is missing", func() {
			rec := putJSON(mux, "/stat/live/game", `{"gameId":100,"playerId":23,"points":10}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the wrong verb is used", func() {
			rec := get(mux, "/stat/live/game")
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestCompleteEndpoint(t *testing.T) {
	ctx := context.Background()

	Convey("Given a live game reported through the API", t, func() {
		mux, svc := newMux(ctx)
		defer svc.Stop()

		So(putJSON(mux, "/stat/live/game", validStat).Code, ShouldEqual, http.StatusAccepted)

		Convey("When the game is completed", func() {
			rec := putJSON(mux, "/stat/live/game/100/complete", "")

			Convey("Then the response counts the finished players", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var resp struct {
					GameID          int64 `json:"gameId"`
					PlayersFinished int   `json:"playersFinished"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.GameID, ShouldEqual, 100)
				So(resp.PlayersFinished, ShouldEqual, 1)
			})
		})

		Convey("When the game id is not a number", func() {
			rec := putJSON(mux, "/stat/live/game/abc/complete", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the path lacks the complete suffix", func() {
			rec := putJSON(mux, "/stat/live/game/100", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestQueryEndpoints(t *testing.T) {
	ctx := context.Background()

	Convey("Given stats ingested through the API", t, func() {
		mux, svc := newMux(ctx)
		defer svc.Stop()

		So(putJSON(mux, "/stat/live/game", validStat).Code, ShouldEqual, http.StatusAccepted)

		Convey("When querying the player", func() {
			rec := get(mux, "/stat/player/23?season=2024/25")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var resp struct {
				PlayerID    int64   `json:"playerId"`
				PlayerName  string  `json:"playerName"`
				GamesPlayed int64   `json:"gamesPlayed"`
				HasLiveGame bool    `json:"hasLiveGame"`
				AvgPoints   float64 `json:"avgPoints"`
				AvgMinutes  float64 `json:"avgMinutes"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)

			Convey("Then the averaged view comes back", func() {
				So(resp.PlayerID, ShouldEqual, 23)
				So(resp.GamesPlayed, ShouldEqual, 1)
				So(resp.HasLiveGame, ShouldBeTrue)
				So(resp.AvgPoints, ShouldEqual, 25.0)
				So(resp.AvgMinutes, ShouldEqual, 35.5)
			})
		})

		Convey("When querying the team", func() {
			rec := get(mux, "/stat/team/7?season=2024/25")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var resp struct {
				TeamID      int64   `json:"teamId"`
				GamesPlayed int64   `json:"gamesPlayed"`
				AvgPoints   float64 `json:"avgPoints"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.TeamID, ShouldEqual, 7)
			So(resp.GamesPlayed, ShouldEqual, 1)
			So(resp.AvgPoints, ShouldEqual, 25.0)
		})

		Convey("When querying a player nobody has heard of", func() {
			rec := get(mux, "/stat/player/999")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var resp struct {
				PlayerName  string `json:"playerName"`
				GamesPlayed int64  `json:"gamesPlayed"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.PlayerName, ShouldEqual, "Unknown Player")
			So(resp.GamesPlayed, ShouldEqual, 0)
		})

		Convey("When the id segment is malformed", func() {
			So(get(mux, "/stat/player/abc").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/stat/team/-1").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestMonitoringEndpoints(t *testing.T) {
	ctx := context.Background()

	Convey("Given the API wired to a running service", t, func() {
		mux, svc := newMux(ctx)
		defer svc.Stop()

		Convey("When scraping /healthz", func() {
			rec := get(mux, "/healthz")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When reading /stats", func() {
			rec := get(mux, "/stats")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var stats map[string]interface{}
			So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})
	})
}
