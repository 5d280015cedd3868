// Package model contains domain models passed between layers.
package model

// GameStatus marks whether a tracked game snapshot is still live.
type GameStatus string

// Snapshot lifecycle states. A snapshot that was never reported is simply
// absent from the hot store (untracked).
const (
	StatusLive     GameStatus = "LIVE"
	StatusFinished GameStatus = "FINISHED"
)

// StatLine holds the eight tracked stat categories. Minutes are fixed-point
// tenths of a minute so the hot store can apply plain integer increments
// without floating-point drift.
type StatLine struct {
	Points        int64
	Rebounds      int64
	Assists       int64
	Steals        int64
	Blocks        int64
	Fouls         int64
	Turnovers     int64
	MinutesTenths int64
}

// Add returns the field-wise sum of two stat lines.
func (s StatLine) Add(o StatLine) StatLine {
	return StatLine{
		Points:        s.Points + o.Points,
		Rebounds:      s.Rebounds + o.Rebounds,
		Assists:       s.Assists + o.Assists,
		Steals:        s.Steals + o.Steals,
		Blocks:        s.Blocks + o.Blocks,
		Fouls:         s.Fouls + o.Fouls,
		Turnovers:     s.Turnovers + o.Turnovers,
		MinutesTenths: s.MinutesTenths + o.MinutesTenths,
	}
}

// Sub returns the field-wise difference s - o. Negative fields are possible
// when a corrective report arrives with lower totals; callers accept them.
func (s StatLine) Sub(o StatLine) StatLine {
	return StatLine{
		Points:        s.Points - o.Points,
		Rebounds:      s.Rebounds - o.Rebounds,
		Assists:       s.Assists - o.Assists,
		Steals:        s.Steals - o.Steals,
		Blocks:        s.Blocks - o.Blocks,
		Fouls:         s.Fouls - o.Fouls,
		Turnovers:     s.Turnovers - o.Turnovers,
		MinutesTenths: s.MinutesTenths - o.MinutesTenths,
	}
}

// Minutes converts the fixed-point representation to decimal minutes.
func (s StatLine) Minutes() float64 {
	return float64(s.MinutesTenths) / 10
}

// Snapshot is the cumulative stat line for one player in one game as of the
// latest report. It is overwritten wholesale on every report.
type Snapshot struct {
	GameID   int64
	TeamID   int64
	PlayerID int64
	Stats    StatLine
	Status   GameStatus
}

// Contribution is the incremental change derived from two successive
// snapshots, applied to a season aggregate. GameCount is 1 only for the
// first report of a (game, player) pair.
type Contribution struct {
	Stats     StatLine
	GameCount int64
}

// SubjectType distinguishes the two units of season aggregation.
type SubjectType string

// Subject type tags; the short forms double as key segments.
const (
	SubjectPlayer SubjectType = "p"
	SubjectTeam   SubjectType = "t"
)

// Subject identifies a player or a team for season aggregation.
type Subject struct {
	Type SubjectType
	ID   int64
}

// Player returns the subject for a player id.
func Player(id int64) Subject { return Subject{Type: SubjectPlayer, ID: id} }

// Team returns the subject for a team id.
func Team(id int64) Subject { return Subject{Type: SubjectTeam, ID: id} }

// Aggregate is a subject's running season totals.
type Aggregate struct {
	Sums        StatLine
	GamesPlayed int64
}
