package model

import "strconv"

// Hash field names for season aggregate keys.
const (
	FieldSumPoints    = "sum_points"
	FieldSumRebounds  = "sum_rebounds"
	FieldSumAssists   = "sum_assists"
	FieldSumSteals    = "sum_steals"
	FieldSumBlocks    = "sum_blocks"
	FieldSumFouls     = "sum_fouls"
	FieldSumTurnovers = "sum_turnovers"
	FieldSumMinutes   = "sum_minutes"
	FieldGamesPlayed  = "games_played"
)

// Hash field names for game snapshot keys.
const (
	FieldGameID     = "gameId"
	FieldTeamID     = "teamId"
	FieldPlayerID   = "playerId"
	FieldPoints     = "points"
	FieldRebounds   = "rebounds"
	FieldAssists    = "assists"
	FieldSteals     = "steals"
	FieldBlocks     = "blocks"
	FieldFouls      = "fouls"
	FieldTurnovers  = "turnovers"
	FieldMinutes    = "minutesPlayed"
	FieldGameStatus = "gameStatus"
)

// EncodeAggregate renders an aggregate as hot-store hash fields.
func EncodeAggregate(a Aggregate) map[string]string {
	return map[string]string{
		FieldSumPoints:    strconv.FormatInt(a.Sums.Points, 10),
		FieldSumRebounds:  strconv.FormatInt(a.Sums.Rebounds, 10),
		FieldSumAssists:   strconv.FormatInt(a.Sums.Assists, 10),
		FieldSumSteals:    strconv.FormatInt(a.Sums.Steals, 10),
		FieldSumBlocks:    strconv.FormatInt(a.Sums.Blocks, 10),
		FieldSumFouls:     strconv.FormatInt(a.Sums.Fouls, 10),
		FieldSumTurnovers: strconv.FormatInt(a.Sums.Turnovers, 10),
		FieldSumMinutes:   strconv.FormatInt(a.Sums.MinutesTenths, 10),
		FieldGamesPlayed:  strconv.FormatInt(a.GamesPlayed, 10),
	}
}

// DecodeAggregate parses aggregate hash fields. Malformed values decode as
// zero; their field names come back in bad so callers can log a warning.
func DecodeAggregate(fields map[string]string) (a Aggregate, bad []string) {
	p := fieldParser{fields: fields}
	a.Sums = StatLine{
		Points:        p.int64(FieldSumPoints),
		Rebounds:      p.int64(FieldSumRebounds),
		Assists:       p.int64(FieldSumAssists),
		Steals:        p.int64(FieldSumSteals),
		Blocks:        p.int64(FieldSumBlocks),
		Fouls:         p.int64(FieldSumFouls),
		Turnovers:     p.int64(FieldSumTurnovers),
		MinutesTenths: p.int64(FieldSumMinutes),
	}
	a.GamesPlayed = p.int64(FieldGamesPlayed)
	return a, p.bad
}

// EncodeSnapshot renders a snapshot as hot-store hash fields.
func EncodeSnapshot(s Snapshot) map[string]string {
	status := s.Status
	if status == "" {
		status = StatusLive
	}
	return map[string]string{
		FieldGameID:     strconv.FormatInt(s.GameID, 10),
		FieldTeamID:     strconv.FormatInt(s.TeamID, 10),
		FieldPlayerID:   strconv.FormatInt(s.PlayerID, 10),
		FieldPoints:     strconv.FormatInt(s.Stats.Points, 10),
		FieldRebounds:   strconv.FormatInt(s.Stats.Rebounds, 10),
		FieldAssists:    strconv.FormatInt(s.Stats.Assists, 10),
		FieldSteals:     strconv.FormatInt(s.Stats.Steals, 10),
		FieldBlocks:     strconv.FormatInt(s.Stats.Blocks, 10),
		FieldFouls:      strconv.FormatInt(s.Stats.Fouls, 10),
		FieldTurnovers:  strconv.FormatInt(s.Stats.Turnovers, 10),
		FieldMinutes:    strconv.FormatInt(s.Stats.MinutesTenths, 10),
		FieldGameStatus: string(status),
	}
}

// DecodeSnapshot parses snapshot hash fields, zeroing malformed numerics.
func DecodeSnapshot(fields map[string]string) (s Snapshot, bad []string) {
	p := fieldParser{fields: fields}
	s.GameID = p.int64(FieldGameID)
	s.TeamID = p.int64(FieldTeamID)
	s.PlayerID = p.int64(FieldPlayerID)
	s.Stats = StatLine{
		Points:        p.int64(FieldPoints),
		Rebounds:      p.int64(FieldRebounds),
		Assists:       p.int64(FieldAssists),
		Steals:        p.int64(FieldSteals),
		Blocks:        p.int64(FieldBlocks),
		Fouls:         p.int64(FieldFouls),
		Turnovers:     p.int64(FieldTurnovers),
		MinutesTenths: p.int64(FieldMinutes),
	}
	s.Status = GameStatus(fields[FieldGameStatus])
	if s.Status == "" {
		s.Status = StatusLive
	}
	return s, p.bad
}

type fieldParser struct {
	fields map[string]string
	bad    []string
}

func (p *fieldParser) int64(field string) int64 {
	raw, ok := p.fields[field]
	if !ok || raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.bad = append(p.bad, field)
		return 0
	}
	return v
}
