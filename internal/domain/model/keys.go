package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Hot-store key layout. All composite keys use ":" separators:
//
//	s:<season>:p:<playerId>      player season aggregate hash
//	s:<season>:t:<teamId>        team season aggregate hash
//	g:<gameId>:p:<playerId>      live game snapshot hash
//	team_game:<teamId>:<gameId>  per-team per-game marker
//	game:<gameId>:players        set of players seen in a game
//	dirty:<seasonKey>            aggregate-diverged-from-durable flag
const (
	dirtyPrefix        = "dirty:"
	teamGamePrefix     = "team_game:"
	subscriptionSuffix = ":players"
)

// NormalizeSeason makes a season label key-safe ("2024/25" -> "2024_25").
func NormalizeSeason(season string) string {
	return strings.ReplaceAll(season, "/", "_")
}

// SeasonKey builds the aggregate hash key for a subject and season.
func SeasonKey(season string, sub Subject) string {
	return fmt.Sprintf("s:%s:%s:%d", NormalizeSeason(season), sub.Type, sub.ID)
}

// GameKey builds the live snapshot hash key for a game/player pair.
func GameKey(gameID, playerID int64) string {
	return fmt.Sprintf("g:%d:p:%d", gameID, playerID)
}

// GamePattern matches every snapshot key of one game.
func GamePattern(gameID int64) string {
	return fmt.Sprintf("g:%d:p:*", gameID)
}

// PlayerGamePattern matches every snapshot key of one player across games.
func PlayerGamePattern(playerID int64) string {
	return fmt.Sprintf("g:*:p:%d", playerID)
}

// TeamGameKey builds the dedup marker key for a team/game pair.
func TeamGameKey(teamID, gameID int64) string {
	return fmt.Sprintf("%s%d:%d", teamGamePrefix, teamID, gameID)
}

// TeamGamePattern matches every marker key of one team.
func TeamGamePattern(teamID int64) string {
	return fmt.Sprintf("%s%d:*", teamGamePrefix, teamID)
}

// SubscriptionKey builds the player-set key for a game.
func SubscriptionKey(gameID int64) string {
	return fmt.Sprintf("game:%d%s", gameID, subscriptionSuffix)
}

// DirtyKey derives the dirty flag key for a season aggregate key.
func DirtyKey(seasonKey string) string {
	return dirtyPrefix + seasonKey
}

// SeasonKeyFromDirty strips the dirty prefix, returning the aggregate key.
func SeasonKeyFromDirty(dirtyKey string) string {
	return strings.TrimPrefix(dirtyKey, dirtyPrefix)
}

// DirtyPattern matches every dirty flag of a season and subject type.
func DirtyPattern(season string, t SubjectType) string {
	return fmt.Sprintf("%ss:%s:%s:*", dirtyPrefix, NormalizeSeason(season), t)
}

// SeasonPattern matches every aggregate key of a season and subject type.
func SeasonPattern(season string, t SubjectType) string {
	return fmt.Sprintf("s:%s:%s:*", NormalizeSeason(season), t)
}

// ParseSeasonKey extracts the subject from an aggregate key such as
// "s:2024_25:p:23".
func ParseSeasonKey(key string) (Subject, error) {
	parts := strings.Split(key, ":")
	if len(parts) != 4 || parts[0] != "s" {
		return Subject{}, fmt.Errorf("malformed season key %q", key)
	}
	t := SubjectType(parts[2])
	if t != SubjectPlayer && t != SubjectTeam {
		return Subject{}, fmt.Errorf("unknown subject type in key %q", key)
	}
	id, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Subject{}, fmt.Errorf("malformed subject id in key %q: %w", key, err)
	}
	return Subject{Type: t, ID: id}, nil
}

// PlayerIDFromGameKey extracts the player id from "g:<game>:p:<player>".
func PlayerIDFromGameKey(key string) (int64, error) {
	parts := strings.Split(key, ":")
	if len(parts) != 4 || parts[0] != "g" || parts[2] != "p" {
		return 0, fmt.Errorf("malformed game key %q", key)
	}
	id, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed player id in key %q: %w", key, err)
	}
	return id, nil
}
