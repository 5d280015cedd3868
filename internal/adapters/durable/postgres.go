package durable

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/courtside/internal/domain/model"
)

// PostgresStore implements Store on a pgx connection pool. The schema is
// managed externally:
//
//	stat_player_sum(player_id, season, games_played, sum_points, ...,
//	                sum_minutes numeric, updated_at)  pk (player_id, season)
//	stat_team_sum  (team_id, season, ...)             pk (team_id, season)
//	player(id, name), team(id, name)
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// NewPostgresFromDSN connects using a postgres DSN and verifies the
// connection with a ping.
func NewPostgresFromDSN(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) table(t model.SubjectType) (table, idCol string) {
	if t == model.SubjectTeam {
		return "stat_team_sum", "team_id"
	}
	return "stat_player_sum", "player_id"
}

func (s *PostgresStore) ReadSeasonStats(ctx context.Context, sub model.Subject, season string) (model.Aggregate, bool, error) {
	table, idCol := s.table(sub.Type)
	query := fmt.Sprintf(`
		SELECT games_played, sum_points, sum_rebounds, sum_assists,
		       sum_steals, sum_blocks, sum_fouls, sum_turnovers, sum_minutes
		FROM %s
		WHERE %s = $1 AND season = $2`, table, idCol)

	var agg model.Aggregate
	var minutes float64
	err := s.pool.QueryRow(ctx, query, sub.ID, season).Scan(
		&agg.GamesPlayed,
		&agg.Sums.Points,
		&agg.Sums.Rebounds,
		&agg.Sums.Assists,
		&agg.Sums.Steals,
		&agg.Sums.Blocks,
		&agg.Sums.Fouls,
		&agg.Sums.Turnovers,
		&minutes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Aggregate{}, false, nil
	}
	if err != nil {
		return model.Aggregate{}, false, fmt.Errorf("read %s/%d season %s: %w", sub.Type, sub.ID, season, err)
	}
	// Minutes are stored as decimal minutes in the database and as
	// fixed-point tenths everywhere else.
	agg.Sums.MinutesTenths = int64(minutes*10 + 0.5)
	return agg, true, nil
}

func (s *PostgresStore) UpsertSeasonStats(ctx context.Context, sub model.Subject, season string, agg model.Aggregate) error {
	table, idCol := s.table(sub.Type)
	query := fmt.Sprintf(`
		INSERT INTO %s
		(%s, season, games_played, sum_points, sum_rebounds, sum_assists,
		 sum_steals, sum_blocks, sum_fouls, sum_turnovers, sum_minutes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CURRENT_TIMESTAMP)
		ON CONFLICT (%s, season)
		DO UPDATE SET
			games_played  = EXCLUDED.games_played,
			sum_points    = EXCLUDED.sum_points,
			sum_rebounds  = EXCLUDED.sum_rebounds,
			sum_assists   = EXCLUDED.sum_assists,
			sum_steals    = EXCLUDED.sum_steals,
			sum_blocks    = EXCLUDED.sum_blocks,
			sum_fouls     = EXCLUDED.sum_fouls,
			sum_turnovers = EXCLUDED.sum_turnovers,
			sum_minutes   = EXCLUDED.sum_minutes,
			updated_at    = CURRENT_TIMESTAMP`, table, idCol, idCol)

	_, err := s.pool.Exec(ctx, query,
		sub.ID, season,
		agg.GamesPlayed,
		agg.Sums.Points,
		agg.Sums.Rebounds,
		agg.Sums.Assists,
		agg.Sums.Steals,
		agg.Sums.Blocks,
		agg.Sums.Fouls,
		agg.Sums.Turnovers,
		agg.Sums.Minutes(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%d season %s: %w", sub.Type, sub.ID, season, err)
	}
	return nil
}

func (s *PostgresStore) PlayerNames(ctx context.Context) (map[int64]string, error) {
	return s.names(ctx, `SELECT id, name FROM player`)
}

func (s *PostgresStore) TeamNames(ctx context.Context) (map[int64]string, error) {
	return s.names(ctx, `SELECT id, name FROM team`)
}

func (s *PostgresStore) names(ctx context.Context, query string) (map[int64]string, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan name row: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate name rows: %w", err)
	}
	return names, nil
}
