package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i474232898/weather-monitoring/internal/weather"
)

// PostgresStore persists observations and alert rules in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, weather.Wrap(weather.KindStoreUnavailable, err, "connect to postgres")
	}
	s := &PostgresStore{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the pool resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS observations (
    id            UUID PRIMARY KEY,
    location_name TEXT NOT NULL,
    lat           DOUBLE PRECISION NOT NULL,
    lon           DOUBLE PRECISION NOT NULL,
    temp          DOUBLE PRECISION NOT NULL,
    feels_like    DOUBLE PRECISION NOT NULL,
    condition     TEXT NOT NULL,
    humidity      DOUBLE PRECISION NOT NULL,
    wind_speed    DOUBLE PRECISION NOT NULL,
    ts            TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS observations_location_ts_idx ON observations (location_name, ts);

CREATE TABLE IF NOT EXISTS alert_rules (
    id            UUID PRIMARY KEY,
    email         TEXT NOT NULL,
    location_name TEXT NOT NULL,
    lat           DOUBLE PRECISION NOT NULL,
    lon           DOUBLE PRECISION NOT NULL,
    operator      TEXT NOT NULL CHECK (operator IN ('above', 'below')),
    threshold     DOUBLE PRECISION NOT NULL,
    active        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS alert_rules_location_active_idx ON alert_rules (location_name) WHERE active;
`

// EnsureSchema creates the tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return weather.Wrap(weather.KindStoreUnavailable, err, "ensure schema")
	}
	return nil
}

const insertObservationSQL = `
INSERT INTO observations (id, location_name, lat, lon, temp, feels_like, condition, humidity, wind_speed, ts)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

// Append inserts one observation. A single-row insert is atomic for readers.
func (s *PostgresStore) Append(ctx context.Context, obs weather.Observation) error {
	_, err := s.pool.Exec(ctx, insertObservationSQL,
		obs.ID, obs.Location.Name, obs.Location.Lat, obs.Location.Lon,
		obs.Temperature, obs.FeelsLike, string(obs.Condition), obs.Humidity, obs.WindSpeed,
		obs.Timestamp.UTC(),
	)
	if err != nil {
		return weather.Wrap(weather.KindStoreUnavailable, err, "insert observation")
	}
	return nil
}

const selectObservationColumns = `
SELECT id::text, location_name, lat, lon, temp, feels_like, condition, humidity, wind_speed, ts
FROM observations`

// QueryRange returns observations with from <= ts <= to, ascending by ts.
func (s *PostgresStore) QueryRange(ctx context.Context, name string, from, to time.Time) ([]weather.Observation, error) {
	rows, err := s.pool.Query(ctx, selectObservationColumns+`
WHERE location_name = $1 AND ts >= $2 AND ts <= $3
ORDER BY ts`, name, from.UTC(), to.UTC())
	if err != nil {
		return nil, weather.Wrap(weather.KindStoreUnavailable, err, "query observations")
	}
	defer rows.Close()

	result := make([]weather.Observation, 0)
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, weather.Wrap(weather.KindStoreUnavailable, err, "scan observation")
		}
		result = append(result, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, weather.Wrap(weather.KindStoreUnavailable, err, "read observations")
	}
	return result, nil
}

// Latest returns the newest observation for a location.
func (s *PostgresStore) Latest(ctx context.Context, name string) (weather.Observation, error) {
	row := s.pool.QueryRow(ctx, selectObservationColumns+`
WHERE location_name = $1
ORDER BY ts DESC
LIMIT 1`, name)

	obs, err := scanObservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return weather.Observation{}, weather.Errorf(weather.KindNotFound, "no observations for %q", name)
	}
	if err != nil {
		return weather.Observation{}, weather.Wrap(weather.KindStoreUnavailable, err, "load latest observation")
	}
	return obs, nil
}

func scanObservation(row pgx.Row) (weather.Observation, error) {
	var (
		obs  weather.Observation
		cond string
	)
	err := row.Scan(
		&obs.ID,
		&obs.Location.Name,
		&obs.Location.Lat,
		&obs.Location.Lon,
		&obs.Temperature,
		&obs.FeelsLike,
		&cond,
		&obs.Humidity,
		&obs.WindSpeed,
		&obs.Timestamp,
	)
	obs.Condition = weather.Condition(cond)
	obs.Timestamp = obs.Timestamp.UTC()
	return obs, err
}

const insertAlertRuleSQL = `
INSERT INTO alert_rules (id, email, location_name, lat, lon, operator, threshold, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

// Create stores a new alert rule.
func (s *PostgresStore) Create(ctx context.Context, rule weather.AlertRule) (weather.AlertRule, error) {
	_, err := s.pool.Exec(ctx, insertAlertRuleSQL,
		rule.ID, rule.Email, rule.Location.Name, rule.Location.Lat, rule.Location.Lon,
		string(rule.Operator), rule.Threshold, rule.Active, rule.CreatedAt.UTC(),
	)
	if err != nil {
		return weather.AlertRule{}, weather.Wrap(weather.KindStoreUnavailable, err, "insert alert rule")
	}
	return rule, nil
}

const selectAlertRuleColumns = `
SELECT id::text, email, location_name, lat, lon, operator, threshold, active, created_at
FROM alert_rules`

// FindActiveByLocation returns active rules whose location name equals name exactly.
func (s *PostgresStore) FindActiveByLocation(ctx context.Context, name string) ([]weather.AlertRule, error) {
	return s.queryRules(ctx, selectAlertRuleColumns+`
WHERE active AND location_name = $1
ORDER BY created_at`, name)
}

// ListActive returns all active rules in creation order.
func (s *PostgresStore) ListActive(ctx context.Context) ([]weather.AlertRule, error) {
	return s.queryRules(ctx, selectAlertRuleColumns+`
WHERE active
ORDER BY created_at`)
}

func (s *PostgresStore) queryRules(ctx context.Context, sql string, args ...any) ([]weather.AlertRule, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, weather.Wrap(weather.KindStoreUnavailable, err, "query alert rules")
	}
	defer rows.Close()

	rules := make([]weather.AlertRule, 0)
	for rows.Next() {
		var (
			rule weather.AlertRule
			op   string
		)
		if err := rows.Scan(
			&rule.ID,
			&rule.Email,
			&rule.Location.Name,
			&rule.Location.Lat,
			&rule.Location.Lon,
			&op,
			&rule.Threshold,
			&rule.Active,
			&rule.CreatedAt,
		); err != nil {
			return nil, weather.Wrap(weather.KindStoreUnavailable, err, "scan alert rule")
		}
		rule.Operator = weather.Operator(op)
		rule.CreatedAt = rule.CreatedAt.UTC()
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, weather.Wrap(weather.KindStoreUnavailable, err, "read alert rules")
	}
	return rules, nil
}
