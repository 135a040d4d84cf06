package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/fincase/bizcase-cli/internal/db"
	"github.com/fincase/bizcase-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool, used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	archetype  TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'active',
	baseline   JSONB NOT NULL,
	working    JSONB,
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS simulations (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	analysis_id TEXT NOT NULL REFERENCES analyses(id),
	instruction TEXT NOT NULL,
	deltas      JSONB NOT NULL,
	comparison  JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE INDEX IF NOT EXISTS idx_analyses_archetype ON analyses(archetype);
CREATE INDEX IF NOT EXISTS idx_simulations_analysis_id ON simulations(analysis_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateAnalysis(ctx context.Context, name string, arch model.Archetype, baseline []model.FieldValue, result *model.MetricBundle) (*model.Analysis, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	baselineJSON, err := json.Marshal(baseline)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal baseline")
	}
	resultJSON, err := marshalNullable(result)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (id, name, archetype, status, baseline, result, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, name, string(arch), string(model.AnalysisStatusActive), string(baselineJSON), resultJSON, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert analysis")
	}

	return &model.Analysis{
		ID:        id,
		Name:      name,
		Archetype: arch,
		Status:    model.AnalysisStatusActive,
		Baseline:  baseline,
		Result:    result,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateWorking(ctx context.Context, id string, arch model.Archetype, working []model.FieldValue, result *model.MetricBundle) error {
	workingJSON, err := json.Marshal(working)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal working")
	}
	resultJSON, err := marshalNullable(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET archetype = $1, working = $2, result = $3, updated_at = $4 WHERE id = $5`,
		string(arch), string(workingJSON), resultJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update working %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "analysis %s", id)
	}
	return nil
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, archetype, status, baseline, working, result, created_at, updated_at FROM analyses WHERE id = $1`,
		id,
	)
	a, err := scanPgAnalysis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "analysis %s", id)
	}
	return a, err
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.Analysis, error) {
	query := `SELECT id, name, archetype, status, baseline, working, result, created_at, updated_at FROM analyses WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	if filter.Archetype != "" {
		args = append(args, string(filter.Archetype))
		query += ` AND archetype = $` + itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		a, err := scanPgAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}
	return analyses, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}

func (s *PostgresStore) ArchiveAnalysis(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET status = $1, updated_at = $2 WHERE id = $3`,
		string(model.AnalysisStatusArchived), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: archive analysis %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "analysis %s", id)
	}
	return nil
}

func (s *PostgresStore) CreateSimulation(ctx context.Context, analysisID, instruction string, deltas []model.ParameterDelta, comparison []model.MetricDelta) (*model.SimulationRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	deltasJSON, err := json.Marshal(deltas)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal deltas")
	}
	comparisonJSON, err := json.Marshal(comparison)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal comparison")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO simulations (id, analysis_id, instruction, deltas, comparison, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, analysisID, instruction, string(deltasJSON), string(comparisonJSON), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert simulation for analysis %s", analysisID)
	}

	return &model.SimulationRecord{
		ID:          id,
		AnalysisID:  analysisID,
		Instruction: instruction,
		Deltas:      deltas,
		Comparison:  comparison,
		CreatedAt:   now,
	}, nil
}

func (s *PostgresStore) ListSimulations(ctx context.Context, analysisID string, limit int) ([]model.SimulationRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, analysis_id, instruction, deltas, comparison, created_at FROM simulations
		 WHERE analysis_id = $1 ORDER BY created_at DESC LIMIT $2`,
		analysisID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list simulations")
	}
	defer rows.Close()

	var records []model.SimulationRecord
	for rows.Next() {
		r, err := scanSimulation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list simulations iterate")
}

func scanPgAnalysis(row scannable) (*model.Analysis, error) {
	var a model.Analysis
	var baselineJSON []byte
	var workingJSON, resultJSON []byte

	err := row.Scan(&a.ID, &a.Name, &a.Archetype, &a.Status, &baselineJSON, &workingJSON, &resultJSON, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan analysis")
	}

	if err := json.Unmarshal(baselineJSON, &a.Baseline); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal baseline")
	}
	if len(workingJSON) > 0 {
		if err := json.Unmarshal(workingJSON, &a.Working); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal working")
		}
	}
	if len(resultJSON) > 0 {
		a.Result = &model.MetricBundle{}
		if err := json.Unmarshal(resultJSON, a.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	return &a, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
