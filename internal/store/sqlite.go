package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/fincase/bizcase-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	archetype  TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'active',
	baseline   TEXT NOT NULL,
	working    TEXT,
	result     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS simulations (
	id          TEXT PRIMARY KEY,
	analysis_id TEXT NOT NULL REFERENCES analyses(id),
	instruction TEXT NOT NULL,
	deltas      TEXT NOT NULL,
	comparison  TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE INDEX IF NOT EXISTS idx_analyses_archetype ON analyses(archetype);
CREATE INDEX IF NOT EXISTS idx_simulations_analysis_id ON simulations(analysis_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateAnalysis(ctx context.Context, name string, arch model.Archetype, baseline []model.FieldValue, result *model.MetricBundle) (*model.Analysis, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	baselineJSON, err := json.Marshal(baseline)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal baseline")
	}
	resultJSON, err := marshalNullable(result)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, name, archetype, status, baseline, result, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, string(arch), string(model.AnalysisStatusActive), string(baselineJSON), resultJSON, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert analysis")
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

func (s *SQLiteStore) UpdateWorking(ctx context.Context, id string, arch model.Archetype, working []model.FieldValue, result *model.MetricBundle) error {
	workingJSON, err := json.Marshal(working)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal working")
	}
	resultJSON, err := marshalNullable(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET archetype = ?, working = ?, result = ?, updated_at = ? WHERE id = ?`,
		string(arch), string(workingJSON), resultJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update working %s", id)
	}
	return checkRowsAffected(res, "analysis", id)
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, archetype, status, baseline, working, result, created_at, updated_at FROM analyses WHERE id = ?`,
		id,
	)
	return scanAnalysis(row)
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.Analysis, error) {
	query := `SELECT id, name, archetype, status, baseline, working, result, created_at, updated_at FROM analyses WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Archetype != "" {
		query += ` AND archetype = ?`
		args = append(args, string(filter.Archetype))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}
	return analyses, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

func (s *SQLiteStore) ArchiveAnalysis(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, updated_at = ? WHERE id = ?`,
		string(model.AnalysisStatusArchived), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: archive analysis %s", id)
	}
	return checkRowsAffected(res, "analysis", id)
}

func (s *SQLiteStore) CreateSimulation(ctx context.Context, analysisID, instruction string, deltas []model.ParameterDelta, comparison []model.MetricDelta) (*model.SimulationRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	deltasJSON, err := json.Marshal(deltas)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal deltas")
	}
	comparisonJSON, err := json.Marshal(comparison)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal comparison")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO simulations (id, analysis_id, instruction, deltas, comparison, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, analysisID, instruction, string(deltasJSON), string(comparisonJSON), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert simulation for analysis %s", analysisID)
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

func (s *SQLiteStore) ListSimulations(ctx context.Context, analysisID string, limit int) ([]model.SimulationRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, analysis_id, instruction, deltas, comparison, created_at FROM simulations
		 WHERE analysis_id = ? ORDER BY created_at DESC LIMIT ?`,
		analysisID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list simulations")
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
	return records, eris.Wrap(rows.Err(), "sqlite: list simulations iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

func marshalNullable(v *model.MetricBundle) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scannable) (*model.Analysis, error) {
	var a model.Analysis
	var baselineJSON string
	var workingJSON, resultJSON sql.NullString

	err := row.Scan(&a.ID, &a.Name, &a.Archetype, &a.Status, &baselineJSON, &workingJSON, &resultJSON, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "analysis")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan analysis")
	}

	if err := json.Unmarshal([]byte(baselineJSON), &a.Baseline); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal baseline")
	}
	if workingJSON.Valid {
		if err := json.Unmarshal([]byte(workingJSON.String), &a.Working); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal working")
		}
	}
	if resultJSON.Valid {
		a.Result = &model.MetricBundle{}
		if err := json.Unmarshal([]byte(resultJSON.String), a.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
	}
	return &a, nil
}

func scanSimulation(row scannable) (*model.SimulationRecord, error) {
	var r model.SimulationRecord
	var deltasJSON, comparisonJSON string

	err := row.Scan(&r.ID, &r.AnalysisID, &r.Instruction, &deltasJSON, &comparisonJSON, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "simulation")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan simulation")
	}

	if err := json.Unmarshal([]byte(deltasJSON), &r.Deltas); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal deltas")
	}
	if err := json.Unmarshal([]byte(comparisonJSON), &r.Comparison); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal comparison")
	}
	return &r, nil
}
