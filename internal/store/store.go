// Package store persists analyses and their simulation history.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fincase/bizcase-cli/internal/model"
)

// ErrNotFound is returned when the requested record does not exist in the
// store. Callers match it with eris.Is.
var ErrNotFound = eris.New("not found")

// AnalysisFilter specifies criteria for listing analyses.
type AnalysisFilter struct {
	Status    model.AnalysisStatus `json:"status,omitempty"`
	Archetype model.Archetype      `json:"archetype,omitempty"`
	Limit     int                  `json:"limit,omitempty"`
	Offset    int                  `json:"offset,omitempty"`
}

// Store defines the persistence interface for business-case analyses.
type Store interface {
	// Analyses
	CreateAnalysis(ctx context.Context, name string, arch model.Archetype, baseline []model.FieldValue, result *model.MetricBundle) (*model.Analysis, error)
	UpdateWorking(ctx context.Context, id string, arch model.Archetype, working []model.FieldValue, result *model.MetricBundle) error
	GetAnalysis(ctx context.Context, id string) (*model.Analysis, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.Analysis, error)
	ArchiveAnalysis(ctx context.Context, id string) error

	// Simulation history
	CreateSimulation(ctx context.Context, analysisID, instruction string, deltas []model.ParameterDelta, comparison []model.MetricDelta) (*model.SimulationRecord, error)
	ListSimulations(ctx context.Context, analysisID string, limit int) ([]model.SimulationRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
