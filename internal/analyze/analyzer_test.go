package analyze

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fincase/bizcase-cli/internal/model"
	"github.com/fincase/bizcase-cli/pkg/anthropic"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// mockClient returns a canned response and records the last request.
type mockClient struct {
	text    string
	err     error
	lastReq anthropic.MessageRequest
}

func (m *mockClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &anthropic.MessageResponse{
		ID:    "msg_test",
		Text:  m.text,
		Usage: anthropic.TokenUsage{InputTokens: 100, OutputTokens: 50},
	}, nil
}

func TestExtractCandidates(t *testing.T) {
	mock := &mockClient{text: `{
		"project_name": "Fleet Inspection",
		"is_savings_case": true,
		"annual_value": 2000000,
		"unit_volume": 120000,
		"growth_rate": 5,
		"royalty_rate": null,
		"confidence": 85
	}`}
	a := New(mock, "test-model", 1024)

	candidates, err := a.ExtractCandidates(context.Background(), "some document")
	require.NoError(t, err)

	assert.Equal(t, "Fleet Inspection", candidates[model.FieldProjectName].Value)
	assert.Equal(t, true, candidates[model.FieldSavingsSignal].Value)
	assert.Equal(t, 2000000.0, candidates[model.FieldAnnualValue].Value)
	assert.Equal(t, 120000.0, candidates[model.FieldUnitVolume].Value)
	assert.Equal(t, 85.0, candidates[model.FieldAnnualValue].Confidence)

	// Null fields must be absent, not zero-valued.
	_, ok := candidates[model.FieldRoyaltyRate]
	assert.False(t, ok)
	_, ok = candidates[model.FieldUnitPrice]
	assert.False(t, ok)

	assert.Equal(t, "test-model", mock.lastReq.Model)
	assert.NotEmpty(t, mock.lastReq.System)
}

func TestExtractCandidatesFencedJSON(t *testing.T) {
	mock := &mockClient{text: "Here you go:\n```json\n{\"annual_value\": 500000, \"confidence\": 70}\n```"}
	a := New(mock, "test-model", 0)

	candidates, err := a.ExtractCandidates(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, 500000.0, candidates[model.FieldAnnualValue].Value)
}

func TestExtractCandidatesRepairsBrokenJSON(t *testing.T) {
	// Trailing comma and missing closing brace: repairable, not fatal.
	mock := &mockClient{text: `{"annual_value": 500000, "growth_rate": 5,`}
	a := New(mock, "test-model", 0)

	candidates, err := a.ExtractCandidates(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, 500000.0, candidates[model.FieldAnnualValue].Value)
}

func TestExtractCandidatesRequestError(t *testing.T) {
	mock := &mockClient{err: eris.New("api unavailable")}
	a := New(mock, "test-model", 0)

	_, err := a.ExtractCandidates(context.Background(), "doc")
	assert.Error(t, err)
}

func TestParseInstruction(t *testing.T) {
	mock := &mockClient{text: `[{"field": "unit_price", "operation": "increase_pct", "magnitude": 10}]`}
	a := New(mock, "test-model", 0)

	deltas, err := a.ParseInstruction(context.Background(), "what if prices went up a tenth?")
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, model.FieldUnitPrice, deltas[0].Field)
	assert.Equal(t, model.OpIncreasePct, deltas[0].Op)
	assert.InDelta(t, 10, deltas[0].Magnitude, 1e-9)
}

func TestParseInstructionEmpty(t *testing.T) {
	mock := &mockClient{text: `[]`}
	a := New(mock, "test-model", 0)

	deltas, err := a.ParseInstruction(context.Background(), "make it better")
	require.NoError(t, err)
	assert.Empty(t, deltas)
}
