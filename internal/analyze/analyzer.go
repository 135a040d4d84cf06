// Package analyze is the LLM collaborator: it extracts structured field
// estimates from raw business documents and falls back to the model for
// chat instructions the template catalog cannot parse. Its output feeds
// the resolver's model tier; it never bypasses resolution.
package analyze

import (
	"context"
	"encoding/json"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fincase/bizcase-cli/internal/model"
	"github.com/fincase/bizcase-cli/internal/resolve"
	"github.com/fincase/bizcase-cli/pkg/anthropic"
)

// Analyzer extracts field estimates from documents via the Anthropic API.
type Analyzer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New creates an Analyzer.
func New(client anthropic.Client, modelID string, maxTokens int64) *Analyzer {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Analyzer{client: client, model: modelID, maxTokens: maxTokens}
}

const extractionSystem = `You extract financial parameters from business documents. Return ONLY valid JSON, no markdown fences, no commentary.`

const extractionPrompt = `Extract these financial metrics from the business document below. Use null when a value is not found.

{
  "project_name": "string or null",
  "is_savings_case": true when the document is about cost reduction, efficiency or avoided costs,
  "annual_value": total annual revenue OR savings in EUR ("€5 million p.a." means 5000000),
  "unit_volume": number of units, customers or vehicles,
  "unit_price": price or value per unit in EUR,
  "development_cost": one-time development, setup or implementation cost in EUR,
  "growth_rate": annual growth rate in percent,
  "royalty_rate": royalty or licensing percentage taken per transaction (0-100),
  "take_rate": customer adoption or conversion rate in percent,
  "market_coverage": market penetration in percent,
  "cogs_per_unit": cost of goods sold per unit in EUR,
  "confidence": your overall 0-100 confidence in these numbers
}

Annual values must be per-annum amounts, not one-time totals. Sum any mentioned study, software, implementation and training costs into development_cost.

DOCUMENT:
`

// extraction mirrors the JSON shape the prompt asks for. Pointers keep
// "absent" distinct from zero.
type extraction struct {
	ProjectName     *string  `json:"project_name"`
	IsSavingsCase   *bool    `json:"is_savings_case"`
	AnnualValue     *float64 `json:"annual_value"`
	UnitVolume      *float64 `json:"unit_volume"`
	UnitPrice       *float64 `json:"unit_price"`
	DevelopmentCost *float64 `json:"development_cost"`
	GrowthRate      *float64 `json:"growth_rate"`
	RoyaltyRate     *float64 `json:"royalty_rate"`
	TakeRate        *float64 `json:"take_rate"`
	MarketCoverage  *float64 `json:"market_coverage"`
	COGSPerUnit     *float64 `json:"cogs_per_unit"`
	Confidence      *float64 `json:"confidence"`
}

// ExtractCandidates asks the model for field estimates over the document
// text and returns them keyed by canonical field name, ready for the
// resolver's model tier.
func (a *Analyzer) ExtractCandidates(ctx context.Context, docText string) (map[string]resolve.ModelCandidate, error) {
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    extractionSystem,
		Messages: []anthropic.Message{
			{Role: "user", Content: extractionPrompt + docText},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "analyze: extraction request")
	}

	var ex extraction
	if err := unmarshalModelJSON(resp.Text, &ex); err != nil {
		return nil, eris.Wrap(err, "analyze: parse extraction")
	}

	conf := 0.0
	if ex.Confidence != nil {
		conf = *ex.Confidence
	}

	out := make(map[string]resolve.ModelCandidate)
	putText(out, model.FieldProjectName, ex.ProjectName, conf)
	putBool(out, model.FieldSavingsSignal, ex.IsSavingsCase, conf)
	putNum(out, model.FieldAnnualValue, ex.AnnualValue, conf)
	putNum(out, model.FieldUnitVolume, ex.UnitVolume, conf)
	putNum(out, model.FieldUnitPrice, ex.UnitPrice, conf)
	putNum(out, model.FieldDevelopmentCost, ex.DevelopmentCost, conf)
	putNum(out, model.FieldGrowthRate, ex.GrowthRate, conf)
	putNum(out, model.FieldRoyaltyRate, ex.RoyaltyRate, conf)
	putNum(out, model.FieldTakeRate, ex.TakeRate, conf)
	putNum(out, model.FieldMarketCoverage, ex.MarketCoverage, conf)
	putNum(out, model.FieldCOGSPerUnit, ex.COGSPerUnit, conf)

	zap.L().Info("analyze: document extraction complete",
		zap.Int("fields", len(out)),
		zap.Float64("confidence", conf),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens))

	return out, nil
}

const instructionSystem = `You translate modification requests against a financial model into structured deltas. Return ONLY a JSON array, no markdown fences.`

const instructionPrompt = `Translate the user request into parameter deltas. Allowed fields: annual_value, unit_volume, unit_price, growth_rate, development_cost, royalty_rate, take_rate, market_coverage, cogs_per_unit, explicit_tam, explicit_sam, explicit_som. Allowed operations: set, increase_pct, decrease_pct, increase_abs, decrease_abs.

Return a JSON array like [{"field": "unit_price", "operation": "increase_pct", "magnitude": 10}]. Return [] when the request does not modify any parameter.

REQUEST: `

// ParseInstruction is the model fallback for instructions the template
// catalog could not parse. It returns an empty slice, not an error, when
// the model finds nothing actionable.
func (a *Analyzer) ParseInstruction(ctx context.Context, instruction string) ([]model.ParameterDelta, error) {
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    instructionSystem,
		Messages: []anthropic.Message{
			{Role: "user", Content: instructionPrompt + instruction},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "analyze: instruction request")
	}

	var deltas []model.ParameterDelta
	if err := unmarshalModelJSON(resp.Text, &deltas); err != nil {
		return nil, eris.Wrap(err, "analyze: parse instruction deltas")
	}
	return deltas, nil
}

// unmarshalModelJSON strips markdown fences the model sometimes emits and
// repairs structurally broken JSON before unmarshaling.
func unmarshalModelJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx >= 0 {
		text = strings.TrimPrefix(text[idx:], "```json")
		text = strings.TrimPrefix(text, "```")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}
	repaired, err := jsonrepair.RepairJSON(text)
	if err != nil {
		return eris.Wrap(err, "repair json")
	}
	return eris.Wrap(json.Unmarshal([]byte(repaired), v), "unmarshal repaired json")
}

func putNum(out map[string]resolve.ModelCandidate, field string, v *float64, conf float64) {
	if v == nil {
		return
	}
	out[field] = resolve.ModelCandidate{Value: *v, Confidence: conf}
}

func putBool(out map[string]resolve.ModelCandidate, field string, v *bool, conf float64) {
	if v == nil {
		return
	}
	out[field] = resolve.ModelCandidate{Value: *v, Confidence: conf}
}

func putText(out map[string]resolve.ModelCandidate, field string, v *string, conf float64) {
	if v == nil || *v == "" {
		return
	}
	out[field] = resolve.ModelCandidate{Value: *v, Confidence: conf}
}
