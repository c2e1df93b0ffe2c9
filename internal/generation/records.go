package generation

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/advision/internal/llm"
	"github.com/jonathan/advision/internal/prompts"
	"github.com/jonathan/advision/internal/repair"
	"github.com/jonathan/advision/internal/schemas"
	"github.com/jonathan/advision/internal/types"
)

// Keywords generates keyword research for a project. Records that do not
// satisfy the keyword schema after repair are dropped.
func (g *Generator) Keywords(ctx context.Context, brief types.ProjectBrief, adCopies []string) ([]types.KeywordSuggestion, error) {
	records, err := g.records(ctx, "keywords", brief, adCopies)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		normalizeKeyword(rec)
	}
	return repair.Decode[types.KeywordSuggestion](g.valid(schemas.Keyword, records)), nil
}

// Audiences generates audience segments for a project. Records missing a
// required field are dropped.
func (g *Generator) Audiences(ctx context.Context, brief types.ProjectBrief, adCopies []string) ([]types.AudienceSegment, error) {
	records, err := g.records(ctx, "audiences", brief, adCopies)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		normalizeAudience(rec)
	}
	return repair.Decode[types.AudienceSegment](g.valid(schemas.Audience, records)), nil
}

func (g *Generator) records(ctx context.Context, key string, brief types.ProjectBrief, adCopies []string) ([]map[string]any, error) {
	prompt, err := prompts.Render(prompts.Generation, key, map[string]string{
		"ProductService":     brief.ProductService,
		"ProductDescription": brief.ProductDescription,
		"ProductFeatures":    orNone(brief.ProductFeatures),
		"AdCopies":           strings.Join(adCopies, "\n"),
	})
	if err != nil {
		return nil, err
	}

	reply, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard,
		llm.WithTemperature(temperature), llm.WithMaxTokens(recordMaxTokens))
	if err != nil {
		if llm.IsNotFound(err) {
			g.logger.Warn("completion endpoint not found, returning no records", zap.String("kind", key), zap.Error(err))
			return []map[string]any{}, nil
		}
		return nil, g.callError("failed to generate "+key, err)
	}
	return g.repairer.Records(reply), nil
}

func (g *Generator) valid(schema string, records []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for i, rec := range records {
		if err := schemas.ValidateRecord(schema, rec); err != nil {
			g.logger.Debug("dropping invalid record", zap.String("schema", schema), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	g.logger.Debug("validated records", zap.String("schema", schema),
		zap.Int("parsed", len(records)), zap.Int("kept", len(out)))
	return out
}

// normalizeKeyword keeps only known suggestion tags, without duplicates.
func normalizeKeyword(rec map[string]any) {
	raw, _ := rec["suggestions"].([]any)
	tags := make([]any, 0, len(types.KeywordTags))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok || !slices.Contains(types.KeywordTags, s) || slices.Contains(tags, any(s)) {
			continue
		}
		tags = append(tags, s)
	}
	rec["suggestions"] = tags
}

// normalizeAudience maps a missing or blank purchase intent to null.
func normalizeAudience(rec map[string]any) {
	if s, ok := rec["purchase_intent"].(string); !ok || strings.TrimSpace(s) == "" {
		rec["purchase_intent"] = nil
	}
}
