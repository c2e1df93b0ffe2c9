// Package generation produces ad copies, keywords, audiences and design
// suggestions through a completion API.
package generation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/advision/internal/llm"
	"github.com/jonathan/advision/internal/prompts"
	"github.com/jonathan/advision/internal/repair"
	"github.com/jonathan/advision/internal/types"
)

const (
	temperature         = 0.7
	adCopyMaxTokens     = 500
	adCopyKeywordTokens = 200
	recordMaxTokens     = 2000
	maxAdCopies         = 3
	minAdCopyKeywords   = 3
	maxAdCopyKeywords   = 4
)

// DefaultAdCopies are returned when the completion endpoint is not found.
var DefaultAdCopies = []string{
	"Boost Your Brand! Engage More Customers. Discover the power of social media ads. Get Started Now.",
	"Elevate Your Game! Superior Comfort Awaits. Unleash Your Potential Today. Join the Movement!",
	"Step Up with Confidence! Durable Design, Endless Possibilities. Start Your Journey Now.",
}

// DefaultKeywords are returned when per-copy keyword generation yields too little.
var DefaultKeywords = []string{"sports shoes", "NX1V", "memory foam sole", "water-resistant"}

// Generator turns project briefs into campaign material.
type Generator struct {
	client   llm.Client
	repairer *repair.Repairer
	logger   *zap.Logger
}

// New creates a Generator. A nil logger disables logging.
func New(client llm.Client, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client:   client,
		repairer: repair.New(logger.Named("repair")),
		logger:   logger,
	}
}

// AdCopies generates up to three ad copies for a project in the given tone.
func (g *Generator) AdCopies(ctx context.Context, brief types.ProjectBrief, tone string) ([]string, error) {
	if strings.TrimSpace(tone) == "" {
		tone = types.DefaultTone
	}
	prompt, err := prompts.Render(prompts.Generation, "ad-copies", map[string]string{
		"ProductService":     brief.ProductService,
		"TargetPlatform":     brief.TargetPlatform,
		"PrimaryGoal":        brief.PrimaryGoal,
		"ProductDescription": brief.ProductDescription,
		"ProductFeatures":    orNone(brief.ProductFeatures),
		"Tone":               tone,
	})
	if err != nil {
		return nil, err
	}

	reply, err := g.client.GenerateContent(ctx, prompt, llm.TierStandard,
		llm.WithTemperature(temperature), llm.WithMaxTokens(adCopyMaxTokens))
	if err != nil {
		if llm.IsNotFound(err) {
			g.logger.Warn("completion endpoint not found, using default ad copies", zap.Error(err))
			return append([]string(nil), DefaultAdCopies...), nil
		}
		return nil, g.callError("failed to generate ad copies", err)
	}

	copies := make([]string, 0, maxAdCopies)
	for _, line := range strings.Split(reply, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		copies = append(copies, line)
		if len(copies) == maxAdCopies {
			break
		}
	}
	g.logger.Debug("generated ad copies", zap.Int("count", len(copies)), zap.String("tone", tone))
	return copies, nil
}

// KeywordsForAdCopy returns three or four keywords for a single ad copy,
// falling back to DefaultKeywords when the reply is unusable.
func (g *Generator) KeywordsForAdCopy(ctx context.Context, adCopy string) ([]string, error) {
	if strings.TrimSpace(adCopy) == "" {
		return nil, &ValidationError{Field: "ad_copy", Message: "must not be empty"}
	}
	prompt, err := prompts.Render(prompts.Generation, "ad-copy-keywords", map[string]string{"AdCopy": adCopy})
	if err != nil {
		return nil, err
	}

	reply, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard,
		llm.WithTemperature(temperature), llm.WithMaxTokens(adCopyKeywordTokens), llm.WithCache())
	if err != nil {
		if llm.IsNotFound(err) {
			g.logger.Warn("completion endpoint not found, using default keywords", zap.Error(err))
			return defaultKeywords(), nil
		}
		return nil, g.callError("failed to generate ad copy keywords", err)
	}

	keywords := g.repairer.Strings(reply)
	if len(keywords) < minAdCopyKeywords {
		g.logger.Warn("not enough keywords generated, using defaults", zap.Int("parsed", len(keywords)))
		return defaultKeywords(), nil
	}
	if len(keywords) > maxAdCopyKeywords {
		keywords = keywords[:maxAdCopyKeywords]
	}
	return keywords, nil
}

// callError wraps a completion failure, calling out rejected credentials.
func (g *Generator) callError(message string, err error) error {
	if llm.IsUnauthorized(err) {
		return &APICallError{Message: "invalid API key, check the completion provider credentials", Cause: err}
	}
	return &APICallError{Message: message, Cause: err}
}

func defaultKeywords() []string {
	return append([]string(nil), DefaultKeywords...)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None provided"
	}
	return s
}
