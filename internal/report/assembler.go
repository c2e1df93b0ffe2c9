// Package report assembles a project's saved campaign assets into the
// sanitized HTML (and optionally PDF) campaign report.
package report

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/db"
	"github.com/jonathan/advision/internal/rendering"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrProjectNotFound is returned when the project does not exist or belongs
// to another user.
var ErrProjectNotFound = errors.New("project not found or access denied")

// Store is the read side of the database the assembler needs.
type Store interface {
	GetProject(ctx context.Context, projectID, userID uuid.UUID) (*db.Project, error)
	ListAdCopies(ctx context.Context, projectID, userID uuid.UUID) ([]db.AdCopy, error)
	ListKeywords(ctx context.Context, projectID, userID uuid.UUID) ([]db.Keyword, error)
	ListAudiences(ctx context.Context, projectID, userID uuid.UUID) ([]db.Audience, error)
	ListBrandStyles(ctx context.Context, projectID, userID uuid.UUID) ([]db.BrandStyle, error)
}

// Assembler builds campaign reports from stored records.
type Assembler struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewAssembler creates an Assembler. A nil logger disables logging.
func NewAssembler(store Store, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{store: store, logger: logger, now: time.Now}
}

// Data loads everything a report shows. The four record sets are fetched
// concurrently; any failure fails the whole report.
func (a *Assembler) Data(ctx context.Context, projectID, userID uuid.UUID) (*rendering.ReportData, error) {
	project, err := a.store.GetProject(ctx, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	var (
		adCopies    []db.AdCopy
		keywords    []db.Keyword
		audiences   []db.Audience
		brandStyles []db.BrandStyle
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if adCopies, err = a.store.ListAdCopies(gCtx, projectID, userID); err != nil {
			return fmt.Errorf("failed to load ad copies: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if keywords, err = a.store.ListKeywords(gCtx, projectID, userID); err != nil {
			return fmt.Errorf("failed to load keywords: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if audiences, err = a.store.ListAudiences(gCtx, projectID, userID); err != nil {
			return fmt.Errorf("failed to load audiences: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if brandStyles, err = a.store.ListBrandStyles(gCtx, projectID, userID); err != nil {
			return fmt.Errorf("failed to load brand styles: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Debug("report data loaded",
		zap.String("project_id", projectID.String()),
		zap.Int("ad_copies", len(adCopies)),
		zap.Int("keywords", len(keywords)),
		zap.Int("audiences", len(audiences)),
		zap.Int("brand_styles", len(brandStyles)),
	)

	return &rendering.ReportData{
		Project:     toProject(project),
		AdCopies:    toAdCopies(adCopies),
		Keywords:    toKeywords(keywords),
		Audiences:   toAudiences(audiences),
		BrandStyles: toBrandStyles(brandStyles),
		GeneratedAt: a.now(),
	}, nil
}

// HTML renders the sanitized report document.
func (a *Assembler) HTML(ctx context.Context, projectID, userID uuid.UUID) (string, error) {
	data, err := a.Data(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	return rendering.RenderReport(*data)
}

// PDF renders the report and prints it with headless Chrome.
func (a *Assembler) PDF(ctx context.Context, projectID, userID uuid.UUID, opts rendering.PDFOptions) ([]byte, error) {
	document, err := a.HTML(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	pdf, err := rendering.RenderPDF(ctx, document, opts)
	if err != nil {
		return nil, err
	}
	a.logger.Info("report printed",
		zap.String("project_id", projectID.String()),
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)),
	)
	return pdf, nil
}

func toProject(p *db.Project) rendering.Project {
	return rendering.Project{
		Name:               p.Name,
		ProductService:     p.ProductService,
		TargetPlatform:     p.TargetPlatform,
		PrimaryGoal:        p.PrimaryGoal,
		ProductDescription: p.ProductDescription,
		ProductFeatures:    p.ProductFeatures,
	}
}

func toAdCopies(copies []db.AdCopy) []rendering.AdCopy {
	out := make([]rendering.AdCopy, 0, len(copies))
	for _, c := range copies {
		rc := rendering.AdCopy{Content: c.Content, Tone: c.Tone, CreatedAt: c.CreatedAt}
		if r := c.Readability; r != nil {
			rc.Readability = &rendering.Readability{
				FleschReadingEase:      r.FleschReadingEase,
				FleschGradeLevel:       r.FleschGradeLevel,
				GunningFog:             r.GunningFog,
				FleschReadingEaseLabel: string(r.FleschReadingEaseLabel),
				FleschGradeLevelLabel:  string(r.FleschGradeLevelLabel),
				GunningFogLabel:        string(r.GunningFogLabel),
			}
		}
		out = append(out, rc)
	}
	return out
}

func toKeywords(keywords []db.Keyword) []rendering.Keyword {
	out := make([]rendering.Keyword, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, rendering.Keyword{
			Keyword:      k.Keyword,
			SearchVolume: k.SearchVolume,
			Competition:  k.Competition,
			Intent:       k.Intent,
			Suggestions:  k.Suggestions,
			CreatedAt:    k.CreatedAt,
		})
	}
	return out
}

func toAudiences(audiences []db.Audience) []rendering.Audience {
	out := make([]rendering.Audience, 0, len(audiences))
	for _, a := range audiences {
		ra := rendering.Audience{
			Name:      a.Name,
			AgeRange:  a.AgeRange,
			Gender:    a.Gender,
			Interests: a.Interests,
			Platforms: a.Platforms,
		}
		if a.PurchaseIntent != nil {
			ra.PurchaseIntent = *a.PurchaseIntent
		}
		out = append(out, ra)
	}
	return out
}

// Brand names and fonts are stored HTML-escaped; the template escapes again.
func toBrandStyles(styles []db.BrandStyle) []rendering.BrandStyle {
	out := make([]rendering.BrandStyle, 0, len(styles))
	for _, s := range styles {
		out = append(out, rendering.BrandStyle{
			BrandName: html.UnescapeString(s.BrandName),
			Colors:    s.Colors,
			Font:      html.UnescapeString(s.Font),
		})
	}
	return out
}
