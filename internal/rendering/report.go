package rendering

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"
	"strings"
	"sync"
	"time"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

const reportTemplate = "templates/report.html.tmpl"

// ReportData is everything shown in a campaign report. Text fields are plain
// text; escaping happens during rendering.
type ReportData struct {
	Project     Project
	AdCopies    []AdCopy
	Keywords    []Keyword
	Audiences   []Audience
	BrandStyles []BrandStyle
	GeneratedAt time.Time
}

// Project is the overview block of a report.
type Project struct {
	Name               string
	ProductService     string
	TargetPlatform     string
	PrimaryGoal        string
	ProductDescription string
	ProductFeatures    string
}

// AdCopy is one ad copy with its most recent readability snapshot, if any.
type AdCopy struct {
	Content     string
	Tone        string
	CreatedAt   time.Time
	Readability *Readability
}

// Readability holds the three stored scores and their labels.
type Readability struct {
	FleschReadingEase      float64
	FleschGradeLevel       float64
	GunningFog             float64
	FleschReadingEaseLabel string
	FleschGradeLevelLabel  string
	GunningFogLabel        string
}

// Keyword is one keyword research row.
type Keyword struct {
	Keyword      string
	SearchVolume string
	Competition  string
	Intent       string
	Suggestions  []string
	CreatedAt    time.Time
}

// Audience is one target audience row. An empty PurchaseIntent renders as "None".
type Audience struct {
	Name           string
	AgeRange       string
	Gender         string
	Interests      string
	Platforms      string
	PurchaseIntent string
}

// BrandStyle is one saved brand style.
type BrandStyle struct {
	BrandName string
	Colors    []string
	Font      string
}

// Badge is a colored label.
type Badge struct {
	Text  string
	Color string
	Tint  string
}

const neutralColor = "#6E6E73"

var labelColors = map[string]string{
	"Good": "#2E7D32",
	"Fair": "#FBC02D",
	"Bad":  "#FF3B30",
}

var intentColors = map[string]string{
	"Informational": "#0288D1",
	"Transactional": "#2E7D32",
	"Brand-related": "#7B1FA2",
}

func badge(text string, palette map[string]string) Badge {
	c, ok := palette[text]
	if !ok {
		c = neutralColor
	}
	// 8-digit hex: the same color at 1/8 opacity
	return Badge{Text: text, Color: c, Tint: c + "20"}
}

var funcs = template.FuncMap{
	"lines":       featureLines,
	"headline":    headline,
	"inc":         func(i int) int { return i + 1 },
	"join":        strings.Join,
	"score":       func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) },
	"date":        func(t time.Time) string { return t.Format("January 2, 2006") },
	"datetime":    func(t time.Time) string { return t.Format("Jan 2, 2006 15:04") },
	"labelColor":  func(label string) Badge { return badge(label, labelColors) },
	"intentColor": func(intent string) Badge { return badge(intent, intentColors) },
}

var parseReportTemplate = sync.OnceValues(func() (*template.Template, error) {
	content, err := templateFS.ReadFile(reportTemplate)
	if err != nil {
		return nil, &TemplateError{Message: "failed to read report template", Cause: err}
	}
	tmpl, err := template.New("report").Funcs(funcs).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse report template", Cause: err}
	}
	return tmpl, nil
})

// RenderReport renders and sanitizes the campaign report document.
func RenderReport(data ReportData) (string, error) {
	tmpl, err := parseReportTemplate()
	if err != nil {
		return "", err
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", &TemplateError{Message: "failed to execute report template", Cause: err}
	}
	return Sanitize(buf.String())
}

// featureLines splits the feature list on newlines, dropping blank lines.
func featureLines(features string) []string {
	var out []string
	for _, line := range strings.Split(features, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// headline is the first line of an ad copy.
func headline(content string) string {
	first, _, _ := strings.Cut(content, "\n")
	return strings.TrimSpace(first)
}
