// Package repair recovers JSON arrays from completion API output that wraps
// them in prose, code fences or small syntax errors.
package repair

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"
)

// Repairer runs the cleanup passes over raw model output. The zero value is
// not usable; construct one with New.
type Repairer struct {
	logger *zap.Logger
	// fix is the general purpose JSON repair applied before strict parsing.
	fix func(string) (string, error)
}

// New returns a Repairer that logs each pass at debug level. A nil logger
// disables logging.
func New(logger *zap.Logger) *Repairer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repairer{logger: logger, fix: jsonrepair.JSONRepair}
}

// Records recovers the JSON objects of the first array found in content,
// using the process-wide logger.
func Records(content string) []map[string]any {
	return New(zap.L()).Records(content)
}

// Strings recovers the string elements of the first array found in content.
func Strings(content string) []string {
	return New(zap.L()).Strings(content)
}

// Records returns the objects of the recovered array in order. Non-object
// elements are skipped. The result is empty, never nil-with-error, when
// nothing usable could be recovered.
func (r *Repairer) Records(content string) []map[string]any {
	values := r.Values(content)
	out := make([]map[string]any, 0, len(values))
	for _, v := range values {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Strings returns the trimmed, non-empty string elements of the recovered
// array.
func (r *Repairer) Strings(content string) []string {
	values := r.Values(content)
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Values returns every element of the recovered array.
func (r *Repairer) Values(content string) []any {
	log := r.logger.With(zap.Int("input_len", len(content)))

	if strings.TrimSpace(content) == "" || !strings.Contains(content, "[") || !strings.Contains(content, "]") {
		log.Debug("no array brackets in content")
		return []any{}
	}

	cleaned := collapseWhitespace(stripFences(content))
	log.Debug("stripped fences", zap.String("text", cleaned))

	span, ok := extractArray(cleaned)
	if !ok {
		log.Debug("no bracketed span found")
		return []any{}
	}
	log.Debug("extracted array", zap.String("text", span))

	span = removeTrailingCommas(span)
	span = removeLeadingCommas(span)
	span = escapeStrayQuotes(span)
	span = quoteBareTokens(span)
	span = strings.TrimSpace(span)
	log.Debug("applied textual repairs", zap.String("text", span))

	if span == "[]" || span == "[ ]" {
		return []any{}
	}
	if !strings.HasPrefix(span, "[") || !strings.HasSuffix(span, "]") {
		log.Debug("repaired text is not an array")
		return []any{}
	}

	parsed, err := r.parse(span)
	if err == nil {
		arr, isArray := parsed.([]any)
		if !isArray {
			log.Debug("parsed value is not an array")
			return []any{}
		}
		return arr
	}
	log.Debug("array parse failed, salvaging fragments", zap.Error(err))

	return r.salvage(span)
}

// parse runs the general purpose repair and then decodes strictly.
func (r *Repairer) parse(text string) (any, error) {
	fixed, err := r.fix(text)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal([]byte(fixed), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Decode converts records into T, dropping records that do not fit.
func Decode[T any](records []map[string]any) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
