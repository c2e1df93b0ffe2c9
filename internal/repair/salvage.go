package repair

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var objectBoundary = regexp.MustCompile(`\}\s*,\s*\{`)

// salvage parses the objects of a broken array one at a time, keeping those
// that parse on their own.
func (r *Repairer) salvage(span string) []any {
	out := []any{}
	if len(span) <= 2 {
		return out
	}

	fragments := objectBoundary.Split(span[1:len(span)-1], -1)
	for i, frag := range fragments {
		frag = strings.TrimSpace(frag)
		if !strings.HasPrefix(frag, "{") {
			frag = "{" + frag
		}
		if !strings.HasSuffix(frag, "}") {
			frag += "}"
		}

		v, err := r.parse(frag)
		if err != nil {
			r.logger.Debug("dropping unparseable fragment",
				zap.Int("index", i), zap.String("fragment", frag), zap.Error(err))
			continue
		}
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}

	r.logger.Debug("salvaged fragments",
		zap.Int("fragments", len(fragments)), zap.Int("recovered", len(out)))
	return out
}
