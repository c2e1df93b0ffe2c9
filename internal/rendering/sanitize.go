package rendering

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockedElements never survive sanitization.
const blockedElements = "script, iframe, object, embed, frame, frameset, applet, base, link[rel=import]"

var urlAttributes = []string{"href", "src", "action", "formaction", "xlink:href"}

// Sanitize removes active content from an HTML document: script-like
// elements, inline event handlers and javascript: URLs.
func Sanitize(document string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", &RenderError{Message: "failed to parse report HTML", Cause: err}
	}

	doc.Find(blockedElements).Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		var handlers []string
		for _, attr := range node.Attr {
			if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
				handlers = append(handlers, attr.Key)
			}
		}
		for _, name := range handlers {
			s.RemoveAttr(name)
		}

		for _, name := range urlAttributes {
			if v, ok := s.Attr(name); ok && isScriptURL(v) {
				s.RemoveAttr(name)
			}
		}
	})

	out, err := doc.Html()
	if err != nil {
		return "", &RenderError{Message: "failed to serialize report HTML", Cause: err}
	}
	return out, nil
}

// isScriptURL reports whether a URL would execute code when followed.
func isScriptURL(v string) bool {
	v = strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, strings.ToLower(v))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") ||
		(strings.HasPrefix(v, "data:") && !strings.HasPrefix(v, "data:image/"))
}
