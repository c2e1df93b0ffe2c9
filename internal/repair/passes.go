package repair

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	codeFence      = regexp.MustCompile("\\s*```[a-zA-Z]*\\s*")
	whitespaceRuns = regexp.MustCompile(`\s+`)
	trailingComma  = regexp.MustCompile(`,\s*([\]}])`)
	doubledComma   = regexp.MustCompile(`([\[,])\s*,(\s*[{\[])`)
	numberLiteral  = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?$`)
	groupedDigits  = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})*$`)
)

func stripFences(s string) string {
	return codeFence.ReplaceAllString(s, " ")
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}

// extractArray returns the first bracketed span of s. The span ends at the
// first ']' that is not directly followed by another closer; when that cut
// leaves brackets open the balanced span is used instead.
func extractArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}

	cut := ""
	for i := start + 1; i < len(s); i++ {
		if s[i] != ']' {
			continue
		}
		j := skipSpaces(s, i+1)
		if j == len(s) || (s[j] != ']' && s[j] != '}') {
			cut = s[start : i+1]
			break
		}
	}
	if cut == "" {
		return "", false
	}
	if balancedEnd(cut, 0) == len(cut)-1 {
		return cut, true
	}
	if end := balancedEnd(s, start); end > start {
		return s[start : end+1], true
	}
	return cut, true
}

// balancedEnd returns the index of the ']' closing the '[' at open, ignoring
// brackets inside double-quoted strings, or -1.
func balancedEnd(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '"':
			i = stringEnd(s, i)
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// stringEnd returns the index of the quote closing the string opened at
// open, or the last index of s when the string is unterminated.
func stringEnd(s string, open int) int {
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return len(s) - 1
}

func skipSpaces(s string, i int) int {
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return i
}

// closesValue reports whether a quote ending just before i would end a JSON
// token: only spaces remain before a delimiter or the end of text.
func closesValue(s string, i int) bool {
	i = skipSpaces(s, i)
	return i == len(s) || strings.IndexByte(",:}]", s[i]) >= 0
}

// outsideStrings applies fn to every run of s that lies outside
// double-quoted strings.
func outsideStrings(s string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(s))
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '"' {
			continue
		}
		b.WriteString(fn(s[start:i]))
		end := stringEnd(s, i)
		b.WriteString(s[i : end+1])
		i = end
		start = end + 1
	}
	if start < len(s) {
		b.WriteString(fn(s[start:]))
	}
	return b.String()
}

func removeTrailingCommas(s string) string {
	return outsideStrings(s, func(seg string) string {
		return trailingComma.ReplaceAllString(seg, "$1")
	})
}

// removeLeadingCommas drops empty elements such as "[,{" and ",,{".
func removeLeadingCommas(s string) string {
	return outsideStrings(s, func(seg string) string {
		for {
			next := doubledComma.ReplaceAllString(seg, "$1$2")
			if next == seg {
				return seg
			}
			seg = next
		}
	})
}

// escapeStrayQuotes escapes quotes inside a string value that do not end it,
// e.g. `"The "best" shoes"`.
func escapeStrayQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case !inString:
			b.WriteByte(c)
			inString = c == '"'
		case c == '\\' && i+1 < len(s):
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
		case c == '"' && closesValue(s, i+1):
			b.WriteByte(c)
			inString = false
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// quoteBareTokens double-quotes unquoted keys, single-quoted strings and bare
// scalar values. Numbers, booleans and null are left alone.
func quoteBareTokens(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	var stack []byte
	expectKey := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ' ':
			b.WriteByte(c)
		case '{', '[':
			stack = append(stack, c)
			expectKey = c == '{'
			b.WriteByte(c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			expectKey = false
			b.WriteByte(c)
		case ',':
			expectKey = len(stack) > 0 && stack[len(stack)-1] == '{'
			b.WriteByte(c)
		case ':':
			expectKey = false
			b.WriteByte(c)
		case '"':
			end := stringEnd(s, i)
			b.WriteString(s[i : end+1])
			i = end
		default:
			if c == '\'' {
				if end := singleQuoteEnd(s, i); end > i {
					b.WriteString(quote(s[i+1 : end]))
					i = end
					continue
				}
			}
			inObject := len(stack) > 0 && stack[len(stack)-1] == '{'
			end := tokenEnd(s, i, expectKey, inObject)
			token := strings.TrimSpace(s[i:end])
			if expectKey || !isLiteral(token) {
				token = quote(token)
			}
			b.WriteString(token)
			i = end - 1
		}
	}
	return b.String()
}

// singleQuoteEnd finds the quote closing a single-quoted string opened at
// open. Apostrophes followed by text are part of the string.
func singleQuoteEnd(s string, open int) int {
	for i := open + 1; i < len(s); i++ {
		if s[i] == '\'' && closesValue(s, i+1) {
			return i
		}
	}
	return -1
}

// tokenEnd returns the index just past a bare token. Inside an object a
// value like 1,000 keeps its digit groups, since a key can never follow a
// comma unquoted as three digits.
func tokenEnd(s string, start int, key, inObject bool) int {
	stops := ",}]"
	if key {
		stops = ":,{}[]"
	}
	i := start
	for i < len(s) {
		if s[i] == ',' && !key && inObject && thousandsGroup(s, start, i) {
			i += 4
			continue
		}
		if strings.IndexByte(stops, s[i]) >= 0 {
			break
		}
		i++
	}
	return i
}

// thousandsGroup reports whether the comma at i continues a grouped number
// begun at start.
func thousandsGroup(s string, start, i int) bool {
	if i+4 > len(s) || !groupedDigits.MatchString(strings.TrimSpace(s[start:i])) {
		return false
	}
	for _, d := range []byte(s[i+1 : i+4]) {
		if d < '0' || d > '9' {
			return false
		}
	}
	return i+4 == len(s) || s[i+4] < '0' || s[i+4] > '9'
}

func isLiteral(token string) bool {
	switch token {
	case "true", "false", "null":
		return true
	}
	return numberLiteral.MatchString(token)
}

func quote(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(data)
}
