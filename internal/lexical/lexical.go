// Package lexical provides regex-level source extractors: top-level
// function spans, comment/string/number stripping, and brace/bracket
// balance counting. These are deliberately heuristic, not a parser --
// per spec §1's non-goals, patternkeep is not a compiler or semantic
// analyzer of any source language.
package lexical

import (
	"fmt"
	"regexp"
	"strings"

	"codenerd/internal/model"
)

// MalformedSpanError is returned when a function's brace sequence never
// closes before the end of input.
type MalformedSpanError struct {
	Name string
}

func (e *MalformedSpanError) Error() string {
	return fmt.Sprintf("malformed span: unterminated function %q", e.Name)
}

// FunctionSpan is one extracted top-level function definition.
type FunctionSpan struct {
	Name  string
	Start int
	End   int
}

// denylist excludes control-flow keywords and test-framework calls that a
// brace-matching regex can mistake for function definitions.
var denylist = map[string]bool{
	"if": true, "for": true, "while": true,
	"describe": true, "it": true, "test": true,
}

func isDenied(lang model.Language, name string) bool {
	if denylist[name] {
		return true
	}
	if lang == model.LanguagePy && strings.HasPrefix(name, "_") {
		return true
	}
	return false
}

var (
	braceSigRe = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+|async\s+|public\s+|private\s+|static\s+)*function\s+([A-Za-z_$][\w$]*)\s*\(`)
	goSigRe    = regexp.MustCompile(`(?m)^func\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)\s*\(`)
	rustSigRe  = regexp.MustCompile(`(?m)^[ \t]*(?:pub\s+)?(?:async\s+)?fn\s+([A-Za-z_]\w*)\s*[(<]`)
	pySigRe    = regexp.MustCompile(`(?m)^([ \t]*)def\s+([A-Za-z_]\w*)\s*\(`)
)

func sigRegexFor(lang model.Language) *regexp.Regexp {
	switch lang {
	case model.LanguageJS, model.LanguageTS:
		return braceSigRe
	case model.LanguageGo:
		return goSigRe
	case model.LanguageRust:
		return rustSigRe
	default:
		return nil
	}
}

// ExtractFunctionSpans finds top-level function definitions in src.
// For brace languages it locates the opening brace after the signature and
// depth-matches braces while skipping string/comment regions. For Python
// it follows indentation: the body runs while subsequent lines are blank or
// indented strictly more than the def line, stopping at the first dedent.
func ExtractFunctionSpans(src string, lang model.Language) ([]FunctionSpan, error) {
	if lang == model.LanguagePy {
		return extractPythonSpans(src)
	}
	re := sigRegexFor(lang)
	if re == nil {
		return nil, nil
	}

	var spans []FunctionSpan
	matches := re.FindAllStringSubmatchIndex(src, -1)
	for _, m := range matches {
		name := src[m[2]:m[3]]
		if isDenied(lang, name) {
			continue
		}
		openParen := m[1] - 1 // position of '(' that ended the match
		braceStart := findOpenBrace(src, openParen)
		if braceStart == -1 {
			return nil, &MalformedSpanError{Name: name}
		}
		end := matchBrace(src, braceStart)
		if end == -1 {
			return nil, &MalformedSpanError{Name: name}
		}
		spans = append(spans, FunctionSpan{Name: name, Start: m[0], End: end + 1})
	}
	return spans, nil
}

// findOpenBrace scans forward from a signature's opening paren to the
// function body's opening '{', skipping over the parameter list's own
// parens and any default-value strings.
func findOpenBrace(src string, from int) int {
	depth := 0
	i := from
	for i < len(src) {
		c := src[i]
		switch {
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == '{' && depth <= 0:
			return i
		case c == '"' || c == '\'' || c == '`':
			i = skipStringLiteral(src, i)
			continue
		}
		i++
	}
	return -1
}

// matchBrace returns the index of the brace matching the one at open,
// walking the source while ignoring braces found inside string or comment
// regions (the "elided" regions of spec §4.A's strip_noise contract).
func matchBrace(src string, open int) int {
	depth := 0
	i := open
	for i < len(src) {
		c := src[i]
		switch {
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i
			}
		case c == '"' || c == '\'' || c == '`':
			i = skipStringLiteral(src, i)
			continue
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			continue
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end == -1 {
				return -1
			}
			i = i + 2 + end + 2
			continue
		}
		i++
	}
	return -1
}

// skipStringLiteral returns the index just past a string/char/template
// literal starting at i, honoring backslash escapes.
func skipStringLiteral(src string, i int) int {
	quote := src[i]
	i++
	for i < len(src) {
		if src[i] == '\\' {
			i += 2
			continue
		}
		if src[i] == quote {
			return i + 1
		}
		i++
	}
	return i
}

func extractPythonSpans(src string) ([]FunctionSpan, error) {
	lines := strings.Split(src, "\n")
	offsets := make([]int, len(lines)+1)
	pos := 0
	for i, l := range lines {
		offsets[i] = pos
		pos += len(l) + 1
	}
	offsets[len(lines)] = pos

	var spans []FunctionSpan
	for i, line := range lines {
		m := pySigRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		indent, name := m[1], m[2]
		if isDenied(model.LanguagePy, name) {
			continue
		}
		defIndent := len(indent)
		end := i
		for j := i + 1; j < len(lines); j++ {
			trimmed := strings.TrimRight(lines[j], " \t\r")
			if strings.TrimSpace(trimmed) == "" {
				end = j
				continue
			}
			lineIndent := len(lines[j]) - len(strings.TrimLeft(lines[j], " \t"))
			if lineIndent > defIndent {
				end = j
				continue
			}
			break
		}
		spans = append(spans, FunctionSpan{
			Name:  name,
			Start: offsets[i],
			End:   offsets[end+1] - 1,
		})
	}
	return spans, nil
}

var (
	numberRe   = regexp.MustCompile(`\b\d+(\.\d+)?\b`)
	spaceRunRe = regexp.MustCompile(`\s+`)
	// punctSpcRe drops whitespace hugging any punctuation/operator
	// character, so "a + b" and "a+b" strip to the same bytes.
	punctSpcRe = regexp.MustCompile(`\s*([^\w\s])\s*`)
)

// StripNoise removes comments, collapses string/template literals to
// empty delimiters, collapses numeric literals to 0, removes whitespace
// next to punctuation, and collapses the remaining whitespace runs to
// single spaces, per §4.A. Collapsing whitespace is what makes the fingerprint
// in package dedup stable across reformatting: two sources that differ
// only in indentation, line breaks, or spacing around punctuation strip
// down to the same byte string.
func StripNoise(src string, lang model.Language) string {
	var out strings.Builder
	out.Grow(len(src))

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case lang != model.LanguagePy && c == '/' && i+1 < len(src) && src[i+1] == '/':
			j := strings.IndexByte(src[i:], '\n')
			if j == -1 {
				i = len(src)
			} else {
				i += j
			}
		case lang != model.LanguagePy && c == '/' && i+1 < len(src) && src[i+1] == '*':
			j := strings.Index(src[i+2:], "*/")
			if j == -1 {
				i = len(src)
			} else {
				i = i + 2 + j + 2
			}
		case lang == model.LanguagePy && c == '#':
			j := strings.IndexByte(src[i:], '\n')
			if j == -1 {
				i = len(src)
			} else {
				i += j
			}
		case c == '"' || c == '\'' || c == '`':
			end := skipStringLiteral(src, i)
			out.WriteString(string(c) + string(c))
			i = end
		default:
			out.WriteByte(c)
			i++
		}
	}

	stripped := out.String()
	stripped = numberRe.ReplaceAllString(stripped, "0")
	stripped = punctSpcRe.ReplaceAllString(stripped, "$1")
	stripped = spaceRunRe.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(stripped)
}

// CountBalance returns (opens - closes) for the given byte pair after
// stripping comments/strings. Zero means balanced.
func CountBalance(src string, open, close byte, lang model.Language) int {
	stripped := StripNoise(src, lang)
	balance := 0
	for i := 0; i < len(stripped); i++ {
		switch stripped[i] {
		case open:
			balance++
		case close:
			balance--
		}
	}
	return balance
}
