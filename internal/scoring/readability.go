package scoring

import (
	"regexp"
	"strings"

	"codenerd/internal/lexical"
	"codenerd/internal/model"
)

var (
	shortIdentRe  = regexp.MustCompile(`\b(?:let|const|var)\s+([A-Za-z_$][\w$]*)\s*=`)
	snakeCaseRe   = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	camelCaseRe   = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
	conventionOK  = map[string]bool{"i": true, "j": true, "k": true, "n": true, "x": true, "y": true, "_": true}
	docCommentLn  = regexp.MustCompile(`^\s*(?://|#|/\*|\*)`)
	noSpaceCtlRe  = regexp.MustCompile(`\b(?:if|for|while)\(`)
)

// readability combines four equally-documented sub-components into the
// Readability sub-score: comment quality, nesting depth, line length, and
// naming quality. Weights follow §4.B: 0.30/0.25/0.25/0.20.
func readability(code string, lang model.Language) float64 {
	const (
		wComment = 0.30
		wNesting = 0.25
		wLine    = 0.25
		wNaming  = 0.20
	)
	return wComment*commentQuality(code)+
		wNesting*nestingScore(code, lang)+
		wLine*lineQuality(code, lang)+
		wNaming*namingScore(code, lang)
}

// commentQuality rewards a non-trivial ratio of comment lines to code
// lines, capping out once roughly one in six lines carries a comment so
// that heavily-commented code isn't scored above normally-documented code.
func commentQuality(code string) float64 {
	lines := strings.Split(code, "\n")
	var total, commented int
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			continue
		}
		total++
		if docCommentLn.MatchString(l) {
			commented++
		}
	}
	if total == 0 {
		return 0.5
	}
	ratio := float64(commented) / float64(total)
	score := ratio / (1.0 / 6.0)
	return clamp01(score)
}

// nestingScore scores 1.0 at depth <= 2, linearly down to 0 at depth >= 8.
func nestingScore(code string, lang model.Language) float64 {
	depth := maxNestingDepth(code, lang)
	if depth <= 2 {
		return 1.0
	}
	if depth >= 8 {
		return 0.0
	}
	return 1.0 - float64(depth-2)/6.0
}

func maxNestingDepth(code string, lang model.Language) int {
	if lang == model.LanguagePy {
		return maxIndentDepth(code)
	}
	depth, max := 0, 0
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '{':
			depth++
			if depth > max {
				max = depth
			}
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return max
}

func maxIndentDepth(code string) int {
	max := 0
	for _, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		level := indent / 4
		if level > max {
			max = level
		}
	}
	return max
}

// lineQuality penalizes long lines, tab indentation, control keywords with
// no space before the opening paren, and any function spanning more than
// 60 lines, capping the penalty rather than letting a single outlier
// dominate the score.
func lineQuality(code string, lang model.Language) float64 {
	lines := strings.Split(code, "\n")
	if len(lines) == 0 {
		return 1.0
	}
	var violations int
	for _, l := range lines {
		if len(l) > 100 {
			violations++
		}
		if strings.Contains(l, "\t") {
			violations++
		}
	}
	if noSpaceCtlRe.MatchString(code) {
		violations++
	}
	if spans, err := lexical.ExtractFunctionSpans(code, lang); err == nil {
		for _, s := range spans {
			if functionLineCount(code, s) > 60 {
				violations++
			}
		}
	}
	ratio := float64(violations) / float64(len(lines))
	return clamp01(1.0 - ratio*2)
}

// functionLineCount counts the newlines within a function's byte span.
func functionLineCount(code string, s lexical.FunctionSpan) int {
	start, end := s.Start, s.End
	if start < 0 {
		start = 0
	}
	if end > len(code) {
		end = len(code)
	}
	if end <= start {
		return 0
	}
	return strings.Count(code[start:end], "\n") + 1
}

// namingScore penalizes single-character identifiers outside the
// conventional loop/throwaway set, and casing that violates the
// language's idiom where one is specified.
func namingScore(code string, lang model.Language) float64 {
	matches := shortIdentRe.FindAllStringSubmatch(code, -1)
	score := 1.0
	penalized := 0
	for _, m := range matches {
		name := m[1]
		if len(name) == 1 && !conventionOK[strings.ToLower(name)] {
			penalized++
			continue
		}
		switch lang {
		case model.LanguagePy:
			if !snakeCaseRe.MatchString(name) && name != "_" {
				penalized++
			}
		case model.LanguageJS, model.LanguageTS:
			if !camelCaseRe.MatchString(name) {
				penalized++
			}
		}
	}
	if len(matches) == 0 {
		return score
	}
	score -= float64(penalized) / float64(len(matches))
	return clamp01(score)
}
