package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codenerd/internal/model"
)

func TestExtractFunctionSpansJS(t *testing.T) {
	src := `function add(a, b) {
  return a + b;
}

function if(x) { return x; }
`
	spans, err := ExtractFunctionSpans(src, model.LanguageJS)
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "add", spans[0].Name)
	assert.Equal(t, src[spans[0].Start:spans[0].End], "function add(a, b) {\n  return a + b;\n}")
}

func TestExtractFunctionSpansGo(t *testing.T) {
	src := `func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	return v
}
`
	spans, err := ExtractFunctionSpans(src, model.LanguageGo)
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "Clamp", spans[0].Name)
}

func TestExtractFunctionSpansPython(t *testing.T) {
	src := "def greet(name):\n    print(\"hi \" + name)\n\ndef _private():\n    pass\n\ndef next_fn():\n    pass\n"
	spans, err := ExtractFunctionSpans(src, model.LanguagePy)
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, "greet", spans[0].Name)
	assert.Equal(t, "next_fn", spans[1].Name)
}

func TestExtractFunctionSpansMalformed(t *testing.T) {
	src := `function broken(a) {
  return a;
`
	_, err := ExtractFunctionSpans(src, model.LanguageJS)
	require.Error(t, err)
	var malformed *MalformedSpanError
	require.ErrorAs(t, err, &malformed)
}

func TestStripNoiseRemovesCommentsAndStrings(t *testing.T) {
	src := `const x = "secret"; // comment
/* block
   comment */
const n = 42;`
	out := StripNoise(src, model.LanguageJS)
	assert.NotContains(t, out, "secret")
	assert.NotContains(t, out, "comment")
	assert.Contains(t, out, "0;")
}

func TestCountBalanceZeroWhenBalanced(t *testing.T) {
	src := `function f() { if (true) { return 1; } }`
	assert.Equal(t, 0, CountBalance(src, '{', '}', model.LanguageJS))
}

func TestCountBalanceIgnoresBracesInStrings(t *testing.T) {
	src := `const s = "{ not a brace }"; function f() {}`
	assert.Equal(t, 0, CountBalance(src, '{', '}', model.LanguageJS))
}

func TestCountBalanceDetectsImbalance(t *testing.T) {
	src := `function f() { return 1;`
	assert.Equal(t, 1, CountBalance(src, '{', '}', model.LanguageJS))
}

func TestStripNoiseCollapsesNumericLiterals(t *testing.T) {
	out := StripNoise("const retries = 42; const timeout = 1000;", model.LanguageJS)
	assert.NotContains(t, out, "42")
	assert.NotContains(t, out, "1000")
}
