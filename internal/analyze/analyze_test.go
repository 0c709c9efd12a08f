package analyze

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingTimeFloorAndMonotonic(t *testing.T) {
	assert.Equal(t, 1, ReadingTime(0))
	assert.Equal(t, 1, ReadingTime(-5))
	assert.Equal(t, 1, ReadingTime(238))
	assert.Equal(t, 2, ReadingTime(239))
	assert.Equal(t, 3, ReadingTime(476+1))

	prev := ReadingTime(0)
	for words := 1; words <= 5000; words++ {
		cur := ReadingTime(words)
		require.GreaterOrEqual(t, cur, prev, "words=%d", words)
		prev = cur
	}
}

func TestWordCountIgnoresScriptAndStyle(t *testing.T) {
	res := Analyze(`<p>one two <em>three</em></p><script>var a = 1 + 2;</script><style>p { x: y }</style><!-- hidden words --><p>four</p>`)
	assert.Equal(t, 4, res.WordCount)
	assert.Equal(t, 1, res.ReadingTime)
}

func TestWordCountJoinsInlineElements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"inline inside a word", "<p>un<em>believ</em>able</p>", 1},
		{"link text", `<p>see <a href="/x">the<strong>docs</strong></a> now</p>`, 3},
		{"paragraphs separate", "<p>one</p><p>two</p>", 2},
		{"list items separate", "<ul><li>a</li><li>b</li></ul>", 2},
		{"line break separates", "<p>one<br>two</p>", 2},
		{"table cells separate", "<table><tr><td>a</td><td>b</td></tr></table>", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.src).WordCount)
		})
	}
}

func TestEmptyInput(t *testing.T) {
	res := Analyze("")
	assert.Zero(t, res.WordCount)
	assert.Equal(t, 1, res.ReadingTime)
	assert.Empty(t, res.ExcerptHTML)
	assert.Empty(t, res.TOC)
	assert.Empty(t, res.HTML)
}

func TestExcerpt(t *testing.T) {
	t.Run("more marker", func(t *testing.T) {
		res := Analyze("<p>Intro</p>\n<p>Second</p>\n<!-- more -->\n<p>Rest</p>")
		assert.Equal(t, "<p>Intro</p>\n<p>Second</p>", res.ExcerptHTML)
	})

	t.Run("more marker inside a paragraph", func(t *testing.T) {
		res := Analyze("<p>Intro sentence. <!--more--> Rest of it.</p>\n<p>Second</p>")
		assert.Equal(t, "<p>Intro sentence.</p>", res.ExcerptHTML)
	})

	t.Run("more marker inside nested inline markup", func(t *testing.T) {
		res := Analyze("<blockquote><p>Quoted <em>start <!--more--> end</em></p></blockquote>")
		assert.Equal(t, "<blockquote><p>Quoted <em>start</em></p></blockquote>", res.ExcerptHTML)
	})

	t.Run("first paragraph", func(t *testing.T) {
		res := Analyze("<h2 id=\"x\">Head</h2>\n<p>First <strong>bold</strong></p>\n<p>Second</p>")
		assert.Equal(t, "<p>First <strong>bold</strong></p>", res.ExcerptHTML)
	})

	t.Run("no paragraph", func(t *testing.T) {
		assert.Empty(t, Analyze("<ul><li>x</li></ul>").ExcerptHTML)
	})
}

func TestTOC(t *testing.T) {
	src := `<h1>Title</h1>
<h2>Getting Started</h2>
<h3 id="custom">Install</h3>
<h4>Über Café</h4>
<h5>Too deep</h5>
<h2>Getting Started</h2>
<h2>Getting Started</h2>`

	res := Analyze(src)
	require.Len(t, res.TOC, 5)
	assert.Equal(t, []TOCEntry{
		{ID: "getting-started", Text: "Getting Started", Level: 2},
		{ID: "custom", Text: "Install", Level: 3},
		{ID: "uber-cafe", Text: "Über Café", Level: 4},
		{ID: "getting-started-1", Text: "Getting Started", Level: 2},
		{ID: "getting-started-2", Text: "Getting Started", Level: 2},
	}, res.TOC)

	for _, e := range res.TOC {
		assert.Contains(t, res.HTML, `id="`+e.ID+`"`)
	}
	assert.NotContains(t, res.HTML, `<h1 id=`)
}

func TestTOCKeepsHTMLWhenIDsPresent(t *testing.T) {
	src := `<h2 id="a">A</h2><p>x &amp; y</p>`
	res := Analyze(src)
	assert.Equal(t, src, res.HTML)
	assert.Equal(t, []TOCEntry{{ID: "a", Text: "A", Level: 2}}, res.TOC)
}

func TestTOCDuplicateExplicitIDs(t *testing.T) {
	res := Analyze(`<h2 id="dup">One</h2><h2 id="dup">Two</h2><h2>Dup</h2>`)
	require.Len(t, res.TOC, 3)
	assert.Equal(t, "dup", res.TOC[0].ID)
	assert.Equal(t, "dup-1", res.TOC[1].ID)
	assert.Equal(t, "dup-2", res.TOC[2].ID)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":           "hello-world",
		"  Leading & trailing ": "leading-trailing",
		"Ünïcödé Heading":       "unicode-heading",
		"API v2.0 — changes":    "api-v2-0-changes",
		"!!!":                   "",
		"日本語":                   "日本語",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText(`<h2>Title</h2><p>Tom &amp; Jerry<br>run</p><script>alert(1)</script>`)
	assert.Equal(t, "Title Tom & Jerry run", got)
}

func TestSummary(t *testing.T) {
	long := "<p>" + strings.Repeat("word ", 50) + "</p>"
	s := Summary(long, 22)
	assert.Equal(t, "word word word word…", s)
	assert.Equal(t, "short", Summary("<p>short</p>", 100))
}
