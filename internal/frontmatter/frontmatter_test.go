package frontmatter

import (
	"errors"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, format, _, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, FormatNone, format)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\nkey: value\n---\n# Title\n")

	fm, body, format, _, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_TOMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("+++\ntitle = \"Hi\"\n+++\nBody\n")

	fm, body, format, _, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, FormatTOML, format)
	require.Equal(t, []byte("title = \"Hi\"\n"), fm)
	require.Equal(t, []byte("Body\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	input := []byte("---\nkey: value\n# Title\n")

	_, _, format, _, err := Split(input)
	require.Error(t, err)
	require.Equal(t, FormatNone, format)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\r\nkey: value\r\n---\r\n# Title\r\n")

	fm, body, _, style, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, "\r\n", style.Newline)
	require.Equal(t, []byte("key: value\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyFrontmatterBlock_SplitsWithEmptyFrontmatter(t *testing.T) {
	input := []byte("---\n---\n# Title\n")

	fm, body, format, _, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, format, _, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)
	require.Equal(t, []byte("title: x\n"), fm)
	require.Empty(t, body)
}

func TestJoin_RoundTripsSplit(t *testing.T) {
	inputs := []string{
		"---\ntitle: Hello\ntags: [a, b]\n---\nBody with {{< kbd(keys=\"x\") >}}\n",
		"+++\ntitle = \"Hello\"\n+++\n\n# Heading\n",
		"---\r\ntitle: CRLF\r\n---\r\nline\r\n",
		"no front matter at all\n",
		"---\ntitle: x\n---",
		"---\r\ntitle: x\r\n---",
		"+++\ntitle = \"x\"\n+++",
		"---\n---",
		"---\ntitle: x\n---\n",
	}
	for _, in := range inputs {
		fm, body, format, style, err := Split([]byte(in))
		require.NoError(t, err)
		require.Equal(t, in, string(Join(fm, body, format, style)))
	}
}

func TestParse(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		fields, err := Parse([]byte("title: Hello\ndraft: true\nweight: 3\n"), FormatYAML)
		require.NoError(t, err)
		require.Equal(t, "Hello", fields["title"])
		require.Equal(t, true, fields["draft"])
		require.Equal(t, 3, fields["weight"])
	})

	t.Run("toml", func(t *testing.T) {
		fields, err := Parse([]byte("title = \"Hola\"\ndate = 2024-03-01\n"), FormatTOML)
		require.NoError(t, err)
		require.Equal(t, "Hola", fields["title"])
		ld, ok := fields["date"].(toml.LocalDate)
		require.True(t, ok)
		require.Equal(t, 2024, ld.Year)
		require.Equal(t, 3, ld.Month)
	})

	t.Run("empty", func(t *testing.T) {
		fields, err := Parse(nil, FormatYAML)
		require.NoError(t, err)
		require.Empty(t, fields)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("title: [unclosed\n"), FormatYAML)
		require.Error(t, err)
	})
}
