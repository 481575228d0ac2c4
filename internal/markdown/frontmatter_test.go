package markdown

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darshanbajgain/darshan-blog-temp/pkg/testsupport"
)

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	fm, body, err := ParseFrontMatter(data)
	require.NoError(t, err)

	title, ok := fm.String("title")
	require.True(t, ok)
	assert.Equal(t, "Sample Post", title)

	date, ok := fm.String("date")
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", date)

	assert.Equal(t, []string{"Go", "Testing"}, fm.Strings("categories"))
	assert.True(t, fm.Has("image"))
	assert.Contains(t, string(body), "# Sample Post")
	assert.NotContains(t, string(body), "title:")
}

func TestParseFrontMatterWithoutBlock(t *testing.T) {
	data := readFixture(t, "testdata/plain.md")

	fm, body, err := ParseFrontMatter(data)
	require.NoError(t, err)
	assert.Empty(t, fm)
	assert.Equal(t, string(data), string(body))
}

func TestParseFrontMatterEmptyBlock(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("---\n---\nHello"))
	require.NoError(t, err)
	assert.Empty(t, fm)
	assert.Contains(t, string(body), "Hello")
}

func TestParseFrontMatterUnterminated(t *testing.T) {
	data := readFixture(t, "testdata/unterminated.md")

	_, _, err := ParseFrontMatter(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnterminatedFrontMatter))
}

func TestParseFrontMatterRejectsMalformedYAML(t *testing.T) {
	_, _, err := ParseFrontMatter([]byte("---\ntitle: [unclosed\n---\nbody"))
	require.Error(t, err)
}

func TestParseFrontMatterStripsBOM(t *testing.T) {
	source := append([]byte{0xEF, 0xBB, 0xBF}, []byte("---\ntitle: BOM\n---\nbody")...)

	fm, _, err := ParseFrontMatter(source)
	require.NoError(t, err)
	title, _ := fm.String("title")
	assert.Equal(t, "BOM", title)
}

func TestFrontMatterStrings(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{name: "missing", value: nil, want: []string{}},
		{name: "empty string", value: "", want: []string{}},
		{name: "scalar", value: "Go", want: []string{"Go"}},
		{name: "list", value: []any{"Go", " Web ", ""}, want: []string{"Go", "Web"}},
		{name: "mixed list", value: []any{"Go", 2024, nil}, want: []string{"Go", "2024"}},
		{name: "typed list", value: []string{"a", "b"}, want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := FrontMatter{"categories": tt.value}
			assert.Equal(t, tt.want, fm.Strings("categories"))
		})
	}
}

func TestFrontMatterStringFormatsDates(t *testing.T) {
	fm := FrontMatter{
		"date":  time.Date(2023, time.December, 24, 15, 0, 0, 0, time.UTC),
		"count": 3,
		"empty": nil,
	}

	date, ok := fm.String("date")
	require.True(t, ok)
	assert.Equal(t, "2023-12-24", date)

	count, ok := fm.String("count")
	require.True(t, ok)
	assert.Equal(t, "3", count)

	_, ok = fm.String("empty")
	assert.False(t, ok)
	_, ok = fm.String("missing")
	assert.False(t, ok)
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := testsupport.LoadFixture(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}
