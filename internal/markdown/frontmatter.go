package markdown

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// ErrUnterminatedFrontMatter is returned when a source opens a front matter
// block but never closes it.
var ErrUnterminatedFrontMatter = errors.New("markdown: unterminated front matter block")

// DateLayout is the canonical date representation for post metadata.
const DateLayout = "2006-01-02"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FrontMatter is the decoded metadata block of a document. Keys keep the
// spelling used in the source.
type FrontMatter map[string]any

// ParseFrontMatter separates the metadata block from the Markdown body. A
// source without a block yields empty metadata and the whole input as body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	source = bytes.TrimPrefix(source, utf8BOM)
	if err := checkTerminated(source); err != nil {
		return nil, nil, err
	}

	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return FrontMatter(meta), body, nil
}

// frontMatterClosers maps each opening delimiter understood by
// adrg/frontmatter to the line that closes it.
var frontMatterClosers = map[string]string{
	"---":     "---",
	"---yaml": "---",
	"+++":     "+++",
	"---toml": "---",
	";;;":     ";;;",
	"---json": "---",
}

// checkTerminated reports ErrUnterminatedFrontMatter when the first non blank
// line opens a metadata block that no later line closes.
func checkTerminated(source []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), len(source)+1)

	closer := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ok bool
		if closer, ok = frontMatterClosers[line]; !ok {
			return nil
		}
		break
	}
	if closer == "" {
		return nil
	}

	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == closer {
			return nil
		}
	}
	return ErrUnterminatedFrontMatter
}

// Has reports whether key is present, even with a null value.
func (fm FrontMatter) Has(key string) bool {
	_, ok := fm[key]
	return ok
}

// String returns the value stored under key as text. Dates decoded by the
// YAML layer are formatted with DateLayout; nil and missing values report
// false.
func (fm FrontMatter) String(key string) (string, bool) {
	value, ok := fm[key]
	if !ok || value == nil {
		return "", false
	}
	return scalarString(value), true
}

// Strings returns the value stored under key as a list. A single scalar
// becomes a one element list; nil, missing and empty string values yield an
// empty list.
func (fm FrontMatter) Strings(key string) []string {
	value, ok := fm[key]
	if !ok || value == nil {
		return []string{}
	}

	switch typed := value.(type) {
	case []string:
		return compact(typed)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if item == nil {
				continue
			}
			out = append(out, scalarString(item))
		}
		return compact(out)
	default:
		return compact([]string{scalarString(typed)})
	}
}

func scalarString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case time.Time:
		return typed.UTC().Format(DateLayout)
	case *time.Time:
		if typed == nil {
			return ""
		}
		return typed.UTC().Format(DateLayout)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}
