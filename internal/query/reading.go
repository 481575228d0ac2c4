package query

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// PlainText returns the text of an HTML fragment with markup removed.
func PlainText(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return tagPattern.ReplaceAllString(content, "")
	}
	return doc.Text()
}

// WordCount counts whitespace separated words in the text of content.
func WordCount(content string) int {
	return len(strings.Fields(PlainText(content)))
}

// ReadingTime estimates minutes needed to read content, never less than one.
func ReadingTime(content string) int {
	minutes := (WordCount(content) + WordsPerMinute - 1) / WordsPerMinute
	return max(minutes, 1)
}
