package interfaces

// MarkdownParser converts a Markdown body into HTML.
type MarkdownParser interface {
	// Parse renders Markdown using the parser defaults.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions renders Markdown using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions toggles renderer behaviour. Field names stay readable so they
// can be filled straight from configuration.
type ParseOptions struct {
	Extensions []string
	// HardWraps turns a single newline inside a paragraph into <br>.
	HardWraps bool
	// SafeMode drops raw HTML embedded in the Markdown source.
	SafeMode bool
	// HighlightStyle names the chroma style used for fenced code blocks.
	// An empty value disables highlighting.
	HighlightStyle string
}
