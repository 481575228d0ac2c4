// Package markdown splits post sources into front matter and body, and renders
// the body into HTML with goldmark.
package markdown
