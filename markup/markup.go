// Package markup renders markdown for posts and comments.
package markup

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// post authors are registered users, raw HTML is kept
var postMarkdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,     // tables, strikethrough, task lists, autolinks (GFM set)
		extension.Linkify, // linkify raw URLs
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(),
	),
)

var commentMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
	goldmark.WithRendererOptions(htmlrenderer.WithHardWraps()),
)

var commentPolicy = bluemonday.UGCPolicy()

// Post renders post content. On a conversion error the source is returned as is.
func Post(content string) string {
	var buf bytes.Buffer
	if err := postMarkdown.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return buf.String()
}

// Comment renders a visitor comment and strips anything outside the UGC policy.
func Comment(body string) string {
	var buf bytes.Buffer
	if err := commentMarkdown.Convert([]byte(body), &buf); err != nil {
		return commentPolicy.Sanitize(body)
	}
	return commentPolicy.Sanitize(buf.String())
}
