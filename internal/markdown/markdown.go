// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown turns generated Markdown drafts into post HTML using
// goldmark, and reads the title and excerpt back out of the rendered
// document with goquery.
package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ExcerptLength caps the excerpt in runes.
const ExcerptLength = 200

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks, task lists
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // models sometimes answer with inline HTML
	),
)

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Document is a rendered draft.
type Document struct {
	HTML    string
	Title   string // text of the first h1, empty if none
	Excerpt string // first paragraph, truncated to ExcerptLength
}

// Render converts a draft and extracts its title and excerpt. The leading
// h1 is removed from the body when present, since posts carry their title
// separately.
func Render(source string) (*Document, error) {
	out, err := ToHTML(source)
	if err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("parse rendered html: %w", err)
	}

	d := &Document{HTML: out}
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		d.Title = strings.TrimSpace(h1.Text())
		if h1.Prev().Length() == 0 {
			h1.Remove()
			body, err := doc.Find("body").Html()
			if err != nil {
				return nil, fmt.Errorf("serialize html: %w", err)
			}
			d.HTML = strings.TrimSpace(body)
		}
	}
	d.Excerpt = truncate(strings.Join(strings.Fields(doc.Find("p").First().Text()), " "), ExcerptLength)
	return d, nil
}

// truncate cuts s to at most n runes on a word boundary, adding an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	cut := string([]rune(s)[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
