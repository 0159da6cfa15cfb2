// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "## Brewing", `<h2 id="brewing">Brewing</h2>`},
		{"emphasis", "a *b* c", "<p>a <em>b</em> c</p>"},
		{"table", "| a |\n|---|\n| 1 |", "<table>"},
		{"raw html", "<div class=\"x\">hi</div>", `<div class="x">hi</div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.in)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("ToHTML(%q) = %q, want it to contain %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRenderExtractsTitleAndExcerpt(t *testing.T) {
	src := "# Espresso Basics\n\nGood espresso starts with **fresh** beans.\n\n## Grind\n\nFine."
	d, err := Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if d.Title != "Espresso Basics" {
		t.Errorf("Title = %q", d.Title)
	}
	if d.Excerpt != "Good espresso starts with fresh beans." {
		t.Errorf("Excerpt = %q", d.Excerpt)
	}
	if strings.Contains(d.HTML, "<h1") {
		t.Errorf("leading h1 should be removed from body: %q", d.HTML)
	}
	if !strings.Contains(d.HTML, "<h2") {
		t.Errorf("body lost its sections: %q", d.HTML)
	}
}

func TestRenderWithoutHeading(t *testing.T) {
	d, err := Render("Just a paragraph.")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if d.Title != "" {
		t.Errorf("Title = %q, want empty", d.Title)
	}
	if !strings.Contains(d.HTML, "<p>Just a paragraph.</p>") {
		t.Errorf("HTML = %q", d.HTML)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := truncate(long, 50)
	if utf8.RuneCountInString(got) > 51 {
		t.Errorf("truncate returned %d runes", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncate should end with an ellipsis: %q", got)
	}
	if truncate("short", 50) != "short" {
		t.Error("short strings must pass through")
	}
}
