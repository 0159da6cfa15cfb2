// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"strings"
)

// OfflineName is the registry name of the offline provider.
const OfflineName = "offline"

// Offline writes a fixed Markdown draft from the "Title:" and "Keyword:"
// lines of the user prompt. It never calls the network and is meant for
// development and tests.
type Offline struct{}

func (Offline) Name() string { return OfflineName }

// Generate returns a short article for the prompt's title and keyword.
func (Offline) Generate(ctx context.Context, _, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	title := promptField(userPrompt, "Title")
	keyword := promptField(userPrompt, "Keyword")
	if title == "" {
		title = keyword
	}
	if title == "" {
		return "", fmt.Errorf("offline: prompt has no title or keyword")
	}
	if keyword == "" {
		keyword = strings.ToLower(title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "This draft covers %s and what readers should know before going further.\n\n", keyword)
	b.WriteString("## Key points\n\n")
	fmt.Fprintf(&b, "- What %s means in practice\n", keyword)
	b.WriteString("- Common mistakes and how to avoid them\n")
	b.WriteString("- Where to go next\n")
	return b.String(), nil
}

// promptField returns the value of a "Name: value" line.
func promptField(prompt, name string) string {
	prefix := name + ":"
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
