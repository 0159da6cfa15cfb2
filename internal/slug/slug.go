// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL-friendly post slugs from generated titles.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxLength caps generated slugs; titles written by a model can run long.
const MaxLength = 80

// MaxAttempts bounds the numbered suffixes Unique tries.
const MaxAttempts = 100

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace      = regexp.MustCompile(`\s+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Espresso Machines: Best Of 2" → "espresso-machines-best-of-2"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLength {
		result = result[:MaxLength]
		if i := strings.LastIndex(result, "-"); i > MaxLength/2 {
			result = result[:i]
		}
		result = strings.Trim(result, "-")
	}
	return result
}

// Unique returns base, or base-2, base-3 and so on, whichever exists
// reports as free first. An empty base becomes "post".
func Unique(base string, exists func(string) (bool, error)) (string, error) {
	if base == "" {
		base = "post"
	}
	candidate := base
	for i := 2; i <= MaxAttempts+1; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("slug %q: no free variant after %d attempts", base, MaxAttempts)
}
