// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/itwrites/BlogViraliy-sub002/internal/ai"
	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/topology"
)

const namerSystemPrompt = `You name the parts of a content plan for a blog.
Answer with a single JSON object and nothing else.`

// Namer asks the provider for real titles and cluster names in place of
// the planner's placeholders.
type Namer struct {
	provider ai.Provider
	timeout  time.Duration
}

// NewNamer creates a Namer. A zero timeout uses DefaultTimeout.
func NewNamer(provider ai.Provider, timeout time.Duration) *Namer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Namer{provider: provider, timeout: timeout}
}

type namedPlan struct {
	Clusters []string `json:"clusters"`
	Articles []string `json:"articles"`
}

// NameSkeleton rewrites sk in place. On any error sk is left untouched.
// The offline provider cannot name anything, so the placeholders stay
// while it is active.
func (n *Namer) NameSkeleton(ctx context.Context, p *models.Pillar, sk *topology.Skeleton) error {
	if n.provider.Name() == ai.OfflineName {
		return nil
	}
	articles := make([]*models.PillarArticle, 0, len(sk.Articles)+1)
	if sk.Hub != nil {
		articles = append(articles, sk.Hub)
	}
	for i := range sk.Articles {
		articles = append(articles, &sk.Articles[i])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
	}
	fmt.Fprintf(&b, "Language: %s\n\n", p.Language)
	fmt.Fprintf(&b, "Name these %d clusters, in order:\n", len(sk.Clusters))
	for i, c := range sk.Clusters {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
	}
	fmt.Fprintf(&b, "\nWrite a title for each of these %d articles, in order, matching its type:\n", len(articles))
	for i, a := range articles {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, a.Role.Label(), a.Title)
	}
	b.WriteString("\nRespond as {\"clusters\": [...], \"articles\": [...]} with exactly one string per item.")

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	raw, err := n.provider.Generate(ctx, namerSystemPrompt, b.String())
	if err != nil {
		return fmt.Errorf("name skeleton: %w", err)
	}

	var plan namedPlan
	if err := json.Unmarshal([]byte(stripFences(raw)), &plan); err != nil {
		return fmt.Errorf("decode names: %w", err)
	}
	if len(plan.Clusters) != len(sk.Clusters) || len(plan.Articles) != len(articles) {
		return fmt.Errorf("decode names: got %d clusters and %d titles, want %d and %d",
			len(plan.Clusters), len(plan.Articles), len(sk.Clusters), len(articles))
	}

	for i, name := range plan.Clusters {
		if name = strings.TrimSpace(name); name != "" {
			sk.Clusters[i].Name = name
		}
	}
	for i, title := range plan.Articles {
		if title = strings.TrimSpace(title); title != "" {
			articles[i].Title = title
		}
	}
	return nil
}
