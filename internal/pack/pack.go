// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pack holds the catalogue of content strategies ("packs"). A pack
// names the article roles it uses, how a pillar's article budget is shared
// between them, and the linking rules between roles.
package pack

import (
	"sort"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// RoleShare is the relative weight of a role in a pack's article budget.
type RoleShare struct {
	Role   models.ArticleRole `json:"role"`
	Weight int                `json:"weight"`
}

// Definition is an immutable catalogue entry.
type Definition struct {
	Key         string               `json:"key"`
	Name        string               `json:"name"`
	Version     int                  `json:"version"`
	Description string               `json:"description"`
	Shape       []RoleShare          `json:"shape"`
	Rules       []models.LinkingRule `json:"linking_rules"`
}

// Roles returns the non-hub roles of the pack in shape order.
func (d *Definition) Roles() []models.ArticleRole {
	roles := make([]models.ArticleRole, 0, len(d.Shape))
	for _, s := range d.Shape {
		roles = append(roles, s.Role)
	}
	return roles
}

func rule(from models.ArticleRole, anchor string, to ...models.ArticleRole) models.LinkingRule {
	return models.LinkingRule{FromRole: from, ToRoles: to, AnchorPattern: anchor}
}

// builtins is the static catalogue, keyed by pack type.
var builtins = map[string]*Definition{
	"authority": {
		Key:         "authority",
		Name:        "Topical Authority",
		Version:     2,
		Description: "Deep support content around a hub, backed by rankings and proof.",
		Shape: []RoleShare{
			{Role: models.RoleSupport, Weight: 4},
			{Role: models.RoleRankings, Weight: 2},
			{Role: models.RoleBestOf, Weight: 1},
			{Role: models.RoleComparison, Weight: 1},
			{Role: models.RoleCaseStudy, Weight: 1},
			{Role: models.RoleFAQ, Weight: 1},
		},
		Rules: []models.LinkingRule{
			rule(models.RolePillar, "learn about {title}", models.RoleSupport, models.RoleRankings),
			rule(models.RoleSupport, "{title}", models.RolePillar, models.RoleRankings),
			rule(models.RoleRankings, "best {keyword}", models.RoleBestOf, models.RoleComparison),
			rule(models.RoleComparison, "{title}", models.RolePillar),
			rule(models.RoleCaseStudy, "see {title}", models.RoleSupport),
			rule(models.RoleFAQ, "{title}", models.RolePillar, models.RoleSupport),
		},
	},
	"informational": {
		Key:         "informational",
		Name:        "Informational",
		Version:     1,
		Description: "How-to and question-driven content for top-of-funnel search.",
		Shape: []RoleShare{
			{Role: models.RoleSupport, Weight: 3},
			{Role: models.RoleHowTo, Weight: 3},
			{Role: models.RoleFAQ, Weight: 2},
			{Role: models.RoleLongTail, Weight: 2},
			{Role: models.RoleListicle, Weight: 1},
		},
		Rules: []models.LinkingRule{
			rule(models.RolePillar, "how to {keyword}", models.RoleHowTo),
			rule(models.RoleSupport, "{title}", models.RolePillar),
			rule(models.RoleHowTo, "{title}", models.RolePillar, models.RoleSupport),
			rule(models.RoleFAQ, "{keyword}", models.RoleHowTo),
			rule(models.RoleLongTail, "{title}", models.RoleSupport),
			rule(models.RoleListicle, "{title}", models.RoleHowTo),
		},
	},
	"commercial": {
		Key:         "commercial",
		Name:        "Commercial Intent",
		Version:     1,
		Description: "Reviews, comparisons and buying guides that convert.",
		Shape: []RoleShare{
			{Role: models.RoleReview, Weight: 3},
			{Role: models.RoleComparison, Weight: 2},
			{Role: models.RoleBestOf, Weight: 2},
			{Role: models.RoleConversion, Weight: 2},
			{Role: models.RoleRankings, Weight: 1},
		},
		Rules: []models.LinkingRule{
			rule(models.RolePillar, "best {keyword}", models.RoleBestOf),
			rule(models.RoleReview, "{title}", models.RoleComparison, models.RoleConversion),
			rule(models.RoleComparison, "{title} review", models.RoleReview),
			rule(models.RoleBestOf, "{title}", models.RoleReview),
			rule(models.RoleRankings, "{title}", models.RoleBestOf),
			rule(models.RoleConversion, "{title}", models.RolePillar),
		},
	},
	"local": {
		Key:         "local",
		Name:        "Local Business",
		Version:     1,
		Description: "Neighbourhood news, FAQs and lists for a local audience.",
		Shape: []RoleShare{
			{Role: models.RoleSupport, Weight: 2},
			{Role: models.RoleNews, Weight: 2},
			{Role: models.RoleFAQ, Weight: 2},
			{Role: models.RoleListicle, Weight: 1},
			{Role: models.RoleReview, Weight: 1},
			{Role: models.RoleGeneral, Weight: 1},
		},
		Rules: []models.LinkingRule{
			rule(models.RolePillar, "{title}", models.RoleSupport, models.RoleFAQ),
			rule(models.RoleNews, "{title}", models.RolePillar),
			rule(models.RoleFAQ, "{keyword}", models.RoleSupport),
			rule(models.RoleListicle, "{title}", models.RoleReview),
		},
	},
	"saas": {
		Key:         "saas",
		Name:        "SaaS Thought Leadership",
		Version:     1,
		Description: "Frameworks, benchmarks and case studies for B2B software.",
		Shape: []RoleShare{
			{Role: models.RoleSupport, Weight: 2},
			{Role: models.RoleCaseStudy, Weight: 2},
			{Role: models.RoleHowTo, Weight: 2},
			{Role: models.RoleBenchmark, Weight: 1},
			{Role: models.RoleFramework, Weight: 1},
			{Role: models.RoleWhitepaper, Weight: 1},
			{Role: models.RoleComparison, Weight: 1},
			{Role: models.RoleConversion, Weight: 1},
		},
		Rules: []models.LinkingRule{
			rule(models.RolePillar, "{title}", models.RoleFramework, models.RoleSupport),
			rule(models.RoleFramework, "{title}", models.RoleCaseStudy, models.RoleWhitepaper),
			rule(models.RoleBenchmark, "{keyword} benchmark", models.RoleComparison),
			rule(models.RoleCaseStudy, "{title}", models.RoleConversion),
			rule(models.RoleHowTo, "{title}", models.RoleSupport),
			rule(models.RoleComparison, "{title}", models.RoleConversion),
		},
	},
}

// Lookup returns the built-in pack for key, or nil if the key is unknown.
func Lookup(key string) *Definition {
	return builtins[key]
}

// Catalogue returns every built-in pack sorted by key.
func Catalogue() []*Definition {
	out := make([]*Definition, 0, len(builtins))
	for _, d := range builtins {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// IsKnown reports whether key is a built-in pack or the custom pack type.
func IsKnown(key string) bool {
	if key == models.PackCustom {
		return true
	}
	_, ok := builtins[key]
	return ok
}
