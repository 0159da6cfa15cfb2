// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pack

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// Source says where a resolved rule set came from. Callers that only need
// the rules can ignore it; it lets them tell an empty custom pack apart
// from an unknown pack key.
type Source string

const (
	SourceBuiltin     Source = "builtin"
	SourceCustom      Source = "custom"
	SourceCustomEmpty Source = "custom_empty"
	SourceUnknown     Source = "unknown"
)

// Resolution is the outcome of resolving a pillar's pack. Rules and Shape
// are always usable, even when Source is SourceUnknown.
type Resolution struct {
	Source Source
	Pack   *Definition
	Rules  []models.LinkingRule
	Shape  []RoleShare
}

// Empty reports whether there are no rules to plan links from.
func (r Resolution) Empty() bool {
	return len(r.Rules) == 0
}

// defaultShape is used when a pack says nothing about its roles.
var defaultShape = []RoleShare{{Role: models.RoleSupport, Weight: 1}}

// Resolve returns the linking rules and role shape for a pillar. It never
// fails: unknown pack keys and missing custom configs resolve to an empty
// rule set so planning degrades to "no planned links".
func Resolve(p *models.Pillar) Resolution {
	if p == nil {
		return Resolution{Source: SourceUnknown, Shape: cloneShape(defaultShape)}
	}

	if p.IsCustomPack() {
		if p.CustomPack == nil || len(p.CustomPack.LinkingRules) == 0 {
			return Resolution{Source: SourceCustomEmpty, Rules: []models.LinkingRule{}, Shape: cloneShape(defaultShape)}
		}
		rules := cloneRules(p.CustomPack.LinkingRules)
		return Resolution{Source: SourceCustom, Rules: rules, Shape: shapeFromRules(rules)}
	}

	def := Lookup(p.PackType)
	if def == nil {
		return Resolution{Source: SourceUnknown, Rules: []models.LinkingRule{}, Shape: cloneShape(defaultShape)}
	}
	return Resolution{
		Source: SourceBuiltin,
		Pack:   def,
		Rules:  cloneRules(def.Rules),
		Shape:  cloneShape(def.Shape),
	}
}

// ResolveLinkingRules returns only the rule list of Resolve.
func ResolveLinkingRules(p *models.Pillar) []models.LinkingRule {
	return Resolve(p).Rules
}

// shapeFromRules gives every non-hub role named by a custom rule set an
// equal share, in order of first mention.
func shapeFromRules(rules []models.LinkingRule) []RoleShare {
	seen := make(map[models.ArticleRole]bool)
	var shape []RoleShare
	add := func(r models.ArticleRole) {
		if r == models.RolePillar || !r.Valid() || seen[r] {
			return
		}
		seen[r] = true
		shape = append(shape, RoleShare{Role: r, Weight: 1})
	}
	for _, r := range rules {
		add(r.FromRole)
		for _, to := range r.ToRoles {
			add(to)
		}
	}
	if len(shape) == 0 {
		return cloneShape(defaultShape)
	}
	return shape
}

func cloneRules(in []models.LinkingRule) []models.LinkingRule {
	out := make([]models.LinkingRule, len(in))
	for i, r := range in {
		out[i] = models.LinkingRule{
			FromRole:      r.FromRole,
			ToRoles:       append([]models.ArticleRole(nil), r.ToRoles...),
			AnchorPattern: r.AnchorPattern,
		}
	}
	return out
}

func cloneShape(in []RoleShare) []RoleShare {
	return append([]RoleShare(nil), in...)
}

// ParseCustom decodes a tenant-authored pack from YAML or JSON and
// validates it.
func ParseCustom(data []byte) (*models.CustomPackConfig, error) {
	var cfg models.CustomPackConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse custom pack: %v", models.ErrInvalidPillar, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
