// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package topology

import (
	"strings"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// Edge is a planned link between two articles. It is a projection of the
// pack rules onto the current inventory, not a record of links that exist
// in generated bodies.
type Edge struct {
	From     uuid.UUID          `json:"from"`
	To       uuid.UUID          `json:"to"`
	FromRole models.ArticleRole `json:"from_role"`
	ToRole   models.ArticleRole `json:"to_role"`
	Anchor   string             `json:"anchor"`
}

// Links instantiates rules against articles. For each rule the first
// article of FromRole is the source, and for each target role the first
// article of that role other than the source is the target. Rules with no
// inventory on either side produce nothing. Articles are taken in the
// order given.
func Links(articles []models.PillarArticle, rules []models.LinkingRule) []Edge {
	byRole := make(map[models.ArticleRole][]int)
	for i, a := range articles {
		byRole[a.Role] = append(byRole[a.Role], i)
	}

	type pair struct{ from, to uuid.UUID }
	seen := make(map[pair]bool)
	var edges []Edge

	for _, r := range rules {
		sources := byRole[r.FromRole]
		if len(sources) == 0 {
			continue
		}
		src := articles[sources[0]]
		for _, toRole := range r.ToRoles {
			for _, ti := range byRole[toRole] {
				dst := articles[ti]
				if dst.ID == src.ID {
					continue
				}
				p := pair{src.ID, dst.ID}
				if !seen[p] {
					seen[p] = true
					edges = append(edges, Edge{
						From:     src.ID,
						To:       dst.ID,
						FromRole: src.Role,
						ToRole:   dst.Role,
						Anchor:   ExpandAnchor(r.AnchorPattern, &dst),
					})
				}
				break
			}
		}
	}
	return edges
}

// ExpandAnchor fills the {title}, {keyword} and {role} placeholders of an
// anchor pattern from the target article.
func ExpandAnchor(pattern string, target *models.PillarArticle) string {
	if pattern == "" {
		return target.Title
	}
	keyword := target.Keyword
	if keyword == "" {
		keyword = target.Title
	}
	return strings.NewReplacer(
		"{title}", target.Title,
		"{keyword}", keyword,
		"{role}", strings.ToLower(target.Role.Label()),
	).Replace(pattern)
}
