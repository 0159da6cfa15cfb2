// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// ArticleRole is the functional category of a planned article. It drives
// both linking rules and the layout tier of the article in the map view.
type ArticleRole string

const (
	RolePillar     ArticleRole = "pillar"
	RoleSupport    ArticleRole = "support"
	RoleLongTail   ArticleRole = "long_tail"
	RoleRankings   ArticleRole = "rankings"
	RoleBestOf     ArticleRole = "best_of"
	RoleComparison ArticleRole = "comparison"
	RoleReview     ArticleRole = "review"
	RoleConversion ArticleRole = "conversion"
	RoleCaseStudy  ArticleRole = "case_study"
	RoleBenchmark  ArticleRole = "benchmark"
	RoleFramework  ArticleRole = "framework"
	RoleWhitepaper ArticleRole = "whitepaper"
	RoleHowTo      ArticleRole = "how_to"
	RoleFAQ        ArticleRole = "faq"
	RoleListicle   ArticleRole = "listicle"
	RoleNews       ArticleRole = "news"
	RoleGeneral    ArticleRole = "general"
)

// AllRoles lists every known article role in declaration order.
var AllRoles = []ArticleRole{
	RolePillar, RoleSupport, RoleLongTail, RoleRankings, RoleBestOf,
	RoleComparison, RoleReview, RoleConversion, RoleCaseStudy, RoleBenchmark,
	RoleFramework, RoleWhitepaper, RoleHowTo, RoleFAQ, RoleListicle,
	RoleNews, RoleGeneral,
}

var knownRoles = func() map[ArticleRole]bool {
	m := make(map[ArticleRole]bool, len(AllRoles))
	for _, r := range AllRoles {
		m[r] = true
	}
	return m
}()

// Valid reports whether r is one of the known roles.
func (r ArticleRole) Valid() bool {
	return knownRoles[r]
}

// roleLabels are the human-readable names used in placeholder titles.
var roleLabels = map[ArticleRole]string{
	RolePillar:     "Complete Guide",
	RoleSupport:    "Deep Dive",
	RoleLongTail:   "Question",
	RoleRankings:   "Top Picks",
	RoleBestOf:     "Best Of",
	RoleComparison: "Comparison",
	RoleReview:     "Review",
	RoleConversion: "Buying Guide",
	RoleCaseStudy:  "Case Study",
	RoleBenchmark:  "Benchmark",
	RoleFramework:  "Framework",
	RoleWhitepaper: "Whitepaper",
	RoleHowTo:      "How To",
	RoleFAQ:        "FAQ",
	RoleListicle:   "List",
	RoleNews:       "News",
	RoleGeneral:    "Article",
}

// Label returns the display label for the role, falling back to the raw
// value for unknown roles.
func (r ArticleRole) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}
