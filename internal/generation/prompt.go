// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generation

import (
	"fmt"
	"strings"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// roleGuidance tells the model what each article role is for.
var roleGuidance = map[models.ArticleRole]string{
	models.RolePillar:     "Write the definitive, comprehensive guide that introduces every subtopic and links out to deeper articles.",
	models.RoleSupport:    "Go deep on one subtopic of the pillar with practical detail.",
	models.RoleLongTail:   "Answer one narrow, specific search query directly and completely.",
	models.RoleRankings:   "Rank the options with clear criteria and a short verdict for each.",
	models.RoleBestOf:     "Recommend the best options for distinct reader needs and say who each is for.",
	models.RoleComparison: "Compare the options side by side, including a summary table.",
	models.RoleReview:     "Review one product or service honestly, covering pros, cons and who should buy it.",
	models.RoleConversion: "Help a ready-to-act reader decide, and end with a clear next step.",
	models.RoleCaseStudy:  "Tell the story of one concrete result: the situation, what was done, and the measurable outcome.",
	models.RoleBenchmark:  "Present measured results with the method used, and explain what they mean.",
	models.RoleFramework:  "Lay out a reusable step-by-step framework the reader can apply.",
	models.RoleWhitepaper: "Write an authoritative, well-structured analysis suitable for decision makers.",
	models.RoleHowTo:      "Walk the reader through the task in numbered steps.",
	models.RoleFAQ:        "Answer the most common questions, each under its own heading.",
	models.RoleListicle:   "Write a scannable numbered list with a short paragraph per item.",
	models.RoleNews:       "Report what changed, why it matters, and what readers should do.",
	models.RoleGeneral:    "Write a clear, useful article on the topic.",
}

// Guidance returns the writing brief of a role.
func Guidance(r models.ArticleRole) string {
	if g, ok := roleGuidance[r]; ok {
		return g
	}
	return roleGuidance[models.RoleGeneral]
}

// Request describes one piece of content to write.
type Request struct {
	Title        string
	Keyword      string
	Role         models.ArticleRole
	MasterPrompt string
	Language     string
	PillarName   string
}

const systemPrompt = `You are an expert content writer for a blog. Write in Markdown.
Start with a single "# " heading containing the article title, then the body.
Do not wrap the answer in code fences and do not add commentary about the task.`

// SystemPrompt returns the fixed system prompt.
func SystemPrompt() string { return systemPrompt }

// UserPrompt renders the request as "Name: value" lines followed by the
// role brief and any tenant instructions.
func UserPrompt(req Request) string {
	var b strings.Builder
	if req.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", req.Title)
	}
	fmt.Fprintf(&b, "Keyword: %s\n", req.Keyword)
	if req.PillarName != "" {
		fmt.Fprintf(&b, "Topic: %s\n", req.PillarName)
	}
	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	fmt.Fprintf(&b, "Language: %s\n", lang)
	fmt.Fprintf(&b, "Article type: %s\n\n", req.Role.Label())
	b.WriteString(Guidance(req.Role))
	if mp := strings.TrimSpace(req.MasterPrompt); mp != "" {
		b.WriteString("\n\nAdditional instructions:\n")
		b.WriteString(mp)
	}
	return b.String()
}
