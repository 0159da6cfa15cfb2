// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package layout places a pillar's planned link graph on a 2D plane. The
// hub sits at the center; every other role gets its own angular slot on a
// ring whose radius grows with the role's rank. The result depends only on
// the role set, the per-role article counts and the input order.
package layout

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/topology"
)

const (
	baseRing    = 150.0
	ringStep    = 15.0
	fanStep     = 0.15
	stagger     = 30.0
	hubRadius   = 28.0
	majorRadius = 18.0
	minorRadius = 12.0
)

// tier groups roles for ordering around the hub.
type tier int

const (
	tierAuthority tier = iota
	tierInformational
	tierConversion
	tierMisc
)

// roleParams is the per-role lookup table: ordering and node size.
type roleParams struct {
	tier   tier
	rank   int
	radius float64
}

var params = map[models.ArticleRole]roleParams{
	models.RoleSupport:    {tier: tierAuthority, rank: 0, radius: majorRadius},
	models.RoleRankings:   {tier: tierAuthority, rank: 1, radius: majorRadius},
	models.RoleBestOf:     {tier: tierAuthority, rank: 2, radius: minorRadius},
	models.RoleBenchmark:  {tier: tierAuthority, rank: 3, radius: minorRadius},
	models.RoleFramework:  {tier: tierAuthority, rank: 4, radius: minorRadius},
	models.RoleWhitepaper: {tier: tierAuthority, rank: 5, radius: minorRadius},
	models.RoleCaseStudy:  {tier: tierAuthority, rank: 6, radius: minorRadius},
	models.RoleHowTo:      {tier: tierInformational, rank: 0, radius: minorRadius},
	models.RoleFAQ:        {tier: tierInformational, rank: 1, radius: minorRadius},
	models.RoleLongTail:   {tier: tierInformational, rank: 2, radius: minorRadius},
	models.RoleListicle:   {tier: tierInformational, rank: 3, radius: minorRadius},
	models.RoleNews:       {tier: tierInformational, rank: 4, radius: minorRadius},
	models.RoleComparison: {tier: tierConversion, rank: 0, radius: minorRadius},
	models.RoleReview:     {tier: tierConversion, rank: 1, radius: minorRadius},
	models.RoleConversion: {tier: tierConversion, rank: 2, radius: minorRadius},
	models.RoleGeneral:    {tier: tierMisc, rank: 0, radius: minorRadius},
}

// unranked sorts after every known role.
var unranked = roleParams{tier: tierMisc + 1, radius: minorRadius}

func lookup(r models.ArticleRole) roleParams {
	if r == models.RolePillar {
		return roleParams{radius: hubRadius}
	}
	if p, ok := params[r]; ok {
		return p
	}
	return unranked
}

// NodeRadius returns the drawn radius of a node of the given role.
func NodeRadius(r models.ArticleRole) float64 {
	return lookup(r).radius
}

// Node is one article of the graph.
type Node struct {
	ID     uuid.UUID            `json:"id"`
	Title  string               `json:"title"`
	Role   models.ArticleRole   `json:"role"`
	Status models.ArticleStatus `json:"status"`
}

// Options tune the placement.
type Options struct {
	CenterX float64
	CenterY float64
}

// PlacedNode is a node with its position, radius and degree.
type PlacedNode struct {
	Node
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	InDegree  int     `json:"in_degree"`
	OutDegree int     `json:"out_degree"`
}

// Segment is an edge clipped to the boundaries of its endpoint circles.
type Segment struct {
	From     uuid.UUID          `json:"from"`
	To       uuid.UUID          `json:"to"`
	FromRole models.ArticleRole `json:"from_role"`
	ToRole   models.ArticleRole `json:"to_role"`
	Anchor   string             `json:"anchor"`
	X1       float64            `json:"x1"`
	Y1       float64            `json:"y1"`
	X2       float64            `json:"x2"`
	Y2       float64            `json:"y2"`
}

// RolePair counts planned links between two roles.
type RolePair struct {
	FromRole models.ArticleRole `json:"from_role"`
	ToRole   models.ArticleRole `json:"to_role"`
	Count    int                `json:"count"`
}

// Graph is the computed layout.
type Graph struct {
	Nodes     []PlacedNode `json:"nodes"`
	Edges     []Segment    `json:"edges"`
	RolePairs []RolePair   `json:"role_pairs"`
}

// Compute places nodes and clips edges. Edges whose endpoints are not in
// nodes are dropped.
func Compute(nodes []Node, edges []topology.Edge, opts Options) *Graph {
	g := &Graph{Nodes: make([]PlacedNode, len(nodes))}
	index := make(map[uuid.UUID]int, len(nodes))
	for i, n := range nodes {
		g.Nodes[i] = PlacedNode{Node: n, Radius: NodeRadius(n.Role)}
		index[n.ID] = i
	}

	// Partition by role in input order. The first pillar-role node is the
	// hub; any further pillar-role nodes are laid out like a normal role.
	hub := -1
	var order []models.ArticleRole
	members := make(map[models.ArticleRole][]int)
	for i, n := range nodes {
		if n.Role == models.RolePillar && hub < 0 {
			hub = i
			continue
		}
		if _, ok := members[n.Role]; !ok {
			order = append(order, n.Role)
		}
		members[n.Role] = append(members[n.Role], i)
	}

	sort.SliceStable(order, func(i, j int) bool {
		pi, pj := lookup(order[i]), lookup(order[j])
		if pi.tier != pj.tier {
			return pi.tier < pj.tier
		}
		return pi.rank < pj.rank
	})

	if hub >= 0 {
		g.Nodes[hub].X = opts.CenterX
		g.Nodes[hub].Y = opts.CenterY
	}

	slot := 2 * math.Pi / float64(max(len(order), 1))
	for i, role := range order {
		theta := -math.Pi/2 + float64(i)*slot
		ring := baseRing + ringStep*float64(i)
		group := members[role]
		mid := float64(len(group)-1) / 2
		for j, idx := range group {
			angle := theta + (float64(j)-mid)*fanStep
			r := ring
			if j%2 == 1 {
				r += stagger
			}
			g.Nodes[idx].X = opts.CenterX + r*math.Cos(angle)
			g.Nodes[idx].Y = opts.CenterY + r*math.Sin(angle)
		}
	}

	pairs := make(map[[2]models.ArticleRole]int)
	for _, e := range edges {
		fi, okFrom := index[e.From]
		ti, okTo := index[e.To]
		if !okFrom || !okTo || fi == ti {
			continue
		}
		from, to := &g.Nodes[fi], &g.Nodes[ti]
		from.OutDegree++
		to.InDegree++
		x1, y1, x2, y2 := Clip(from.X, from.Y, from.Radius, to.X, to.Y, to.Radius)
		g.Edges = append(g.Edges, Segment{
			From: e.From, To: e.To,
			FromRole: from.Role, ToRole: to.Role,
			Anchor: e.Anchor,
			X1:     x1, Y1: y1, X2: x2, Y2: y2,
		})
		pairs[[2]models.ArticleRole{from.Role, to.Role}]++
	}

	for k, n := range pairs {
		g.RolePairs = append(g.RolePairs, RolePair{FromRole: k[0], ToRole: k[1], Count: n})
	}
	sort.Slice(g.RolePairs, func(i, j int) bool {
		a, b := g.RolePairs[i], g.RolePairs[j]
		if a.FromRole != b.FromRole {
			return a.FromRole < b.FromRole
		}
		return a.ToRole < b.ToRole
	})
	return g
}

// Clip returns the segment between two circles that starts on the first
// circle's boundary and ends on the second's. Coincident centers use the
// positive x axis as the direction.
func Clip(x1, y1, r1, x2, y2, r2 float64) (float64, float64, float64, float64) {
	dx, dy := x2-x1, y2-y1
	d := math.Hypot(dx, dy)
	ux, uy := 1.0, 0.0
	if d > 0 {
		ux, uy = dx/d, dy/d
	}
	return x1 + ux*r1, y1 + uy*r1, x2 - ux*r2, y2 - uy*r2
}

// NodesFromArticles converts planned articles into layout nodes, keeping
// their order.
func NodesFromArticles(articles []models.PillarArticle) []Node {
	nodes := make([]Node, len(articles))
	for i, a := range articles {
		nodes[i] = Node{ID: a.ID, Title: a.Title, Role: a.Role, Status: a.Status}
	}
	return nodes
}
