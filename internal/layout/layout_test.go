// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package layout

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/pack"
	"github.com/itwrites/BlogViraliy-sub002/internal/topology"
)

const eps = 1e-9

// fixedID returns a stable UUID so repeated runs build identical inputs.
func fixedID(n int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte{byte(n >> 8), byte(n)})
}

func plannedGraph(t *testing.T, key string, target int) ([]Node, []topology.Edge) {
	t.Helper()
	seq := 0
	def := pack.Lookup(key)
	sk, err := topology.Plan(topology.Input{
		PillarID: fixedID(9999), PillarName: "Graph", Shape: def.Shape, Target: target,
		NewID: func() uuid.UUID { seq++; return fixedID(seq) },
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	articles := append([]models.PillarArticle{*sk.Hub}, sk.Articles...)
	return NodesFromArticles(articles), topology.Links(articles, def.Rules)
}

// TestComputeDeterministic runs the layout twice on freshly built inputs
// and expects byte-identical JSON.
func TestComputeDeterministic(t *testing.T) {
	for _, key := range []string{"authority", "informational", "commercial", "local", "saas"} {
		n1, e1 := plannedGraph(t, key, 25)
		n2, e2 := plannedGraph(t, key, 25)
		a, _ := json.Marshal(Compute(n1, e1, Options{}))
		b, _ := json.Marshal(Compute(n2, e2, Options{}))
		if !bytes.Equal(a, b) {
			t.Errorf("%s: layout differs between runs", key)
		}
	}
}

func TestComputeHubAtCenter(t *testing.T) {
	nodes, edges := plannedGraph(t, "authority", 12)
	g := Compute(nodes, edges, Options{CenterX: 400, CenterY: 300})

	hub := g.Nodes[0]
	if hub.Role != models.RolePillar {
		t.Fatalf("first node should be the hub, got %q", hub.Role)
	}
	if hub.X != 400 || hub.Y != 300 {
		t.Errorf("hub position: got (%v,%v), want (400,300)", hub.X, hub.Y)
	}
	for _, n := range g.Nodes[1:] {
		if n.Radius >= hub.Radius {
			t.Errorf("node %q radius %v not smaller than hub %v", n.Title, n.Radius, hub.Radius)
		}
		if d := math.Hypot(n.X-400, n.Y-300); d < baseRing-eps {
			t.Errorf("node %q too close to hub: %v", n.Title, d)
		}
	}
}

// TestComputeEdgeClipping checks every segment endpoint lies on its node's
// circle.
func TestComputeEdgeClipping(t *testing.T) {
	nodes, edges := plannedGraph(t, "saas", 40)
	g := Compute(nodes, edges, Options{})
	if len(g.Edges) == 0 {
		t.Fatal("expected edges")
	}
	pos := make(map[uuid.UUID]PlacedNode)
	for _, n := range g.Nodes {
		pos[n.ID] = n
	}
	for _, e := range g.Edges {
		if e.From == e.To {
			t.Fatalf("self-loop %s", e.From)
		}
		from, to := pos[e.From], pos[e.To]
		if d := math.Hypot(e.X1-from.X, e.Y1-from.Y); math.Abs(d-from.Radius) > eps {
			t.Errorf("start off boundary: distance %v, radius %v", d, from.Radius)
		}
		if d := math.Hypot(e.X2-to.X, e.Y2-to.Y); math.Abs(d-to.Radius) > eps {
			t.Errorf("end off boundary: distance %v, radius %v", d, to.Radius)
		}
	}
}

func TestClipCoincidentCenters(t *testing.T) {
	x1, y1, x2, y2 := Clip(10, 10, 5, 10, 10, 3)
	if math.Abs(math.Hypot(x1-10, y1-10)-5) > eps || math.Abs(math.Hypot(x2-10, y2-10)-3) > eps {
		t.Errorf("coincident clip off boundary: (%v,%v) (%v,%v)", x1, y1, x2, y2)
	}
}

func TestComputeRoleOrderingAndRings(t *testing.T) {
	// Input order deliberately scrambles the priority order.
	nodes := []Node{
		{ID: fixedID(1), Role: models.RoleGeneral},
		{ID: fixedID(2), Role: models.RoleComparison},
		{ID: fixedID(3), Role: models.RolePillar},
		{ID: fixedID(4), Role: models.RoleHowTo},
		{ID: fixedID(5), Role: models.RoleSupport},
		{ID: fixedID(6), Role: "mystery"},
	}
	g := Compute(nodes, nil, Options{})

	// Expected ring index: support 0, how_to 1, comparison 2, general 3, mystery 4.
	want := map[uuid.UUID]int{fixedID(5): 0, fixedID(4): 1, fixedID(2): 2, fixedID(1): 3, fixedID(6): 4}
	slot := 2 * math.Pi / 5
	for _, n := range g.Nodes {
		i, ok := want[n.ID]
		if !ok {
			continue
		}
		ring := baseRing + ringStep*float64(i)
		theta := -math.Pi/2 + float64(i)*slot
		if math.Abs(n.X-ring*math.Cos(theta)) > eps || math.Abs(n.Y-ring*math.Sin(theta)) > eps {
			t.Errorf("role %q: got (%v,%v), want ring %d", n.Role, n.X, n.Y, i)
		}
	}
	if g.Nodes[2].X != 0 || g.Nodes[2].Y != 0 {
		t.Error("pillar node must be centered regardless of input position")
	}
}

func TestComputeFanOutAndStagger(t *testing.T) {
	nodes := []Node{
		{ID: fixedID(1), Role: models.RolePillar},
		{ID: fixedID(2), Role: models.RoleFAQ},
		{ID: fixedID(3), Role: models.RoleFAQ},
		{ID: fixedID(4), Role: models.RoleFAQ},
	}
	g := Compute(nodes, nil, Options{})
	theta := -math.Pi / 2
	for j, n := range g.Nodes[1:] {
		angle := math.Atan2(n.Y, n.X)
		wantAngle := theta + float64(j-1)*fanStep
		if math.Abs(angle-wantAngle) > 1e-9 {
			t.Errorf("member %d angle: got %v, want %v", j, angle, wantAngle)
		}
		wantR := baseRing
		if j%2 == 1 {
			wantR += stagger
		}
		if r := math.Hypot(n.X, n.Y); math.Abs(r-wantR) > 1e-9 {
			t.Errorf("member %d radius: got %v, want %v", j, r, wantR)
		}
	}
}

func TestComputeDegreesAndRolePairs(t *testing.T) {
	hub, a, b := fixedID(1), fixedID(2), fixedID(3)
	nodes := []Node{
		{ID: hub, Role: models.RolePillar},
		{ID: a, Role: models.RoleSupport},
		{ID: b, Role: models.RoleSupport},
	}
	edges := []topology.Edge{
		{From: a, To: hub},
		{From: b, To: hub},
		{From: hub, To: a},
		{From: a, To: fixedID(42)}, // dangling: dropped
		{From: b, To: b},           // self-loop: dropped
	}
	g := Compute(nodes, edges, Options{})
	if len(g.Edges) != 3 {
		t.Fatalf("edges: got %d, want 3", len(g.Edges))
	}
	if g.Nodes[0].InDegree != 2 || g.Nodes[0].OutDegree != 1 {
		t.Errorf("hub degree: in %d out %d", g.Nodes[0].InDegree, g.Nodes[0].OutDegree)
	}
	want := []RolePair{
		{FromRole: models.RolePillar, ToRole: models.RoleSupport, Count: 1},
		{FromRole: models.RoleSupport, ToRole: models.RolePillar, Count: 2},
	}
	if len(g.RolePairs) != len(want) {
		t.Fatalf("role pairs: got %+v", g.RolePairs)
	}
	for i := range want {
		if g.RolePairs[i] != want[i] {
			t.Errorf("pair %d: got %+v, want %+v", i, g.RolePairs[i], want[i])
		}
	}
}

func TestNodeRadiusClasses(t *testing.T) {
	if NodeRadius(models.RolePillar) <= NodeRadius(models.RoleSupport) {
		t.Error("hub must be larger than support")
	}
	if NodeRadius(models.RoleSupport) <= NodeRadius(models.RoleFAQ) {
		t.Error("support must be larger than faq")
	}
	if NodeRadius("unknown") != minorRadius {
		t.Error("unknown roles use the minor radius")
	}
}

func TestComputeEmpty(t *testing.T) {
	g := Compute(nil, nil, Options{})
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Error("empty input should give an empty graph")
	}
}
