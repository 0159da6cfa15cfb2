// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package topology

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/pack"
)

func authorityShape() []pack.RoleShare {
	return pack.Lookup("authority").Shape
}

func TestPlanRejectsInvalidTarget(t *testing.T) {
	for _, target := range []int{0, -1, -100} {
		_, err := Plan(Input{PillarID: uuid.New(), PillarName: "Coffee", Shape: authorityShape(), Target: target})
		if !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("target %d: got %v, want ErrInvalidTarget", target, err)
		}
	}
}

func TestPlanFreshMap(t *testing.T) {
	pillarID := uuid.New()
	sk, err := Plan(Input{PillarID: pillarID, PillarName: "Coffee Grinders", Shape: authorityShape(), Target: 21})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if sk.Hub == nil {
		t.Fatal("expected a hub article")
	}
	if sk.Hub.PillarID == nil || *sk.Hub.PillarID != pillarID || sk.Hub.ClusterID != nil {
		t.Error("hub must be parented by the pillar only")
	}
	if sk.Hub.Role != models.RolePillar {
		t.Errorf("hub role: got %q", sk.Hub.Role)
	}

	if len(sk.Articles) != 20 {
		t.Fatalf("members: got %d, want 20", len(sk.Articles))
	}
	wantClusters := (20 + ArticlesPerCluster - 1) / ArticlesPerCluster
	if len(sk.Clusters) != wantClusters {
		t.Errorf("clusters: got %d, want %d", len(sk.Clusters), wantClusters)
	}

	perCluster := make(map[uuid.UUID]int)
	for _, a := range sk.Articles {
		if a.ClusterID == nil || a.PillarID != nil {
			t.Fatalf("member %q must be parented by exactly one cluster", a.Title)
		}
		if a.Role == models.RolePillar {
			t.Errorf("member %q has the pillar role", a.Title)
		}
		perCluster[*a.ClusterID]++
	}
	for _, c := range sk.Clusters {
		if c.ArticleCount != perCluster[c.ID] {
			t.Errorf("cluster %s: article count %d, assigned %d", c.Name, c.ArticleCount, perCluster[c.ID])
		}
		if c.ArticleCount > ArticlesPerCluster {
			t.Errorf("cluster %s over capacity: %d", c.Name, c.ArticleCount)
		}
		if c.GeneratedCount != 0 {
			t.Errorf("new cluster must start with generated_count 0")
		}
	}

	// Shape weights 4:2:1:1:1:1 over 20 members.
	counts := make(map[models.ArticleRole]int)
	for _, a := range sk.Articles {
		counts[a.Role]++
	}
	want := map[models.ArticleRole]int{
		models.RoleSupport: 8, models.RoleRankings: 4, models.RoleBestOf: 2,
		models.RoleComparison: 2, models.RoleCaseStudy: 2, models.RoleFAQ: 2,
	}
	for role, n := range want {
		if counts[role] != n {
			t.Errorf("role %s: got %d, want %d", role, counts[role], n)
		}
	}
}

func TestPlanTargetOneIsHubOnly(t *testing.T) {
	sk, err := Plan(Input{PillarID: uuid.New(), PillarName: "Tiny", Shape: authorityShape(), Target: 1})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if sk.Hub == nil || len(sk.Articles) != 0 || len(sk.Clusters) != 0 {
		t.Errorf("expected hub only, got %d articles, %d clusters", len(sk.Articles), len(sk.Clusters))
	}
}

// TestPlanIsIdempotent feeds a plan's output back in and expects no
// additions.
func TestPlanIsIdempotent(t *testing.T) {
	pillarID := uuid.New()
	in := Input{PillarID: pillarID, PillarName: "Tea", Shape: authorityShape(), Target: 15}
	first, err := Plan(in)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	in.Existing = append([]models.PillarArticle{*first.Hub}, first.Articles...)
	in.Clusters = first.Clusters
	second, err := Plan(in)
	if err != nil {
		t.Fatalf("second Plan: %v", err)
	}
	if !second.Empty() {
		t.Errorf("second run should add nothing, got hub=%v clusters=%d articles=%d",
			second.Hub != nil, len(second.Clusters), len(second.Articles))
	}
}

// TestPlanFillsGapsOnly grows the target and checks that existing articles
// (including completed ones) are kept and only the gap is created.
func TestPlanFillsGapsOnly(t *testing.T) {
	pillarID := uuid.New()
	in := Input{PillarID: pillarID, PillarName: "Tea", Shape: authorityShape(), Target: 8}
	first, err := Plan(in)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for i := range first.Articles {
		first.Articles[i].Status = models.ArticleCompleted
	}

	in.Target = 21
	in.Existing = append([]models.PillarArticle{*first.Hub}, first.Articles...)
	in.Clusters = first.Clusters
	second, err := Plan(in)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if second.Hub != nil {
		t.Error("hub must not be recreated")
	}
	if got := len(first.Articles) + len(second.Articles); got != 20 {
		t.Errorf("total members: got %d, want 20", got)
	}

	grown := 0
	for id, n := range second.Grown {
		grown += n
		found := false
		for _, c := range first.Clusters {
			if c.ID == id {
				found = true
				if c.ArticleCount+n > ArticlesPerCluster {
					t.Errorf("existing cluster overfilled: %d + %d", c.ArticleCount, n)
				}
			}
		}
		if !found {
			t.Errorf("grown cluster %s is not an existing cluster", id)
		}
	}
	fresh := 0
	for _, c := range second.Clusters {
		fresh += c.ArticleCount
		if c.Position < len(first.Clusters) {
			t.Errorf("new cluster position %d collides with existing clusters", c.Position)
		}
	}
	if grown+fresh != len(second.Articles) {
		t.Errorf("placement mismatch: grown %d + fresh %d != %d", grown, fresh, len(second.Articles))
	}
	for _, a := range second.Articles {
		for _, old := range first.Articles {
			if a.Position == old.Position {
				t.Fatalf("position %d reused", a.Position)
			}
		}
	}
}

func TestPlanDeterministicShape(t *testing.T) {
	seq := 0
	ids := func() uuid.UUID {
		seq++
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(seq)})
	}
	a, _ := Plan(Input{PillarID: uuid.Nil, PillarName: "X", Shape: authorityShape(), Target: 13, NewID: ids})
	seq = 0
	b, _ := Plan(Input{PillarID: uuid.Nil, PillarName: "X", Shape: authorityShape(), Target: 13, NewID: ids})
	if len(a.Articles) != len(b.Articles) {
		t.Fatal("article counts differ")
	}
	for i := range a.Articles {
		if a.Articles[i].ID != b.Articles[i].ID || a.Articles[i].Role != b.Articles[i].Role ||
			*a.Articles[i].ClusterID != *b.Articles[i].ClusterID {
			t.Fatalf("article %d differs between runs", i)
		}
	}
}

func TestApportion(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		shape []pack.RoleShare
		want  []int
	}{
		{name: "even", n: 4, shape: []pack.RoleShare{{Role: "a", Weight: 1}, {Role: "b", Weight: 1}}, want: []int{2, 2}},
		{name: "remainder to first", n: 3, shape: []pack.RoleShare{{Role: "a", Weight: 1}, {Role: "b", Weight: 1}}, want: []int{2, 1}},
		{name: "weighted", n: 10, shape: []pack.RoleShare{{Role: "a", Weight: 3}, {Role: "b", Weight: 1}}, want: []int{8, 2}},
		{name: "zero", n: 0, shape: []pack.RoleShare{{Role: "a", Weight: 3}}, want: []int{0}},
		{name: "ignores zero weight", n: 5, shape: []pack.RoleShare{{Role: "a", Weight: 0}, {Role: "b", Weight: 2}}, want: []int{0, 5}},
		{name: "empty shape", n: 5, shape: nil, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apportion(tt.n, tt.shape)
			if len(got) != len(tt.want) {
				t.Fatalf("len: got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}
