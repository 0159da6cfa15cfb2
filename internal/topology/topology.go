// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package topology derives the cluster/article skeleton of a pillar from its
// pack, and projects the pack's linking rules onto the planned articles.
package topology

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/pack"
)

// ArticlesPerCluster caps how many member articles a cluster receives.
const ArticlesPerCluster = 6

// ErrInvalidTarget is returned for a non-positive target article count.
var ErrInvalidTarget = errors.New("target article count must be positive")

// Input describes one planning run. Existing and Clusters are empty for a
// first map and carry the current tree when regenerating.
type Input struct {
	PillarID   uuid.UUID
	PillarName string
	Shape      []pack.RoleShare
	Target     int
	Existing   []models.PillarArticle
	Clusters   []models.Cluster

	// NewID generates identifiers; uuid.New when nil.
	NewID func() uuid.UUID
}

// Skeleton holds what a planning run adds to the tree. Nothing already
// persisted is repeated here.
type Skeleton struct {
	Hub      *models.PillarArticle
	Clusters []models.Cluster
	Articles []models.PillarArticle

	// Grown maps an existing cluster ID to the number of articles added to it.
	Grown map[uuid.UUID]int
}

// Empty reports whether the run has nothing to add.
func (s *Skeleton) Empty() bool {
	return s.Hub == nil && len(s.Clusters) == 0 && len(s.Articles) == 0
}

// Plan fills the gaps between the pack's intended shape and the existing
// tree. Running it again on its own output adds nothing.
func Plan(in Input) (*Skeleton, error) {
	if in.Target <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTarget, in.Target)
	}
	newID := in.NewID
	if newID == nil {
		newID = uuid.New
	}
	name := strings.TrimSpace(in.PillarName)
	keyword := strings.ToLower(name)

	sk := &Skeleton{Grown: make(map[uuid.UUID]int)}

	hasHub := false
	have := make(map[models.ArticleRole]int)
	nextPos := 1
	for _, a := range in.Existing {
		if a.Role == models.RolePillar && a.ClusterID == nil {
			hasHub = true
		} else {
			have[a.Role]++
		}
		if a.Position >= nextPos {
			nextPos = a.Position + 1
		}
	}

	if !hasHub {
		pid := in.PillarID
		sk.Hub = &models.PillarArticle{
			ID:       newID(),
			PillarID: &pid,
			Title:    fmt.Sprintf("%s: %s", name, models.RolePillar.Label()),
			Keyword:  keyword,
			Role:     models.RolePillar,
			Status:   models.ArticlePending,
			Position: 0,
		}
	}

	quotas := Apportion(in.Target-1, in.Shape)
	gaps := make([]int, len(in.Shape))
	for i, s := range in.Shape {
		if g := quotas[i] - have[s.Role]; g > 0 {
			gaps[i] = g
		}
	}

	// Interleave roles so that dealing articles over clusters mixes them.
	var planned []models.PillarArticle
	ordinal := make(map[models.ArticleRole]int, len(have))
	for r, n := range have {
		ordinal[r] = n
	}
	for remaining := sum(gaps); remaining > 0; {
		for i, s := range in.Shape {
			if gaps[i] == 0 {
				continue
			}
			gaps[i]--
			remaining--
			ordinal[s.Role]++
			planned = append(planned, models.PillarArticle{
				ID:       newID(),
				Title:    fmt.Sprintf("%s: %s %d", name, s.Role.Label(), ordinal[s.Role]),
				Keyword:  keyword,
				Role:     s.Role,
				Status:   models.ArticlePending,
				Position: nextPos,
			})
			nextPos++
		}
	}

	// Fill existing clusters that still have room, in position order.
	existing := append([]models.Cluster(nil), in.Clusters...)
	sort.SliceStable(existing, func(i, j int) bool { return existing[i].Position < existing[j].Position })
	nextCluster := 0
	for _, c := range existing {
		if c.Position >= nextCluster {
			nextCluster = c.Position + 1
		}
	}
	idx := 0
	for _, c := range existing {
		room := ArticlesPerCluster - c.ArticleCount
		for ; room > 0 && idx < len(planned); room-- {
			cid := c.ID
			planned[idx].ClusterID = &cid
			sk.Grown[c.ID]++
			idx++
		}
	}

	rest := planned[idx:]
	if n := len(rest); n > 0 {
		count := (n + ArticlesPerCluster - 1) / ArticlesPerCluster
		for i := 0; i < count; i++ {
			sk.Clusters = append(sk.Clusters, models.Cluster{
				ID:       newID(),
				PillarID: in.PillarID,
				Name:     fmt.Sprintf("%s: Cluster %d", name, nextCluster+i+1),
				Position: nextCluster + i,
			})
		}
		for i := range rest {
			c := &sk.Clusters[i%count]
			cid := c.ID
			rest[i].ClusterID = &cid
			c.ArticleCount++
		}
	}

	sk.Articles = planned
	return sk, nil
}

// Apportion splits n articles across the shape by weight using the largest
// remainder method. Ties go to the role listed first.
func Apportion(n int, shape []pack.RoleShare) []int {
	out := make([]int, len(shape))
	if n <= 0 || len(shape) == 0 {
		return out
	}
	total := 0
	for _, s := range shape {
		if s.Weight > 0 {
			total += s.Weight
		}
	}
	if total == 0 {
		return out
	}

	type rem struct{ idx, value int }
	rems := make([]rem, 0, len(shape))
	assigned := 0
	for i, s := range shape {
		if s.Weight <= 0 {
			continue
		}
		out[i] = n * s.Weight / total
		assigned += out[i]
		rems = append(rems, rem{idx: i, value: n * s.Weight % total})
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].value > rems[j].value })
	for i := 0; assigned < n; i++ {
		out[rems[i%len(rems)].idx]++
		assigned++
	}
	return out
}

func sum(xs []int) int {
	t := 0
	for _, x := range xs {
		t += x
	}
	return t
}
