// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/ai"
	"github.com/itwrites/BlogViraliy-sub002/internal/memstore"
	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/storage"
	"github.com/itwrites/BlogViraliy-sub002/internal/topology"
)

// scriptedProvider returns a fixed answer and records the prompts.
type scriptedProvider struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(_ context.Context, _, user string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, user)
	return p.answer, p.err
}

func testPillar() *models.Pillar {
	return &models.Pillar{
		ID:                   uuid.New(),
		SiteID:               uuid.New(),
		Name:                 "Espresso Machines",
		MasterPrompt:         "Write for home baristas.",
		Language:             "en",
		DefaultPublishStatus: models.ContentStatusPublished,
	}
}

func TestUserPrompt(t *testing.T) {
	got := UserPrompt(Request{
		Title:        "Espresso Machines: Best Of 1",
		Keyword:      "espresso machines",
		Role:         models.RoleBestOf,
		MasterPrompt: "  Mention budget options.  ",
		PillarName:   "Espresso Machines",
	})

	for _, want := range []string{
		"Title: Espresso Machines: Best Of 1\n",
		"Keyword: espresso machines\n",
		"Language: en\n",
		"Article type: Best Of\n",
		Guidance(models.RoleBestOf),
		"Additional instructions:\nMention budget options.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestGuidanceCoversEveryRole(t *testing.T) {
	for _, r := range models.AllRoles {
		if _, ok := roleGuidance[r]; !ok {
			t.Errorf("role %s has no guidance", r)
		}
	}
	if Guidance("mystery") != roleGuidance[models.RoleGeneral] {
		t.Error("unknown roles should fall back to general guidance")
	}
}

func TestWriteArticle(t *testing.T) {
	st := memstore.New()
	prov := &scriptedProvider{answer: "```markdown\n# Best Espresso Machines\n\nOur picks for every budget.\n```"}
	svc := NewService(prov, st, 0)
	p := testPillar()
	a := &models.PillarArticle{ID: uuid.New(), Title: "Espresso Machines: Best Of 1", Role: models.RoleBestOf}

	post, err := svc.WriteArticle(context.Background(), p, a)
	if err != nil {
		t.Fatalf("WriteArticle: %v", err)
	}
	if post.Title != "Best Espresso Machines" || post.Slug != "best-espresso-machines" {
		t.Errorf("post = %q / %q", post.Title, post.Slug)
	}
	if post.Status != models.ContentStatusPublished || post.PublishedAt == nil {
		t.Errorf("post should follow the pillar's publish status, got %s", post.Status)
	}
	if post.PillarID == nil || *post.PillarID != p.ID || post.ArticleRole == nil || *post.ArticleRole != models.RoleBestOf {
		t.Errorf("post provenance = %v %v", post.PillarID, post.ArticleRole)
	}
	if post.Excerpt == nil || *post.Excerpt != "Our picks for every budget." {
		t.Errorf("excerpt = %v", post.Excerpt)
	}
	if !strings.Contains(prov.prompts[0], "Keyword: espresso machines") {
		t.Errorf("empty article keyword should fall back to the pillar name:\n%s", prov.prompts[0])
	}

	// A second article with the same title gets a suffixed slug.
	b := &models.PillarArticle{ID: uuid.New(), Title: a.Title, Role: a.Role}
	again, err := svc.WriteArticle(context.Background(), p, b)
	if err != nil {
		t.Fatal(err)
	}
	if again.Slug != "best-espresso-machines-2" {
		t.Errorf("second slug = %q", again.Slug)
	}
}

func TestRetriedUnitReusesPost(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	prov := &scriptedProvider{answer: "# Dialing In a Grinder\n\nStart coarse."}
	svc := NewService(prov, st, 0)

	p := testPillar()
	a := &models.PillarArticle{ID: uuid.New(), Title: "Dialing In", Role: models.RoleHowTo}
	first, err := svc.WriteArticle(ctx, p, a)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.WriteArticle(ctx, p, a)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("article retry stored post %s, want %s", second.ID, first.ID)
	}

	b := &models.KeywordBatch{ID: uuid.New(), SiteID: p.SiteID, Language: "en"}
	job := &models.KeywordJob{ID: uuid.New(), Keyword: "grinder burrs"}
	id1, err := svc.ProcessKeyword(ctx, b, job)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := svc.ProcessKeyword(ctx, b, job)
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("job retry stored post %s, want %s", id2, id1)
	}
	if n := len(prov.prompts); n != 2 {
		t.Errorf("provider calls = %d, want 2 (one per source)", n)
	}
	if got, _ := st.FindPostBySource(ctx, job.ID); got == nil || got.ID != id1 {
		t.Errorf("FindPostBySource(job) = %+v", got)
	}
}

func TestProcessKeyword(t *testing.T) {
	st := memstore.New()
	svc := NewService(ai.Offline{}, st, 0)
	role := models.RoleHowTo
	b := &models.KeywordBatch{ID: uuid.New(), SiteID: uuid.New(), ArticleRole: &role, Language: "en"}
	job := &models.KeywordJob{ID: uuid.New(), Keyword: "descale a machine"}

	id, err := svc.ProcessKeyword(context.Background(), b, job)
	if err != nil {
		t.Fatalf("ProcessKeyword: %v", err)
	}
	post, _ := st.FindPost(context.Background(), id)
	if post == nil {
		t.Fatal("post not stored")
	}
	if post.Status != models.ContentStatusDraft || post.BatchID == nil || *post.BatchID != b.ID {
		t.Errorf("post = %s batch=%v", post.Status, post.BatchID)
	}
	if post.Title != "descale a machine" || post.Slug != "descale-a-machine" {
		t.Errorf("post = %q / %q", post.Title, post.Slug)
	}
}

func TestGenerateErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	tests := []struct {
		name    string
		prov    *scriptedProvider
		wantErr error
	}{
		{"provider error", &scriptedProvider{err: boom}, boom},
		{"empty answer", &scriptedProvider{answer: "   "}, ErrEmptyDraft},
		{"empty fence", &scriptedProvider{answer: "```"}, ErrEmptyDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := memstore.New()
			svc := NewService(tt.prov, st, 0)
			_, err := svc.WriteArticle(context.Background(), testPillar(), &models.PillarArticle{Title: "x", Role: models.RoleSupport})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNamer(t *testing.T) {
	p := testPillar()
	sk, err := topology.Plan(topology.Input{
		PillarID:   p.ID,
		PillarName: p.Name,
		Shape:      nil,
		Target:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Target 1 plans only the hub.
	prov := &scriptedProvider{answer: `{"clusters": [], "articles": ["The Espresso Machine Handbook"]}`}
	if err := NewNamer(prov, 0).NameSkeleton(context.Background(), p, sk); err != nil {
		t.Fatalf("NameSkeleton: %v", err)
	}
	if sk.Hub.Title != "The Espresso Machine Handbook" {
		t.Errorf("hub title = %q", sk.Hub.Title)
	}

	before := sk.Hub.Title
	bad := &scriptedProvider{answer: `{"clusters": [], "articles": []}`}
	if err := NewNamer(bad, 0).NameSkeleton(context.Background(), p, sk); err == nil {
		t.Error("expected error for a count mismatch")
	}
	if sk.Hub.Title != before {
		t.Error("skeleton must be untouched on error")
	}

	garbage := &scriptedProvider{answer: "sure! here are some names"}
	if err := NewNamer(garbage, 0).NameSkeleton(context.Background(), p, sk); err == nil {
		t.Error("expected error for a non-JSON answer")
	}
}

func TestNamerFollowsActiveProvider(t *testing.T) {
	p := testPillar()
	plan := func() *topology.Skeleton {
		sk, err := topology.Plan(topology.Input{PillarID: p.ID, PillarName: p.Name, Target: 1})
		if err != nil {
			t.Fatal(err)
		}
		return sk
	}
	prov := &scriptedProvider{answer: `{"clusters": [], "articles": ["Pulling the Perfect Shot"]}`}
	reg := ai.NewRegistry(ai.OfflineName, nil)
	reg.Register("scripted", prov)
	namer := NewNamer(reg, 0)

	sk := plan()
	placeholder := sk.Hub.Title
	if err := namer.NameSkeleton(context.Background(), p, sk); err != nil {
		t.Fatalf("NameSkeleton offline: %v", err)
	}
	if sk.Hub.Title != placeholder || len(prov.prompts) != 0 {
		t.Errorf("offline naming changed %q to %q after %d calls", placeholder, sk.Hub.Title, len(prov.prompts))
	}

	if err := reg.SetActive("scripted"); err != nil {
		t.Fatal(err)
	}
	sk = plan()
	if err := namer.NameSkeleton(context.Background(), p, sk); err != nil {
		t.Fatalf("NameSkeleton scripted: %v", err)
	}
	if sk.Hub.Title != "Pulling the Perfect Shot" {
		t.Errorf("hub title = %q after switching provider", sk.Hub.Title)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct{ in, want string }{
		{"# Title", "# Title"},
		{"```markdown\n# Title\n```", "# Title"},
		{"```\nbody\n```\n", "body"},
		{"```", ""},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// memArchive records uploads; err fails every Put.
type memArchive struct {
	mu      sync.Mutex
	objects map[string]string
	err     error
}

func (a *memArchive) Put(_ context.Context, key, contentType string, body []byte) error {
	if a.err != nil {
		return a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.objects == nil {
		a.objects = map[string]string{}
	}
	a.objects[key] = string(body)
	return nil
}

func TestArchiveDrafts(t *testing.T) {
	st := memstore.New()
	arch := &memArchive{}
	svc := NewService(ai.Offline{}, st, 0).WithArchive(arch)
	b := &models.KeywordBatch{ID: uuid.New(), SiteID: uuid.New(), Language: "en"}

	id, err := svc.ProcessKeyword(context.Background(), b, &models.KeywordJob{ID: uuid.New(), Keyword: "milk frothing"})
	if err != nil {
		t.Fatalf("ProcessKeyword: %v", err)
	}
	post, _ := st.FindPost(context.Background(), id)
	key := storage.PostKey(post)
	body, ok := arch.objects[key]
	if !ok {
		t.Fatalf("no object at %q, have %v", key, arch.objects)
	}
	if !strings.Contains(body, "milk frothing") {
		t.Errorf("archived body lacks the keyword:\n%s", body)
	}
}

func TestArchiveFailureKeepsPost(t *testing.T) {
	st := memstore.New()
	svc := NewService(ai.Offline{}, st, 0).WithArchive(&memArchive{err: errors.New("bucket gone")})
	b := &models.KeywordBatch{ID: uuid.New(), SiteID: uuid.New(), Language: "en"}

	id, err := svc.ProcessKeyword(context.Background(), b, &models.KeywordJob{ID: uuid.New(), Keyword: "latte art"})
	if err != nil {
		t.Fatalf("archive failure must not fail the job: %v", err)
	}
	if post, _ := st.FindPost(context.Background(), id); post == nil {
		t.Error("post not stored")
	}
}
