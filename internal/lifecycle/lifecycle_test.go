// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package lifecycle

import (
	"errors"
	"testing"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

var allStatuses = []models.PillarStatus{
	models.PillarDraft, models.PillarMapping, models.PillarMapped,
	models.PillarGenerating, models.PillarPaused, models.PillarCompleted,
	models.PillarFailed,
}

func TestStartGenerationLegality(t *testing.T) {
	tests := []struct {
		from    models.PillarStatus
		wantOK  bool
		wantNew models.PillarStatus
	}{
		{from: models.PillarDraft, wantOK: false},
		{from: models.PillarMapping, wantOK: false},
		{from: models.PillarMapped, wantOK: true, wantNew: models.PillarGenerating},
		{from: models.PillarGenerating, wantOK: false},
		{from: models.PillarPaused, wantOK: true, wantNew: models.PillarGenerating},
		{from: models.PillarCompleted, wantOK: false},
		{from: models.PillarFailed, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, err := Transition(tt.from, StartGeneration)
			if tt.wantOK {
				if err != nil || got != tt.wantNew {
					t.Errorf("Transition(%s) = %s, %v; want %s", tt.from, got, err, tt.wantNew)
				}
				return
			}
			var te *TransitionError
			if !errors.As(err, &te) || !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("Transition(%s): got %v, want *TransitionError", tt.from, err)
			}
			if te.From != tt.from || te.Action != StartGeneration {
				t.Errorf("error fields: %+v", te)
			}
			if got != tt.from {
				t.Errorf("rejected transition must keep status, got %s", got)
			}
		})
	}
}

func TestGenerateMapOnlyFromDraft(t *testing.T) {
	for _, s := range allStatuses {
		_, err := Transition(s, GenerateMap)
		if (s == models.PillarDraft) != (err == nil) {
			t.Errorf("generate-map from %s: err=%v", s, err)
		}
	}
}

func TestHappyPath(t *testing.T) {
	steps := []struct {
		action Action
		want   models.PillarStatus
	}{
		{GenerateMap, models.PillarMapping},
		{MapSucceeded, models.PillarMapped},
		{StartGeneration, models.PillarGenerating},
		{Pause, models.PillarPaused},
		{StartGeneration, models.PillarGenerating},
		{GenerationCompleted, models.PillarCompleted},
		{RegenerateMap, models.PillarMapping},
		{MapSucceeded, models.PillarMapped},
	}
	s := Initial
	for _, step := range steps {
		next, err := Transition(s, step.action)
		if err != nil {
			t.Fatalf("%s from %s: %v", step.action, s, err)
		}
		if next != step.want {
			t.Fatalf("%s from %s: got %s, want %s", step.action, s, next, step.want)
		}
		s = next
	}
}

func TestFailurePaths(t *testing.T) {
	if s, err := Transition(models.PillarMapping, MapFailed); err != nil || s != models.PillarFailed {
		t.Errorf("mapping failure: %s, %v", s, err)
	}
	if s, err := Transition(models.PillarGenerating, GenerationFailed); err != nil || s != models.PillarFailed {
		t.Errorf("generation failure: %s, %v", s, err)
	}
	if s, err := Transition(models.PillarFailed, Reset); err != nil || s != models.PillarDraft {
		t.Errorf("reset: %s, %v", s, err)
	}
	// Only mapping and generating can fail.
	for _, s := range allStatuses {
		for _, a := range []Action{MapFailed, GenerationFailed} {
			to, err := Transition(s, a)
			if err == nil && to == models.PillarFailed && s != models.PillarMapping && s != models.PillarGenerating {
				t.Errorf("failed reachable from %s via %s", s, a)
			}
		}
	}
}

// TestCompletedOnlyFromGenerating walks the whole table.
func TestCompletedOnlyFromGenerating(t *testing.T) {
	for from, actions := range table {
		for a, to := range actions {
			if to == models.PillarCompleted && from != models.PillarGenerating {
				t.Errorf("completed reachable from %s via %s", from, a)
			}
			if to == models.PillarDraft && from != models.PillarFailed {
				t.Errorf("draft reachable from %s via %s", from, a)
			}
		}
	}
}

func TestPauseOnlyWhileGenerating(t *testing.T) {
	for _, s := range allStatuses {
		if Can(s, Pause) != (s == models.PillarGenerating) {
			t.Errorf("pause from %s: Can=%v", s, Can(s, Pause))
		}
	}
}

func TestAllowedAndDelete(t *testing.T) {
	got := Allowed(models.PillarMapped)
	if len(got) != 2 || got[0] != RegenerateMap || got[1] != StartGeneration {
		t.Errorf("Allowed(mapped) = %v", got)
	}
	if len(Allowed("bogus")) != 0 {
		t.Error("unknown status has no actions")
	}
	for _, s := range allStatuses {
		if !CanDelete(s) {
			t.Errorf("delete must be allowed from %s", s)
		}
	}
	if !IsTerminal(models.PillarCompleted) || !IsTerminal(models.PillarFailed) || IsTerminal(models.PillarPaused) {
		t.Error("IsTerminal mismatch")
	}
}
