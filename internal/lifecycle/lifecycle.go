// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package lifecycle is the authority on which pillar actions are legal in
// which status. The transition table below is the only place the pillar
// state machine is defined.
package lifecycle

import (
	"errors"
	"fmt"
	"sort"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// Action is a request or an outcome that moves a pillar between states.
type Action string

const (
	GenerateMap         Action = "generate-map"
	RegenerateMap       Action = "regenerate-map"
	MapSucceeded        Action = "map-succeeded"
	MapFailed           Action = "map-failed"
	Reset               Action = "reset"
	StartGeneration     Action = "start-generation"
	Pause               Action = "pause"
	GenerationCompleted Action = "generation-completed"
	GenerationFailed    Action = "generation-failed"

	// Delete is checked by CanDelete rather than the table.
	Delete Action = "delete"
)

// ErrInvalidTransition is wrapped by every *TransitionError.
var ErrInvalidTransition = errors.New("invalid state transition")

// TransitionError reports an action that is not legal in the current status.
type TransitionError struct {
	From   models.PillarStatus
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a pillar in status %q", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

var table = map[models.PillarStatus]map[Action]models.PillarStatus{
	models.PillarDraft: {
		GenerateMap: models.PillarMapping,
	},
	models.PillarMapping: {
		MapSucceeded: models.PillarMapped,
		MapFailed:    models.PillarFailed,
	},
	models.PillarMapped: {
		RegenerateMap:   models.PillarMapping,
		StartGeneration: models.PillarGenerating,
	},
	models.PillarGenerating: {
		Pause:               models.PillarPaused,
		GenerationCompleted: models.PillarCompleted,
		GenerationFailed:    models.PillarFailed,
	},
	models.PillarPaused: {
		StartGeneration: models.PillarGenerating,
		RegenerateMap:   models.PillarMapping,
	},
	models.PillarCompleted: {
		RegenerateMap: models.PillarMapping,
	},
	models.PillarFailed: {
		Reset: models.PillarDraft,
	},
}

// Transition returns the status reached by applying action in from, or a
// *TransitionError if the action is not legal there.
func Transition(from models.PillarStatus, action Action) (models.PillarStatus, error) {
	if to, ok := table[from][action]; ok {
		return to, nil
	}
	return from, &TransitionError{From: from, Action: action}
}

// Can reports whether action is legal in status.
func Can(from models.PillarStatus, action Action) bool {
	_, ok := table[from][action]
	return ok
}

// Allowed lists the actions legal in status, sorted by name.
func Allowed(from models.PillarStatus) []Action {
	var out []Action
	for a := range table[from] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CanDelete reports whether a pillar in status may be deleted. Deletion is
// allowed from every state; the caller halts in-flight work first.
func CanDelete(models.PillarStatus) bool {
	return true
}

// IsTerminal reports whether no further generation will happen without an
// explicit request.
func IsTerminal(s models.PillarStatus) bool {
	return s == models.PillarCompleted || s == models.PillarFailed
}

// Initial is the status every new pillar starts in.
const Initial = models.PillarDraft
