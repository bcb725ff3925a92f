package statemachine

import (
	"fmt"
	"strings"
)

// Actor is the kind of caller requesting a transition
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorAdmin    Actor = "admin"
	ActorDriver   Actor = "driver"
	// ActorSystem covers cascades triggered by another record changing
	ActorSystem Actor = "system"
)

// Transition defines a valid state change and who can perform it
type Transition[S ~string] struct {
	From  S     `json:"from"`
	To    S     `json:"to"`
	Actor Actor `json:"actor"`
}

type transitionKey[S ~string] struct {
	From  S
	To    S
	Actor Actor
}

// Machine is an immutable transition table for one status type.
type Machine[S ~string] struct {
	name        string
	states      []S
	transitions []Transition[S]
	index       map[transitionKey[S]]bool
}

func newMachine[S ~string](name string, states []S, transitions []Transition[S]) *Machine[S] {
	m := &Machine[S]{
		name:        name,
		states:      states,
		transitions: transitions,
		index:       make(map[transitionKey[S]]bool, len(transitions)),
	}
	for _, t := range transitions {
		m.index[transitionKey[S]{t.From, t.To, t.Actor}] = true
	}
	return m
}

// allow expands one edge for several actors
func allow[S ~string](from, to S, actors ...Actor) []Transition[S] {
	out := make([]Transition[S], 0, len(actors))
	for _, a := range actors {
		out = append(out, Transition[S]{From: from, To: to, Actor: a})
	}
	return out
}

func (m *Machine[S]) Name() string { return m.name }

// IsValid reports whether s is one of the machine's states.
func (m *Machine[S]) IsValid(s S) bool {
	for _, st := range m.states {
		if st == s {
			return true
		}
	}
	return false
}

// CanTransition checks if a given actor can move from one state to another
func (m *Machine[S]) CanTransition(from, to S, actor Actor) error {
	if m.index[transitionKey[S]{from, to, actor}] {
		return nil
	}
	return &TransitionError{
		Machine: m.name,
		From:    string(from),
		To:      string(to),
		Actor:   actor,
		Valid:   m.describeValidFrom(from),
	}
}

// ValidTransitionsFrom returns all valid next states from a given state
func (m *Machine[S]) ValidTransitionsFrom(status S) []S {
	var nexts []S
	seen := map[S]bool{}
	for _, t := range m.transitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves status.
func (m *Machine[S]) IsTerminal(status S) bool {
	return len(m.ValidTransitionsFrom(status)) == 0
}

func (m *Machine[S]) States() []S { return m.states }

func (m *Machine[S]) TerminalStates() []S {
	var out []S
	for _, s := range m.states {
		if m.IsTerminal(s) {
			out = append(out, s)
		}
	}
	return out
}

// Transitions returns the full table for documentation
func (m *Machine[S]) Transitions() []Transition[S] {
	return m.transitions
}

func (m *Machine[S]) describeValidFrom(status S) string {
	nexts := m.ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// TransitionError is returned when a status change is not in the table.
type TransitionError struct {
	Machine string
	From    string
	To      string
	Actor   Actor
	Valid   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		e.Machine, e.From, e.To, e.Actor, e.From, e.Valid)
}
