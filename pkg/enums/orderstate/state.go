// Package orderstate names the order states the console knows how to label.
// States are owned by the backend; unknown values are displayed verbatim.
package orderstate

import (
	"strings"
)

type State struct {
	Name string
}

func (s State) Code() string {
	return s.Name
}

func (s State) Label() string {
	return Label(s.Name)
}

type Enum struct {
	New        State
	Stashed    State
	InProgress State
	Complete   State
	Paid       State
	Cancelled  State
}

var States = Enum{
	New:        State{Name: "new"},
	Stashed:    State{Name: "stashed"},
	InProgress: State{Name: "in_progress"},
	Complete:   State{Name: "complete"},
	Paid:       State{Name: "paid"},
	Cancelled:  State{Name: "cancelled"},
}

// Board lists the states shown as kitchen board columns, in display order.
var Board = []State{
	States.New,
	States.InProgress,
	States.Complete,
}

var All = []State{
	States.New,
	States.Stashed,
	States.InProgress,
	States.Complete,
	States.Paid,
	States.Cancelled,
}

// ByName returns the state for a given name, or nil if not found
func ByName(name string) *State {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// Label turns a backend state code into a display label.
// "in_progress" and "in-progress" both become "In Progress".
func Label(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Draft"
	}
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

// IsTerminal reports whether no further kitchen work is expected.
func IsTerminal(name string) bool {
	switch name {
	case States.Complete.Name, States.Paid.Name, States.Cancelled.Name:
		return true
	}
	return false
}
