package app

import (
	"errors"
	"fmt"
)

// ErrStartupOrder is returned when a startup step runs before the steps it
// depends on, or runs twice.
var ErrStartupOrder = errors.New("startup step out of order")

// Step is one stage of the console startup sequence.
type Step int

const (
	StepRoot Step = iota + 1
	StepStore
	StepRouter
	StepServices
	StepPrimitives
	StepMount
)

// Startup lists the steps in the order Initialize runs them.
var Startup = []Step{StepRoot, StepStore, StepRouter, StepServices, StepPrimitives, StepMount}

func (s Step) String() string {
	switch s {
	case StepRoot:
		return "root"
	case StepStore:
		return "store"
	case StepRouter:
		return "router"
	case StepServices:
		return "services"
	case StepPrimitives:
		return "primitives"
	case StepMount:
		return "mount"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}
