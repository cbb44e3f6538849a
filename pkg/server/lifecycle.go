package server

import (
	"fmt"
	"time"
)

// State is a position in the server lifecycle.
type State int

// Lifecycle states. The order is the order a successful start moves
// through; Failed is reachable from every state before Listening.
const (
	StateCreated State = iota
	StateInitializing
	StateMiddlewareInstalled
	StateRoutesInstalled
	StateListening
	StateFailed
)

var stateNames = map[State]string{
	StateCreated:             "Created",
	StateInitializing:        "Initializing",
	StateMiddlewareInstalled: "MiddlewareInstalled",
	StateRoutesInstalled:     "RoutesInstalled",
	StateListening:           "Listening",
	StateFailed:              "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateListening || s == StateFailed
}

// allowed lists the legal targets of each state.
var allowed = map[State][]State{
	StateCreated:             {StateInitializing, StateFailed},
	StateInitializing:        {StateMiddlewareInstalled, StateFailed},
	StateMiddlewareInstalled: {StateRoutesInstalled, StateFailed},
	StateRoutesInstalled:     {StateListening, StateFailed},
}

// transition returns to if the move from -> to is legal.
func transition(from, to State) (State, error) {
	for _, next := range allowed[from] {
		if next == to {
			return to, nil
		}
	}
	return from, fmt.Errorf("illegal lifecycle transition %s -> %s", from, to)
}

// Transition is one recorded state change.
type Transition struct {
	From State
	To   State
	At   time.Time
}

// Stage names reported in StageError.
const (
	StageCredentials = "credentials"
	StageTransport   = "transport"
	StageMiddleware  = "middleware"
	StageRoutes      = "routes"
	StageListen      = "listen"
)

// stage is one step of Start. enters is the state reached when the stage
// succeeds; StateInitializing means the stage does not move the state.
type stage struct {
	name   string
	enters State
	run    func(b *bootContext) error
}

// stages returns the fixed start sequence.
func (s *Server) stages() []stage {
	return []stage{
		{name: StageCredentials, enters: StateInitializing, run: s.loadCredentials},
		{name: StageTransport, enters: StateInitializing, run: s.buildTransport},
		{name: StageMiddleware, enters: StateMiddlewareInstalled, run: s.installMiddleware},
		{name: StageRoutes, enters: StateRoutesInstalled, run: s.installRoutes},
		{name: StageListen, enters: StateListening, run: s.bind},
	}
}
