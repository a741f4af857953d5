// Package guard decides whether a page may render for the current session.
//
// A Guard is created per page mount. It waits for the session to be read
// (hydration), then evaluates the session and the page's permission
// requirement synchronously and again whenever the path, the subject or the
// requirement changes. Denials never surface as errors; they are reported as
// a redirect target or, on the landing route, as a no-access page.
package guard

import (
	"slices"

	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
)

// State is the evaluation state of a Guard.
type State int

// Guard states.
const (
	PendingHydration State = iota
	Checking
	Allowed
	DeniedUnauthenticated
	DeniedForbidden
)

func (s State) String() string {
	switch s {
	case PendingHydration:
		return "pending_hydration"
	case Checking:
		return "checking"
	case Allowed:
		return "allowed"
	case DeniedUnauthenticated:
		return "denied_unauthenticated"
	case DeniedForbidden:
		return "denied_forbidden"
	default:
		return "unknown"
	}
}

// Routes are the navigation targets a Guard redirects to.
type Routes struct {
	Login    string
	Landing  string
	Password string
}

// Input is what a Guard evaluates.
type Input struct {
	// Path is the route being rendered.
	Path string
	// Hydrated reports whether the persisted session has been read.
	Hydrated bool
	// Subject is the signed-in user, nil when there is none.
	Subject *auth.Subject
	// Required lists permissions of which at least one must be held.
	Required []permission.Key
}

// Result is the outcome of Use.
type Result struct {
	State State
	// IsChecking is true until a decision has been made.
	IsChecking bool
	// Redirect is the route to navigate to, empty when none.
	Redirect string
	// NoAccess asks the caller to render a no-access page in place.
	NoAccess bool
}

// Guard holds the state of one mounted page.
type Guard struct {
	routes Routes

	state    State
	hydrated bool
	last     Result

	path     string
	subject  *auth.Subject
	required []permission.Key
}

// New returns a Guard in the PendingHydration state.
func New(routes Routes) *Guard {
	return &Guard{
		routes: routes,
		state:  PendingHydration,
		last:   Result{State: PendingHydration, IsChecking: true},
	}
}

// State returns the current state.
func (g *Guard) State() State {
	return g.state
}

// Use evaluates in and returns the decision. Before hydration it reports
// IsChecking. Hydration is latched: once seen it is never undone.
func (g *Guard) Use(in Input) Result {
	if !g.hydrated {
		if !in.Hydrated {
			return g.last
		}

		g.hydrated = true
		g.state = Checking
	} else if !g.changed(in) {
		return g.last
	}

	g.path = in.Path
	g.subject = in.Subject
	g.required = slices.Clone(in.Required)

	g.last = g.evaluate(in)
	g.state = g.last.State

	return g.last
}

func (g *Guard) changed(in Input) bool {
	return in.Path != g.path ||
		in.Subject != g.subject ||
		!slices.Equal(in.Required, g.required)
}

func (g *Guard) evaluate(in Input) Result {
	s := in.Subject

	if s == nil || !s.Active() {
		return g.deny(DeniedUnauthenticated, in.Path, g.routes.Login)
	}

	if s.MustChangePassword {
		if in.Path == g.routes.Password {
			return Result{State: Allowed}
		}

		return Result{State: DeniedForbidden, Redirect: g.routes.Password}
	}

	if !auth.HasAnyPermission(s, in.Required...) {
		return g.deny(DeniedForbidden, in.Path, g.routes.Landing)
	}

	return Result{State: Allowed}
}

// deny redirects to target unless the page already is target, in which case
// the no-access page is shown to avoid a redirect loop.
func (g *Guard) deny(state State, path, target string) Result {
	if path == target {
		return Result{State: state, NoAccess: true}
	}

	return Result{State: state, Redirect: target}
}
