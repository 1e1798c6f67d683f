// ABOUTME: Route table and guard decisions for screen navigation
// ABOUTME: Pure functions of session state, never mutate the session

package routes

import (
	"strings"

	"newsterm/internal/session"
)

// Route names a navigable screen
type Route string

const (
	RouteRoot                 Route = "/"
	RouteLogin                Route = "/login"
	RouteRegister             Route = "/register"
	RoutePasswordResetRequest Route = "/password-reset-request"
	RoutePasswordResetVerify  Route = "/password-reset-verify"
	RouteMFALoginVerify       Route = "/mfa-login-verify"
	RouteNews                 Route = "/news"
	RouteNewsDetail           Route = "/news/detail"
	RouteMFASetup             Route = "/mfa-setup"
	RouteNotFound             Route = "/not-found"
)

// Access classifies who may visit a route
type Access int

const (
	// AccessPublicOnly screens are for unauthenticated users only
	AccessPublicOnly Access = iota
	// AccessProtected screens require an authenticated session
	AccessProtected
	// AccessAny screens resolve for both states (root, not-found)
	AccessAny
)

// AccessOf returns the access class of a route. Unknown routes are treated
// as not-found, which anyone may see.
func AccessOf(r Route) Access {
	switch r {
	case RouteLogin, RouteRegister, RoutePasswordResetRequest, RoutePasswordResetVerify, RouteMFALoginVerify:
		return AccessPublicOnly
	case RouteNews, RouteNewsDetail, RouteMFASetup:
		return AccessProtected
	default:
		return AccessAny
	}
}

// Decision is the outcome of a guard evaluation
type Decision int

const (
	// Allow renders the requested route
	Allow Decision = iota
	// Wait renders a neutral waiting state; session state is still unknown
	Wait
	// Redirect navigates elsewhere instead of rendering
	Redirect
)

// Target is a route plus an optional parameter (the article id for detail)
type Target struct {
	Route Route
	Param string
}

// Path renders the target as a storable path string
func (t Target) Path() string {
	if t.Route == RouteNewsDetail && t.Param != "" {
		return string(RouteNews) + "/" + t.Param
	}
	return string(t.Route)
}

// ParsePath is the inverse of Target.Path. Unknown paths map to not-found.
func ParsePath(path string) Target {
	if path == "" {
		return Target{Route: RouteNotFound}
	}
	if rest, ok := strings.CutPrefix(path, string(RouteNews)+"/"); ok && rest != "" {
		// A detail target without an article id has nothing to show;
		// land on the list instead
		if rest == "detail" {
			return Target{Route: RouteNews}
		}
		return Target{Route: RouteNewsDetail, Param: rest}
	}
	switch Route(path) {
	case RouteRoot, RouteLogin, RouteRegister, RoutePasswordResetRequest,
		RoutePasswordResetVerify, RouteMFALoginVerify, RouteNews, RouteMFASetup:
		return Target{Route: Route(path)}
	}
	return Target{Route: RouteNotFound}
}

// Verdict is the full guard outcome for a navigation request
type Verdict struct {
	Decision   Decision
	RedirectTo Target
	// SaveTarget is set when the denied target should be recorded as the
	// redirect-after-login destination
	SaveTarget bool
}

// Evaluate gates a navigation target against the current session snapshot.
//
// Protected routes: while loading, wait (never redirect on unknown state);
// unauthenticated requests redirect to login and record the target;
// authenticated requests render.
//
// Public-only routes: authenticated users are sent to the news view, never
// allowed to re-render login or register; others render.
//
// Root: wait while loading, then redirect by session state.
func Evaluate(snap session.Snapshot, target Target) Verdict {
	switch AccessOf(target.Route) {
	case AccessProtected:
		if snap.Loading {
			return Verdict{Decision: Wait}
		}
		if !snap.IsAuthenticated {
			return Verdict{Decision: Redirect, RedirectTo: Target{Route: RouteLogin}, SaveTarget: true}
		}
		return Verdict{Decision: Allow}

	case AccessPublicOnly:
		if snap.IsAuthenticated {
			return Verdict{Decision: Redirect, RedirectTo: Target{Route: RouteNews}}
		}
		return Verdict{Decision: Allow}

	default:
		if target.Route == RouteRoot {
			if snap.Loading {
				return Verdict{Decision: Wait}
			}
			if snap.IsAuthenticated {
				return Verdict{Decision: Redirect, RedirectTo: Target{Route: RouteNews}}
			}
			return Verdict{Decision: Redirect, RedirectTo: Target{Route: RouteLogin}}
		}
		return Verdict{Decision: Allow}
	}
}
