// Package guard decides whether a route may be shown to the current
// identity, should wait for session restore, or must redirect.
package guard

import (
	"strings"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/identity"
)

// Paths the guard redirects to.
const (
	LoginPath   = "/login"
	LandingPath = "/user-dashboard"
)

type Outcome int

const (
	Render Outcome = iota
	Wait
	RedirectLogin
	RedirectLanding
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect_login"
	case RedirectLanding:
		return "redirect_landing"
	}
	return "unknown"
}

type Decision struct {
	Outcome Outcome
	// Location is set for the redirect outcomes.
	Location string
}

// Decide applies the guard rules in order: wait while loading, send
// anonymous visitors to the login page, send signed-in users without an
// allowed role to their landing page, otherwise render. A nil allowedRoles
// means any signed-in user.
func Decide(state identity.State, allowedRoles []domain.Role) Decision {
	switch {
	case state.Loading():
		return Decision{Outcome: Wait}
	case !state.Authenticated():
		return Decision{Outcome: RedirectLogin, Location: LoginPath}
	case allowedRoles != nil && !domain.HasRole(state.User.Role, allowedRoles):
		return Decision{Outcome: RedirectLanding, Location: LandingPath}
	}
	return Decision{Outcome: Render}
}

// Route is one entry of the storefront route table.
type Route struct {
	Pattern string
	Name    string
	// Action gates the route; empty means public.
	Action domain.Action
}

// Public reports whether the route needs no identity.
func (r Route) Public() bool { return r.Action == "" }

// Routes is the storefront route table.
var Routes = []Route{
	{Pattern: "/", Name: "home"},
	{Pattern: "/products", Name: "products"},
	{Pattern: "/product/:id", Name: "product"},
	{Pattern: "/about", Name: "about"},
	{Pattern: "/contact", Name: "contact"},
	{Pattern: "/login", Name: "login"},
	{Pattern: "/signup", Name: "signup"},
	{Pattern: "/user-dashboard", Name: "user-dashboard", Action: domain.ActionViewUserDashboard},
	{Pattern: "/admin-dashboard", Name: "admin-dashboard", Action: domain.ActionViewAdminDashboard},
}

// Match finds the route for path and extracts its parameters. ok is false
// for paths outside the table.
func Match(path string) (route Route, params map[string]string, ok bool) {
	path = "/" + strings.Trim(path, "/")
	segments := strings.Split(path, "/")

	for _, r := range Routes {
		pattern := strings.Split(r.Pattern, "/")
		if len(pattern) != len(segments) {
			continue
		}
		params = map[string]string{}
		matched := true
		for i, seg := range pattern {
			if strings.HasPrefix(seg, ":") {
				if segments[i] == "" {
					matched = false
					break
				}
				params[seg[1:]] = segments[i]
				continue
			}
			if seg != segments[i] {
				matched = false
				break
			}
		}
		if matched {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

// Open resolves path and decides it for state. Public routes always render.
func Open(state identity.State, path string) (Route, Decision, bool) {
	route, _, ok := Match(path)
	if !ok {
		return Route{}, Decision{}, false
	}
	if route.Public() {
		return route, Decision{Outcome: Render}, true
	}
	return route, Decide(state, domain.RolesFor(route.Action)), true
}
