package classtop

import (
	"net/http"

	"github.com/goliatone/go-router"
)

// Route is the static navigation metadata the view layer declares per view.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
}

// Decision is the outcome of one navigation evaluation.
type Decision int

const (
	// DecisionAllow lets the transition proceed unchanged
	DecisionAllow Decision = iota
	// DecisionLoginRedirect aborts the transition toward the login view
	DecisionLoginRedirect
	// DecisionHomeRedirect bounces an authenticated user off the login view
	DecisionHomeRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionLoginRedirect:
		return "redirect_login"
	case DecisionHomeRedirect:
		return "redirect_home"
	default:
		return "allow"
	}
}

// Guard gates transitions between the public login view and views marked as
// requiring authentication. It holds no state between evaluations; every
// attempt is decided from the store contents at that instant.
type Guard struct {
	state     AuthState
	loginPath string
	homePath  string
	Logger    Logger
}

// NewGuard returns a guard reading authentication state from state.
func NewGuard(state AuthState, cfg Config) *Guard {
	return &Guard{
		state:     state,
		loginPath: cfg.GetLoginRoute(),
		homePath:  cfg.GetHomeRoute(),
		Logger:    defLogger{},
	}
}

func (g *Guard) WithLogger(logger Logger) *Guard {
	g.Logger = logger
	return g
}

// Evaluate applies the transition rules in order. For fixed authentication
// state it is a pure function of the route metadata.
func (g *Guard) Evaluate(route Route) Decision {
	authenticated := g.state.IsAuthenticated()

	if route.RequiresAuth && !authenticated {
		return DecisionLoginRedirect
	}

	if route.Path == g.loginPath && authenticated {
		return DecisionHomeRedirect
	}

	return DecisionAllow
}

// LoginPath is the redirect target for unauthenticated access.
func (g *Guard) LoginPath() string { return g.loginPath }

// HomePath is the redirect target for authenticated access to the login view.
func (g *Guard) HomePath() string { return g.homePath }

// Middleware adapts the guard to a go-router host, issuing redirects for
// aborted transitions.
func (g *Guard) Middleware(route Route) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			switch g.Evaluate(route) {
			case DecisionLoginRedirect:
				g.Logger.Info("Unauthenticated access, redirecting to login", "path", c.OriginalURL())
				return c.Redirect(g.loginPath, redirectStatus(c.Method()))
			case DecisionHomeRedirect:
				g.Logger.Debug("Authenticated user on login view, redirecting home", "path", c.OriginalURL())
				return c.Redirect(g.homePath, redirectStatus(c.Method()))
			}

			return next(c)
		}
	}
}

func redirectStatus(method string) int {
	if method == string(router.GET) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
