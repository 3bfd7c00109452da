package classtop

import (
	"github.com/gofiber/fiber/v2"
)

// FiberHandler adapts the guard to a fiber host without going through
// go-router, for apps that mount fiber directly.
func (g *Guard) FiberHandler(route Route) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch g.Evaluate(route) {
		case DecisionLoginRedirect:
			g.Logger.Info("Unauthenticated access, redirecting to login", "path", c.OriginalURL())
			return c.Redirect(g.loginPath, redirectStatus(c.Method()))
		case DecisionHomeRedirect:
			return c.Redirect(g.homePath, redirectStatus(c.Method()))
		}

		return c.Next()
	}
}

// RegisterGuardedRoutes applies the guard to a set of routes on a fiber app,
// wiring each handler behind its own evaluation.
func RegisterGuardedRoutes(app fiber.Router, guard *Guard, routes map[Route]fiber.Handler) {
	for route, handler := range routes {
		app.Get(route.Path, guard.FiberHandler(route), handler)
	}
}
