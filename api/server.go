/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logging (zap)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/users/*          User accounts
  /api/employees/*      Employee profiles
  /api/teams/*          Teams
  /api/policies/*       Accrual policies
  /api/balances/*       Balance records and live calculation
  /api/requests/*       PTO requests, approve and reject
  /api/dashboard        Aggregates for the overview page
  /api/roles            Role enumeration with capabilities
  /api/statuses         Request status enumeration
  /api/scenarios/*      Demo scenarios
  /healthz              Liveness and database check

SECURITY NOTE:
  No authentication middleware. Approve and reject check the approver's
  role, but the approver ID comes from the request body.

SEE ALSO:
  - handlers.go: Handler and response helpers
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/pto-tracker/logger"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// CORSAllowOrigins defaults to the local frontend dev servers.
	CORSAllowOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.CORSAllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !allowsAny(origins),
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.Put("/{id}", h.UpdateUser)
			r.Patch("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Patch("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.ListTeams)
			r.Post("/", h.CreateTeam)
			r.Get("/{id}", h.GetTeam)
			r.Put("/{id}", h.UpdateTeam)
			r.Patch("/{id}", h.UpdateTeam)
			r.Delete("/{id}", h.DeleteTeam)
		})

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.Post("/", h.CreatePolicy)
			r.Get("/{id}", h.GetPolicy)
			r.Put("/{id}", h.UpdatePolicy)
			r.Patch("/{id}", h.UpdatePolicy)
			r.Delete("/{id}", h.DeletePolicy)
		})

		r.Route("/balances", func(r chi.Router) {
			r.Get("/", h.ListBalances)
			r.Post("/", h.CreateBalance)
			r.Post("/calculate", h.CalculateBalance)
			r.Get("/{id}", h.GetBalance)
			r.Put("/{id}", h.UpdateBalance)
			r.Patch("/{id}", h.UpdateBalance)
			r.Delete("/{id}", h.DeleteBalance)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", h.ListRequests)
			r.Post("/", h.CreateRequest)
			r.Get("/{id}", h.GetRequest)
			r.Put("/{id}", h.UpdateRequest)
			r.Patch("/{id}", h.UpdateRequest)
			r.Delete("/{id}", h.DeleteRequest)
			r.Post("/{id}/approve", h.ApproveRequest)
			r.Post("/{id}/reject", h.RejectRequest)
		})

		r.Get("/dashboard", h.GetDashboard)
		r.Get("/roles", h.ListRoles)
		r.Get("/statuses", h.ListStatuses)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// Credentials cannot be combined with a wildcard origin.
func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
