package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"trip-booking/internal/resolver"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/graphql-go/graphql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// RegisterRoutes sets up the router with all endpoints.
func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(rateLimitMiddleware)

	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/graphql", s.graphqlHandler)

	return r
}

// healthHandler provides health information.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResp, _ := json.Marshal(s.db.Health())
	w.Header().Set("Content-Type", "application/json")
	w.Write(jsonResp)
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// graphqlHandler resolves the caller's identity from the Authorization
// token, then hands the query to the GraphQL engine. Every operation in the
// request shares the one resolved user.
func (s *Server) graphqlHandler(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn("invalid graphql request", "error", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	s.metrics.GraphQLRequests.Inc()

	// An undecodable or missing token falls back to the demo identity.
	email := resolver.DecodeToken(bearerToken(r))
	user, err := s.db.FindOrCreateUser(email)
	if err != nil {
		s.log.Error("resolving request identity", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         s.resolver.Schema(),
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        resolver.WithUser(r.Context(), user),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

var (
	visitors = make(map[string]*rate.Limiter)
	mu       sync.Mutex
)

func getVisitor(ip string) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	limiter, exists := visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(5, 10) // 5 requests per second, burst of 10
		visitors[ip] = limiter
	}
	return limiter
}

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !getVisitor(r.RemoteAddr).Allow() {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
