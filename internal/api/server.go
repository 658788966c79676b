package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shotaro-dev/gold-digger/internal/config"
	"github.com/shotaro-dev/gold-digger/internal/pricefeed"
	"github.com/shotaro-dev/gold-digger/internal/repository"
)

const sessionName = "gold_session"

type Server struct {
	pool       *pgxpool.Pool
	users      *repository.UserRepo
	ledger     *repository.InvestmentRepo
	feed       *pricefeed.Broadcaster
	sessions   *sessions.CookieStore
	httpServer *http.Server
	adminKey   string
	keepalive  time.Duration
}

func NewServer(pool *pgxpool.Pool, feed *pricefeed.Broadcaster, cfg *config.Config) *Server {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		pool:      pool,
		users:     repository.NewUserRepo(pool),
		ledger:    repository.NewInvestmentRepo(pool),
		feed:      feed,
		sessions:  store,
		adminKey:  cfg.AdminAPIKey,
		keepalive: time.Duration(cfg.KeepaliveSeconds) * time.Second,
	}

	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.HandleFunc("GET /auth/me", s.handleMe)

	// Investment routes (session required)
	mux.Handle("POST /api/invest", s.requireSession(s.handleInvest))
	mux.Handle("GET /api/portfolio", s.requireSession(s.handlePortfolio))
	mux.Handle("GET /api/investments", s.requireSession(s.handleInvestments))
	mux.Handle("GET /api/stream", s.requireSession(s.handleStream))

	// Admin routes (Bearer API key)
	mux.Handle("GET /admin/users", s.requireAPIKey(s.handleAdminUsers))
	mux.Handle("GET /admin/investments", s.requireAPIKey(s.handleAdminInvestments))

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := corsMiddleware(mux, cfg.CORSAllowOrigin)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: /api/stream connections live for the duration
		// of the client connection.
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] Server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

type ctxKey int

const userIDKey ctxKey = 0

// requireSession rejects requests without a logged-in session and injects the
// resolved user id into the request context.
func (s *Server) requireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := s.sessions.Get(r, sessionName)
		uid, ok := sess.Values["userId"].(int64)
		if !ok || uid == 0 {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
	})
}

// userID reads the id injected by requireSession.
func userID(r *http.Request) int64 {
	uid, _ := r.Context().Value(userIDKey).(int64)
	return uid
}

func (s *Server) requireAPIKey(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminKey == "" {
			next(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.adminKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- request/response helpers ---

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
