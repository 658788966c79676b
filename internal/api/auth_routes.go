package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/shotaro-dev/gold-digger/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, username, email and password are required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(email) {
		writeError(w, http.StatusBadRequest, "a valid email address is required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error hashing password: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	user, err := s.users.Create(r.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Username), email, string(hash))
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "this email address is already registered")
			return
		}
		fmt.Printf("Error creating user: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.GetByEmail(r.Context(), email)
	if err != nil {
		fmt.Printf("Error fetching user by email: %v\n", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	// Same answer for unknown email and wrong password.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "email or password is incorrect")
		return
	}

	sess, _ := s.sessions.Get(r, sessionName)
	sess.Values["userId"] = user.ID
	if err := sess.Save(r, w); err != nil {
		fmt.Printf("Error saving session: %v\n", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessions.Get(r, sessionName)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		fmt.Printf("Error destroying session: %v\n", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessions.Get(r, sessionName)
	uid, ok := sess.Values["userId"].(int64)
	if !ok || uid == 0 {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := s.users.GetByID(r.Context(), uid)
	if err != nil {
		fmt.Printf("Error fetching user: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch account")
		return
	}
	if user == nil {
		// Account gone; drop the stale session.
		sess.Options.MaxAge = -1
		_ = sess.Save(r, w)
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
