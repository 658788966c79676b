package api

import (
	"fmt"
	"net/http"

	"github.com/shotaro-dev/gold-digger/internal/models"
)

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListAll(r.Context())
	if err != nil {
		fmt.Printf("Error listing users: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleAdminInvestments(w http.ResponseWriter, r *http.Request) {
	investments, err := s.ledger.ListAll(r.Context())
	if err != nil {
		fmt.Printf("Error listing all investments: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch investments")
		return
	}
	if investments == nil {
		investments = []models.Investment{}
	}
	writeJSON(w, http.StatusOK, investments)
}
