package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shotaro-dev/gold-digger/internal/models"
	"github.com/shotaro-dev/gold-digger/internal/repository"
)

type investRequest struct {
	InvestmentAmount float64 `json:"investmentAmount"`
	PricePerOz       float64 `json:"pricePerOz"`
}

type investResponse struct {
	ID               int64   `json:"id"`
	GoldAmount       float64 `json:"goldAmount"`
	InvestmentAmount float64 `json:"investmentAmount"`
}

// handleInvest records a purchase at the price the client observed on its
// stream. The server-side cached price is deliberately not substituted; see
// DESIGN.md for the trust-model decision.
func (s *Server) handleInvest(w http.ResponseWriter, r *http.Request) {
	var req investRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "investmentAmount and pricePerOz must be positive numbers")
		return
	}

	inv, err := s.ledger.Record(r.Context(), userID(r), req.InvestmentAmount, req.PricePerOz)
	if err != nil {
		if errors.Is(err, repository.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		fmt.Printf("Error recording investment: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to record investment")
		return
	}

	writeJSON(w, http.StatusOK, investResponse{
		ID:               inv.ID,
		GoldAmount:       inv.GoldAmount,
		InvestmentAmount: inv.InvestmentAmount,
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.Summarize(r.Context(), userID(r))
	if err != nil {
		fmt.Printf("Error summarizing portfolio: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch portfolio")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleInvestments(w http.ResponseWriter, r *http.Request) {
	investments, err := s.ledger.ListByUser(r.Context(), userID(r))
	if err != nil {
		fmt.Printf("Error listing investments: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch investments")
		return
	}
	if investments == nil {
		investments = []models.Investment{}
	}
	writeJSON(w, http.StatusOK, investments)
}
