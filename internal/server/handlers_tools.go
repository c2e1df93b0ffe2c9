package server

import (
	"net/http"

	"github.com/jonathan/advision/internal/readability"
	"github.com/jonathan/advision/internal/types"
)

// RepairResponse is the recovered array. Items are objects, or scalars when
// the content was an array of strings.
type RepairResponse struct {
	Items []any `json:"items"`
	Count int   `json:"count"`
}

// handleScoreText scores free text without storing anything.
func (s *Server) handleScoreText(w http.ResponseWriter, r *http.Request) {
	var req types.ScoreRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.jsonResponse(w, http.StatusOK, readability.Analyze(req.Text))
}

// handleRepair recovers a JSON array from raw completion output. Unusable
// content yields an empty array, never an error.
func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	var req types.RepairRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	items := s.repairer.Values(req.Content)
	if items == nil {
		items = []any{}
	}
	s.jsonResponse(w, http.StatusOK, RepairResponse{Items: items, Count: len(items)})
}
