package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/db"
	"github.com/jonathan/advision/internal/readability"
	"github.com/jonathan/advision/internal/types"
	"go.uber.org/zap"
)

// AdCopyListResponse wraps a project's ad copies.
type AdCopyListResponse struct {
	AdCopies []db.AdCopy `json:"ad_copies"`
	Count    int         `json:"count"`
}

// AdCopyKeywordsResponse is the per-ad-copy keyword list.
type AdCopyKeywordsResponse struct {
	AdCopyID uuid.UUID `json:"ad_copy_id"`
	Keywords []string  `json:"keywords"`
}

// ReadabilityResponse pairs the stored snapshot with the full report.
type ReadabilityResponse struct {
	Score  *db.ReadabilityScore `json:"score"`
	Report *readability.Report  `json:"report,omitempty"`
}

// handleGenerateAdCopies generates and saves a batch of ad copies in the
// requested tone. The body is optional.
func (s *Server) handleGenerateAdCopies(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}

	var req types.GenerateAdCopiesRequest
	if !s.decodeOptionalJSON(w, r, &req) {
		return
	}
	tone := toneOrDefault(req.Tone)

	contents, err := s.generator.AdCopies(r.Context(), project.ProjectBrief, tone)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if len(contents) == 0 {
		s.errorResponse(w, http.StatusBadGateway, "no ad copies were generated")
		return
	}

	copies, err := s.store.CreateAdCopies(r.Context(), project.ID, userID, contents, tone)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.logger.Info("ad copies generated",
		zap.String("project_id", project.ID.String()),
		zap.Int("count", len(copies)),
		zap.String("tone", tone))
	s.jsonResponse(w, http.StatusCreated, AdCopyListResponse{AdCopies: copies, Count: len(copies)})
}

// handleListAdCopies lists a project's ad copies with their latest score.
func (s *Server) handleListAdCopies(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}

	copies, err := s.store.ListAdCopies(r.Context(), project.ID, userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if copies == nil {
		copies = []db.AdCopy{}
	}
	s.jsonResponse(w, http.StatusOK, AdCopyListResponse{AdCopies: copies, Count: len(copies)})
}

// handleCreateAdCopy saves a hand-written ad copy.
func (s *Server) handleCreateAdCopy(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}
	var req types.CreateAdCopyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		s.handleError(w, r, &ErrValidation{Field: "content", Message: "must not be blank"})
		return
	}

	copies, err := s.store.CreateAdCopies(r.Context(), project.ID, userID, []string{content}, toneOrDefault(req.Tone))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, copies[0])
}

// handleDeleteAdCopy deletes an ad copy and its scores.
func (s *Server) handleDeleteAdCopy(w http.ResponseWriter, r *http.Request) {
	s.deleteOwned(w, r, "ad copy", s.store.DeleteAdCopy)
}

// handleGenerateAdCopyKeywords suggests three or four keywords for one ad copy.
func (s *Server) handleGenerateAdCopyKeywords(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	adCopy, ok := s.ownedAdCopy(w, r, userID)
	if !ok {
		return
	}

	keywords, err := s.generator.KeywordsForAdCopy(r.Context(), adCopy.Content)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, AdCopyKeywordsResponse{AdCopyID: adCopy.ID, Keywords: keywords})
}

// handleScoreAdCopy scores an ad copy and stores the snapshot.
func (s *Server) handleScoreAdCopy(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	adCopy, ok := s.ownedAdCopy(w, r, userID)
	if !ok {
		return
	}

	report := readability.Analyze(adCopy.Content)
	score, err := s.store.SaveReadability(r.Context(), adCopy.ID, userID, report.Snapshot())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.logger.Debug("ad copy scored",
		zap.String("ad_copy_id", adCopy.ID.String()),
		zap.Float64("reading_ease", report.Scores.FleschReadingEase))
	s.jsonResponse(w, http.StatusCreated, ReadabilityResponse{Score: score, Report: &report})
}

// handleGetReadability returns the latest stored score of an ad copy.
func (s *Server) handleGetReadability(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	adCopy, ok := s.ownedAdCopy(w, r, userID)
	if !ok {
		return
	}

	score, err := s.store.LatestReadability(r.Context(), adCopy.ID, userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if score == nil {
		s.handleError(w, r, &ErrNotFound{Resource: "readability score"})
		return
	}
	s.jsonResponse(w, http.StatusOK, ReadabilityResponse{Score: score})
}

// handleDeleteReadability deletes one stored score.
func (s *Server) handleDeleteReadability(w http.ResponseWriter, r *http.Request) {
	s.deleteOwned(w, r, "readability score", s.store.DeleteReadability)
}

// ownedAdCopy loads the {id} ad copy, writing a 404 when it is missing or
// belongs to someone else.
func (s *Server) ownedAdCopy(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*db.AdCopy, bool) {
	adCopyID, ok := s.pathID(w, r)
	if !ok {
		return nil, false
	}
	adCopy, err := s.store.GetAdCopy(r.Context(), adCopyID, userID)
	if err != nil {
		s.handleError(w, r, err)
		return nil, false
	}
	if adCopy == nil {
		s.handleError(w, r, notFound("ad copy", adCopyID))
		return nil, false
	}
	return adCopy, true
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func (s *Server) decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst validatable) bool {
	if r.ContentLength == 0 {
		return true
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		}
		return false
	}
	if strings.TrimSpace(string(body)) == "" {
		return true
	}
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	return s.decodeJSON(w, r, dst)
}
