package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jonathan/advision/internal/db"
	"github.com/jonathan/advision/internal/palette"
	"github.com/jonathan/advision/internal/types"
	"go.uber.org/zap"
)

// logoField is the multipart field carrying the uploaded logo.
const logoField = "logo"

// multipartOverhead is the allowance for form boundaries and text fields on
// top of the logo itself.
const multipartOverhead = 64 << 10

// KeywordSuggestionsResponse carries generated, unsaved keyword suggestions.
type KeywordSuggestionsResponse struct {
	Keywords []types.KeywordSuggestion `json:"keywords"`
	Count    int                       `json:"count"`
}

// KeywordListResponse wraps a project's saved keywords.
type KeywordListResponse struct {
	Keywords []db.Keyword `json:"keywords"`
	Count    int          `json:"count"`
}

// AudienceSuggestionsResponse carries generated, unsaved audience segments.
type AudienceSuggestionsResponse struct {
	Audiences []types.AudienceSegment `json:"audiences"`
	Count     int                     `json:"count"`
}

// AudienceListResponse wraps a project's saved audiences.
type AudienceListResponse struct {
	Audiences []db.Audience `json:"audiences"`
	Count     int           `json:"count"`
}

// BrandStyleListResponse wraps a project's brand styles.
type BrandStyleListResponse struct {
	BrandStyles []db.BrandStyle `json:"brand_styles"`
	Count       int             `json:"count"`
}

// PaletteResponse is the result of a logo upload. BrandStyle is set when
// the upload named a brand and the style was saved.
type PaletteResponse struct {
	Colors     []string       `json:"colors"`
	MIMEType   string         `json:"mime_type"`
	BrandStyle *db.BrandStyle `json:"brand_style,omitempty"`
}

// handleGenerateKeywords runs keyword research over the project's saved ad
// copies. Nothing is stored; clients save the ones they keep.
func (s *Server) handleGenerateKeywords(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}
	contents, ok := s.adCopyContents(w, r, project)
	if !ok {
		return
	}

	keywords, err := s.generator.Keywords(r.Context(), project.ProjectBrief, contents)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if len(keywords) == 0 {
		s.errorResponse(w, http.StatusBadGateway, "no keywords were generated")
		return
	}
	s.jsonResponse(w, http.StatusOK, KeywordSuggestionsResponse{Keywords: keywords, Count: len(keywords)})
}

// handleListKeywords lists a project's saved keywords.
func (s *Server) handleListKeywords(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}

	keywords, err := s.store.ListKeywords(r.Context(), project.ID, userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if keywords == nil {
		keywords = []db.Keyword{}
	}
	s.jsonResponse(w, http.StatusOK, KeywordListResponse{Keywords: keywords, Count: len(keywords)})
}

// handleCreateKeywords saves keyword suggestions to a project.
func (s *Server) handleCreateKeywords(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}
	var req types.SaveKeywordsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	keywords, err := s.store.CreateKeywords(r.Context(), project.ID, userID, req.Keywords)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, KeywordListResponse{Keywords: keywords, Count: len(keywords)})
}

// handleDeleteKeyword deletes a saved keyword.
func (s *Server) handleDeleteKeyword(w http.ResponseWriter, r *http.Request) {
	s.deleteOwned(w, r, "keyword", s.store.DeleteKeyword)
}

// handleGenerateAudiences suggests audience segments from the project's
// saved ad copies. Nothing is stored.
func (s *Server) handleGenerateAudiences(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}
	contents, ok := s.adCopyContents(w, r, project)
	if !ok {
		return
	}

	audiences, err := s.generator.Audiences(r.Context(), project.ProjectBrief, contents)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if len(audiences) == 0 {
		s.errorResponse(w, http.StatusBadGateway, "no audiences were generated")
		return
	}
	s.jsonResponse(w, http.StatusOK, AudienceSuggestionsResponse{Audiences: audiences, Count: len(audiences)})
}

// handleListAudiences lists a project's saved audiences.
func (s *Server) handleListAudiences(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}

	audiences, err := s.store.ListAudiences(r.Context(), project.ID, userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if audiences == nil {
		audiences = []db.Audience{}
	}
	s.jsonResponse(w, http.StatusOK, AudienceListResponse{Audiences: audiences, Count: len(audiences)})
}

// handleCreateAudiences saves audience segments to a project.
func (s *Server) handleCreateAudiences(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}
	var req types.SaveAudiencesRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	audiences, err := s.store.CreateAudiences(r.Context(), project.ID, userID, req.Audiences)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, AudienceListResponse{Audiences: audiences, Count: len(audiences)})
}

// handleDeleteAudience deletes a saved audience.
func (s *Server) handleDeleteAudience(w http.ResponseWriter, r *http.Request) {
	s.deleteOwned(w, r, "audience", s.store.DeleteAudience)
}

// handleExtractBrandStyle extracts up to five colors from an uploaded PNG or
// JPEG logo. When the form also carries brand_name the palette is saved as
// a brand style.
func (s *Server) handleExtractBrandStyle(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, palette.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(palette.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.handleError(w, r, palette.ErrTooLarge)
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "expected a multipart form with a logo file")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(logoField)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "missing logo file")
		return
	}
	defer func() { _ = file.Close() }()
	if header.Size > palette.MaxUploadBytes {
		s.handleError(w, r, palette.ErrTooLarge)
		return
	}

	extracted, err := palette.ExtractReader(file)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	resp := PaletteResponse{Colors: extracted.Colors, MIMEType: extracted.MIMEType}

	brandName := palette.CleanLabel(r.FormValue("brand_name"))
	if brandName == "" {
		s.jsonResponse(w, http.StatusOK, resp)
		return
	}
	style, err := s.store.CreateBrandStyle(r.Context(), project.ID, userID,
		brandName, extracted.Colors, palette.CleanLabel(r.FormValue("font")))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.logger.Info("brand style extracted",
		zap.String("project_id", project.ID.String()),
		zap.Strings("colors", extracted.Colors))
	resp.BrandStyle = style
	s.jsonResponse(w, http.StatusCreated, resp)
}

// handleListBrandStyles lists a project's brand styles.
func (s *Server) handleListBrandStyles(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}

	styles, err := s.store.ListBrandStyles(r.Context(), project.ID, userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if styles == nil {
		styles = []db.BrandStyle{}
	}
	s.jsonResponse(w, http.StatusOK, BrandStyleListResponse{BrandStyles: styles, Count: len(styles)})
}

// handleCreateBrandStyle saves a brand style. Labels are stored escaped.
func (s *Server) handleCreateBrandStyle(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}
	var req types.CreateBrandStyleRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	brandName := palette.CleanLabel(req.BrandName)
	if brandName == "" {
		s.handleError(w, r, &ErrValidation{Field: "brand_name", Message: "must not be blank"})
		return
	}
	colors := make([]string, len(req.Colors))
	for i, c := range req.Colors {
		colors[i] = strings.ToLower(c)
	}

	style, err := s.store.CreateBrandStyle(r.Context(), project.ID, userID, brandName, colors, palette.CleanLabel(req.Font))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, style)
}

// handleDeleteBrandStyle deletes a brand style.
func (s *Server) handleDeleteBrandStyle(w http.ResponseWriter, r *http.Request) {
	s.deleteOwned(w, r, "brand style", s.store.DeleteBrandStyle)
}

// adCopyContents returns the text of every saved ad copy of a project,
// writing a 400 when there is none to work from.
func (s *Server) adCopyContents(w http.ResponseWriter, r *http.Request, project *db.Project) ([]string, bool) {
	copies, err := s.store.ListAdCopies(r.Context(), project.ID, project.UserID)
	if err != nil {
		s.handleError(w, r, err)
		return nil, false
	}
	if len(copies) == 0 {
		s.handleError(w, r, &ErrValidation{Field: "ad_copies", Message: "generate or save an ad copy first"})
		return nil, false
	}
	contents := make([]string, len(copies))
	for i, c := range copies {
		contents[i] = c.Content
	}
	return contents, true
}
