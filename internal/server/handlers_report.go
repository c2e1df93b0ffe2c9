package server

import (
	"fmt"
	"net/http"
)

// handleReportHTML renders the sanitized campaign report.
func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	projectID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	document, err := s.assembler.HTML(r.Context(), projectID, userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; img-src data:")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(document))
}

// handleReportPDF prints the campaign report with headless Chrome.
func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	projectID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	pdf, err := s.assembler.PDF(r.Context(), projectID, userID, s.pdfOptions)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="campaign-report-%s.pdf"`, projectID))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
