package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/db"
	"github.com/jonathan/advision/internal/types"
	"go.uber.org/zap"
)

// ProjectListResponse wraps a user's projects.
type ProjectListResponse struct {
	Projects []db.Project `json:"projects"`
	Count    int          `json:"count"`
}

// handleListProjects returns the caller's projects, newest first.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	projects, err := s.store.ListProjects(r.Context(), userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if projects == nil {
		projects = []db.Project{}
	}
	s.jsonResponse(w, http.StatusOK, ProjectListResponse{Projects: projects, Count: len(projects)})
}

// handleCreateProject creates a project from a campaign brief.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req types.CreateProjectRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	project, err := s.store.CreateProject(r.Context(), userID, req.Name, req.ProjectBrief)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("platform", project.TargetPlatform))
	s.jsonResponse(w, http.StatusCreated, project)
}

// handleGetProject returns a single project.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	project, ok := s.ownedProject(w, r, userID)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, project)
}

// handleDeleteProject deletes a project and everything saved under it.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	s.deleteOwned(w, r, "project", s.store.DeleteProject)
}

// ownedProject loads the {id} project, writing a 404 when it is missing or
// belongs to someone else.
func (s *Server) ownedProject(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*db.Project, bool) {
	projectID, ok := s.pathID(w, r)
	if !ok {
		return nil, false
	}
	project, err := s.store.GetProject(r.Context(), projectID, userID)
	if err != nil {
		s.handleError(w, r, err)
		return nil, false
	}
	if project == nil {
		s.handleError(w, r, notFound("project", projectID))
		return nil, false
	}
	return project, true
}

// deleteOwned runs a delete scoped to the caller and answers 204 or 404.
func (s *Server) deleteOwned(w http.ResponseWriter, r *http.Request, resource string,
	del func(ctx context.Context, id, userID uuid.UUID) (bool, error)) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	deleted, err := del(r.Context(), id, userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if !deleted {
		s.handleError(w, r, notFound(resource, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
