package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"repo-popularity/internal/application/dto"
	"repo-popularity/internal/application/service"
	"repo-popularity/internal/domain/popularity"
	"repo-popularity/internal/domain/repo"

	"github.com/gin-gonic/gin"
)

// RepositoryHandler handles repository-related HTTP requests
type RepositoryHandler struct {
	repositoryService *service.RepositoryService
	popularityService *service.PopularityService
}

// NewRepositoryHandler creates a new repository handler
func NewRepositoryHandler(repositoryService *service.RepositoryService, popularityService *service.PopularityService) *RepositoryHandler {
	return &RepositoryHandler{
		repositoryService: repositoryService,
		popularityService: popularityService,
	}
}

// ListRepositories handles GET /repos
// @Summary List tracked repositories
// @Description Returns tracked repositories ordered by creation time
// @Tags Repositories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1) minimum(1)
// @Param limit query int false "Items per page" default(20) minimum(1) maximum(100)
// @Success 200 {object} dto.RepositoryListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos [get]
func (h *RepositoryHandler) ListRepositories(c *gin.Context) {
	// Get pagination parameters
	page := 1
	limit := 20

	if pageStr := c.DefaultQuery("page", "1"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = min(p, math.MaxInt32)
		} else if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(pageStr, "-") {
			page = math.MaxInt32
		}
	}

	if limitStr := c.DefaultQuery("limit", "20"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	response, err := h.repositoryService.ListRepositories(c.Request.Context(), int32(page), int32(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "fetch_failed",
			Message: "Failed to fetch repositories",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// CreateRepository handles POST /repos
// @Summary Track a repository
// @Description Stores a repository by owner/name or GitHub URL. The name is normalized before it is saved.
// @Tags Repositories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param repository body dto.CreateRepositoryRequest true "Repository data"
// @Success 201 {object} dto.RepositoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos [post]
func (h *RepositoryHandler) CreateRepository(c *gin.Context) {
	var req dto.CreateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	response, err := h.repositoryService.CreateRepository(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err, "creation_failed", "Failed to create repository")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetRepository handles GET /repos/:id
// @Summary Get a repository by ID
// @Tags Repositories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Repository ID"
// @Success 200 {object} dto.RepositoryResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /repos/{id} [get]
func (h *RepositoryHandler) GetRepository(c *gin.Context) {
	response, err := h.repositoryService.GetRepository(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "fetch_failed", "Failed to fetch repository")
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateRepository handles PUT /repos/:id
// @Summary Rename a repository
// @Tags Repositories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Repository ID"
// @Param repository body dto.UpdateRepositoryRequest true "Repository data"
// @Success 200 {object} dto.RepositoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /repos/{id} [put]
func (h *RepositoryHandler) UpdateRepository(c *gin.Context) {
	var req dto.UpdateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	response, err := h.repositoryService.UpdateRepository(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err, "update_failed", "Failed to update repository")
		return
	}

	c.JSON(http.StatusOK, response)
}

// DeleteRepository handles DELETE /repos/:id
// @Summary Stop tracking a repository
// @Tags Repositories
// @Security BearerAuth
// @Param id path string true "Repository ID"
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /repos/{id} [delete]
func (h *RepositoryHandler) DeleteRepository(c *gin.Context) {
	if err := h.repositoryService.DeleteRepository(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err, "deletion_failed", "Failed to delete repository")
		return
	}

	c.Status(http.StatusNoContent)
}

// Popular handles GET /repos/:id/popular
// @Summary Classify a repository
// @Description Looks up stars and forks on GitHub and answers "popular" when stars + 2*forks >= 500, "not popular" otherwise.
// @Description 503 means the server has no usable GitHub token.
// @Tags Repositories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Repository ID"
// @Success 200 {string} string "popular"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /repos/{id}/popular [get]
func (h *RepositoryHandler) Popular(c *gin.Context) {
	outcome, err := h.popularityService.ClassifyStoredRepository(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "fetch_failed", "Failed to fetch repository")
		return
	}

	writeOutcome(c, outcome)
}

func writeOutcome(c *gin.Context, outcome popularity.Outcome) {
	if result, ok := outcome.Result(); ok {
		c.JSON(http.StatusOK, result.String())
		return
	}

	c.JSON(outcome.HTTPStatus(), ErrorResponse{
		Error:   outcome.Status().String(),
		Message: outcome.Message(),
	})
}

func (h *RepositoryHandler) writeError(c *gin.Context, err error, code, message string) {
	switch {
	case errors.Is(err, repo.ErrRepositoryNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Repository not found",
		})
	case errors.Is(err, repo.ErrRepositoryAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "repository_exists",
			Message: "A repository with this name already exists",
		})
	case repo.IsInvalidData(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid repository name",
			Details: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   code,
			Message: message,
			Details: err.Error(),
		})
	}
}
