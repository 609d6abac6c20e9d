package dto

// CreateRepositoryRequest represents a request to track a repository.
// Name may be owner/name or a full GitHub URL.
type CreateRepositoryRequest struct {
	Name string `json:"name" binding:"required" example:"https://github.com/facebook/react"`
}

// UpdateRepositoryRequest represents a request to rename a tracked repository
type UpdateRepositoryRequest struct {
	Name string `json:"name" binding:"required" example:"facebook/react"`
}

// RepositoryResponse represents repository data in API responses
type RepositoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	GitHubURL string `json:"github_url"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// RepositoryListResponse represents a paginated list of repositories
type RepositoryListResponse struct {
	Repositories []*RepositoryResponse `json:"repositories"`
	Pagination   PaginationResponse    `json:"pagination"`
}

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	Page       int32 `json:"page"`
	Limit      int32 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}
