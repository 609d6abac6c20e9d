// Package docs holds the Swagger 2.0 document served at /swagger.
// It is kept in the layout swag init produces from the annotations in
// cmd/server and internal/presentation/handlers; update it with them.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Classifies a known repository. Answers \"ok\" when GitHub is reachable with the configured token.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}
                }
            }
        },
        "/repos": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns tracked repositories ordered by creation time",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Repositories"],
                "summary": "List tracked repositories",
                "parameters": [
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Items per page", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RepositoryListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Stores a repository by owner/name or GitHub URL. The name is normalized before it is saved.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Repositories"],
                "summary": "Track a repository",
                "parameters": [
                    {"description": "Repository data", "name": "repository", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateRepositoryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.RepositoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/repos/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Repositories"],
                "summary": "Get a repository by ID",
                "parameters": [
                    {"type": "string", "description": "Repository ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RepositoryResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Repositories"],
                "summary": "Rename a repository",
                "parameters": [
                    {"type": "string", "description": "Repository ID", "name": "id", "in": "path", "required": true},
                    {"description": "Repository data", "name": "repository", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateRepositoryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RepositoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Repositories"],
                "summary": "Stop tracking a repository",
                "parameters": [
                    {"type": "string", "description": "Repository ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/repos/{id}/popular": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Looks up stars and forks on GitHub and answers \"popular\" when stars + 2*forks >= 500, \"not popular\" otherwise.\n503 means the server has no usable GitHub token.",
                "produces": ["application/json"],
                "tags": ["Repositories"],
                "summary": "Classify a repository",
                "parameters": [
                    {"type": "string", "description": "Repository ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "popular", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.CreateRepositoryRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "example": "https://github.com/facebook/react"}
            }
        },
        "dto.UpdateRepositoryRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "example": "facebook/react"}
            }
        },
        "dto.RepositoryResponse": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "github_url": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "dto.RepositoryListResponse": {
            "type": "object",
            "properties": {
                "pagination": {"$ref": "#/definitions/dto.PaginationResponse"},
                "repositories": {"type": "array", "items": {"$ref": "#/definitions/dto.RepositoryResponse"}}
            }
        },
        "dto.PaginationResponse": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "page": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer JWT",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Repository Popularity API",
	Description:      "Tracks GitHub repositories and classifies them as popular or not popular",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
