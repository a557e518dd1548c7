// Package docs TaskHub API documentation
package docs

import "github.com/swaggo/swag"

// @title TaskHub API
// @version 1.0
// @description Multi-tenant task tracking with per-tenant custom fields.
// @BasePath /v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Issue an access token", "security": [], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Revoke the presented token", "responses": {"204": {"description": "No Content"}}}},
        "/me": {"get": {"tags": ["auth"], "summary": "Current caller", "responses": {"200": {"description": "OK"}}}},
        "/tenants": {
            "get": {"tags": ["tenants"], "summary": "List tenants", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tenants"], "summary": "Create a tenant", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/tenants/{id}": {
            "get": {"tags": ["tenants"], "summary": "Get a tenant", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["tenants"], "summary": "Update a tenant", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["tenants"], "summary": "Delete a tenant", "responses": {"204": {"description": "No Content"}, "409": {"description": "Conflict"}}}
        },
        "/tenants/{id}/custom-fields": {
            "get": {"tags": ["custom-fields"], "summary": "Get the custom field schema", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["custom-fields"], "summary": "Replace the custom field schema", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/tenants/{id}/custom-fields/validate": {"post": {"tags": ["custom-fields"], "summary": "Validate custom field values", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/tenants/{id}/export": {"post": {"tags": ["tenants"], "summary": "Export a tenant snapshot", "responses": {"201": {"description": "Created"}}}},
        "/users": {
            "get": {"tags": ["users"], "summary": "List users", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["users"], "summary": "Create a user", "responses": {"201": {"description": "Created"}}}
        },
        "/users/{id}": {
            "get": {"tags": ["users"], "summary": "Get a user", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["users"], "summary": "Update a user", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["users"], "summary": "Delete a user", "responses": {"204": {"description": "No Content"}}}
        },
        "/tasks": {
            "get": {"tags": ["tasks"], "summary": "List tasks", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tasks"], "summary": "Create a task", "responses": {"201": {"description": "Created"}}}
        },
        "/tasks/{id}": {
            "get": {"tags": ["tasks"], "summary": "Get a task", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["tasks"], "summary": "Update a task", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["tasks"], "summary": "Delete a task", "responses": {"204": {"description": "No Content"}}}
        },
        "/dashboard/stats": {"get": {"tags": ["dashboard"], "summary": "Task statistics", "responses": {"200": {"description": "OK"}}}},
        "/dashboard/tenant-stats": {"get": {"tags": ["dashboard"], "summary": "Per-tenant statistics", "responses": {"200": {"description": "OK"}}}},
        "/dashboard/user-tasks/{user_id}": {"get": {"tags": ["dashboard"], "summary": "Per-user task statistics", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "TaskHub API",
	Description:      "Multi-tenant task tracking with per-tenant custom fields.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
