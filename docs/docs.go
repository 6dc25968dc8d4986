// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with `go generate ./internal/app`.
package docs

import "github.com/swaggo/swag"

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
    "paths": {
        "/register": {"post": {"tags": ["Auth"], "summary": "Register", "responses": {"201": {"description": "Created"}, "409": {"description": "Email taken"}}}},
        "/login": {"post": {"tags": ["Auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}}},
        "/password/forgot": {"post": {"tags": ["Auth"], "summary": "Forgot password", "responses": {"202": {"description": "Accepted"}}}},
        "/password/reset": {"post": {"tags": ["Auth"], "summary": "Reset password", "responses": {"204": {"description": "No Content"}, "409": {"description": "Used or expired link"}}}},
        "/me/telegram-link": {"post": {"tags": ["Me"], "summary": "Request Telegram link code", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/integrations/telegram/webhook": {"post": {"tags": ["Integrations"], "summary": "Telegram webhook", "responses": {"200": {"description": "OK"}, "401": {"description": "Bad secret"}}}},
        "/me": {
            "get": {"tags": ["Me"], "summary": "Current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["Me"], "summary": "Update profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/tasks": {
            "get": {"tags": ["Tasks"], "summary": "List tasks", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "mode", "in": "query", "type": "string"}, {"name": "teamId", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Tasks"], "summary": "Create task", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/tasks/{id}": {
            "get": {"tags": ["Tasks"], "summary": "Get task", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["Tasks"], "summary": "Update task", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Tasks"], "summary": "Move task to trash", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/projects": {
            "get": {"tags": ["Projects"], "summary": "List projects", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Projects"], "summary": "Create project", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/projects/{id}/report": {
            "get": {"tags": ["Projects"], "summary": "Project report", "produces": ["application/pdf"], "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "PDF"}}}
        },
        "/teams": {
            "get": {"tags": ["Teams"], "summary": "List my teams", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Teams"], "summary": "Create team", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/teams/{id}/invitations": {
            "post": {"tags": ["Invitations"], "summary": "Invite to team", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"201": {"description": "Created"}}}
        },
        "/invitations/{token}": {
            "get": {"tags": ["Invitations"], "summary": "Preview invitation",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/invitations/{token}/accept": {
            "post": {"tags": ["Invitations"], "summary": "Accept invitation", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Already used or expired"}}}
        },
        "/notifications": {
            "get": {"tags": ["Notifications"], "summary": "List notifications", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/healthz": {"get": {"summary": "Health", "responses": {"200": {"description": "OK"}, "503": {"description": "Store unavailable"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Team Tasks API",
	Description:      "Personal and team task, project and invitation management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
