// Package docs holds the Swagger description served at /swagger/.
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
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/ports.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ports.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/ports.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Current user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entities.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            }
        },
        "/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "List tasks",
                "description": "Backs both the list and the sortable table presentation.",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Filter by status", "name": "status", "in": "query"},
                    {"type": "string", "description": "id, title, status, due_date or created_at", "name": "sort_by", "in": "query"},
                    {"type": "string", "description": "asc or desc", "name": "order", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/entities.Task"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Create a new task",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/ports.CreateTaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/entities.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            }
        },
        "/tasks/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Get task by ID",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Task ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entities.Task"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Partially update a task",
                "description": "Fields left out or sent empty keep their current values.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Task ID", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/ports.UpdateTaskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entities.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Delete a task",
                "parameters": [
                    {"type": "integer", "description": "Task ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            }
        },
        "/calendar": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["calendar"],
                "summary": "One-shot month view",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Month as YYYY-MM, defaults to the current month", "name": "month", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.CalendarView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            }
        },
        "/calendar/views": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["calendar"],
                "summary": "Open a calendar view",
                "description": "Fetches the task collection once and positions the view on the current month.",
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ports.CalendarView"}}
                }
            }
        },
        "/calendar/views/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["calendar"],
                "summary": "Get a calendar view",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "View ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.CalendarView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["calendar"],
                "summary": "Close a calendar view",
                "parameters": [
                    {"type": "string", "description": "View ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            }
        },
        "/calendar/views/{id}/navigate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["calendar"],
                "summary": "Move a view one month",
                "description": "Uses the tasks cached when the view was opened.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "View ID", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/ports.NavigateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.CalendarView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            }
        },
        "/calendar/views/{id}/today": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["calendar"],
                "summary": "Return a view to the current month",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "View ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.CalendarView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            }
        },
        "/calendar/views/{id}/jump": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["calendar"],
                "summary": "Move a view to a given month",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "View ID", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/ports.JumpRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.CalendarView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            }
        },
        "/calendar/views/{id}/refresh": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["calendar"],
                "summary": "Re-fetch the tasks behind a view",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "View ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.CalendarView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ports.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "entities.Task": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["To Do", "In Progress", "In Review", "Done"]},
                "due_date": {"type": "string", "example": "2024-03-05"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "entities.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "user"]},
                "is_active": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "calendar.DayCell": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "label": {"type": "string", "example": "March 5, 2024"},
                "tasks": {"type": "array", "items": {"$ref": "#/definitions/entities.Task"}}
            }
        },
        "ports.CalendarView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string", "example": "March 2024"},
                "year": {"type": "integer"},
                "month": {"type": "integer"},
                "reference": {"type": "string", "example": "2024-03-01"},
                "days": {"type": "array", "items": {"$ref": "#/definitions/calendar.DayCell"}},
                "task_count": {"type": "integer"}
            }
        },
        "ports.RegisterRequest": {
            "type": "object",
            "required": ["username", "email", "password"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8}
            }
        },
        "ports.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ports.AuthResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"},
                "user": {"$ref": "#/definitions/entities.User"}
            }
        },
        "ports.CreateTaskRequest": {
            "type": "object",
            "required": ["title", "status"],
            "properties": {
                "title": {"type": "string", "maxLength": 50},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["To Do", "In Progress", "In Review", "Done"]},
                "due_date": {"type": "string", "example": "2024-03-05"}
            }
        },
        "ports.UpdateTaskRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 50},
                "description": {"type": "string"},
                "status": {"type": "string"},
                "due_date": {"type": "string"}
            }
        },
        "ports.NavigateRequest": {
            "type": "object",
            "required": ["direction"],
            "properties": {
                "direction": {"type": "string", "enum": ["forward", "backward", "next", "prev", "previous"]}
            }
        },
        "ports.JumpRequest": {
            "type": "object",
            "required": ["month"],
            "properties": {
                "month": {"type": "string", "example": "2024-03"}
            }
        },
        "ports.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Scheduler API",
	Description:      "Task tracker with list, table and calendar views of the task collection.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
