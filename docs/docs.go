// Package docs holds the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register",
                "parameters": [
                    {"description": "name, email, password (min 6)", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.registerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.userResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.loginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current principal",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Principal"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/batteries": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Latest state of every battery visible to the caller",
                "produces": ["application/json"],
                "tags": ["batteries"],
                "summary": "List batteries",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.BatterySnapshot"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/batteries/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["batteries"],
                "summary": "Get battery",
                "parameters": [{"type": "string", "description": "Device id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.BatteryDetails"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/batteries/{id}/historical": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Readings of the trailing window, oldest first. Temperature rows carry temp1..tempN.",
                "produces": ["application/json"],
                "tags": ["batteries"],
                "summary": "Historical series",
                "parameters": [
                    {"type": "string", "description": "Device id", "name": "id", "in": "path", "required": true},
                    {"enum": ["voltage", "temperature", "stateOfCharge", "health"], "type": "string", "description": "Metric", "name": "metric", "in": "query", "required": true},
                    {"type": "integer", "description": "Window in hours (1-720, default 24)", "name": "hours", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object", "additionalProperties": true}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/batteries/{id}/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Newest alarms and faults of one device",
                "produces": ["application/json"],
                "tags": ["batteries"],
                "summary": "Device event log",
                "parameters": [{"type": "string", "description": "Device id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.LogEntry"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/batteries/{id}/route": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["batteries"],
                "summary": "Device route",
                "parameters": [{"type": "string", "description": "Device id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.RoutePoint"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/batteries/{id}/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Every reading of the device as CSV, newest first",
                "produces": ["text/csv"],
                "tags": ["batteries"],
                "summary": "Export readings",
                "parameters": [{"type": "string", "description": "Device id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Newest alarms and faults across every visible device",
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Notifications",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.LogEntry"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/notifications/{type}/{id}/read": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Mark notification read",
                "parameters": [
                    {"enum": ["alarm", "fault"], "type": "string", "description": "Event type", "name": "type", "in": "path", "required": true},
                    {"type": "integer", "description": "Event id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.registerRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.userResponse": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"}}
        },
        "handlers.loginResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/handlers.userResponse"}}
        },
        "models.Principal": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "role": {"type": "string"}, "name": {"type": "string"}, "email": {"type": "string"}}
        },
        "models.BatterySnapshot": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "voltage": {"type": "number"},
                "stateOfCharge": {"type": "number"},
                "health": {"type": "number"},
                "cycleCount": {"type": "integer"},
                "temperature": {"type": "integer"},
                "status": {"type": "string", "enum": ["online", "offline"]},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "lastUpdate": {"type": "string", "format": "date-time"}
            }
        },
        "models.BatteryDetails": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "voltage": {"type": "number"},
                "current": {"type": "number"},
                "stateOfCharge": {"type": "number"},
                "health": {"type": "number"},
                "cycleCount": {"type": "integer"},
                "temperature": {"type": "integer"},
                "status": {"type": "string", "enum": ["online", "offline"]},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "lastUpdate": {"type": "string", "format": "date-time"}
            }
        },
        "models.LogEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "deviceId": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"},
                "eventType": {"type": "string", "enum": ["alarm", "fault"]},
                "description": {"type": "string"},
                "code": {"type": "integer"},
                "read": {"type": "boolean"}
            }
        },
        "models.RoutePoint": {
            "type": "object",
            "properties": {"lat": {"type": "number"}, "lng": {"type": "number"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "BMS Telemetry API",
	Description:      "Battery telemetry: latest state, history, events, routes and exports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
