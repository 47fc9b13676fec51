// Package docs registers the OpenAPI description served at /docs.
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
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/token"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/token"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/auth/me": {
            "get": {"tags": ["auth"], "summary": "Current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/auth/shuffle-moniker": {
            "post": {"tags": ["auth"], "summary": "Assign a new random moniker", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/auth/profile": {
            "patch": {"tags": ["auth"], "summary": "Update display name and contact info", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/conversations": {
            "get": {"tags": ["conversations"], "summary": "List conversations", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["conversations"], "summary": "Start a conversation", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/conversations/mine": {
            "get": {"tags": ["conversations"], "summary": "Conversations I take part in", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/conversations/queue/browse": {
            "get": {"tags": ["conversations"], "summary": "Conversations waiting for a responder", "responses": {"200": {"description": "OK"}}}
        },
        "/conversations/trending-tags": {
            "get": {"tags": ["conversations"], "summary": "Trending tags of the last week", "responses": {"200": {"description": "OK"}}}
        },
        "/conversations/browse": {
            "get": {"tags": ["conversations"], "summary": "Open benches and active conversations", "responses": {"200": {"description": "OK"}}}
        },
        "/conversations/{conversationID}": {
            "get": {"tags": ["conversations"], "summary": "Get conversation", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"tags": ["conversations"], "summary": "Change status", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/conversations/{conversationID}/join": {
            "post": {"tags": ["conversations"], "summary": "Join as responder", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/messages": {
            "post": {"tags": ["messages"], "summary": "Post a message", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/messages/conversation/{conversationID}": {
            "get": {"tags": ["messages"], "summary": "Messages visible to the caller", "responses": {"200": {"description": "OK"}}}
        },
        "/messages/{messageID}": {
            "patch": {"tags": ["messages"], "summary": "Edit own message", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["messages"], "summary": "Delete own message", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/payments": {
            "post": {"tags": ["payments"], "summary": "Unlock a conversation", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/payments/check/{conversationID}": {
            "get": {"tags": ["payments"], "summary": "Has the caller paid", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/payments/history": {
            "get": {"tags": ["payments"], "summary": "Payment history", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/payments/revenue/{conversationID}": {
            "get": {"tags": ["payments"], "summary": "Revenue of a conversation", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/pairs": {
            "get": {"tags": ["pairs"], "summary": "My pairs", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/pairs/stats": {
            "get": {"tags": ["pairs"], "summary": "Pair statistics", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/pairs/reveal-eligible": {
            "get": {"tags": ["pairs"], "summary": "Pairs that may reveal", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/pairs/revealed": {
            "get": {"tags": ["pairs"], "summary": "Revealed pairs", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/pairs/{pairID}/conversations": {
            "get": {"tags": ["pairs"], "summary": "Conversations of a pair", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/pairs/{pairID}/request-reveal": {
            "post": {"tags": ["pairs"], "summary": "Consent to reveal", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        }
    },
    "definitions": {
        "credentials": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "token": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "token_type": {"type": "string"}, "user": {"type": "object"}}
        },
        "error": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "The Bench API",
	Description:      "Anonymous one-on-one conversations with a paywall and mutual identity reveal.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
