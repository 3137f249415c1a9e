// Package docs registers the swagger document served at /swagger/*.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "exchange credentials for a token",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/clients": {
            "get": {"tags": ["Clients"], "summary": "list clients", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Clients"], "summary": "create a client", "responses": {"201": {"description": "Created"}}}
        },
        "/clients/{id}": {
            "get": {"tags": ["Clients"], "summary": "get a client", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Clients"], "summary": "update a client", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Clients"], "summary": "delete a client", "responses": {"200": {"description": "OK"}}}
        },
        "/orders": {
            "get": {"tags": ["Orders"], "summary": "list work orders", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Orders"], "summary": "create a work order with its items", "responses": {"201": {"description": "Created"}}}
        },
        "/orders/{id}": {
            "get": {"tags": ["Orders"], "summary": "get a work order", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Orders"], "summary": "update a work order and sync its items", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Orders"], "summary": "delete a work order", "responses": {"200": {"description": "OK"}}}
        },
        "/accounts/receivable": {
            "get": {"tags": ["Accounts"], "summary": "list receivables", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Accounts"], "summary": "create a receivable", "responses": {"201": {"description": "Created"}}}
        },
        "/accounts/payable": {
            "get": {"tags": ["Accounts"], "summary": "list payables", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Accounts"], "summary": "create a payable", "responses": {"201": {"description": "Created"}}}
        },
        "/maintenance/sweep-overdue": {
            "post": {"tags": ["Maintenance"], "summary": "mark past due entries as overdue", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "labdesk admin API",
	Description:      "Back office API for a dental prosthesis laboratory.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
