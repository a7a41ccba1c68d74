// Package docs registers the OpenAPI document served at /swagger/doc.json.
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
        "/users/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Resolved identity snapshot for the caller",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rbac/roles": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rbac"],
                "summary": "List tenant roles",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rbac"],
                "summary": "Create a role",
                "parameters": [
                    {"name": "Idempotency-Key", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/org/employees": {
            "get": {
                "produces": ["application/json"],
                "tags": ["org"],
                "summary": "Paged employee directory",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/org/structure": {
            "get": {
                "produces": ["application/json"],
                "tags": ["org"],
                "summary": "Organization tree",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/payroll/runs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["payroll"],
                "summary": "List payroll runs",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payroll"],
                "summary": "Open a draft payroll run",
                "parameters": [
                    {"name": "Idempotency-Key", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/payroll/runs/{run_id}/approve": {
            "post": {
                "produces": ["application/json"],
                "tags": ["payroll"],
                "summary": "Approve a draft run",
                "parameters": [
                    {"name": "run_id", "in": "path", "required": true, "type": "string"},
                    {"name": "Idempotency-Key", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/payroll/runs/{run_id}/disburse": {
            "post": {
                "produces": ["application/json"],
                "tags": ["payroll"],
                "summary": "Disburse an approved run",
                "parameters": [
                    {"name": "run_id", "in": "path", "required": true, "type": "string"},
                    {"name": "Idempotency-Key", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "paygrid API",
	Description:      "Multi-tenant HR/payroll core: identity, RBAC, org directory, payroll runs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
