// Package docs registers the OpenAPI description of the POS API with swag
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
        "/api/v1/auth/login": {"post": {"tags": ["Auth"], "summary": "Operator login", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.OperatorLoginRequest"}}], "responses": {"200": {"description": "Logged in"}, "401": {"description": "Invalid credentials"}}}},
        "/api/v1/auth/refresh": {"post": {"tags": ["Auth"], "summary": "Refresh operator token", "responses": {"200": {"description": "Token refreshed"}, "401": {"description": "Invalid refresh token"}}}},
        "/api/v1/store/status": {"get": {"tags": ["Store"], "summary": "Store state", "responses": {"200": {"description": "State"}}}},
        "/api/v1/store/initialize": {"post": {"tags": ["Store"], "summary": "Retry store initialization", "responses": {"200": {"description": "Ready"}, "503": {"description": "Initialization failed"}}}},
        "/api/v1/checkin/lookup": {"get": {"tags": ["Check-in"], "summary": "Check-in name preview", "parameters": [{"in": "query", "name": "mdn", "type": "string", "required": true}, {"in": "header", "name": "X-Terminal-ID", "type": "string"}], "responses": {"200": {"description": "Lookup result"}, "409": {"description": "Superseded"}}}},
        "/api/v1/checkin": {"post": {"tags": ["Check-in"], "summary": "Check in", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.CheckInRequest"}}], "responses": {"202": {"description": "Check-in received"}, "400": {"description": "Validation error"}}}},
        "/api/v1/checkin/reasons": {"get": {"tags": ["Check-in"], "summary": "Visit reasons", "responses": {"200": {"description": "Visit reasons"}}}},
        "/api/v1/queue": {"get": {"tags": ["Queue"], "summary": "List queue", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Queue"}}}},
        "/api/v1/queue/{id}/assist": {"post": {"tags": ["Queue"], "summary": "Assist customer", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "Customer assisted"}, "404": {"description": "Not found"}}}},
        "/api/v1/queue/{id}": {"delete": {"tags": ["Queue"], "summary": "Remove from queue", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "Removed"}, "404": {"description": "Not found"}}}},
        "/api/v1/customers": {"post": {"tags": ["Accounts"], "summary": "Create customer", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Customer created"}}}},
        "/api/v1/customers/by-mdn/{mdn}": {"get": {"tags": ["Accounts"], "summary": "Find customer by MDN", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "mdn", "type": "string", "required": true}], "responses": {"200": {"description": "Account"}, "404": {"description": "Customer not found"}}}},
        "/api/v1/accounts/{account}": {"get": {"tags": ["Accounts"], "summary": "Load account", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "account", "type": "integer", "required": true}], "responses": {"200": {"description": "Account"}, "404": {"description": "Account not found"}}}},
        "/api/v1/accounts/{account}/lines": {"post": {"tags": ["Lines"], "summary": "Create line", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "account", "type": "integer", "required": true}], "responses": {"201": {"description": "Line created"}, "409": {"description": "MDN or IMEI already in use"}}}},
        "/api/v1/lines/{mdn}": {"put": {"tags": ["Lines"], "summary": "Update line", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "mdn", "type": "string", "required": true}], "responses": {"200": {"description": "Line updated"}, "409": {"description": "IMEI already in use"}}}},
        "/api/v1/devices": {"get": {"tags": ["Inventory"], "summary": "List devices", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Devices"}}}},
        "/api/v1/devices/{imei}": {"get": {"tags": ["Inventory"], "summary": "Get device", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "imei", "type": "string", "required": true}], "responses": {"200": {"description": "Device"}, "404": {"description": "Device not found"}}}},
        "/api/v1/inventory/imeis/available": {"get": {"tags": ["Inventory"], "summary": "Available IMEIs", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "IMEIs"}}}},
        "/api/v1/inventory/imeis/random": {"get": {"tags": ["Inventory"], "summary": "Random available IMEI", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "IMEI"}}}},
        "/api/v1/inventory/imeis/{imei}/in-use": {"get": {"tags": ["Inventory"], "summary": "IMEI usage", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "imei", "type": "string", "required": true}, {"in": "query", "name": "exclude_mdn", "type": "string"}], "responses": {"200": {"description": "Usage"}}}},
        "/api/v1/inventory/export": {"get": {"tags": ["Inventory"], "summary": "Export inventory", "security": [{"BearerAuth": []}], "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "Workbook"}}}},
        "/api/v1/shop/devices": {
            "get": {"tags": ["Shop"], "summary": "List devices for sale", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Devices"}}},
            "post": {"tags": ["Shop"], "summary": "Create device for sale", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Device created"}}}
        },
        "/api/v1/shop/devices/{id}": {
            "get": {"tags": ["Shop"], "summary": "Get device for sale", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "Device"}}},
            "put": {"tags": ["Shop"], "summary": "Update device for sale", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "Device updated"}}},
            "delete": {"tags": ["Shop"], "summary": "Delete device for sale", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "Device deleted"}}}
        },
        "/api/v1/shop/devices/{id}/select": {"post": {"tags": ["Shop"], "summary": "Select device for sale", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "Selection"}, "409": {"description": "Unavailable"}}}},
        "/api/v1/catalog/plans": {"get": {"tags": ["Catalog"], "summary": "List plans", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Plans"}}}},
        "/api/v1/catalog/features": {"get": {"tags": ["Catalog"], "summary": "List features", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Features"}}}},
        "/api/v1/catalog/plans/{id}/quote": {"get": {"tags": ["Catalog"], "summary": "Quote plan", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}, {"in": "query", "name": "lines", "type": "integer"}], "responses": {"200": {"description": "Quote"}, "404": {"description": "Plan not found"}}}}
    },
    "definitions": {
        "dto.APIResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}, "data": {}, "error": {}}},
        "dto.OperatorLoginRequest": {"type": "object", "required": ["username", "password"], "properties": {"username": {"type": "string", "example": "store-operator"}, "password": {"type": "string"}}},
        "dto.CheckInRequest": {"type": "object", "required": ["mdn", "reason"], "properties": {"mdn": {"type": "string", "example": "5551234567"}, "reason": {"type": "string", "example": "Pay a Bill"}}}
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
	Title:            "Carrier POS API",
	Description:      "Store check-in queue, accounts, lines and device inventory for carrier retail terminals.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
