// Package swagger содержит OpenAPI описание FSE Compliance API для fiber-swagger.
package swagger

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
        "/api/v1/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/validation/run": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Validation"],
                "summary": "Run FSE validation",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.ValidationRunRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/reports/{report_id}/validation": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Validation"],
                "summary": "Get report validation status",
                "parameters": [
                    {"type": "string", "name": "report_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Validation"],
                "summary": "Start report validation",
                "parameters": [
                    {"type": "string", "name": "report_id", "in": "path", "required": true},
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {"$ref": "#/definitions/dto.ReportValidationRequest"}
                    }
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.SupplyRow": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "instance_id": {"type": "string"},
                "display_name": {"type": "string"},
                "registration_number": {"type": "string"},
                "serial_number": {"type": "string"},
                "street_address": {"type": "string"},
                "city": {"type": "string"},
                "postal_code": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "supply_from": {"type": "string", "example": "2024-01-01"},
                "supply_to": {"type": "string", "example": "2024-12-31"}
            }
        },
        "dto.ValidationRunRequest": {
            "type": "object",
            "required": ["rows"],
            "properties": {
                "rows": {"type": "array", "items": {"$ref": "#/definitions/domain.SupplyRow"}},
                "as_of": {"type": "string", "example": "2024-06-01"}
            }
        },
        "dto.ReportValidationRequest": {
            "type": "object",
            "properties": {
                "rows": {"type": "array", "items": {"$ref": "#/definitions/domain.SupplyRow"}},
                "as_of": {"type": "string", "example": "2024-06-01"}
            }
        },
        "utils.SuccessResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "meta": {
                    "type": "object",
                    "properties": {
                        "total": {"type": "integer"},
                        "generation": {"type": "integer"},
                        "time_ms": {"type": "number"}
                    }
                }
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object"},
                        "retryable": {"type": "boolean"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "FSE Compliance API",
	Description:      "Проверка оборудования FSE: классификация площадок по региону и поиск пересечений периодов поставки.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
