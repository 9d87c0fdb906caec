// Package docs registers the OpenAPI description served at /swagger.
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
        "/extractions": {
            "post": {
                "description": "Upload one image or PDF; every configured model extracts it to JSON. The response holds one entry per model, in configured order.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "Extract structured data from a document",
                "parameters": [
                    {
                        "type": "file",
                        "description": "Document to extract (image or PDF)",
                        "name": "file",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "Per-model results", "schema": {"$ref": "#/definitions/handler.ExtractionResponse"}},
                    "400": {"description": "No file uploaded", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "500": {"description": "Rasterization or extraction failed", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        }
    },
    "definitions": {
        "handler.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "requestId": {"type": "string"}
            }
        },
        "handler.AttemptRecord": {
            "type": "object",
            "properties": {
                "timestamp": {"type": "string", "example": "2026-03-14T09:26:53Z"},
                "requestId": {"type": "string"},
                "model": {"type": "string", "example": "gpt-4o"},
                "kind": {"type": "string", "enum": ["success", "invocation_failure", "parse_failure"]},
                "responseTimeMs": {"type": "integer", "example": 2840},
                "tokens": {"$ref": "#/definitions/handler.TokenUsageBody"},
                "response": {"type": "object"},
                "error": {"type": "string"}
            }
        },
        "handler.TokenUsageBody": {
            "type": "object",
            "properties": {
                "promptTokens": {"type": "integer"},
                "completionTokens": {"type": "integer"},
                "totalTokens": {"type": "integer"}
            }
        },
        "handler.ExtractionResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "data": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.AttemptRecord"}},
                "warnings": {"type": "array", "items": {"type": "string"}},
                "timestamp": {"type": "string"}
            }
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"$ref": "#/definitions/handler.APIError"},
                "timestamp": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "docextract API",
	Description:      "Multi-model document extraction service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
