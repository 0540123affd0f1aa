package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Training Admin API",
        "description": "Training analytics, trainee imports and report exports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Analytics", "description": "Training performance aggregates"},
        {"name": "Imports", "description": "Bulk trainee spreadsheet imports"},
        {"name": "Reports", "description": "Downloadable analytics reports"}
    ],
    "parameters": {
        "range": {"name": "range", "in": "query", "type": "string", "enum": ["today", "week", "month", "quarter", "year", "custom"]},
        "startDate": {"name": "start_date", "in": "query", "type": "string", "description": "YYYY-MM-DD or RFC3339"},
        "endDate": {"name": "end_date", "in": "query", "type": "string", "description": "YYYY-MM-DD or RFC3339"},
        "courseId": {"name": "course_id", "in": "query", "type": "string"},
        "days": {"name": "days", "in": "query", "type": "integer"},
        "upload": {"name": "file", "in": "formData", "type": "file", "required": true}
    },
    "paths": {
        "/analytics/summary": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Training summary with growth against the previous period",
                "parameters": [
                    {"$ref": "#/parameters/range"},
                    {"$ref": "#/parameters/startDate"},
                    {"$ref": "#/parameters/endDate"},
                    {"$ref": "#/parameters/courseId"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid or incomplete period", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Record source unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/courses": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Per-course performance",
                "parameters": [
                    {"$ref": "#/parameters/range"},
                    {"$ref": "#/parameters/startDate"},
                    {"$ref": "#/parameters/endDate"},
                    {"$ref": "#/parameters/courseId"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/students": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Per-trainee performance and ranking",
                "parameters": [
                    {"$ref": "#/parameters/range"},
                    {"$ref": "#/parameters/startDate"},
                    {"$ref": "#/parameters/endDate"},
                    {"$ref": "#/parameters/courseId"},
                    {"name": "page", "in": "query", "type": "integer", "minimum": 1},
                    {"name": "page_size", "in": "query", "type": "integer", "minimum": 1, "maximum": 500}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/departments": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Department statistics over all recorded history",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/timeseries": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Daily activity ending on the period's last day",
                "parameters": [
                    {"$ref": "#/parameters/range"},
                    {"$ref": "#/parameters/startDate"},
                    {"$ref": "#/parameters/endDate"},
                    {"$ref": "#/parameters/courseId"},
                    {"$ref": "#/parameters/days"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/system": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Instrumentation snapshot",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/cache/invalidate": {
            "post": {
                "tags": ["Analytics"],
                "summary": "Drop cached analytics",
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"type": "object", "properties": {"entity": {"type": "string", "enum": ["summary", "courses", "students", "departments", "timeseries"]}}}}
                ],
                "responses": {"204": {"description": "Invalidated"}}
            }
        },
        "/imports/trainees/preview": {
            "post": {
                "tags": ["Imports"],
                "summary": "Validate and classify a spreadsheet without writing",
                "consumes": ["multipart/form-data"],
                "parameters": [{"$ref": "#/parameters/upload"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Upload too large"}
                }
            }
        },
        "/imports/trainees": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import trainees from a spreadsheet",
                "consumes": ["multipart/form-data"],
                "parameters": [{"$ref": "#/parameters/upload"}],
                "responses": {
                    "200": {"description": "Created, failed, duplicate and rejected buckets", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Upload too large"}
                }
            }
        },
        "/imports/trainees/duplicates": {
            "post": {
                "tags": ["Imports"],
                "summary": "Apply update or skip decisions to reported duplicates",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DuplicateDecisions"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/reports/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download an analytics report",
                "produces": ["text/csv", "text/html", "application/pdf"],
                "parameters": [
                    {"name": "type", "in": "query", "type": "string", "required": true, "enum": ["summary", "courses", "students", "departments", "timeseries"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "html", "pdf"]},
                    {"$ref": "#/parameters/range"},
                    {"$ref": "#/parameters/startDate"},
                    {"$ref": "#/parameters/endDate"},
                    {"$ref": "#/parameters/courseId"},
                    {"$ref": "#/parameters/days"}
                ],
                "responses": {"200": {"description": "Attachment", "schema": {"type": "file"}}}
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "DuplicateDecisions": {
            "type": "object",
            "properties": {
                "decisions": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "existing_id": {"type": "string"},
                            "action": {"type": "string", "enum": ["update", "skip"]},
                            "candidate": {"type": "object"}
                        }
                    }
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
