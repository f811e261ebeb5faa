package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Adaptive class timetable generation and learning service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetables", "description": "Timetable generation and version ledger"},
        {"name": "Feedback", "description": "Manual correction capture and learning"},
        {"name": "Patterns", "description": "Learned scheduling patterns"}
    ],
    "paths": {
        "/timetables/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate a class timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Generation already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/versions": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List timetable versions for a class",
                "parameters": [
                    {"name": "schoolId", "in": "query", "required": true, "type": "string"},
                    {"name": "classId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/versions/{id}/slots": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List slots recorded under a version",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Version not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/versions/{id}/export": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Export a version as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "404": {"description": "Version not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feedback": {
            "post": {
                "tags": ["Feedback"],
                "summary": "Open a feedback session against a version",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateFeedbackSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Version not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feedback/{id}/corrections": {
            "post": {
                "tags": ["Feedback"],
                "summary": "Record a manual correction",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CorrectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feedback/{id}/corrections/batch": {
            "post": {
                "tags": ["Feedback"],
                "summary": "Record a batch of corrections",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CorrectionBatchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/patterns": {
            "get": {
                "tags": ["Patterns"],
                "summary": "List learned patterns",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "entityId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "schoolId": {"type": "string"},
                "classId": {"type": "string"},
                "subjectSessions": {
                    "type": "object",
                    "additionalProperties": {"type": "integer"}
                },
                "constraints": {"$ref": "#/definitions/TimetableConstraints"},
                "preferences": {"$ref": "#/definitions/SchedulingPreferences"},
                "generatedBy": {"type": "string"}
            },
            "required": ["schoolId", "classId"]
        },
        "TimetableConstraints": {
            "type": "object",
            "properties": {
                "days": {"type": "array", "items": {"type": "string"}},
                "periodsPerDay": {"type": "integer"},
                "maxPeriodsPerDay": {"type": "integer"},
                "maxPeriodsPerSubject": {"type": "integer"}
            }
        },
        "SchedulingPreferences": {
            "type": "object",
            "properties": {
                "teacherPreferredDays": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"type": "string"}}
                },
                "teacherUnavailableSlots": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"type": "string"}}
                },
                "coreSubjects": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CreateFeedbackSessionRequest": {
            "type": "object",
            "properties": {
                "timetableVersionId": {"type": "string"},
                "createdBy": {"type": "string"}
            },
            "required": ["timetableVersionId", "createdBy"]
        },
        "SlotAssignment": {
            "type": "object",
            "properties": {
                "teacherId": {"type": "string"},
                "subjectId": {"type": "string"},
                "day": {"type": "string"},
                "period": {"type": "integer"}
            },
            "required": ["teacherId", "subjectId", "day", "period"]
        },
        "CorrectionRequest": {
            "type": "object",
            "properties": {
                "before": {"$ref": "#/definitions/SlotAssignment"},
                "after": {"$ref": "#/definitions/SlotAssignment"},
                "reason": {"type": "string"},
                "correctedBy": {"type": "string"}
            },
            "required": ["before", "after", "correctedBy"]
        },
        "CorrectionBatchRequest": {
            "type": "object",
            "properties": {
                "corrections": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/CorrectionRequest"}
                }
            },
            "required": ["corrections"]
        },
        "LearnedPattern": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "patternType": {"type": "string"},
                "entityId": {"type": "string"},
                "preferredSlots": {"type": "array", "items": {"type": "string"}},
                "avoidedSlots": {"type": "array", "items": {"type": "string"}},
                "confidence": {"type": "number"},
                "lastUpdated": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"},
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
