package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CampusKit Routine API",
        "description": "Weekly class routine scheduling with conflict detection",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Session management"},
        {"name": "Routines", "description": "Routine slot management"},
        {"name": "Availability", "description": "Free teacher and room lookups"},
        {"name": "Academic Years", "description": "Session lifecycle"},
        {"name": "Time Grid", "description": "Period timing configuration"},
        {"name": "Catalog", "description": "Reference data"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the current refresh token",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/routines": {
            "get": {
                "tags": ["Routines"],
                "summary": "List routine slots",
                "parameters": [
                    {"name": "programId", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "section", "in": "query", "type": "string"},
                    {"name": "academicYearId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "dayIndex", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Routines"],
                "summary": "Create a routine slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRoutineSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routines/{id}": {
            "get": {
                "tags": ["Routines"],
                "summary": "Get one routine slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Routines"],
                "summary": "Update a routine slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRoutineSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Routines"],
                "summary": "Delete a routine slot (removes the whole span)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/routines/span/{spanId}": {
            "delete": {
                "tags": ["Routines"],
                "summary": "Delete all slots of a multi-period span",
                "parameters": [
                    {"name": "spanId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routines/grid": {
            "get": {
                "tags": ["Routines"],
                "summary": "Weekly grid for a section",
                "parameters": [
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"},
                    {"name": "programId", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "section", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routines/sweep": {
            "get": {
                "tags": ["Routines"],
                "summary": "Advisory double-booking sweep for a section",
                "parameters": [
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"},
                    {"name": "programId", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "section", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routines/export": {
            "get": {
                "tags": ["Routines"],
                "summary": "Export a section routine as PDF or CSV",
                "parameters": [
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"},
                    {"name": "programId", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "section", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "csv"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/routines/check-conflicts": {
            "post": {
                "tags": ["Routines"],
                "summary": "Dry-run conflict check for a proposed slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routines/copy": {
            "post": {
                "tags": ["Routines"],
                "summary": "Copy a section routine to another session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CopyRoutineRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Target section populated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/teachers": {
            "get": {
                "tags": ["Availability"],
                "summary": "Teachers free at a coordinate",
                "parameters": [
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"},
                    {"name": "dayIndex", "in": "query", "required": true, "type": "integer"},
                    {"name": "slotIndex", "in": "query", "required": true, "type": "integer"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "exclude", "in": "query", "type": "string"},
                    {"name": "labGroupId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/rooms": {
            "get": {
                "tags": ["Availability"],
                "summary": "Rooms free at a coordinate",
                "parameters": [
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"},
                    {"name": "dayIndex", "in": "query", "required": true, "type": "integer"},
                    {"name": "slotIndex", "in": "query", "required": true, "type": "integer"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "exclude", "in": "query", "type": "string"},
                    {"name": "labGroupId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years": {
            "get": {
                "tags": ["Academic Years"],
                "summary": "List sessions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Academic Years"],
                "summary": "Create a draft session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAcademicYearRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/{id}": {
            "get": {
                "tags": ["Academic Years"],
                "summary": "Get one session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/{id}/activate": {
            "post": {
                "tags": ["Academic Years"],
                "summary": "Activate a session, archiving the previous one",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/{id}/archive": {
            "post": {
                "tags": ["Academic Years"],
                "summary": "Archive a session and its routine",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timegrid": {
            "get": {
                "tags": ["Time Grid"],
                "summary": "List period timings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Time Grid"],
                "summary": "Replace the period timing table",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceTimeGridRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/programs": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List degree programs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List teachers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}/conflicts": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Conflicting assignments on a teacher schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List rooms",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List subjects",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "Recurrence": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["WEEKLY", "ALTERNATE", "CUSTOM"]},
                "pattern": {"type": "string", "enum": ["ODD", "EVEN"]},
                "customWeeks": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "CreateRoutineSlotRequest": {
            "type": "object",
            "properties": {
                "academicYearId": {"type": "string"},
                "programId": {"type": "string"},
                "semester": {"type": "integer"},
                "section": {"type": "string"},
                "dayIndex": {"type": "integer"},
                "slotIndex": {"type": "integer"},
                "spanLength": {"type": "integer"},
                "classType": {"type": "string", "enum": ["LECTURE", "PRACTICAL", "TUTORIAL", "BREAK"]},
                "classCategory": {"type": "string", "enum": ["CORE", "ELECTIVE", "COMMON"]},
                "subjectIds": {"type": "array", "items": {"type": "string"}},
                "teacherIds": {"type": "array", "items": {"type": "string"}},
                "roomId": {"type": "string"},
                "labGroupId": {"type": "string"},
                "labGroup": {"type": "string", "enum": ["A", "B", "C", "D", "ALL"]},
                "recurrence": {"$ref": "#/definitions/Recurrence"}
            },
            "required": ["academicYearId", "programId", "semester", "section", "dayIndex", "slotIndex", "classType", "classCategory"]
        },
        "UpdateRoutineSlotRequest": {
            "type": "object",
            "properties": {
                "classType": {"type": "string", "enum": ["LECTURE", "PRACTICAL", "TUTORIAL", "BREAK"]},
                "classCategory": {"type": "string", "enum": ["CORE", "ELECTIVE", "COMMON"]},
                "subjectIds": {"type": "array", "items": {"type": "string"}},
                "teacherIds": {"type": "array", "items": {"type": "string"}},
                "roomId": {"type": "string"},
                "labGroupId": {"type": "string"},
                "labGroup": {"type": "string", "enum": ["A", "B", "C", "D", "ALL"]},
                "recurrence": {"$ref": "#/definitions/Recurrence"}
            },
            "required": ["classType", "classCategory"]
        },
        "ConflictCheckRequest": {
            "type": "object",
            "properties": {
                "academicYearId": {"type": "string"},
                "semester": {"type": "integer"},
                "dayIndex": {"type": "integer"},
                "slotIndex": {"type": "integer"},
                "teacherIds": {"type": "array", "items": {"type": "string"}},
                "roomId": {"type": "string"},
                "labGroupId": {"type": "string"},
                "weekNumber": {"type": "integer"},
                "excludeSlotId": {"type": "string"}
            },
            "required": ["academicYearId", "semester", "dayIndex", "slotIndex"]
        },
        "CopyRoutineRequest": {
            "type": "object",
            "properties": {
                "sourceYearId": {"type": "string"},
                "targetYearId": {"type": "string"},
                "programId": {"type": "string"},
                "semester": {"type": "integer"},
                "section": {"type": "string"}
            },
            "required": ["sourceYearId", "targetYearId", "programId", "semester", "section"]
        },
        "CreateAcademicYearRequest": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"}
            },
            "required": ["label", "startDate", "endDate"]
        },
        "ReplaceTimeGridRequest": {
            "type": "object",
            "properties": {
                "periods": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TimeGridPeriod"}
                }
            },
            "required": ["periods"]
        },
        "TimeGridPeriod": {
            "type": "object",
            "properties": {
                "slotIndex": {"type": "integer"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "label": {"type": "string"},
                "isBreak": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
