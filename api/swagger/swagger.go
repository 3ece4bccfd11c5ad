package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Planner API",
        "description": "Exam timetable scheduling engine with versioned persistence and async exports",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Campaigns", "description": "Exam campaign lifecycle"},
        {"name": "Planner", "description": "Timetable planning, persistence and exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/campaigns": {
            "get": {
                "tags": ["Campaigns"],
                "summary": "List campaigns",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["OPEN", "CLOSED"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Campaigns"],
                "summary": "Open a new exam campaign",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCampaignRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/campaigns/{id}": {
            "get": {
                "tags": ["Campaigns"],
                "summary": "Fetch one campaign",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Campaigns"],
                "summary": "Delete a campaign",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/campaigns/{id}/close": {
            "post": {
                "tags": ["Campaigns"],
                "summary": "Close a campaign",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/campaigns/{id}/offerings": {
            "get": {
                "tags": ["Campaigns"],
                "summary": "List the offering rows stored against a campaign",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Campaigns"],
                "summary": "Replace the offering rows stored against a campaign",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UploadOfferingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/plan": {
            "post": {
                "tags": ["Planner"],
                "summary": "Build an exam timetable proposal",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/save": {
            "post": {
                "tags": ["Planner"],
                "summary": "Persist a proposal as a new timetable version",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/timetables": {
            "get": {
                "tags": ["Planner"],
                "summary": "List persisted timetable versions",
                "parameters": [
                    {"name": "campaignId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["DRAFT", "PUBLISHED", "ARCHIVED"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/timetables/{id}": {
            "delete": {
                "tags": ["Planner"],
                "summary": "Delete one timetable version",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/planner/timetables/{id}/entries": {
            "get": {
                "tags": ["Planner"],
                "summary": "Fetch the annotated rows of one timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/timetables/{id}/export": {
            "post": {
                "tags": ["Planner"],
                "summary": "Queue a timetable export render",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{jobId}": {
            "get": {
                "tags": ["Planner"],
                "summary": "Inspect a queued export render",
                "parameters": [
                    {"name": "jobId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Planner"],
                "summary": "Download a rendered export via signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
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
        "CreateCampaignRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "sessionCeiling": {"type": "integer"},
                "holidays": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["name", "startDate", "endDate"]
        },
        "OfferingRequest": {
            "type": "object",
            "properties": {
                "subjectCode": {"type": "string"},
                "subjectName": {"type": "string"},
                "branch": {"type": "string"},
                "subBranch": {"type": "string"},
                "semester": {"type": "integer"},
                "studentCount": {"type": "integer"},
                "category": {"type": "string", "enum": ["REGULAR", "ELECTIVE", "EXCLUDED"]},
                "electiveTrack": {"type": "string", "enum": ["A", "B", "E"]},
                "commonAcrossSems": {"type": "boolean"},
                "commonWithinSem": {"type": "boolean"}
            },
            "required": ["subjectCode", "subjectName", "branch", "semester"]
        },
        "UploadOfferingsRequest": {
            "type": "object",
            "properties": {
                "offerings": {"type": "array", "items": {"$ref": "#/definitions/OfferingRequest"}}
            },
            "required": ["offerings"]
        },
        "PlanRequest": {
            "type": "object",
            "properties": {
                "campaignId": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "holidays": {"type": "array", "items": {"type": "string"}},
                "sessionCeiling": {"type": "integer"},
                "offerings": {"type": "array", "items": {"$ref": "#/definitions/OfferingRequest"}}
            },
            "required": ["startDate", "endDate", "offerings"]
        },
        "SaveTimetableRequest": {
            "type": "object",
            "properties": {
                "proposalId": {"type": "string"},
                "campaignId": {"type": "string"},
                "publish": {"type": "boolean"}
            },
            "required": ["proposalId", "campaignId"]
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
