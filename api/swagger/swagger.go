package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gradebook API",
        "description": "School gradebook: phone-code login, teacher accounts, grades and leaderboard",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Phone verification and teacher login"},
        {"name": "Director", "description": "Teacher roster management"},
        {"name": "Grades", "description": "Grade recording and reports"}
    ],
    "paths": {
        "/auth": {
            "post": {
                "tags": ["Auth"],
                "summary": "Auth actions (send_sms, verify_sms, login_teacher)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AuthRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/director": {
            "get": {
                "tags": ["Director"],
                "summary": "List teachers",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Director"],
                "summary": "Create teacher account (action: create_teacher)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/director/export": {
            "get": {
                "tags": ["Director"],
                "summary": "Download teacher roster as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "Per-subject grades and leaderboard for a student",
                "parameters": [
                    {"name": "student_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "post": {
                "tags": ["Grades"],
                "summary": "Record a grade",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordGradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Grades"],
                "summary": "Subject catalog",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/grades/export": {
            "get": {
                "tags": ["Grades"],
                "summary": "Download a student's report as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "student_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "AuthRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["send_sms", "verify_sms", "login_teacher"]},
                "phone": {"type": "string"},
                "role": {"type": "string", "enum": ["student", "teacher", "director"]},
                "code": {"type": "string"},
                "full_name": {"type": "string"},
                "class_name": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["action"]
        },
        "CreateTeacherRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["create_teacher"]},
                "username": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "avatar_emoji": {"type": "string"}
            },
            "required": ["action", "username", "password", "full_name"]
        },
        "RecordGradeRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "integer"},
                "subject_id": {"type": "integer"},
                "grade": {"type": "integer", "minimum": 2, "maximum": 5},
                "teacher_id": {"type": "integer"}
            },
            "required": ["student_id", "subject_id", "grade", "teacher_id"]
        },
        "User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "phone": {"type": "string"},
                "username": {"type": "string"},
                "role": {"type": "string"},
                "full_name": {"type": "string"},
                "class_name": {"type": "string"},
                "avatar_emoji": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
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
