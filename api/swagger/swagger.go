package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academy LMP API",
        "description": "Learning management portal: curriculum, assignment submissions, grading and completion certificates",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and account security"},
        {"name": "Users", "description": "Account administration"},
        {"name": "Content", "description": "Modules and assignments"},
        {"name": "Materials", "description": "Study materials per module"},
        {"name": "Submissions", "description": "Assignment submissions and grading"},
        {"name": "Certificates", "description": "Completion eligibility and certificate download"},
        {"name": "Files", "description": "Signed file downloads"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by email and password",
                "responses": {
                    "200": {"description": "Access token issued"},
                    "401": {"description": "Invalid credentials or inactive account"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change the current user's password",
                "responses": {
                    "204": {"description": "Password changed"},
                    "403": {"description": "Current password does not match"}
                }
            }
        },
        "/modules": {
            "get": {
                "tags": ["Content"],
                "summary": "List curriculum weeks",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Content"],
                "summary": "Create a curriculum week (admin)",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Week number already exists"}
                }
            }
        },
        "/modules/{id}/materials": {
            "get": {
                "tags": ["Materials"],
                "summary": "List materials for a module",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/materials": {
            "post": {
                "tags": ["Materials"],
                "summary": "Add a link or file material (admin, multipart)",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/materials/{id}": {
            "patch": {
                "tags": ["Materials"],
                "summary": "Partially edit a material (admin)",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Materials"],
                "summary": "Delete a material, removing file uploads best effort (admin)",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/submissions": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Submit or resubmit assignment work (multipart)",
                "responses": {
                    "200": {"description": "Submission stored; an existing grade is preserved"},
                    "404": {"description": "Assignment or user not found"}
                }
            }
        },
        "/submissions/ungraded": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Grading queue, most recent first (admin)",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/submissions/{id}/grade": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Record a grade in [0,100] with optional feedback (admin)",
                "responses": {
                    "200": {"description": "Graded"},
                    "400": {"description": "Grade out of range"}
                }
            }
        },
        "/certificates/eligibility": {
            "get": {
                "tags": ["Certificates"],
                "summary": "Compute the caller's certificate eligibility",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/certificates/download": {
            "get": {
                "tags": ["Certificates"],
                "summary": "Download the completion certificate PDF",
                "responses": {
                    "200": {"description": "PDF document"},
                    "409": {"description": "Not eligible"}
                }
            }
        },
        "/files/download": {
            "get": {
                "tags": ["Files"],
                "summary": "Stream a stored file referenced by a signed token",
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid or expired token"}
                }
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "Envelope": {
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
