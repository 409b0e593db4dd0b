package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TecnoAcademia Attendance API",
        "description": "Attendance tracking backend for TecnoAcademia instructors",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Login, registration and profile"},
        {"name": "Instructors", "description": "Instructor directory"},
        {"name": "Admin", "description": "Account administration"},
        {"name": "Students", "description": "Roster management"},
        {"name": "Sessions", "description": "Class scheduling"},
        {"name": "Attendance", "description": "Presence ledger and spreadsheet import"},
        {"name": "Reports", "description": "Aggregates and exports"},
        {"name": "Dashboard", "description": "Caller-scoped overview"},
        {"name": "Health", "description": "Service health"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate instructor",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Bearer token issued"},
                    "401": {"description": "Invalid credentials or inactive account"}
                }
            }
        },
        "/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register instructor account",
                "responses": {
                    "201": {"description": "Account created"},
                    "400": {"description": "Validation failure or duplicate email"}
                }
            }
        },
        "/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Authenticated profile"}
                }
            }
        },
        "/instructors": {
            "get": {
                "tags": ["Instructors"],
                "summary": "List active instructors",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Active instructors"}
                }
            }
        },
        "/admin/instructors": {
            "get": {
                "tags": ["Admin"],
                "summary": "List all instructor accounts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "All accounts"},
                    "403": {"description": "Administrator role required"}
                }
            },
            "post": {
                "tags": ["Admin"],
                "summary": "Create instructor account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Account created"}
                }
            }
        },
        "/admin/instructors/{id}": {
            "put": {
                "tags": ["Admin"],
                "summary": "Update instructor account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Updated account"}
                }
            },
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete instructor account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "400": {"description": "Self-deletion rejected"}
                }
            }
        },
        "/admin/instructors/{id}/password": {
            "put": {
                "tags": ["Admin"],
                "summary": "Reset instructor password",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Password replaced"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Students in caller scope"}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Student created"}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Student detail"},
                    "403": {"description": "Owned by another instructor"}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Updated student"}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Deleted with attendance cascade"}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List sessions",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Sessions in caller scope"}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Create session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Session created"}
                }
            }
        },
        "/sessions/calendar": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Month calendar",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer", "required": true},
                    {"name": "month", "in": "query", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "Active sessions in the month"}
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance marks",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Marks in caller scope"}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Record attendance",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Existing mark updated"},
                    "201": {"description": "Mark created"}
                }
            }
        },
        "/attendance/bulk": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record attendance in bulk",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Batch counters and per-entry errors"}
                }
            }
        },
        "/attendance/toggle": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Toggle attendance on own roster",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Mark recorded"},
                    "404": {"description": "Student not on caller roster"}
                }
            }
        },
        "/attendance/import": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Import attendance spreadsheet",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "Import counters and row errors"},
                    "400": {"description": "No date columns or unreadable file"}
                }
            }
        },
        "/attendance/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export attendance grid as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV attachment"},
                    "404": {"description": "Nothing to export"}
                }
            }
        },
        "/attendance/report": {
            "get": {
                "tags": ["Reports"],
                "summary": "Per-student summaries",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Summaries with percentages"}
                }
            }
        },
        "/attendance/report/period": {
            "get": {
                "tags": ["Reports"],
                "summary": "Period report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "start", "in": "query", "type": "string", "required": true},
                    {"name": "end", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Per-student counts within the range"},
                    "400": {"description": "Invalid range"}
                }
            }
        },
        "/attendance/report/pdf": {
            "get": {
                "tags": ["Reports"],
                "summary": "Period report as PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF attachment"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Counts, month percentage and upcoming sessions"}
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
