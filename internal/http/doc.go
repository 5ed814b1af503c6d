// Package http provides HTTP handlers and middleware for the campus portal API.
//
// The router exposes the following endpoints. Every route except /auth/login and
// /healthz requires a session token sent as `Authorization: Bearer <token>` or the
// `session_token` cookie.
//   - POST /auth/login: issues a session token. Body: {"email","password"}. Response:
//     {"user","token","expires_at"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /auth/logout: revokes the current session and clears the cookie.
//   - POST /auth/refresh: extends the current session and returns a new token.
//   - GET|POST /users, GET|PUT|DELETE /users/:id: administrator user management
//     exchanging the `userDTO` payload defined in user_handler.go.
//   - GET|POST /classrooms, GET|PUT|DELETE /classrooms/:id: classroom catalog.
//     Reads are open to any principal; mutations require classrooms:manage.
//   - GET /classrooms/:id/availability?date=&start=&end=: slot availability.
//   - GET|POST /bookings, GET|PATCH|DELETE /bookings/:id, PUT /bookings/:id/status:
//     bookings and their review workflow. Conflicts answer 409 with the message
//     "Requested time slot is not available." or, on update,
//     "Requested new time conflicts with existing booking.".
//   - GET|POST /courses, GET|PUT /courses/:id: course catalog.
//   - GET|POST /course-requests, PUT /course-requests/:id/decision: add and drop
//     requests and their review by advisors. Decision body: {"decision","note"}
//     where decision is "approved" or "rejected".
//   - PUT /enrollments/:id/grade: final letter grade. Body: {"grade"}.
//   - GET|POST /courses/:id/assignments, GET|POST /assignments/:id/submissions,
//     PUT /submissions/:id/score: coursework.
//   - GET /admin/stats, GET /advisor/overview, GET /student/courses,
//     GET /student/gpa: role dashboards.
//   - GET|POST /eav/:entityType/:entityId: attribute bags for users, courses and
//     classrooms. Body: {"attributes":{...}}; an empty value removes a key.
//   - GET /healthz: liveness including a storage ping.
//
// Errors are returned as {"error_code"?, "message", "errors"?}. Request/response
// DTOs live alongside their respective handlers.
package http
