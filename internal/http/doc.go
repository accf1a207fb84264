// Package http provides HTTP handlers and middleware for the TimeTrack API.
//
// The router exposes the following endpoints:
//   - POST /api/toggle: kiosk check-in/check-out toggle. Body: {"pin"}. No
//     authentication; the PIN itself is the credential. Responds 201 for a
//     check-in and 200 for a check-out with the registration and worker.
//   - POST /api/login: issues an admin session token. Body:
//     {"email","password"}. The token is also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /api/logout: revokes the current session token extracted from the
//     Authorization header or session cookie. Returns 204 No Content.
//   - GET /api/registrations, POST /api/registrations,
//     PATCH /api/registrations/{id}, DELETE /api/registrations/{id}:
//     administrator controlled registration management exchanging the
//     `registrationDTO` payload defined in registration_handler.go. Listing
//     supports worker, status, manual-intervention, and check-in date range
//     filters plus sorting and pagination.
//   - GET /api/workers, POST /api/workers, GET/PUT/DELETE /api/workers/{id},
//     PUT /api/workers/{id}/pin: administrator controlled worker management
//     exchanging the `workerDTO` payload defined in worker_handler.go. Worker
//     deletion deactivates the record rather than removing it.
//   - GET /api/reports/summary: dashboard KPI aggregation over an optional
//     `date_from`/`date_to` window.
//
// Every response uses the uniform envelope defined in responder.go:
// {"success":true,"data":...} on success and
// {"success":false,"error":{"code","message","details"?}} on failure.
package http
