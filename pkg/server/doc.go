// Package server exposes the orchestrator over HTTP.
//
// Routes:
//   - POST /api/submit_request: {"text": "..."} to the audit record
//   - GET  /api/health: liveness ({"status":"active","system":"AI-Gov-Framework"})
//   - GET  /api/ready: readiness, including the policy store ping
//   - GET  /api/version: build information
//   - GET  /metrics: Prometheus metrics, when enabled
//
// Errors are JSON objects of the form {"error": "...", "stage": "..."}.
// Blank or malformed requests get 400, a failing pipeline stage gets 500
// naming only the stage, and a request exceeding server.request_timeout
// gets 504.
package server
