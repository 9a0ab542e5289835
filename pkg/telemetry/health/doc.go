// Package health provides liveness and readiness endpoints.
//
// # Endpoints
//
//   - GET /api/health: Liveness. Always 200 while the process serves
//     requests, with the body {"status":"active","system":"AI-Gov-Framework"}.
//   - GET /api/ready: Readiness. Runs every registered check concurrently,
//     each under its own timeout; 503 if any fails.
//   - GET /api/version: Build information.
//
// Paths come from telemetry.health in the configuration.
//
// # Usage
//
//	checker := health.New(health.SystemName, cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("policy_store", store.Ping)
//	health.Register(mux, checker, cfg.Telemetry.Health, version.Info())
package health
