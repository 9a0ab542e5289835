// Package logging provides structured logging with PII scrubbing.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Scrubbing of personal data from every string attribute
//   - Context-aware logging with session, request, document and stage ids
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	redactor, _ := redaction.New(redaction.Config{})
//	logger, _ := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    RedactPII: true,
//	    Masker:    redactor,
//	})
//
//	ctx = logging.WithSessionID(ctx, sessionID)
//	logger.InfoContext(ctx, "request processed", "status", "PENDING_REVIEW")
//
// Components take a *slog.Logger. Logger.Slog returns one backed by the same
// handler, so context fields and scrubbing apply there too:
//
//	store, _ := policystore.Open(ctx, policystore.Options{Logger: logger.Slog()})
//
// # PII Scrubbing
//
// When RedactPII is enabled every string attribute value passes through the
// configured Masker (the PII redactor), so "phone 9876543210" is logged as
// "phone <PHONE_NUMBER>". Values under secret-looking keys such as "token"
// or "password" are replaced entirely.
package logging
