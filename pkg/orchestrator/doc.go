// Package orchestrator runs one citizen request through the compliance
// pipeline: redaction, policy retrieval over the masked text, then the
// decision strategy.
//
// Every call to Process gets its own session ID, which is attached to the
// returned Record, to the logging context and to the trace span so the
// request can be followed end to end. Raw request text is never logged.
//
// Stages run strictly in order and each receives the previous stage's output
// verbatim. Blank input is rejected with *InputError before any stage runs.
// A failing redaction or retrieval stage is returned as *StageError; a
// failing decision strategy degrades to an UNCERTAIN decision instead.
package orchestrator
