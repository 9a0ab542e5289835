package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/orchestrator"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/server/middleware"
)

// SubmitPath is the request submission endpoint.
const SubmitPath = "/api/submit_request"

// SubmitRequest is the body of a submission.
type SubmitRequest struct {
	Text string `json:"text"`
}

type processResult struct {
	record *orchestrator.Record
	err    error
}

// submitHandler runs a submission through the orchestrator.
type submitHandler struct {
	processor Processor
	logger    *slog.Logger
}

func (h *submitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		middleware.WriteError(w, http.StatusMethodNotAllowed, middleware.ErrorResponse{Error: "Method not allowed"})
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, middleware.ErrorResponse{Error: "Request body too large"})
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	ctx := r.Context()
	done := make(chan processResult, 1)
	go func() {
		rec, err := h.processor.Process(ctx, req.Text)
		done <- processResult{record: rec, err: err}
	}()

	var res processResult
	select {
	case res = <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			h.logger.WarnContext(ctx, "request timed out")
			middleware.WriteError(w, http.StatusGatewayTimeout, middleware.ErrorResponse{Error: "Request timed out"})
		}
		return
	}

	if res.err != nil {
		h.writeProcessError(ctx, w, res.err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(res.record)
}

func (h *submitHandler) writeProcessError(ctx context.Context, w http.ResponseWriter, err error) {
	var inputErr *orchestrator.InputError
	if errors.As(err, &inputErr) {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrorResponse{Error: "No input provided"})
		return
	}

	var stageErr *orchestrator.StageError
	if errors.As(err, &stageErr) {
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrorResponse{
			Error: "Request processing failed",
			Stage: stageErr.Stage,
		})
		return
	}

	h.logger.ErrorContext(ctx, "unexpected processing error", "error", err)
	middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrorResponse{Error: "Request processing failed"})
}
