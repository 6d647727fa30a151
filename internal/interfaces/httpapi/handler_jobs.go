package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/castilla-calendar/internal/usecase"
)

type refreshJobRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

type refreshJobResponse struct {
	Status       string `json:"status"`
	TotalMatches int    `json:"totalMatches"`
	Reason       string `json:"reason,omitempty"`
}

// RunRefreshJob triggers a reconciliation outside the scheduler cadence.
// When a run is already active the trigger is coalesced; callers get the
// last published snapshot back, or a conflict if none exists yet.
func (h *Handler) RunRefreshJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshJob")
	defer span.End()

	req, err := h.decodeRefreshJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches, err := h.reconciler.RunReconciliation(ctx)
	if err != nil {
		if !errors.Is(err, usecase.ErrRunInProgress) {
			h.logger.ErrorContext(ctx, "refresh job failed", "reason", req.Reason, "error", err)
		}
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, refreshJobResponse{
		Status:       "completed",
		TotalMatches: len(matches),
		Reason:       req.Reason,
	})
}

func (h *Handler) decodeRefreshJobRequest(r *http.Request) (refreshJobRequest, error) {
	var req refreshJobRequest

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		return req, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(body) == 0 {
		return req, nil
	}

	if err := sonic.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("%w: malformed request body", usecase.ErrInvalidInput)
	}
	if err := h.validator.Struct(req); err != nil {
		return req, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return req, nil
}

func errInvalidLimit(raw string) error {
	return fmt.Errorf("%w: limit %q must be an integer between 1 and 100", usecase.ErrInvalidInput, raw)
}
