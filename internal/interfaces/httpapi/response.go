package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/lineage"
	"github.com/riskibarqy/dynasty-lineage/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "dynasty-lineage"
	internalMessage  = "internal server error"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

// googleErrorItem.Location carries the rebuild stage that failed, if any.
type googleErrorItem struct {
	Domain       string `json:"domain"`
	Reason       string `json:"reason"`
	Message      string `json:"message"`
	Location     string `json:"location,omitempty"`
	LocationType string `json:"locationType,omitempty"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

// errorMappings is checked in order; more specific sentinels come first.
var errorMappings = []struct {
	target error
	mapped mappedError
}{
	{lineage.ErrInvalidDepth, mappedError{http.StatusBadRequest, "invalidDepth", "INVALID_ARGUMENT"}},
	{asset.ErrInvalidRef, mappedError{http.StatusBadRequest, "invalidAssetRef", "INVALID_ARGUMENT"}},
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrAssetNotFound, mappedError{http.StatusNotFound, "assetNotFound", "NOT_FOUND"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrAlreadyRebuilding, mappedError{http.StatusConflict, "alreadyRebuilding", "ABORTED"}},
	{usecase.ErrCycleDetected, mappedError{http.StatusUnprocessableEntity, "familyCycle", "FAILED_PRECONDITION"}},
	{asset.ErrDuplicateEvent, mappedError{http.StatusInternalServerError, "duplicateEvent", "INTERNAL"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
	{context.DeadlineExceeded, mappedError{http.StatusGatewayTimeout, "deadlineExceeded", "DEADLINE_EXCEEDED"}},
}

var internalError = mappedError{http.StatusInternalServerError, "internalError", "INTERNAL"}

func mapError(err error) mappedError {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.mapped
		}
	}
	return internalError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, googleResponseEnvelope{APIVersion: googleAPIVersion, Data: data})
}

// writeError hides the message of server side failures; the handler logs them.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	recordSpanError(ctx, mapped.HTTPStatus, err)

	message := err.Error()
	if mapped.HTTPStatus == http.StatusInternalServerError {
		message = internalMessage
	}
	item := googleErrorItem{Domain: errorDomain, Reason: mapped.Reason, Message: message}
	if stage, ok := usecase.FailedStage(err); ok {
		item.Location = string(stage)
		item.LocationType = "rebuildStage"
	}
	if mapped.HTTPStatus == http.StatusConflict || mapped.HTTPStatus == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "30")
	}

	writeJSON(w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors:  []googleErrorItem{item},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeError(ctx, w, errors.New(internalMessage))
}
