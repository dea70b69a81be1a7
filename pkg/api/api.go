package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	pkgerrors "github.com/fedmesh/fedmesh/pkg/errors"
)

const ContentType = "application/json"

// Response lets endpoint responses control their own status code and
// headers when encoded.
type Response interface {
	Code() int
	Headers() map[string]string
	Empty() bool
}

func EncodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	if ar, ok := response.(Response); ok {
		for k, v := range ar.Headers() {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", ContentType)
		w.WriteHeader(ar.Code())

		if ar.Empty() {
			return nil
		}
	}

	return json.NewEncoder(w).Encode(response)
}

func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	switch {
	case errors.Is(err, pkgerrors.ErrMissingEndpoint),
		errors.Is(err, pkgerrors.ErrMissingOwner),
		errors.Is(err, pkgerrors.ErrNoTools),
		errors.Is(err, pkgerrors.ErrEmptyKey),
		errors.Is(err, pkgerrors.ErrInvalidData):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, pkgerrors.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, pkgerrors.ErrEntityExists):
		w.WriteHeader(http.StatusConflict)
	case errors.Is(err, pkgerrors.ErrUnreachable):
		w.WriteHeader(http.StatusBadGateway)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	if encErr := json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}); encErr != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// LoggingErrorEncoder wraps EncodeError so every transport-level error
// also lands in the log.
func LoggingErrorEncoder(logger *slog.Logger) func(context.Context, error, http.ResponseWriter) {
	return func(ctx context.Context, err error, w http.ResponseWriter) {
		if err != nil {
			logger.Warn("request failed", slog.Any("error", err))
		}
		EncodeError(ctx, err, w)
	}
}
