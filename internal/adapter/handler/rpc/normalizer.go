package rpc

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ordelo/orders-ms/internal/adapter/bus"
	"github.com/ordelo/orders-ms/internal/core/domain"
	"github.com/ordelo/orders-ms/pkg/metrics"
	"go.uber.org/zap"
)

// emptyReplyMarker is the text the transport produces when a
// collaborator timed out or nobody answered on a subject.
const emptyReplyMarker = "Empty response"

var errorStatusMap = map[error]int{
	domain.ErrDataNotFound:    http.StatusNotFound,
	domain.ErrConflictingData: http.StatusConflict,
	domain.ErrNoUpdatedData:   http.StatusConflict,
	domain.ErrOrderNoItems:    http.StatusBadRequest,
}

// NewNormalizer builds the single serialization point for failures.
// Whatever collaborator or local path failed, callers get one stable
// {status, message} envelope, and every failure is logged first.
// The normalizer itself never fails.
func NewNormalizer(logger *zap.Logger) bus.Normalizer {
	return func(err error) (env bus.Envelope) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic while normalizing failure", zap.Any("panic", r))
				env = bus.Envelope{
					Status:  http.StatusInternalServerError,
					Message: "Internal server error",
				}
			}
		}()

		env = classify(err)

		metrics.NormalizedFailures.WithLabelValues(strconv.Itoa(env.Status)).Inc()
		logger.Error("rpc failure",
			zap.Int("status", env.Status),
			zap.String("message", env.Message),
			zap.Error(err))

		return env
	}
}

func classify(err error) bus.Envelope {
	if err == nil {
		return bus.Envelope{Status: http.StatusBadRequest, Message: "Bad request"}
	}

	// Structured failures carry their own envelope.
	var svcErr *domain.ServiceError
	if errors.As(err, &svcErr) {
		status := svcErr.Status
		if status < 100 || status > 599 {
			status = http.StatusBadRequest
		}
		return bus.Envelope{Status: status, Message: svcErr.Message}
	}

	// Transport-level no-reply text, truncated at the subject suffix.
	text := err.Error()
	if strings.Contains(text, emptyReplyMarker) {
		if i := strings.Index(text, "("); i > 0 {
			text = strings.TrimSpace(text[:i])
		}
		return bus.Envelope{Status: http.StatusServiceUnavailable, Message: text}
	}

	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return bus.Envelope{Status: status, Message: text}
		}
	}

	return bus.Envelope{Status: http.StatusBadRequest, Message: text}
}
