package bus

import (
	"context"
	"testing"
	"time"

	"github.com/ordelo/orders-ms/internal/adapter/config"
	"github.com/ordelo/orders-ms/internal/core/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBus_HandlerPanicBecomesInternalError(t *testing.T) {
	var captured Envelope
	b := &Bus{
		logger: zap.NewNop(),
		normalize: func(err error) Envelope {
			captured = Envelope{Status: 500, Message: err.Error()}
			return captured
		},
	}

	handler := func(ctx context.Context, data []byte) (any, error) {
		var m map[string]int
		m["boom"] = 1
		return m, nil
	}

	// No correlation headers: the reply is dropped, but the handler
	// fault must still be converted instead of crossing the boundary.
	assert.NotPanics(t, func() {
		b.handleRequest(context.Background(), "order.create", kafka.Message{Value: []byte(`{}`)}, handler)
	})
	assert.Equal(t, 500, captured.Status)
	assert.Equal(t, "Internal server error", captured.Message)
}

func TestBus_InvokeHandlerPassesThroughResults(t *testing.T) {
	b := &Bus{logger: zap.NewNop()}

	result, err := b.invokeHandler(context.Background(), "order.create", []byte(`{}`),
		func(ctx context.Context, data []byte) (any, error) {
			return "ok", nil
		})
	assert.NoError(t, err)
	assert.Equal(t, "ok", result)

	result, err = b.invokeHandler(context.Background(), "order.create", nil,
		func(ctx context.Context, data []byte) (any, error) {
			return nil, domain.NewValidation("bad payload")
		})
	assert.Nil(t, result)
	var svcErr *domain.ServiceError
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 400, svcErr.Status)
}

func TestBus_AwaitReply(t *testing.T) {
	b := &Bus{logger: zap.NewNop(), pending: newPendingReplies()}

	t.Run("Expired deadline yields the no-reply text", func(t *testing.T) {
		ch := b.pending.add("corr-1")
		defer b.pending.remove("corr-1")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		data, err := b.awaitReply(ctx, "product.validate", ch)
		assert.Nil(t, data)
		assert.EqualError(t, err, "Empty response (product.validate)")
	})

	t.Run("Remote error envelope carried as structured failure", func(t *testing.T) {
		ch := b.pending.add("corr-2")
		b.pending.resolve("corr-2", &reply{Error: &Envelope{Status: 404, Message: "Product not found"}})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err := b.awaitReply(ctx, "product.validate", ch)
		var svcErr *domain.ServiceError
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 404, svcErr.Status)
		assert.Equal(t, "Product not found", svcErr.Message)
	})

	t.Run("Empty frame treated as no reply", func(t *testing.T) {
		ch := b.pending.add("corr-3")
		b.pending.resolve("corr-3", &reply{})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err := b.awaitReply(ctx, "payment.session.create", ch)
		assert.EqualError(t, err, "Empty response (payment.session.create)")
	})

	t.Run("Resolved data returned as is", func(t *testing.T) {
		ch := b.pending.add("corr-4")
		b.pending.resolve("corr-4", &reply{Data: []byte(`{"id":"o1"}`)})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		data, err := b.awaitReply(ctx, "product.validate", ch)
		assert.NoError(t, err)
		assert.Equal(t, `{"id":"o1"}`, string(data))
	})
}

func TestBus_StopWithoutStart(t *testing.T) {
	b, err := NewBus(&config.Bus{
		Brokers:        "localhost:9092",
		GroupID:        "orders-ms",
		ReplyTopic:     "orders.reply",
		RequestTimeout: time.Second,
	}, func(error) Envelope { return Envelope{} }, zap.NewNop())
	assert.NoError(t, err)

	assert.NotPanics(t, b.Stop)
	assert.True(t, b.stopped.Load())
}
