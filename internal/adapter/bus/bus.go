package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ordelo/orders-ms/internal/adapter/config"
	"github.com/ordelo/orders-ms/internal/core/domain"
	"github.com/ordelo/orders-ms/pkg/metrics"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Envelope is the sole failure shape that crosses the RPC boundary.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// reply is the wire frame for request/reply exchanges: either data or
// an error envelope, never both.
type reply struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *Envelope       `json:"error,omitempty"`
}

// HandlerFunc serves one inbound request. The returned value is
// marshalled into the reply frame; the returned error is normalized.
type HandlerFunc func(ctx context.Context, data []byte) (any, error)

// Normalizer converts any failure into the wire envelope. It must not
// fail itself.
type Normalizer func(err error) Envelope

const (
	headerCorrelationID = "correlation-id"
	headerReplyTo       = "reply-to"
)

// Bus is a correlated request/reply RPC layer on top of Kafka topics.
// Subjects map one-to-one onto topics. Each instance consumes replies
// from its own consumer group so correlation stays instance-local.
type Bus struct {
	brokers    []string
	groupID    string
	replyTopic string
	timeout    time.Duration
	logger     *zap.Logger
	normalize  Normalizer

	pending *pendingReplies

	writeMu     sync.Mutex
	writers     map[string]*kafka.Writer
	replyWriter *kafka.Writer

	subs    map[string]HandlerFunc
	readers []*kafka.Reader
	wg      sync.WaitGroup
	stopped atomic.Bool
}

func NewBus(conf *config.Bus, normalize Normalizer, logger *zap.Logger) (*Bus, error) {
	brokers := []string{}
	for _, b := range strings.Split(conf.Brokers, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, fmt.Errorf("bus: no brokers configured")
	}

	return &Bus{
		brokers:    brokers,
		groupID:    conf.GroupID,
		replyTopic: conf.ReplyTopic,
		timeout:    conf.RequestTimeout,
		logger:     logger,
		normalize:  normalize,
		pending:    newPendingReplies(),
		writers:    make(map[string]*kafka.Writer),
		subs:       make(map[string]HandlerFunc),
		replyWriter: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}, nil
}

// Subscribe registers a handler for a subject. Must be called before
// Start.
func (b *Bus) Subscribe(subject string, h HandlerFunc) {
	b.subs[subject] = h
}

// Start launches the reply dispatcher and one consumer per
// subscription. It returns immediately; Stop drains everything.
func (b *Bus) Start(ctx context.Context) {
	replyReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: b.brokers,
		Topic:   b.replyTopic,
		// Unique group per instance: every instance sees every reply
		// and keeps the ones it is waiting for.
		GroupID:  b.groupID + "-reply-" + uuid.NewString(),
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	b.readers = append(b.readers, replyReader)
	b.wg.Add(1)
	go b.consumeReplies(ctx, replyReader)

	for subject, handler := range b.subs {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  b.brokers,
			Topic:    subject,
			GroupID:  b.groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		})
		b.readers = append(b.readers, reader)
		b.wg.Add(1)
		go b.consume(ctx, reader, subject, handler)
	}
}

func (b *Bus) Stop() {
	b.stopped.Store(true)
	for _, r := range b.readers {
		_ = r.Close()
	}
	b.wg.Wait()
	b.writeMu.Lock()
	for _, w := range b.writers {
		_ = w.Close()
	}
	_ = b.replyWriter.Close()
	b.writeMu.Unlock()
}

// Request performs one correlated request/reply exchange. On timeout
// or an empty reply it fails with the empty-response text so the
// normalizer classifies it as upstream-unavailable.
func (b *Bus) Request(ctx context.Context, subject string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", subject, err)
	}

	id := uuid.NewString()
	ch := b.pending.add(id)
	defer b.pending.remove(id)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(id),
		Value: data,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: headerCorrelationID, Value: []byte(id)},
			{Key: headerReplyTo, Value: []byte(b.replyTopic)},
		},
	}
	if err := b.writerFor(subject).WriteMessages(ctx, msg); err != nil {
		metrics.BusRequests.WithLabelValues(subject, "write_error").Inc()
		return nil, fmt.Errorf("request %s: %w", subject, err)
	}

	return b.awaitReply(ctx, subject, ch)
}

func (b *Bus) awaitReply(ctx context.Context, subject string, ch <-chan *reply) ([]byte, error) {
	select {
	case rep := <-ch:
		if rep.Error != nil {
			metrics.BusRequests.WithLabelValues(subject, "remote_error").Inc()
			return nil, &domain.ServiceError{Status: rep.Error.Status, Message: rep.Error.Message}
		}
		if len(rep.Data) == 0 {
			metrics.BusRequests.WithLabelValues(subject, "empty").Inc()
			return nil, fmt.Errorf("Empty response (%s)", subject)
		}
		metrics.BusRequests.WithLabelValues(subject, "ok").Inc()
		return rep.Data, nil
	case <-ctx.Done():
		metrics.BusRequests.WithLabelValues(subject, "timeout").Inc()
		return nil, fmt.Errorf("Empty response (%s)", subject)
	}
}

func (b *Bus) writerFor(subject string) *kafka.Writer {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if w, ok := b.writers[subject]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(b.brokers...),
		Topic:        subject,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	b.writers[subject] = w
	return w
}

func (b *Bus) consumeReplies(ctx context.Context, reader *kafka.Reader) {
	defer b.wg.Done()
	for {
		if b.stopped.Load() {
			return
		}
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || b.stopped.Load() {
				return
			}
			b.logger.Error("fetch reply", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		id := headerValue(msg, headerCorrelationID)
		var rep reply
		if err := json.Unmarshal(msg.Value, &rep); err != nil {
			b.logger.Error("decode reply", zap.Error(err),
				zap.String("correlation", id))
		} else if !b.pending.resolve(id, &rep) {
			b.logger.Debug("reply with no waiter", zap.String("correlation", id))
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			b.logger.Error("commit reply", zap.Error(err))
		}
	}
}

func (b *Bus) consume(ctx context.Context, reader *kafka.Reader, subject string, handler HandlerFunc) {
	defer b.wg.Done()
	b.logger.Info("consuming subject", zap.String("subject", subject))
	for {
		if b.stopped.Load() {
			return
		}
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || b.stopped.Load() {
				return
			}
			b.logger.Error("fetch request", zap.Error(err),
				zap.String("subject", subject))
			time.Sleep(time.Second)
			continue
		}

		b.handleRequest(ctx, subject, msg, handler)

		if err := reader.CommitMessages(ctx, msg); err != nil {
			b.logger.Error("commit request", zap.Error(err),
				zap.String("subject", subject))
		}
	}
}

func (b *Bus) handleRequest(ctx context.Context, subject string, msg kafka.Message, handler HandlerFunc) {
	result, err := b.invokeHandler(ctx, subject, msg.Value, handler)

	var rep reply
	if err != nil {
		env := b.normalize(err)
		rep.Error = &env
	} else if result != nil {
		data, merr := json.Marshal(result)
		if merr != nil {
			env := b.normalize(merr)
			rep.Error = &env
		} else {
			rep.Data = data
		}
	}

	corrID := headerValue(msg, headerCorrelationID)
	replyTo := headerValue(msg, headerReplyTo)
	if corrID == "" || replyTo == "" {
		// Fire-and-forget event, nobody is waiting.
		return
	}

	payload, merr := json.Marshal(rep)
	if merr != nil {
		b.logger.Error("encode reply", zap.Error(merr), zap.String("subject", subject))
		return
	}
	wmsg := kafka.Message{
		Topic: replyTo,
		Key:   []byte(corrID),
		Value: payload,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: headerCorrelationID, Value: []byte(corrID)},
		},
	}
	if err := b.replyWriter.WriteMessages(ctx, wmsg); err != nil {
		b.logger.Error("write reply", zap.Error(err),
			zap.String("subject", subject), zap.String("correlation", corrID))
	}
}

// invokeHandler keeps a panicking handler from taking the consumer
// goroutine down with it. The fault surfaces as an internal-error
// envelope with a generic message, request details stay in the log.
func (b *Bus) invokeHandler(ctx context.Context, subject string, data []byte, handler HandlerFunc) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in handler",
				zap.String("subject", subject), zap.Any("panic", r))
			result = nil
			err = &domain.ServiceError{
				Status:  http.StatusInternalServerError,
				Message: "Internal server error",
			}
		}
	}()

	return handler(ctx, data)
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
