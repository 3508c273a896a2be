package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"miniwallet/internal/config"
	"miniwallet/internal/domain/entity"
	"miniwallet/internal/domain/service"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

var _ service.EventTransport = (*AMQPTransport)(nil)

// Routing keys on the topic exchange.
const (
	RequestRoutingKey  = "transaction.request"
	ResponseRoutingKey = "transaction.response"
)

// AMQPTransport consumes requests from a durable queue bound to a topic exchange and
// publishes responses to the same exchange, correlated by request id.
type AMQPTransport struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	queue    string
	pubMu    sync.Mutex
	logger   *zap.Logger
}

// NewAMQPTransport dials the broker and declares the exchange and request queue.
func NewAMQPTransport(cfg config.EventsConfig, logger *zap.Logger) (*AMQPTransport, error) {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	t := &AMQPTransport{
		conn:     conn,
		ch:       ch,
		exchange: cfg.Exchange,
		queue:    cfg.Exchange + "." + RequestRoutingKey,
		logger:   logger.Named("AMQPTransport"),
	}
	if err := t.setup(); err != nil {
		_ = t.Close()
		return nil, err
	}
	t.logger.Info("Connected to message broker", zap.String("exchange", t.exchange), zap.String("queue", t.queue))
	return t, nil
}

func (t *AMQPTransport) setup() error {
	if err := t.ch.ExchangeDeclare(t.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", t.exchange, err)
	}
	if _, err := t.ch.QueueDeclare(t.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", t.queue, err)
	}
	if err := t.ch.QueueBind(t.queue, RequestRoutingKey, t.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", t.queue, err)
	}
	return nil
}

// Requests acknowledges a delivery once it has been decoded. Undecodable bodies are
// rejected without requeue.
func (t *AMQPTransport) Requests(ctx context.Context) (<-chan entity.TransactionRequest, error) {
	deliveries, err := t.ch.Consume(t.queue, "miniwallet-"+uuid.NewString(), false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", t.queue, err)
	}
	out := make(chan entity.TransactionRequest)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				req, err := decodeRequest(d.Body, d.CorrelationId)
				if err != nil {
					t.logger.Error("Rejecting undecodable request", zap.Error(err))
					_ = d.Reject(false)
					continue
				}
				select {
				case out <- req:
					_ = d.Ack(false)
				case <-ctx.Done():
					_ = d.Nack(false, true)
					return
				}
			}
		}
	}()
	return out, nil
}

func decodeRequest(body []byte, correlationID string) (entity.TransactionRequest, error) {
	var req entity.TransactionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("decode transaction request: %w", err)
	}
	if req.RequestID == "" {
		req.RequestID = correlationID
	}
	EnsureRequestID(&req)
	return req, nil
}

func (t *AMQPTransport) Respond(_ context.Context, resp entity.TransactionResponse) error {
	return t.publish(ResponseRoutingKey, resp.RequestID, resp)
}

// Submit publishes a request to the exchange, as a UI would.
func (t *AMQPTransport) Submit(_ context.Context, req entity.TransactionRequest) (string, error) {
	EnsureRequestID(&req)
	return req.RequestID, t.publish(RequestRoutingKey, req.RequestID, req)
}

func (t *AMQPTransport) publish(key, correlationID string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	t.pubMu.Lock()
	defer t.pubMu.Unlock()
	err = t.ch.Publish(t.exchange, key, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		MessageId:     uuid.NewString(),
		DeliveryMode:  amqp.Persistent,
		Body:          body,
	})
	if err != nil {
		t.logger.Error("Failed to publish", zap.String("routingKey", key), zap.Error(err))
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

func (t *AMQPTransport) Close() error {
	if t.ch != nil {
		if err := t.ch.Close(); err != nil {
			t.logger.Warn("Error closing amqp channel", zap.Error(err))
		}
	}
	return t.conn.Close()
}
