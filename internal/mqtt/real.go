package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// bufferCapacity bounds the messages waiting for delivery.
	bufferCapacity = 256

	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 1000 // ms
)

// RealPublisher publishes to an actual MQTT broker. Publish and
// PublishSystem only queue the message; a single sender goroutine delivers
// the queue in order whenever the connection is up, so the caller never
// waits on the broker. Messages queued while disconnected are replayed on
// reconnect.
type RealPublisher struct {
	client paho.Client
	topics Topics
	logger *zap.Logger

	mu  sync.Mutex
	buf *ringBuffer

	wake      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// ClientID returns a broker client id unique to this process.
func ClientID() string {
	return "counter-console-" + uuid.NewString()[:8]
}

// NewRealPublisher starts connecting to broker in the background and
// returns immediately; the console never waits for the network.
func NewRealPublisher(broker string, topics Topics, logger *zap.Logger) *RealPublisher {
	p := newPublisher(topics, logger)

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(ClientID()).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(topics.System, WillPayload(), 1, true).
		SetOnConnectHandler(func(paho.Client) {
			logger.Info("mqtt connected", zap.String("broker", broker))
			p.notify()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn("mqtt connection lost", zap.Error(err))
		})

	p.client = paho.NewClient(opts)
	go p.run()
	p.client.Connect()
	return p
}

// newPublisherWithClient wires an existing client. Used by tests.
func newPublisherWithClient(client paho.Client, topics Topics, logger *zap.Logger) *RealPublisher {
	p := newPublisher(topics, logger)
	p.client = client
	go p.run()
	return p
}

func newPublisher(topics Topics, logger *zap.Logger) *RealPublisher {
	return &RealPublisher{
		topics:  topics,
		logger:  logger,
		buf:     newRingBuffer(bufferCapacity, logger),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Publish queues a press event for the broker. Delivery failures are
// logged by the sender, not returned.
func (p *RealPublisher) Publish(event PressEvent) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	p.enqueue(bufferedMsg{topic: p.topics.Events, payload: payload})
	return nil
}

// PublishSystem queues a system lifecycle event for the broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) - lifecycle events must not be lost
	p.enqueue(bufferedMsg{topic: p.topics.System, payload: payload, qos: 1, retained: event.Retained})
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages not yet handed to the broker.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close delivers what is still queued if the broker is reachable, stops
// the sender and disconnects. Messages that could not be sent are dropped.
func (p *RealPublisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	<-p.stopped

	if n := p.Buffered(); n > 0 {
		p.logger.Warn("mqtt closing with undelivered messages", zap.Int("buffered", n))
	}
	p.client.Disconnect(disconnectQuiesce)
	return nil
}

func (p *RealPublisher) enqueue(msg bufferedMsg) {
	p.mu.Lock()
	p.buf.push(msg)
	p.mu.Unlock()
	p.notify()
}

// notify wakes the sender without blocking. One pending wake covers any
// number of queued messages.
func (p *RealPublisher) notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *RealPublisher) run() {
	defer close(p.stopped)
	for {
		select {
		case <-p.wake:
			p.flush()
		case <-p.done:
			p.flush()
			return
		}
	}
}

// flush sends the queue in order. It leaves the queue untouched while the
// connection is down; the on-connect handler wakes the sender again.
func (p *RealPublisher) flush() {
	if !p.client.IsConnectionOpen() {
		return
	}

	p.mu.Lock()
	msgs := p.buf.drainAll()
	p.mu.Unlock()

	if len(msgs) > 1 {
		p.logger.Debug("mqtt sending queued messages", zap.Int("count", len(msgs)))
	}
	for _, msg := range msgs {
		if err := p.publish(msg); err != nil {
			p.logger.Warn("mqtt publish failed", zap.String("topic", msg.topic), zap.Error(err))
		}
	}
}

func (p *RealPublisher) publish(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.topic, err)
	}
	return nil
}
