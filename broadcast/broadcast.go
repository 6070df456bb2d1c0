// Package broadcast mirrors the manager's outbound sentence and
// message traffic onto a RabbitMQ fanout exchange, so other processes
// on the network (loggers, dashboards, relays) can observe it without
// coupling to the manager directly.
//
// The Dial/Channel/ExchangeDeclare/Publish shape, and declaring a
// durable-less fanout exchange up front, is grounded on the reference
// pack's RabbitMQ publisher (billglover-go-adsb-console/main.go),
// generalised to reconnect via the channel's own NotifyClose signal
// instead of assuming the connection outlives the process.
package broadcast

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"aistrack/logging"
	"aistrack/target"
)

const exchangeName = "aistrack-fanout"

// SentenceEvent is published for every outbound NMEA sentence the
// manager emits.
type SentenceEvent struct {
	Sentence  string    `json:"sentence"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageEvent is published for every safety-related message, received
// or internally generated.
type MessageEvent struct {
	Received    bool        `json:"received"`
	Source      target.MMSI `json:"source"`
	Destination target.MMSI `json:"destination"`
	Text        string      `json:"text"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Sink publishes manager events to a RabbitMQ fanout exchange,
// reconnecting automatically if the underlying connection drops.
type Sink struct {
	url string
	log *logging.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewSink dials url (an amqp:// URI) and declares the fanout exchange.
func NewSink(url string) (*Sink, error) {
	s := &Sink{url: url, log: logging.Component("broadcast")}
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sink) connect() error {
	conn, err := amqp.Dial(s.url)
	if err != nil {
		return fmt.Errorf("broadcast: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("broadcast: channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", false, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("broadcast: declare exchange: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.ch = ch
	s.mu.Unlock()

	closed := make(chan *amqp.Error, 1)
	ch.NotifyClose(closed)
	go s.watchForClose(closed)

	return nil
}

func (s *Sink) watchForClose(closed chan *amqp.Error) {
	err, ok := <-closed
	if !ok {
		return
	}
	s.log.Warn("broadcast channel closed, reconnecting", "err", err)
	for {
		if reconnectErr := s.connect(); reconnectErr == nil {
			return
		}
		time.Sleep(time.Second)
	}
}

func (s *Sink) publish(body []byte) {
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	if ch == nil {
		return
	}

	err := ch.Publish(exchangeName, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Transient,
		Timestamp:    time.Now(),
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		s.log.Warn("failed to publish to fanout exchange", "err", err)
	}
}

// OnOutboundSentence is a manager.OutboundSentenceHandler: it mirrors
// every sentence the manager emits onto the fanout exchange.
func (s *Sink) OnOutboundSentence(sentence string) {
	body, err := json.Marshal(SentenceEvent{Sentence: sentence, Timestamp: time.Now()})
	if err != nil {
		return
	}
	s.publish(body)
}

// OnMessage is a manager.MessageHandler: it mirrors every safety
// message event onto the fanout exchange.
func (s *Sink) OnMessage(received bool, source, destination target.MMSI, text string) {
	body, err := json.Marshal(MessageEvent{
		Received:    received,
		Source:      source,
		Destination: destination,
		Text:        text,
		Timestamp:   time.Now(),
	})
	if err != nil {
		return
	}
	s.publish(body)
}

// Close releases the channel and connection.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil {
		s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
