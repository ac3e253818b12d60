package rabbit

import (
	"fmt"
	"runtime"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"rabbit-admin/internal/logging"
)

// PublisherConfig names the AMQP endpoint a Publisher connects to. TLS
// selects the amqps scheme; the caller picks the matching port.
type PublisherConfig struct {
	Host  string
	Port  int
	TLS   bool
	VHost string
	Creds Credentials
}

func (c PublisherConfig) uri() amqp.URI {
	scheme := "amqp"
	if c.TLS {
		scheme = "amqps"
	}
	return amqp.URI{
		Scheme:   scheme,
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Creds.Username,
		Password: c.Creds.Password,
		Vhost:    c.VHost,
	}
}

// Publisher owns one AMQP connection and one channel derived from it,
// scoped to a single vhost. It is created connected and must be closed by
// the caller on every exit path; a finalizer releases the socket as a last
// resort if the Publisher is abandoned.
//
// The channel is not safe for concurrent Publish calls. Confine a Publisher
// to one goroutine or serialize access externally.
type Publisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	vhost  string
	closed bool
	log    zerolog.Logger
}

// NewPublisher dials the broker and derives a channel. Any failure is
// returned as a *ConnectionError and the Publisher does not exist: there is
// no disconnected-but-constructed state.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	uri := cfg.uri()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := amqp.Dial(uri.String())
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Err: err}
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Addr: addr, Err: err}
	}

	p := &Publisher{
		conn:  conn,
		ch:    ch,
		vhost: cfg.VHost,
		log:   logging.New("publisher"),
	}
	// Leak guard only; Close remains the contract.
	runtime.SetFinalizer(p, func(p *Publisher) { _ = p.Close() })
	p.log.Debug().Str("addr", addr).Str("vhost", cfg.VHost).Msg("publisher connected")
	return p, nil
}

// Publish sends body to exchange with routingKey, fire-and-forget: no
// publisher confirms, no reconnect on failure. A fault is reported as a
// *PublishError and leaves the connection untouched.
func (p *Publisher) Publish(exchange, routingKey string, body []byte) error {
	if p.closed {
		return &PublishError{Exchange: exchange, Err: amqp.ErrClosed}
	}
	err := p.ch.Publish(exchange, routingKey, false, false, amqp.Publishing{
		Body: body,
	})
	if err != nil {
		p.log.Error().Err(err).Str("exchange", exchange).Msg("publish failed")
		return &PublishError{Exchange: exchange, Err: err}
	}
	return nil
}

// Close releases the channel and connection. Calling Close again on an
// already-closed Publisher returns nil.
func (p *Publisher) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	runtime.SetFinalizer(p, nil)

	if p.ch != nil && !p.ch.IsClosed() {
		_ = p.ch.Close()
	}
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn.Close()
	}
	return nil
}
