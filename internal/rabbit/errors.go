package rabbit

import "fmt"

// TransportError is returned whenever a management API call fails on the
// wire: connection refused, timeout, or a non-2xx status from the broker.
// It always names the resource the call was about.
type TransportError struct {
	Kind   string // resource kind: "vhost", "exchange", "queue", "aliveness"
	Name   string
	Status int // non-zero when the broker answered with a non-2xx status
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %q: management API returned status %d", e.Kind, e.Name, e.Status)
	}
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFound reports whether the broker answered 404 for the resource.
func (e *TransportError) NotFound() bool { return e.Status == 404 }

// UnsupportedOperationError is returned by Update on every resource kind.
// RabbitMQ has no rename (or retype) primitive; the operation exists on the
// Manager contract for symmetry only.
type UnsupportedOperationError struct {
	Kind string
	What string // "name" or "name or type"
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("updating %s %s is not supported by RabbitMQ", e.Kind, e.What)
}

// ConnectionError is returned when a Publisher cannot establish its AMQP
// connection or derive a channel. It is fatal to construction.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("amqp connection to %s failed: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// PublishError is returned when a publish fails on an established channel.
// The connection is left as-is; no reconnect is attempted.
type PublishError struct {
	Exchange string
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to exchange %q failed: %v", e.Exchange, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
