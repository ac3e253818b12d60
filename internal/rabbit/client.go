// Package rabbit is the RabbitMQ abstraction layer: resource lifecycle over
// the HTTP management API (vhosts, exchanges, queues) and message publishing
// over AMQP, behind one credential pair and a uniform error taxonomy.
package rabbit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"rabbit-admin/internal/logging"
)

// DefaultTimeout bounds every management API call.
const DefaultTimeout = 10 * time.Second

// Credentials is the broker superuser pair shared by all administrative
// calls and publishers. It is read-only after construction.
type Credentials struct {
	Username string
	Password string
}

// Outcome is the result of a successful management API call: the HTTP
// status and the decoded JSON body. Body is nil when the broker sent no
// content (the usual case for PUT and DELETE).
type Outcome struct {
	Status int
	Body   map[string]any
}

// Client issues authenticated requests against the management API base URL
// and normalizes every transport failure into a *TransportError. It holds
// no mutable state and is safe for concurrent use.
type Client struct {
	baseURL string
	creds   Credentials
	httpc   *http.Client
	log     zerolog.Logger
}

// NewClient builds a management API client for baseURL, e.g.
// "http://localhost:15672/api". A zero timeout falls back to DefaultTimeout.
func NewClient(baseURL string, creds Credentials, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		httpc:   &http.Client{Timeout: timeout},
		log:     logging.New("rabbit"),
	}
}

// do issues one request and returns either an Outcome or a *TransportError.
// kind and name identify the resource for error reporting; body, when
// non-nil, is marshalled as the JSON request body.
func (c *Client) do(method, path, kind, name string, body any) (*Outcome, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Kind: kind, Name: name, Err: err}
		}
		rdr = bytes.NewReader(b)
	}

	c.log.Debug().Str("method", method).Str("path", path).Str(kind, name).Msg("management API call")

	req, err := http.NewRequest(method, c.baseURL+path, rdr)
	if err != nil {
		return nil, &TransportError{Kind: kind, Name: name, Err: err}
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str(kind, name).Msg("management API call failed")
		return nil, &TransportError{Kind: kind, Name: name, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Kind: kind, Name: name, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		terr := &TransportError{Kind: kind, Name: name, Status: resp.StatusCode}
		c.log.Error().Int("status", resp.StatusCode).Str(kind, name).Msg("management API call failed")
		return nil, terr
	}

	out := &Outcome{Status: resp.StatusCode}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out.Body); err != nil {
			return nil, &TransportError{Kind: kind, Name: name, Err: fmt.Errorf("decoding response body: %w", err)}
		}
	}
	return out, nil
}

// Aliveness runs the broker's aliveness test on a vhost. It declares a test
// queue, publishes and consumes one message, so a 200 means the broker is
// fully functional for that vhost.
func (c *Client) Aliveness(vhost string) (*Outcome, error) {
	return c.do(http.MethodGet, "/aliveness-test/"+escapeSegment(vhost), "aliveness", vhost, nil)
}

// escapeSegment percent-encodes a path segment for the management API.
// The default vhost "/" becomes the reserved %2F token.
func escapeSegment(s string) string {
	return url.PathEscape(s)
}
