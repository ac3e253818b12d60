package rabbit

import "net/http"

// ExchangeManager manages exchanges within one vhost via
// /exchanges/{vhost}/{name}.
type ExchangeManager struct {
	c     *Client
	vhost string
}

func NewExchangeManager(c *Client, vhost string) *ExchangeManager {
	return &ExchangeManager{c: c, vhost: vhost}
}

func (m *ExchangeManager) path(name string) string {
	return "/exchanges/" + escapeSegment(m.vhost) + "/" + escapeSegment(name)
}

// Create declares the exchange with attrs.Type and attrs.Durable. Repeating
// the call with identical attributes succeeds; changing them makes the
// broker answer 400.
func (m *ExchangeManager) Create(name string, attrs Attributes) (*Outcome, error) {
	body := map[string]any{"type": attrs.Type, "durable": attrs.Durable}
	return m.c.do(http.MethodPut, m.path(name), "exchange", name, body)
}

func (m *ExchangeManager) Read(name string) (*Outcome, error) {
	return m.c.do(http.MethodGet, m.path(name), "exchange", name, nil)
}

// Update always fails: RabbitMQ cannot rename or retype an exchange.
func (m *ExchangeManager) Update(string, Attributes) (*Outcome, error) {
	return nil, &UnsupportedOperationError{Kind: "exchange", What: "name or type"}
}

func (m *ExchangeManager) Delete(name string) (*Outcome, error) {
	return m.c.do(http.MethodDelete, m.path(name), "exchange", name, nil)
}
