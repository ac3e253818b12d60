package rabbit

import "net/http"

// VHostManager manages virtual hosts via /vhosts/{name}.
type VHostManager struct {
	c *Client
}

func NewVHostManager(c *Client) *VHostManager {
	return &VHostManager{c: c}
}

func (m *VHostManager) path(name string) string {
	return "/vhosts/" + escapeSegment(name)
}

// Create declares the vhost. Attributes are unused; a vhost has no
// creation parameters in this layer.
func (m *VHostManager) Create(name string, _ Attributes) (*Outcome, error) {
	return m.c.do(http.MethodPut, m.path(name), "vhost", name, nil)
}

func (m *VHostManager) Read(name string) (*Outcome, error) {
	return m.c.do(http.MethodGet, m.path(name), "vhost", name, nil)
}

// Update always fails: RabbitMQ cannot rename a vhost.
func (m *VHostManager) Update(string, Attributes) (*Outcome, error) {
	return nil, &UnsupportedOperationError{Kind: "vhost", What: "name"}
}

func (m *VHostManager) Delete(name string) (*Outcome, error) {
	return m.c.do(http.MethodDelete, m.path(name), "vhost", name, nil)
}
