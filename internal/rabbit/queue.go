package rabbit

import "net/http"

// QueueManager manages queues within one vhost via /queues/{vhost}/{name}.
type QueueManager struct {
	c     *Client
	vhost string
}

func NewQueueManager(c *Client, vhost string) *QueueManager {
	return &QueueManager{c: c, vhost: vhost}
}

func (m *QueueManager) path(name string) string {
	return "/queues/" + escapeSegment(m.vhost) + "/" + escapeSegment(name)
}

// Create declares the queue with attrs.Durable.
func (m *QueueManager) Create(name string, attrs Attributes) (*Outcome, error) {
	body := map[string]any{"durable": attrs.Durable}
	return m.c.do(http.MethodPut, m.path(name), "queue", name, body)
}

func (m *QueueManager) Read(name string) (*Outcome, error) {
	return m.c.do(http.MethodGet, m.path(name), "queue", name, nil)
}

// Update always fails: RabbitMQ cannot rename a queue.
func (m *QueueManager) Update(string, Attributes) (*Outcome, error) {
	return nil, &UnsupportedOperationError{Kind: "queue", What: "name"}
}

func (m *QueueManager) Delete(name string) (*Outcome, error) {
	return m.c.do(http.MethodDelete, m.path(name), "queue", name, nil)
}
