package rabbit

// Attributes carries the creation attributes a resource kind understands.
// VHosts ignore it entirely, queues use Durable, exchanges use Type and
// Durable. On Update it names the requested new values, which the broker
// rejects for every kind.
type Attributes struct {
	Name    string // new name, Update only
	Type    string // exchange routing algorithm: fanout, direct, topic, headers
	Durable bool
}

// Manager is the uniform lifecycle contract shared by vhosts, exchanges and
// queues. Create is a PUT and therefore idempotent on the broker side;
// Update always fails with *UnsupportedOperationError and never touches the
// network. Implementations are stateless and safe for concurrent use.
type Manager interface {
	Create(name string, attrs Attributes) (*Outcome, error)
	Read(name string) (*Outcome, error)
	Update(name string, attrs Attributes) (*Outcome, error)
	Delete(name string) (*Outcome, error)
}
