package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"rabbit-admin/internal/rabbit"
)

// Topology is the broker state declared at startup.
type Topology struct {
	VHosts    []string
	Exchanges map[string]string // name -> type
	Queues    []string
}

// LoadTopologyFromEnv parses simple env-based topology configuration.
// RABBITMQ_VHOSTS=v1,v2
// RABBITMQ_EXCHANGES=name:type,name2:type2
// RABBITMQ_QUEUES=q1,q2
func LoadTopologyFromEnv() Topology {
	top := Topology{
		Exchanges: map[string]string{},
	}
	if v := os.Getenv("RABBITMQ_VHOSTS"); v != "" {
		for _, h := range strings.Split(v, ",") {
			if h = strings.TrimSpace(h); h != "" {
				top.VHosts = append(top.VHosts, h)
			}
		}
	}
	if v := os.Getenv("RABBITMQ_EXCHANGES"); v != "" {
		for _, part := range strings.Split(v, ",") {
			parts := strings.SplitN(strings.TrimSpace(part), ":", 2)
			if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
				top.Exchanges[parts[0]] = parts[1]
			}
		}
	}
	if v := os.Getenv("RABBITMQ_QUEUES"); v != "" {
		for _, q := range strings.Split(v, ",") {
			if q = strings.TrimSpace(q); q != "" {
				top.Queues = append(top.Queues, q)
			}
		}
	}
	return top
}

// Apply declares the topology on the broker through the management API.
// Creation is PUT-idempotent, so re-running at every startup is safe.
func (t Topology) Apply(client *rabbit.Client, vhost string) error {
	vhosts := rabbit.NewVHostManager(client)
	for _, v := range t.VHosts {
		if _, err := vhosts.Create(v, rabbit.Attributes{}); err != nil {
			return fmt.Errorf("declare vhost: %w", err)
		}
	}
	exchanges := rabbit.NewExchangeManager(client, vhost)
	for name, kind := range t.Exchanges {
		if _, err := exchanges.Create(name, rabbit.Attributes{Type: kind, Durable: true}); err != nil {
			return fmt.Errorf("declare exchange: %w", err)
		}
	}
	queues := rabbit.NewQueueManager(client, vhost)
	for _, q := range t.Queues {
		if _, err := queues.Create(q, rabbit.Attributes{Durable: true}); err != nil {
			return fmt.Errorf("declare queue: %w", err)
		}
	}
	return nil
}
