package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type LookupFunc func(key string) (string, bool)

// Config is the whole environment surface of the service. Broker defaults
// match a stock RabbitMQ install (guest/guest, 15672/5672, TLS variants
// 15671/5671).
type Config struct {
	AppHost string
	AppPort string

	PostgresURI string

	HTTPAPIHost    string
	HTTPAPIPort    int
	HTTPAPITLSPort int
	HTTPAPIUseTLS  bool

	AMQPHost    string
	AMQPPort    int
	AMQPTLSPort int
	AMQPUseTLS  bool

	DefaultVHost string

	SuperUsername string
	SuperPassword string

	Origins []string
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

// ManagementBaseURL is the management API root, scheme and port selected by
// the TLS flag.
func (c Config) ManagementBaseURL() string {
	scheme, port := "http", c.HTTPAPIPort
	if c.HTTPAPIUseTLS {
		scheme, port = "https", c.HTTPAPITLSPort
	}
	return fmt.Sprintf("%s://%s:%d/api", scheme, c.HTTPAPIHost, port)
}

// AMQPAddr returns the messaging host and port, selected by the TLS flag.
func (c Config) AMQPAddr() (host string, port int, tls bool) {
	port = c.AMQPPort
	if c.AMQPUseTLS {
		port = c.AMQPTLSPort
	}
	return c.AMQPHost, port, c.AMQPUseTLS
}

func LoadFromEnv(lookup LookupFunc) (Config, error) {
	cfg := Config{}

	var ok bool
	if cfg.AppHost, ok = lookup("APP_HOST"); !ok || cfg.AppHost == "" {
		return Config{}, errors.New("APP_HOST is required")
	}
	if cfg.AppPort, ok = lookup("APP_PORT"); !ok || cfg.AppPort == "" {
		return Config{}, errors.New("APP_PORT is required")
	}

	cfg.PostgresURI = getString(lookup, "POSTGRES_URI", "")

	cfg.HTTPAPIHost = getString(lookup, "RABBITMQ_HTTP_API_HOST", "localhost")
	cfg.AMQPHost = getString(lookup, "RABBITMQ_AMQP_HOST", "localhost")

	var err error
	if cfg.HTTPAPIPort, err = getInt(lookup, "RABBITMQ_HTTP_API_PORT", 15672); err != nil {
		return Config{}, err
	}
	if cfg.HTTPAPITLSPort, err = getInt(lookup, "RABBITMQ_HTTP_API_TLS_PORT", 15671); err != nil {
		return Config{}, err
	}
	if cfg.AMQPPort, err = getInt(lookup, "RABBITMQ_AMQP_PORT", 5672); err != nil {
		return Config{}, err
	}
	if cfg.AMQPTLSPort, err = getInt(lookup, "RABBITMQ_AMQP_TLS_PORT", 5671); err != nil {
		return Config{}, err
	}
	cfg.HTTPAPIUseTLS = getBool(lookup, "RABBITMQ_HTTP_API_USE_TLS")
	cfg.AMQPUseTLS = getBool(lookup, "RABBITMQ_AMQP_USE_TLS")

	// The default vhost may be given either literally or as its
	// percent-encoded token; it is held decoded and encoded at the wire.
	cfg.DefaultVHost = getString(lookup, "RABBITMQ_DEFAULT_VHOST", "/")
	if strings.EqualFold(cfg.DefaultVHost, "%2f") {
		cfg.DefaultVHost = "/"
	}

	cfg.SuperUsername = getString(lookup, "RABBITMQ_SUPERADMIN_USERNAME", "guest")
	cfg.SuperPassword = getString(lookup, "RABBITMQ_SUPERADMIN_PASSWORD", "guest")

	for _, o := range strings.Split(getString(lookup, "ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.Origins = append(cfg.Origins, o)
		}
	}

	return cfg, nil
}

func getString(lookup LookupFunc, key, fallback string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(lookup LookupFunc, key string, fallback int) (int, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getBool(lookup LookupFunc, key string) bool {
	v, ok := lookup(key)
	return ok && strings.EqualFold(v, "true")
}
