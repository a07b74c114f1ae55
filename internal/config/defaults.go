package config

import "time"

const defaultPort = 8080

const defaultLogLevel = "info"

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "deliveries",
}

var defaultKafka = Kafka{
	GroupID:            "service-delivery",
	OrdersTopic:        "orders.events",
	NotificationsTopic: "deliveries.notifications",
}

var defaultRedis = Redis{
	TTL: 30 * time.Second,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       20,
	Burst:      40,
	TTL:        5 * time.Minute,
	MaxBuckets: 10000,
}

var defaultPprof = PprofConfig{
	Addr: "127.0.0.1:6060",
}

var defaultDelivery = Delivery{
	OperationTimeout:     3 * time.Second,
	OverdueSweepInterval: time.Minute,
	IntentRelayInterval:  15 * time.Second,
	IntentRelayBatch:     100,
	Location:             time.UTC,
}

var defaultBackend = Backend{
	URL:         "http://localhost:8080",
	Timeout:     5 * time.Second,
	MaxAttempts: 3,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    time.Second,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default Kafka settings (no brokers).
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultRedis returns the default cache settings (no address).
func DefaultRedis() Redis {
	return defaultRedis
}

// DefaultRateLimit returns the default rate limit settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}

// DefaultPprof returns the default debug server settings.
func DefaultPprof() PprofConfig {
	return defaultPprof
}

// DefaultDelivery returns the default delivery settings.
func DefaultDelivery() Delivery {
	return defaultDelivery
}

// DefaultBackend returns the default REST client settings.
func DefaultBackend() Backend {
	return defaultBackend
}
