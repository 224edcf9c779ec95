package metrics

// Config
type Config struct {
	// Addr is the listen address of the metrics endpoint.
	Addr string `yaml:"addr"`
}

// ServiceInfo labels the reported metrics.
type ServiceInfo struct {
	Engine string `yaml:"engine"`
}
