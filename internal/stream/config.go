package stream

// TopicConfig
type TopicConfig struct {
	Topic             string `yaml:"topic"`
	CreateIfNotExist  bool   `yaml:"createIfNotExist"`
	NumPartitions     int    `yaml:"numPartitions"`
	ReplicationFactor int    `yaml:"replicationFactor"`
}

// ReaderConfig describes the stream of conversion requests.
type ReaderConfig struct {
	TopicConfig `yaml:",inline"`

	Brokers  []string `yaml:"brokers"`
	GroupID  string   `yaml:"groupId"`
	MinBytes int      `yaml:"minBytes"`
	MaxBytes int      `yaml:"maxBytes"`
}

// WriterConfig describes the stream of converted images.
type WriterConfig struct {
	TopicConfig `yaml:",inline"`

	Addr     string `yaml:"addr"`
	Balancer string `yaml:"balancer"`
}
