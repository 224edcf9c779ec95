package stream

import (
	"errors"
	"net"
	"strconv"

	kafka "github.com/segmentio/kafka-go"
)

var (
	// ErrNoBrokers happens when no broker address is configured.
	ErrNoBrokers = errors.New("no kafka brokers provided")

	// ErrNoTopic happens when the topic is not configured.
	ErrNoTopic = errors.New("no kafka topic provided")
)

// NewReader creates a consumer group reader of the conversion requests.
func NewReader(config ReaderConfig) (*kafka.Reader, error) {
	if len(config.Brokers) == 0 || config.Brokers[0] == "" {
		return nil, ErrNoBrokers
	}

	if config.Topic == "" {
		return nil, ErrNoTopic
	}

	if err := createTopic(config.Brokers[0], config.TopicConfig); err != nil {
		return nil, err
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  config.Brokers,
		GroupID:  config.GroupID,
		Topic:    config.Topic,
		MinBytes: config.MinBytes,
		MaxBytes: config.MaxBytes,
	}), nil
}

// NewWriter creates a writer of the converted images.
func NewWriter(config WriterConfig) (*kafka.Writer, error) {
	if config.Addr == "" {
		return nil, ErrNoBrokers
	}

	if config.Topic == "" {
		return nil, ErrNoTopic
	}

	if err := createTopic(config.Addr, config.TopicConfig); err != nil {
		return nil, err
	}

	return &kafka.Writer{
		Addr:     kafka.TCP(config.Addr),
		Topic:    config.Topic,
		Balancer: createBalancer(config.Balancer),
	}, nil
}

// createTopic
func createTopic(addr string, config TopicConfig) error {
	if !config.CreateIfNotExist {
		return nil
	}

	// Connect to some node
	conn, err := kafka.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Get the current controller
	controller, err := conn.Controller()
	if err != nil {
		return err
	}

	// Connect to the current controller
	controllerConn, err := kafka.Dial(
		"tcp",
		net.JoinHostPort(
			controller.Host,
			strconv.Itoa(controller.Port),
		),
	)
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	numPartitions := config.NumPartitions
	if numPartitions <= 0 {
		numPartitions = 1
	}

	replicationFactor := config.ReplicationFactor
	if replicationFactor <= 0 {
		replicationFactor = 1
	}

	topicConfigs := []kafka.TopicConfig{{
		Topic:             config.Topic,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	}}

	// Existing topics are reported as an error
	err = controllerConn.CreateTopics(topicConfigs...)
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return err
	}

	return nil
}

// createBalancer
func createBalancer(balancer string) kafka.Balancer {
	switch balancer {

	// Classical round robin
	case "roundrobin":
		return &kafka.RoundRobin{}

	// Partition that received the least bytes
	case "leastbytes":
		return &kafka.LeastBytes{}

	// FNV-1a
	case "hash":
		return &kafka.Hash{}

	// CRC32 hash
	case "crc32":
		return &kafka.CRC32Balancer{}

	// Murmur2 hash
	case "murmur2":
		return &kafka.Murmur2Balancer{}

	default:
		return &kafka.LeastBytes{}
	}
}
