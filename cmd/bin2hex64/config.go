package main

import (
	"errors"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	api "github.com/weak-head/bin2hex64/api/v1"
	"github.com/weak-head/bin2hex64/internal/logger"
	"github.com/weak-head/bin2hex64/internal/metrics"
	"github.com/weak-head/bin2hex64/internal/processor"
	"github.com/weak-head/bin2hex64/internal/stream"
)

const (
	minioScheme = "minio://"
)

var (
	// ErrInvalidLocation happens when a minio location has no bucket or object.
	ErrInvalidLocation = errors.New("invalid location, expected minio://bucket/object")

	// ErrEmptyLocation happens when the location argument is empty.
	ErrEmptyLocation = errors.New("empty location")
)

type backoffConfig struct {
	Initial time.Duration `yaml:"initial"`
	Max     time.Duration `yaml:"max"`
}

type cfg struct {
	Log       logger.Config       `yaml:"log"`
	Service   metrics.ServiceInfo `yaml:"service"`
	Processor processor.Config    `yaml:",inline"`

	Pipelines int                 `yaml:"pipelines"`
	Backoff   backoffConfig       `yaml:"backoff"`
	Reader    stream.ReaderConfig `yaml:"reader"`
	Writer    stream.WriterConfig `yaml:"writer"`
	Metrics   metrics.Config      `yaml:"metrics"`
}

func defaultConfig() cfg {
	return cfg{
		Log: logger.Config{
			Level:  "info",
			Format: logger.FormatText,
		},
		Service: metrics.ServiceInfo{
			Engine: "bin2hex64",
		},
		Pipelines: 1,
		Backoff: backoffConfig{
			Initial: 500 * time.Millisecond,
			Max:     30 * time.Second,
		},
		Reader: stream.ReaderConfig{
			GroupID:  "bin2hex64",
			MinBytes: 1,
			MaxBytes: 10e6,
		},
		Writer: stream.WriterConfig{
			Balancer: "hash",
		},
		Metrics: metrics.Config{
			Addr: ":9090",
		},
	}
}

// load overlays the YAML file on top of the current configuration.
func (c *cfg) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// parseLocation maps minio://bucket/object to the object storage
// and anything else to a local path.
func parseLocation(arg string) (*api.Location, error) {
	if arg == "" {
		return nil, ErrEmptyLocation
	}

	if !strings.HasPrefix(arg, minioScheme) {
		return &api.Location{
			Kind:       api.Location_LOCAL,
			ObjectName: arg,
		}, nil
	}

	parts := strings.SplitN(strings.TrimPrefix(arg, minioScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrInvalidLocation
	}

	return &api.Location{
		Kind:       api.Location_MINIO,
		Bucket:     parts[0],
		ObjectName: parts[1],
	}, nil
}
