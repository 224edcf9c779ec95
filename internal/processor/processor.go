package processor

import (
	"context"
	"errors"
	"path"
	"strings"

	api "github.com/weak-head/bin2hex64/api/v1"
	"github.com/weak-head/bin2hex64/internal/logger"
	"github.com/weak-head/bin2hex64/internal/storage"
)

var (
	// ErrNoConverterProvided happens when converter is not provided.
	ErrNoConverterProvided = errors.New("no converter provided")

	// ErrNoStorageProvided happens when storage is not provided.
	ErrNoStorageProvided = errors.New("no storage provided")

	// ErrNoSourceProvided happens when the request has no source location.
	ErrNoSourceProvided = errors.New("no source location provided")
)

const (
	contentTypeHex = "text/plain"

	imageExtension = ".hex"
)

// ProcessorConfig controls where images land and whether they are read back.
type ProcessorConfig struct {
	// DestinationBucket receives the images of requests without a destination.
	DestinationBucket string `yaml:"destinationBucket"`

	// Verify reads every stored image back and checks it against the binary.
	Verify bool `yaml:"verify"`
}

// Config is the processor section of the configuration file
// together with the object storage it reads from and writes to.
type Config struct {
	Processor ProcessorConfig       `yaml:"processor"`
	Storage   storage.StorageConfig `yaml:"storage"`
}

// Converter is the interface that wraps the basic Convert method.
//
// Convert encodes the binary and returns the hex image.
// Convert must return a non-nil error if convertion of the binary has failed.
type Converter interface {
	Convert(ctx context.Context, from []byte) (to []byte, err error)
}

// Storage is the interface that wraps the Store and Retrieve methods.
//
// Store writes the whole object to the location, replacing any previous content.
// Retrieve returns the whole object stored at the location.
// Both must return a non-nil error if the location is unreachable.
type Storage interface {
	Store(ctx context.Context, loc *api.Location, objectBytes []byte, contentType string) error
	Retrieve(ctx context.Context, loc *api.Location) ([]byte, error)
}

// processor is a wrapper over the converter that interacts
// with the provided storage to retrieve binaries and store
// the hex images.
type processor struct {
	config ProcessorConfig

	converter Converter
	storage   Storage

	log logger.Log
}

// NewProcessor creates a new binary processor.
// It returns an error if the creation failed.
func NewProcessor(
	config ProcessorConfig,
	converter Converter,
	storage Storage,
	log logger.Log,
) (*processor, error) {
	if converter == nil {
		return nil, ErrNoConverterProvided
	}

	if storage == nil {
		return nil, ErrNoStorageProvided
	}

	return &processor{
		config:    config,
		converter: converter,
		storage:   storage,
		log:       log.WithField(logger.FieldPackage, "processor"),
	}, nil
}

// Process retrieves the binary from the storage, converts it
// using the given converter and stores the hex image back to the storage.
// Process returns an error in case if any of the steps has failed.
func (p *processor) Process(ctx context.Context, req *api.ConvertRequest) (*api.ConvertedImage, error) {
	if req.Source == nil {
		return nil, ErrNoSourceProvided
	}

	log := p.log.WithFields(logger.Fields{
		logger.FieldFunction: "processor.Process",
		"request":            req.RequestId,
	})
	log.Debug("Processing a new binary.")

	binary, err := p.storage.Retrieve(ctx, req.Source)
	if err != nil {
		log.Error(err, "Failed to retrieve the binary from the storage.")
		return nil, err
	}

	image, err := p.converter.Convert(ctx, binary)
	if err != nil {
		log.Error(err, "Failed to convert the binary.")
		return nil, err
	}

	dest := p.destination(req)
	if err := p.storage.Store(ctx, dest, image, contentTypeHex); err != nil {
		log.Error(err, "Failed to store the hex image.")
		return nil, err
	}

	if p.config.Verify {
		stored, err := p.storage.Retrieve(ctx, dest)
		if err != nil {
			log.Error(err, "Failed to retrieve the hex image for verification.")
			return nil, err
		}
		if err := Verify(binary, stored); err != nil {
			log.Error(err, "Failed to verify the hex image.")
			return nil, err
		}
		log.Debug("Hex image has been verified.")
	}

	log.Debug("Binary has been processed.")
	return &api.ConvertedImage{
		RequestId: req.RequestId,
		Source: &api.Location{
			Kind:       req.Source.Kind,
			Bucket:     req.Source.Bucket,
			ObjectName: req.Source.ObjectName,
		},
		Image:   dest,
		Bytes:   uint64(len(binary)),
		Padding: uint32(Padding(len(binary))),
		Words:   uint64(WordCount(len(binary))),
	}, nil
}

// destination returns the requested image location or
// the default one in the destination bucket.
func (p *processor) destination(req *api.ConvertRequest) *api.Location {
	if req.Destination != nil {
		return &api.Location{
			Kind:       req.Destination.Kind,
			Bucket:     req.Destination.Bucket,
			ObjectName: req.Destination.ObjectName,
		}
	}
	return &api.Location{
		Kind:       req.Source.Kind,
		Bucket:     p.config.DestinationBucket,
		ObjectName: getImageObjectName(req),
	}
}

func getImageObjectName(req *api.ConvertRequest) string {
	name := req.Source.ObjectName
	return strings.TrimSuffix(name, path.Ext(name)) + imageExtension
}
