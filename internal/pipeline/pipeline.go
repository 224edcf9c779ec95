package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	proto "github.com/gogo/protobuf/proto"
	kafka "github.com/segmentio/kafka-go"

	api "github.com/weak-head/bin2hex64/api/v1"
	"github.com/weak-head/bin2hex64/internal/logger"
)

const (
	// retryFetchCount defines the number of retries
	// to fetch a message from the reader before giving up.
	retryFetchCount = 3

	// retryProcessCount defines the number of attempts
	// to process a request before it is skipped.
	retryProcessCount = 3

	// retryWriteCount defines the number of retries
	// to write a message to the writer before giving up.
	retryWriteCount = 3

	// retryCommitCount defines the number of retries
	// to commit a message to the reader before giving up.
	retryCommitCount = 3
)

const (
	failureFetch     = "fetch"
	failureUnmarshal = "unmarshal"
	failureProcess   = "process"
	failureMarshal   = "marshal"
	failureWrite     = "write"
	failureCommit    = "commit"
)

var (
	// ErrNoReaderProvided happens when reader is not provided.
	ErrNoReaderProvided = errors.New("no reader provided")

	// ErrNoWriterProvided happens when writer is not provided.
	ErrNoWriterProvided = errors.New("no writer provided")

	// ErrNoSleeperProvided happens when sleeper is not provided.
	ErrNoSleeperProvided = errors.New("no sleeper provided")

	// ErrNoProcessorProvided happens when processor is not provided.
	ErrNoProcessorProvided = errors.New("no processor provided")

	// ErrNoReporterProvided happens when reporter is not provided.
	ErrNoReporterProvided = errors.New("no reporter provided")

	// errSkipped marks a request that is committed without a result.
	errSkipped = errors.New("request skipped")

	// pipelineSeq numbers the pipelines created by the process.
	pipelineSeq uint64
)

// Reader is a transactional message reader.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Writer is an atomic message writer.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Processor converts a binary referenced by the request into a hex image.
type Processor interface {
	Process(ctx context.Context, req *api.ConvertRequest) (*api.ConvertedImage, error)
}

// Sleeper is a routine sleeper with some sleeping strategy
// and ability to reset the strategy state.
// Sleep returns early when ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context)
	Reset()
}

// Reporter is a pipeline status and progress reporter that collects
// and aggregates metrics related to pipeline flow.
type Reporter interface {
	ImageConverted(sourceKind string, seconds float64, image *api.ConvertedImage)
	PipelineFailed(failure string)
}

// Pipeline is a binary conversion pipeline.
type Pipeline struct {
	processor Processor
	reader    Reader
	writer    Writer

	sleeper  Sleeper
	reporter Reporter

	id  string
	log logger.Log
}

// NewPipeline creates and initializes a new binary conversion pipeline.
func NewPipeline(
	reader Reader,
	writer Writer,
	processor Processor,
	sleeper Sleeper,
	reporter Reporter,
	log logger.Log,
) (*Pipeline, error) {
	if reader == nil {
		return nil, ErrNoReaderProvided
	}

	if writer == nil {
		return nil, ErrNoWriterProvided
	}

	if processor == nil {
		return nil, ErrNoProcessorProvided
	}

	if sleeper == nil {
		return nil, ErrNoSleeperProvided
	}

	if reporter == nil {
		return nil, ErrNoReporterProvided
	}

	id := fmt.Sprintf("p_%d", atomic.AddUint64(&pipelineSeq, 1))

	return &Pipeline{
		processor: processor,
		reader:    reader,
		writer:    writer,
		sleeper:   sleeper,
		reporter:  reporter,
		id:        id,
		log: log.WithFields(logger.Fields{
			logger.FieldPackage: "pipeline",
			"pipeline_id":       id,
		}),
	}, nil
}

// Run starts the conversion pipeline,
// that ensures that each request is delivered to the processor at least once.
//
// The conversion request is fetched from the kafka stream and sent to the processor,
// that retrieves the binary from the storage and stores the hex image back.
// The image description is sent down the data pipeline to the writer
// and only then the request is committed.
//
// Requests that could not be decoded, or that still fail after
// retryProcessCount attempts, are committed and skipped.
// Run returns nil once ctx is done, leaving the in-flight request uncommitted.
func (p *Pipeline) Run(ctx context.Context) error {
	log := p.log.WithField(logger.FieldFunction, "Pipeline.Run")
	log.Info("Starting the pipeline.")

	failedFetches := 0
	for {
		if ctx.Err() != nil {
			log.Info("Pipeline has been stopped.")
			return nil
		}

		log.Debug("Fetching the next message from the reader.")
		m, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if isCanceled(ctx, err) {
				continue
			}

			log.Error(err, "Failed to fetch a message from the kafka reader")
			p.reporter.PipelineFailed(failureFetch)

			failedFetches += 1
			if failedFetches >= retryFetchCount {
				log.Errorf(err,
					"Giving up fetching the message. Stopping pipeline because of %d consecutive failed fetches",
					retryFetchCount)
				return err
			}
			p.sleeper.Sleep(ctx)
			continue
		}
		failedFetches = 0
		log.Debug("Fetched a new message")

		msg, err := p.convert(ctx, m)
		switch {
		case err == nil:
			if err := p.write(ctx, msg); err != nil {
				if isCanceled(ctx, err) {
					continue
				}
				return err
			}
		case errors.Is(err, errSkipped):
			// Commit without a result
		default:
			continue
		}

		if ctx.Err() != nil {
			continue
		}

		if err := p.commit(ctx, m); err != nil {
			if isCanceled(ctx, err) {
				continue
			}
			return err
		}

		p.sleeper.Reset()
	}
}

// convert decodes and processes the request and encodes the result.
// It returns errSkipped if the request should be committed without a result
// and the context error if the pipeline is stopping.
func (p *Pipeline) convert(ctx context.Context, m kafka.Message) (kafka.Message, error) {
	log := p.log.WithFields(logger.Fields{
		logger.FieldFunction: "Pipeline.convert",
		"partition":          m.Partition,
		"offset":             m.Offset,
	})

	req := &api.ConvertRequest{}
	if err := proto.Unmarshal(m.Value, req); err != nil {
		log.Error(err, "Failed to decode the conversion request, skipping.")
		p.reporter.PipelineFailed(failureUnmarshal)
		return kafka.Message{}, errSkipped
	}

	var image *api.ConvertedImage
	start := time.Now()
	for attempt := 1; ; attempt++ {
		var err error
		image, err = p.processor.Process(ctx, req)
		if err == nil {
			break
		}

		if ctx.Err() != nil {
			return kafka.Message{}, ctx.Err()
		}

		log.Error(err, "Failed to process the conversion request")
		p.reporter.PipelineFailed(failureProcess)

		if attempt >= retryProcessCount {
			log.Errorf(err,
				"Giving up processing the request after %d attempts, skipping.",
				retryProcessCount)
			return kafka.Message{}, errSkipped
		}
		p.sleeper.Sleep(ctx)
	}

	kind := api.Location_LOCAL.String()
	if req.Source != nil {
		kind = req.Source.Kind.String()
	}
	p.reporter.ImageConverted(kind, time.Since(start).Seconds(), image)

	bytes, err := proto.Marshal(image)
	if err != nil {
		log.Error(err, "Failed to encode the converted image, skipping.")
		p.reporter.PipelineFailed(failureMarshal)
		return kafka.Message{}, errSkipped
	}

	return kafka.Message{
		Key:   []byte(image.RequestId),
		Value: bytes,
	}, nil
}

// write sends the message down the pipeline
// with a bounded number of attempts.
func (p *Pipeline) write(ctx context.Context, msg kafka.Message) error {
	log := p.log.WithField(logger.FieldFunction, "Pipeline.write")

	for attempt := 1; ; attempt++ {
		err := p.writer.WriteMessages(ctx, msg)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		log.Error(err, "Failed to write the message to the kafka writer")
		p.reporter.PipelineFailed(failureWrite)

		if attempt >= retryWriteCount {
			log.Errorf(err,
				"Giving up writing the message. Stopping pipeline because of %d consecutive failed writes",
				retryWriteCount)
			return err
		}
		p.sleeper.Sleep(ctx)
	}
}

// commit commits the read message
// with a bounded number of attempts.
func (p *Pipeline) commit(ctx context.Context, m kafka.Message) error {
	log := p.log.WithField(logger.FieldFunction, "Pipeline.commit")

	for attempt := 1; ; attempt++ {
		err := p.reader.CommitMessages(ctx, m)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		log.Error(err, "Failed to commit read message to the kafka reader")
		p.reporter.PipelineFailed(failureCommit)

		if attempt >= retryCommitCount {
			log.Errorf(err,
				"Giving up committing the message. Stopping pipeline because of %d consecutive failed commits",
				retryCommitCount)
			return err
		}
		p.sleeper.Sleep(ctx)
	}
}

// isCanceled reports whether err is caused by ctx being done.
func isCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}
