package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/weak-head/bin2hex64/internal/metrics"
	"github.com/weak-head/bin2hex64/internal/pipeline"
	"github.com/weak-head/bin2hex64/internal/sleeper"
	"github.com/weak-head/bin2hex64/internal/stream"
)

const (
	shutdownTimeout = 5 * time.Second
)

var (
	// ErrInvalidPipelines happens when the number of pipelines is not positive.
	ErrInvalidPipelines = errors.New("number of pipelines must be positive")
)

func newServeCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Convert binaries referenced by the kafka stream of conversion requests",
		Args:  cobra.NoArgs,
		RunE:  c.serve,
	}
}

// serve runs the conversion pipelines and the metrics
// server until interrupted or until any of them fails.
func (c *cli) serve(cmd *cobra.Command, args []string) error {
	if c.cfg.Pipelines <= 0 {
		return ErrInvalidPipelines
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := c.newProcessor()
	if err != nil {
		return err
	}

	reporter, err := metrics.NewReporter(c.cfg.Service)
	if err != nil {
		return err
	}

	server, err := metrics.NewPrometheusServer(c.cfg.Metrics)
	if err != nil {
		return err
	}

	writer, err := stream.NewWriter(c.cfg.Writer)
	if err != nil {
		return err
	}
	defer writer.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(server.Serve)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	for i := 0; i < c.cfg.Pipelines; i++ {
		reader, err := stream.NewReader(c.cfg.Reader)
		if err != nil {
			stop()
			g.Wait()
			return err
		}
		defer reader.Close()

		pl, err := c.newPipeline(reader, writer, p, reporter)
		if err != nil {
			stop()
			g.Wait()
			return err
		}
		g.Go(func() error {
			return pl.Run(ctx)
		})
	}

	c.log.Infof("Started %d pipelines, serving metrics on %s.", c.cfg.Pipelines, c.cfg.Metrics.Addr)
	return g.Wait()
}

func (c *cli) newPipeline(
	reader *kafka.Reader,
	writer *kafka.Writer,
	p pipeline.Processor,
	reporter pipeline.Reporter,
) (*pipeline.Pipeline, error) {
	s, err := sleeper.NewExponentialSleeper(c.cfg.Backoff.Initial, c.cfg.Backoff.Max)
	if err != nil {
		return nil, err
	}

	return pipeline.NewPipeline(reader, writer, p, s, reporter, c.log)
}
