package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	api "github.com/weak-head/bin2hex64/api/v1"
	"github.com/weak-head/bin2hex64/internal/logger"
	"github.com/weak-head/bin2hex64/internal/pipeline"
	"github.com/weak-head/bin2hex64/internal/processor"
	"github.com/weak-head/bin2hex64/internal/storage"
)

type cli struct {
	cfg cfg
	log logger.Log

	out io.Writer

	configPath string
	verify     bool
	logLevel   string
	logFormat  string
}

// initConfig loads the configuration file and applies the flag overrides.
func (c *cli) initConfig(cmd *cobra.Command, args []string) error {
	c.cfg = defaultConfig()

	if c.configPath != "" {
		if err := c.cfg.load(c.configPath); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("verify") {
		c.cfg.Processor.Processor.Verify = c.verify
	}
	if flags.Changed("log-level") {
		c.cfg.Log.Level = c.logLevel
	}
	if flags.Changed("log-format") {
		c.cfg.Log.Format = c.logFormat
	}
	c.cfg.Log.Output = c.out

	log, err := logger.NewLogger(c.cfg.Log)
	if err != nil {
		return err
	}
	c.log = log.WithField("service", c.cfg.Service.Engine)

	return nil
}

// newStorage routes local paths to the filesystem and,
// when configured, minio locations to the object storage.
func (c *cli) newStorage() (*storage.Router, error) {
	local, err := storage.NewLocalStorage(c.log)
	if err != nil {
		return nil, err
	}

	backends := map[api.Location_Kind]storage.Backend{
		api.Location_LOCAL: local,
	}

	if c.cfg.Processor.Storage.Enabled() {
		minio, err := storage.NewMinioStorage(c.cfg.Processor.Storage, c.log)
		if err != nil {
			return nil, err
		}
		backends[api.Location_MINIO] = minio
	}

	return storage.NewRouter(backends), nil
}

func (c *cli) newProcessor() (pipeline.Processor, error) {
	store, err := c.newStorage()
	if err != nil {
		return nil, err
	}

	converter, err := processor.NewConverter(c.log)
	if err != nil {
		return nil, err
	}

	p, err := processor.NewProcessor(c.cfg.Processor.Processor, converter, store, c.log)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// run converts a single binary.
func (c *cli) run(cmd *cobra.Command, args []string) error {
	source, err := parseLocation(args[0])
	if err != nil {
		return err
	}

	dest, err := parseLocation(args[1])
	if err != nil {
		return err
	}

	p, err := c.newProcessor()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c.log.Infof("Reading %s ...", args[0])

	image, err := p.Process(ctx, &api.ConvertRequest{
		RequestId:   "cli",
		Source:      source,
		Destination: dest,
	})
	if err != nil {
		return err
	}

	c.log.WithField("words", image.Words).Infof("Wrote %s.", args[1])
	c.log.Info("Done.")
	return nil
}

// fail reports the error through the configured logger, or a default
// one if the configuration has not been loaded.
func (c *cli) fail(err error) {
	log := c.log
	if log == nil {
		log, _ = logger.NewLogger(logger.Config{
			Level:  "info",
			Format: logger.FormatText,
			Output: c.out,
		})
	}
	log.Error(err, "Command failed.")
}

func newCommand(cli *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bin2hex64 <input> <output>",
		Short: "Convert a raw binary into 64-bit little-endian hex words, one per line",
		Long: `Convert a raw binary into a hex image for a simulated memory device.

The binary is padded with zero bytes to a multiple of 8 and every
8-byte word is written as 16 lowercase hex digits of its little-endian
value, one word per line.

Locations of the form minio://bucket/object are read from and written
to the configured object storage, everything else is a local path.`,
		Args:              cobra.ExactArgs(2),
		PersistentPreRunE: cli.initConfig,
		RunE:              cli.run,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	cmd.SetOut(cli.out)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.configPath, "config", "c", "", "path to the YAML configuration file")
	flags.StringVar(&cli.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&cli.logFormat, "log-format", logger.FormatText, "log format (text, json)")
	cmd.Flags().BoolVar(&cli.verify, "verify", false, "read the written image back and check it against the binary")

	cmd.AddCommand(newServeCommand(cli))

	return cmd
}

// runCommand executes the command line and logs the error it fails with.
func runCommand(ctx context.Context, out io.Writer, args []string) error {
	cli := &cli{out: out}
	cmd := newCommand(cli)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		cli.fail(err)
	}
	return err
}

func main() {
	if err := runCommand(context.Background(), os.Stdout, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
