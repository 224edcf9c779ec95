package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	api "github.com/weak-head/bin2hex64/api/v1"
	"github.com/weak-head/bin2hex64/internal/logger"
	"github.com/weak-head/bin2hex64/internal/processor"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	err := runCommand(context.Background(), out, args)
	return out.String(), err
}

func TestConvertFile(t *testing.T) {
	for name, tc := range map[string]struct {
		in      []byte
		want    string
		padding bool
	}{
		"empty binary": {
			in:   []byte{},
			want: "",
		},
		"single byte": {
			in:      []byte{0x01},
			want:    "0000000000000001\n",
			padding: true,
		},
		"aligned word": {
			in:   []byte{0xEF, 0xBE, 0xAD, 0xDE, 0x01, 0x00, 0x00, 0x00},
			want: "00000001deadbeef\n",
		},
		"two words": {
			in:      []byte{1, 2, 3, 4, 5, 6, 7, 8, 9},
			want:    "0807060504030201\n0000000000000009\n",
			padding: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			input := filepath.Join(dir, "prog.bin")
			output := filepath.Join(dir, "prog.hex")
			require.NoError(t, os.WriteFile(input, tc.in, 0644))

			out, err := execute(t, input, output, "--verify")
			require.NoError(t, err)

			data, err := os.ReadFile(output)
			require.NoError(t, err)
			require.Equal(t, tc.want, string(data))

			require.Contains(t, out, "Loaded "+strconv.Itoa(len(tc.in))+" bytes.")
			require.Equal(t, tc.padding, strings.Contains(out, "Padded with"))
			require.Contains(t, out, "Done.")
		})
	}
}

func TestConvertIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "prog.bin")
	require.NoError(t, os.WriteFile(input, []byte("hello, simulated memory"), 0644))

	first := filepath.Join(dir, "first.hex")
	second := filepath.Join(dir, "second.hex")

	_, err := execute(t, input, first)
	require.NoError(t, err)
	_, err = execute(t, input, second)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.NoError(t, processor.Verify([]byte("hello, simulated memory"), a))
}

func TestConvertOverwritesOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "prog.bin")
	output := filepath.Join(dir, "prog.hex")
	require.NoError(t, os.WriteFile(input, []byte{0x01}, 0644))
	require.NoError(t, os.WriteFile(output, []byte(strings.Repeat("ffffffffffffffff\n", 4)), 0644))

	_, err := execute(t, input, output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, "0000000000000001\n", string(data))
}

func TestConvertFailures(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "prog.bin")
	require.NoError(t, os.WriteFile(input, []byte{0x01}, 0644))

	_, err := execute(t, filepath.Join(dir, "missing.bin"), filepath.Join(dir, "out.hex"))
	require.True(t, os.IsNotExist(err))
	_, statErr := os.Stat(filepath.Join(dir, "out.hex"))
	require.True(t, os.IsNotExist(statErr))

	_, err = execute(t, input, filepath.Join(dir, "absent", "out.hex"))
	require.Error(t, err)

	_, err = execute(t, input)
	require.Error(t, err)

	_, err = execute(t, input, "minio://images/prog.hex")
	require.Error(t, err)

	_, err = execute(t, input, filepath.Join(dir, "out.hex"), "--log-format", "xml")
	require.Error(t, err)
}

func TestFailureIsLogged(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.bin")

	out, err := execute(t, missing, filepath.Join(dir, "out.hex"), "--log-format", "json")
	require.Error(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := lines[len(lines)-1]
	require.Contains(t, last, `"level":"error"`)
	require.Contains(t, last, `"msg":"Command failed."`)
	require.Contains(t, last, `"service":"bin2hex64"`)

	out, err = execute(t, missing, filepath.Join(dir, "out.hex"), "--log-format", "xml")
	require.Equal(t, logger.ErrUnknownFormat, err)
	require.Contains(t, out, "level=error")
	require.Contains(t, out, `msg="Command failed."`)
	require.NotContains(t, out, "time=")
}

func TestConvertWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "prog.bin")
	output := filepath.Join(dir, "prog.hex")
	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(input, []byte{0x01}, 0644))
	require.NoError(t, os.WriteFile(config, []byte("log:\n  format: json\n  level: info\nprocessor:\n  verify: true\n"), 0644))

	out, err := execute(t, input, output, "--config", config)
	require.NoError(t, err)
	require.Contains(t, out, `"msg":"Done."`)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
service:
  engine: ram-images
processor:
  destinationBucket: images
  verify: true
storage:
  endpoint: localhost:9000
  accessKey: minio
  secretKey: minio123
pipelines: 4
backoff:
  initial: 1s
  max: 1m
reader:
  brokers: [localhost:9092]
  topic: requests
writer:
  addr: localhost:9092
  topic: images
  createIfNotExist: true
metrics:
  addr: :9100
`), 0644))

	c := defaultConfig()
	require.NoError(t, c.load(path))

	require.Equal(t, "ram-images", c.Service.Engine)
	require.Equal(t, "images", c.Processor.Processor.DestinationBucket)
	require.True(t, c.Processor.Processor.Verify)
	require.True(t, c.Processor.Storage.Enabled())
	require.Equal(t, "minio", c.Processor.Storage.AccessKey)
	require.Equal(t, 4, c.Pipelines)
	require.Equal(t, time.Second, c.Backoff.Initial)
	require.Equal(t, time.Minute, c.Backoff.Max)
	require.Equal(t, []string{"localhost:9092"}, c.Reader.Brokers)
	require.Equal(t, "requests", c.Reader.Topic)
	require.Equal(t, "bin2hex64", c.Reader.GroupID)
	require.True(t, c.Writer.CreateIfNotExist)
	require.Equal(t, "hash", c.Writer.Balancer)
	require.Equal(t, ":9100", c.Metrics.Addr)
}

func TestParseLocation(t *testing.T) {
	for arg, want := range map[string]*api.Location{
		"prog.bin":                {Kind: api.Location_LOCAL, ObjectName: "prog.bin"},
		"/tmp/minio/prog.bin":     {Kind: api.Location_LOCAL, ObjectName: "/tmp/minio/prog.bin"},
		"minio://bins/prog.bin":   {Kind: api.Location_MINIO, Bucket: "bins", ObjectName: "prog.bin"},
		"minio://bins/fw/app.bin": {Kind: api.Location_MINIO, Bucket: "bins", ObjectName: "fw/app.bin"},
	} {
		loc, err := parseLocation(arg)
		require.NoError(t, err, arg)
		require.Equal(t, want, loc, arg)
	}

	for _, arg := range []string{"minio://", "minio://bins", "minio://bins/", "minio:///prog.bin"} {
		_, err := parseLocation(arg)
		require.Equal(t, ErrInvalidLocation, err, arg)
	}

	_, err := parseLocation("")
	require.Equal(t, ErrEmptyLocation, err)
}

func TestServeRejectsInvalidPipelines(t *testing.T) {
	config := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte("pipelines: 0\n"), 0644))

	_, err := execute(t, "serve", "--config", config)
	require.Equal(t, ErrInvalidPipelines, err)
}
