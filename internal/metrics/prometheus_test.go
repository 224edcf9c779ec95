package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	api "github.com/weak-head/bin2hex64/api/v1"
)

func TestReporter(t *testing.T) {
	r, err := NewReporter(ServiceInfo{Engine: "reporter_test"})
	require.NoError(t, err)

	r.ImageConverted("MINIO", 0.25, &api.ConvertedImage{Bytes: 9, Padding: 7, Words: 2})
	r.ImageConverted("MINIO", 0.5, &api.ConvertedImage{Bytes: 8, Padding: 0, Words: 1})
	r.PipelineFailed("commit")

	require.Equal(t, float64(2), testutil.ToFloat64(imagesTotal.WithLabelValues("reporter_test", "MINIO")))
	require.Equal(t, float64(17), testutil.ToFloat64(bytesTotal.WithLabelValues("reporter_test", "MINIO")))
	require.Equal(t, float64(7), testutil.ToFloat64(paddingTotal.WithLabelValues("reporter_test", "MINIO")))
	require.Equal(t, float64(1), testutil.ToFloat64(pipelineFailures.WithLabelValues("reporter_test", "commit")))
}

func TestPrometheusServerExposesMetrics(t *testing.T) {
	p, err := NewPrometheusServer(Config{Addr: "127.0.0.1:0"})
	require.NoError(t, err)

	r, err := NewReporter(ServiceInfo{Engine: "server_test"})
	require.NoError(t, err)
	r.PipelineFailed("fetch")

	rec := httptest.NewRecorder()
	p.server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `pipeline_errors_total{engine="server_test",failure="fetch"} 1`)
}
