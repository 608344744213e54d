package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationHook(t *testing.T) {
	before := testutil.ToFloat64(mutations.WithLabelValues(service.KindTemplate, string(service.ActionCreate)))
	MutationHook(context.Background(), service.Event{Action: service.ActionCreate, Kind: service.KindTemplate})
	after := testutil.ToFloat64(mutations.WithLabelValues(service.KindTemplate, string(service.ActionCreate)))
	assert.Equal(t, before+1, after)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/templates/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/templates/abc", nil))
	require.Equal(t, http.StatusOK, w.Code)

	RecordJobRun("print_time", time.Millisecond, true)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), `path="/api/templates/:id"`)
	assert.Contains(t, string(body), `logjournal_scheduler_job_runs_total{job="print_time",success="true"}`)
}
