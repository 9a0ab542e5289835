package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler serving every metric registered on the
// collector's registry in the Prometheus exposition format. A nil or
// disabled collector serves 404 so the route can be mounted unconditionally.
func (c *Collector) Handler() http.Handler {
	if !c.enabled() {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			// Keep serving the metrics that did gather.
			ErrorHandling: promhttp.ContinueOnError,
		},
	)
}
