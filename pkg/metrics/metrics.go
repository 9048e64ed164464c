package metrics

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics. Scenario evaluations are
// mostly sub-second, so the low end is finer-grained than the default Prometheus set.
var DefaultBuckets = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5} //nolint: gochecknoglobals
