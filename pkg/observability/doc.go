/*
Package observability turns telling lifecycle events into Prometheus metrics.

Metrics are exposed as domain.LifecycleHooks so they can be merged with any
other hooks (logging, tracing) and passed to plot.Tell or tale.WithLifecycleHooks.
*/
package observability
