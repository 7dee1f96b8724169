// Package metrics defines Prometheus collectors for the dashboard.
package metrics
