/*
Package monitoring provides Prometheus metrics for the navigation guard.

# Overview

Each Metrics value owns a private registry, exposed through Handler at
GET /metrics. Nothing is registered on the global default registry.

# Metric families

  - safewaters_http_requests_total, safewaters_http_request_duration_seconds
  - safewaters_classifier_calls_total{outcome}, safewaters_classifier_duration_seconds
  - safewaters_verdict_cache_hits_total
  - safewaters_decisions_total{channel,decision}
  - safewaters_interstitials_shown_total{kind}
  - safewaters_redirects_total, safewaters_approvals_total
  - safewaters_sweep_removed_total{target}
  - safewaters_bridge_connections, safewaters_bridge_frames_total{direction,type}
  - safewaters_uptime_seconds plus Go runtime and process collectors

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics)
	// ... call the classifier ...
	timer.Stop("malicious")
*/
package monitoring
