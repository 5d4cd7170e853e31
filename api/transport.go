// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package api contains the HTTP transport of the cache service.
package api

import (
	"net/http"

	"github.com/absmach/mgcache"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HealthPath is the liveness endpoint path.
const HealthPath = "/actuator/health"

// MakeHandler returns a HTTP API handler with health check and metrics.
func MakeHandler(svcName, instanceID string) http.Handler {
	mux := chi.NewRouter()

	mux.Get(HealthPath, otelhttp.NewHandler(mgcache.Health(svcName, instanceID), "health").ServeHTTP)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}
