// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package mgcache contains the types shared by the cache service packages.
package mgcache

import (
	"encoding/json"
	"net/http"
)

const (
	contentType = "application/json"

	healthCode    = http.StatusOK
	healthMessage = "SUCCESS"
	healthStatus  = "pass"
)

// HealthInfo describes the running service instance.
type HealthInfo struct {
	// Status contains service status.
	Status string `json:"status"`

	// Service contains service name.
	Service string `json:"service"`

	// Version contains current service version.
	Version string `json:"version"`

	// Commit represents the git hash commit.
	Commit string `json:"commit"`

	// BuildTime contains service build time.
	BuildTime string `json:"build_time"`

	// InstanceID contains the ID of the current service instance.
	InstanceID string `json:"instance_id"`
}

// HealthResponse is the body returned by the health endpoint.
type HealthResponse struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    HealthInfo `json:"data"`
}

// Health exposes an HTTP handler reporting the service as alive. It does
// not check any dependency and always answers 200.
func Health(service, instanceID string) http.HandlerFunc {
	res := HealthResponse{
		Code:    healthCode,
		Message: healthMessage,
		Data: HealthInfo{
			Status:     healthStatus,
			Service:    service,
			Version:    Version,
			Commit:     Commit,
			BuildTime:  BuildTime,
			InstanceID: instanceID,
		},
	}
	data, _ := json.Marshal(res)

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(healthCode)
		_, _ = w.Write(data)
	}
}
