// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lumeo/internal/api"
)

func TestLiveness(t *testing.T) {
	liveness, _ := api.NewHealthHandlers(api.HealthDependencies{}, slog.Default())

	recorder := httptest.NewRecorder()
	liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestReadiness(t *testing.T) {
	type readinessBody struct {
		Status string `json:"status"`
		Checks []struct {
			Name string `json:"name"`
			IsOK bool   `json:"ok"`
		} `json:"checks"`
	}

	t.Run("all_dependencies_healthy", func(t *testing.T) {
		_, readiness := api.NewHealthHandlers(api.HealthDependencies{
			CheckDatabase: func() error { return nil },
			CheckQueue:    func() error { return nil },
		}, slog.Default())

		recorder := httptest.NewRecorder()
		readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

		require.Equal(t, http.StatusOK, recorder.Code)

		var body readinessBody
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, "ready", body.Status)
		require.Len(t, body.Checks, 2)
		assert.True(t, body.Checks[0].IsOK)
		assert.True(t, body.Checks[1].IsOK)
	})

	t.Run("degraded_when_queue_unreachable", func(t *testing.T) {
		_, readiness := api.NewHealthHandlers(api.HealthDependencies{
			CheckDatabase: func() error { return nil },
			CheckQueue:    func() error { return errors.New("connection refused") },
		}, slog.Default())

		recorder := httptest.NewRecorder()
		readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

		require.Equal(t, http.StatusServiceUnavailable, recorder.Code)

		var body readinessBody
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body.Status)
	})
}
