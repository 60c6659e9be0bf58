// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/lumeo/internal/platform/ctxutil"
	"github.com/taibuivan/lumeo/internal/platform/sec"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", ctxutil.GetRequestID(ctx))
}

func TestLogger(t *testing.T) {
	ctx := context.Background()

	// Without an attached logger the global default is returned, never nil.
	assert.NotNil(t, ctxutil.GetLogger(ctx))

	logger := slog.Default().With(slog.String("component", "test"))
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Same(t, logger, ctxutil.GetLogger(ctx))
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetSession(ctx))

	claims := &sec.SessionClaims{UserID: "user-1"}
	ctx = ctxutil.WithSession(ctx, claims)
	assert.Same(t, claims, ctxutil.GetSession(ctx))
}
