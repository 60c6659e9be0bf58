// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lumeo/internal/platform/sec"
)

const testUserID = "0198c0de-1234-7000-8000-abcdefabcdef"

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()

	service, err := sec.NewTokenService("test-signing-secret", "lumeo.test")
	require.NoError(t, err)
	return service
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("", "lumeo.test")
	assert.Error(t, err)
}

/*
TestTokenService_RoundTrip verifies the core session property: for any user
ID, verifying a freshly issued token yields the same ID back.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t)

	token, err := service.Issue(testUserID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.UserID)
	assert.Equal(t, testUserID, claims.Subject)
	assert.Equal(t, "lumeo.test", claims.Issuer)
}

func TestTokenService_Verify_Rejections(t *testing.T) {
	service := newTokenService(t)

	token, err := service.Issue(testUserID, time.Hour)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		expired, err := service.Issue(testUserID, -time.Minute)
		require.NoError(t, err)

		_, err = service.Verify(expired)
		assert.Error(t, err)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := service.Verify(token + "x")
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := service.Verify("not-a-jwt")
		assert.Error(t, err)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		otherService, err := sec.NewTokenService("a-different-secret", "lumeo.test")
		require.NoError(t, err)

		_, err = otherService.Verify(token)
		assert.Error(t, err)
	})

	t.Run("unsigned_algorithm", func(t *testing.T) {
		// alg=none token with an arbitrary payload.
		_, err := service.Verify("eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJ1aWQiOiJ4In0.")
		assert.Error(t, err)
	})
}
