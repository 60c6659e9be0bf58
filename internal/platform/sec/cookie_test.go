// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/lumeo/internal/platform/sec"
)

/*
TestSessionCookie pins down the cookie attribute set. These attributes are
consumed by browsers and frontend clients, so any change here is a breaking
API change.
*/
func TestSessionCookie(t *testing.T) {
	cookie := sec.SessionCookie("token-value", 7*24*time.Hour, false)

	assert.Equal(t, "jwt", cookie.Name)
	assert.Equal(t, "token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 604800, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.False(t, cookie.Secure)

	secureCookie := sec.SessionCookie("token-value", 7*24*time.Hour, true)
	assert.True(t, secureCookie.Secure)
}

func TestExpiredSessionCookie(t *testing.T) {
	cookie := sec.ExpiredSessionCookie(true)

	assert.Equal(t, "jwt", cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}
