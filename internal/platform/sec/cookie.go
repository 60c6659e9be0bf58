// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"net/http"
	"time"

	"github.com/taibuivan/lumeo/internal/platform/constants"
)

// # Session Cookie Derivation

// SessionCookie derives the transport cookie for a session token.
//
// # Contract
//
// The attribute set is part of the external API contract:
//   - HttpOnly: the token is never readable from page scripts (XSS).
//   - SameSite=Strict: the browser withholds it on cross-site requests (CSRF).
//   - Secure: only in production-like environments, so local development
//     over plain HTTP keeps working.
//   - Max-Age: the full session lifetime in seconds.
func SessionCookie(token string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     constants.SessionCookiePath,
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// ExpiredSessionCookie returns a cookie that instructs the browser to drop
// the session cookie immediately. Used by logout.
func ExpiredSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
