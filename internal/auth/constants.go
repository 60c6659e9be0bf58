// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// SessionTokenTTL is the duration a session token (and its cookie)
	// remains valid. Seven days balances user convenience against the
	// exposure window of a stolen token; there is no server-side revocation.
	SessionTokenTTL = 7 * 24 * time.Hour

	// PasswordMinLength is the minimum accepted password length at signup.
	// Existing accounts are never re-validated at login.
	PasswordMinLength = 6

	// avatarBaseURL is the public avatar service new accounts draw from.
	avatarBaseURL = "https://avatar.iran.liara.run/public"

	// avatarPoolSize is the number of avatar images available at avatarBaseURL.
	avatarPoolSize = 100
)
