// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/taibuivan/lumeo/internal/platform/apperr"
	"github.com/taibuivan/lumeo/internal/platform/ctxutil"
	"github.com/taibuivan/lumeo/internal/platform/sec"
	"github.com/taibuivan/lumeo/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing session tokens.
type TokenProvider interface {
	// Issue creates a signed session token for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an error if signing fails.
	Issue(userID string, timeToLive time.Duration) (string, error)
}

// DirectorySync provisions the authenticated identity into the external
// real-time messaging directory.
//
// # Partial Failure Policy
//
// Provisioning is best-effort relative to account creation: the local user
// row is the source of truth, and a sync error must never fail the signup.
// Implementations deliver at least once in the background.
type DirectorySync interface {
	Schedule(context context.Context, userID, fullName, profilePicture string) error
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, signup,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	directorySync  DirectorySync
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokenProv TokenProvider, sync DirectorySync) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		directorySync:  sync,
	}
}

// AuthSession represents a successfully established user session.
type AuthSession struct {
	Token string
	User  *User
}

// # Signup Flow

// SignupInput holds the data required to enroll a new member.
type SignupInput struct {
	FullName string
	Email    string
	Password string
}

/*
Signup validates, hashes, and persists a brand new user account, then issues
its first session token and schedules chat-directory provisioning.

Description: The email existence pre-check gives a fast, friendly Conflict;
atomicity against concurrent signups is guaranteed by the repository's
unique constraint, which also surfaces as Conflict.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *AuthSession: Session token plus the created entity
  - error: Conflict (if the email is taken) or storage errors
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*AuthSession, error) {

	// Fast path: reject an already-registered email before doing bcrypt work.
	// An unreachable store is a hard failure here, not "email free": carrying
	// on would burn a bcrypt hash only for Create to fail anyway.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email already exists, please use a different email.")
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("auth_service_signup_lookup_failed: %w", err)
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:             uuidv7.New(),
		Email:          input.Email,
		FullName:       input.FullName,
		PasswordHash:   hashedPassword,
		ProfilePicture: randomAvatarURL(),
	}

	// Persist the user to the database. A concurrent signup that won the race
	// comes back from the repository as Conflict, never as a second row.
	if err := service.userRepository.Create(context, user); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_signup_failed: %w", err)
	}

	// Issue the session token immediately so signup doubles as login.
	token, err := service.tokenProvider.Issue(user.ID, SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_issue_failed: %w", err)
	}

	// Schedule chat-directory provisioning. Best-effort: the account exists
	// whether or not the messaging provider ever hears about it.
	if err := service.directorySync.Schedule(context, user.ID, user.FullName, user.ProfilePicture); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "chat_directory_sync_schedule_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return &AuthSession{Token: token, User: user}, nil
}

// # Login Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates user credentials and issues a session token.

Description: Unknown email and wrong password produce byte-identical errors
so callers cannot enumerate registered addresses. Password comparison is
constant-time via bcrypt.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *AuthSession: Session token plus the authenticated entity
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*AuthSession, error) {
	user, err := service.userRepository.FindByEmail(context, input.Email)

	// Unknown email gets the generic message to prevent enumeration. Any
	// other lookup failure (store unreachable) is a dependency error and
	// must surface as 500, never as invalid credentials.
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("Invalid email or password.")
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// Verify the password hash. Same generic message as the unknown-email path.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password.")
	}

	token, err := service.tokenProvider.Issue(user.ID, SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_issue_failed: %w", err)
	}

	return &AuthSession{Token: token, User: user}, nil
}

// # Session Resolution

/*
CurrentUser resolves a verified session's user ID into the sanitized entity.

Parameters:
  - context: context.Context
  - userID: string (taken from verified session claims)

Returns:
  - *User: Hydrated entity
  - error: Unauthorized if the account no longer exists
*/
func (service *Service) CurrentUser(context context.Context, userID string) (*User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		// A valid token for a deleted account is indistinguishable from an
		// invalid session as far as the client is concerned. A failing
		// store, however, is a server-side problem and reports as one.
		if isNotFound(err) {
			return nil, apperr.Unauthorized("User not found")
		}
		return nil, fmt.Errorf("auth_service_current_user_lookup_failed: %w", err)
	}
	return user, nil
}

// # Profile Updates

// UpdateProfileInput holds the mutable profile fields.
type UpdateProfileInput struct {
	FullName       string
	ProfilePicture string
}

/*
UpdateProfile persists changes to the authenticated user's profile and
re-schedules chat-directory provisioning so the provider-side record follows.

Parameters:
  - context: context.Context
  - userID: string (taken from verified session claims)
  - input: UpdateProfileInput

Returns:
  - *User: Updated entity
  - error: Unauthorized if the account no longer exists, or storage errors
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("User not found")
		}
		return nil, fmt.Errorf("auth_service_update_profile_lookup_failed: %w", err)
	}

	user.FullName = input.FullName
	if input.ProfilePicture != "" {
		user.ProfilePicture = input.ProfilePicture
	}

	if err := service.userRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_update_profile_failed: %w", err)
	}

	// The directory mirror carries name and picture, so a profile change
	// re-enqueues the same best-effort upsert as signup.
	if err := service.directorySync.Schedule(context, user.ID, user.FullName, user.ProfilePicture); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "chat_directory_sync_schedule_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return user, nil
}

// randomAvatarURL picks a pseudo-random profile picture from the public
// avatar pool assigned to every new account.
func randomAvatarURL() string {
	return fmt.Sprintf("%s/%d.png", avatarBaseURL, rand.IntN(avatarPoolSize)+1)
}

// isNotFound reports whether err is the repository's not-found error, as
// opposed to a dependency failure that must not be masked as a client error.
func isNotFound(err error) bool {
	appError := apperr.As(err)
	return appError != nil && appError.HTTPStatus == http.StatusNotFound
}
