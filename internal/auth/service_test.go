// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lumeo/internal/auth"
	"github.com/taibuivan/lumeo/internal/platform/apperr"
	"github.com/taibuivan/lumeo/internal/platform/sec"
)

// # Test Doubles

// memoryUserRepository is an in-memory UserRepository with the same
// uniqueness semantics as the PostgreSQL implementation: Create fails with
// Conflict when the email is already claimed, regardless of any earlier
// lookup.
type memoryUserRepository struct {
	mu         sync.Mutex
	byID       map[string]*auth.User
	failCreate error
	failFind   error
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{byID: map[string]*auth.User{}}
}

func (repo *memoryUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failFind != nil {
		return nil, repo.failFind
	}

	if user, ok := repo.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failFind != nil {
		return nil, repo.failFind
	}

	for _, user := range repo.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepository) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failCreate != nil {
		return repo.failCreate
	}

	for _, existing := range repo.byID {
		if existing.Email == user.Email {
			return apperr.Conflict("Email already exists, please use a different email.")
		}
	}

	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	repo.byID[user.ID] = &copied
	return nil
}

func (repo *memoryUserRepository) Update(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	user.UpdatedAt = time.Now()
	copied := *user
	repo.byID[user.ID] = &copied
	return nil
}

func (repo *memoryUserRepository) count() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.byID)
}

// recordingSync records scheduled provisioning calls.
type recordingSync struct {
	mu      sync.Mutex
	userIDs []string
	fail    error
}

func (sync *recordingSync) Schedule(_ context.Context, userID, _, _ string) error {
	sync.mu.Lock()
	defer sync.mu.Unlock()

	if sync.fail != nil {
		return sync.fail
	}
	sync.userIDs = append(sync.userIDs, userID)
	return nil
}

func (sync *recordingSync) scheduled() []string {
	sync.mu.Lock()
	defer sync.mu.Unlock()
	return append([]string(nil), sync.userIDs...)
}

// newTestService wires a Service over in-memory doubles and a real HS256
// token service.
func newTestService(t *testing.T) (*auth.Service, *memoryUserRepository, *recordingSync, *sec.TokenService) {
	t.Helper()

	repo := newMemoryUserRepository()
	sink := &recordingSync{}

	tokens, err := sec.NewTokenService("test-signing-secret", "lumeo.test")
	require.NoError(t, err)

	return auth.NewService(repo, tokens, sink), repo, sink, tokens
}

var signupAda = auth.SignupInput{
	FullName: "Ada Lovelace",
	Email:    "ada@x.com",
	Password: "secret1",
}

// # Signup

/*
TestService_Signup verifies the happy path: the account is persisted with a
hashed password and an assigned avatar, a verifiable session token is issued,
and directory provisioning is scheduled.
*/
func TestService_Signup(t *testing.T) {
	service, repo, sink, tokens := newTestService(t)

	session, err := service.Signup(context.Background(), signupAda)
	require.NoError(t, err)
	require.NotNil(t, session.User)

	user := session.User
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@x.com", user.Email)
	assert.Equal(t, "Ada Lovelace", user.FullName)

	// The plaintext is hashed before storage and verifiable afterwards.
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("secret1", user.PasswordHash))

	// An avatar is assigned automatically.
	assert.Contains(t, user.ProfilePicture, "avatar.iran.liara.run")

	// The token resolves back to the new account.
	claims, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	assert.Equal(t, 1, repo.count())
	assert.Equal(t, []string{user.ID}, sink.scheduled())
}

/*
TestService_Signup_DuplicateEmail verifies that reusing an email yields a
409 Conflict and does not create a second record.
*/
func TestService_Signup_DuplicateEmail(t *testing.T) {
	service, repo, _, _ := newTestService(t)

	_, err := service.Signup(context.Background(), signupAda)
	require.NoError(t, err)

	_, err = service.Signup(context.Background(), signupAda)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusConflict, ae.HTTPStatus)
	assert.Equal(t, 1, repo.count())
}

/*
TestService_Signup_InsertRace verifies that a duplicate detected only at
insert time (a concurrent signup winning the race between the existence
check and Create) still surfaces as Conflict.
*/
func TestService_Signup_InsertRace(t *testing.T) {
	service, repo, _, _ := newTestService(t)
	repo.failCreate = apperr.Conflict("Email already exists, please use a different email.")

	_, err := service.Signup(context.Background(), signupAda)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusConflict, ae.HTTPStatus)
}

/*
TestService_Signup_SyncFailureIsNonFatal verifies the partial-failure policy:
a provisioning error never fails the signup.
*/
func TestService_Signup_SyncFailureIsNonFatal(t *testing.T) {
	service, repo, sink, _ := newTestService(t)
	sink.fail = assert.AnError

	session, err := service.Signup(context.Background(), signupAda)
	require.NoError(t, err)
	assert.NotNil(t, session.User)
	assert.Equal(t, 1, repo.count())
}

// # Login

/*
TestService_Login covers credential verification, including the
enumeration-resistance property: unknown email and wrong password produce
identical errors.
*/
func TestService_Login(t *testing.T) {
	service, _, _, tokens := newTestService(t)

	created, err := service.Signup(context.Background(), signupAda)
	require.NoError(t, err)

	t.Run("correct_credentials", func(t *testing.T) {
		session, err := service.Login(context.Background(), auth.LoginInput{
			Email:    "ada@x.com",
			Password: "secret1",
		})
		require.NoError(t, err)
		assert.Equal(t, created.User.ID, session.User.ID)

		claims, err := tokens.Verify(session.Token)
		require.NoError(t, err)
		assert.Equal(t, created.User.ID, claims.UserID)
	})

	t.Run("wrong_password_and_unknown_email_are_identical", func(t *testing.T) {
		_, wrongPassword := service.Login(context.Background(), auth.LoginInput{
			Email:    "ada@x.com",
			Password: "wrong",
		})
		_, unknownEmail := service.Login(context.Background(), auth.LoginInput{
			Email:    "nobody@x.com",
			Password: "secret1",
		})

		require.Error(t, wrongPassword)
		require.Error(t, unknownEmail)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

		assert.Equal(t, http.StatusUnauthorized, apperr.As(wrongPassword).HTTPStatus)
		assert.Equal(t, http.StatusUnauthorized, apperr.As(unknownEmail).HTTPStatus)
	})
}

// # Dependency Failures

/*
TestService_StoreFailure verifies the error taxonomy under an unreachable
store: lookup failures are dependency errors that surface as 500s at the
transport layer, never as invalid credentials, a duplicate email, or a
missing session.
*/
func TestService_StoreFailure(t *testing.T) {
	service, repo, _, _ := newTestService(t)

	created, err := service.Signup(context.Background(), signupAda)
	require.NoError(t, err)

	repo.failFind = errors.New("connection refused")

	t.Run("login_is_not_invalid_credentials", func(t *testing.T) {
		_, err := service.Login(context.Background(), auth.LoginInput{
			Email:    "ada@x.com",
			Password: "secret1",
		})
		require.Error(t, err)
		assert.Nil(t, apperr.As(err))
		assert.NotContains(t, err.Error(), "Invalid email or password.")
	})

	t.Run("signup_pre_check_is_not_email_free", func(t *testing.T) {
		_, err := service.Signup(context.Background(), auth.SignupInput{
			FullName: "Grace Hopper",
			Email:    "grace@x.com",
			Password: "secret1",
		})
		require.Error(t, err)
		assert.Nil(t, apperr.As(err))
		assert.Equal(t, 1, repo.count())
	})

	t.Run("current_user_is_not_unauthorized", func(t *testing.T) {
		_, err := service.CurrentUser(context.Background(), created.User.ID)
		require.Error(t, err)
		assert.Nil(t, apperr.As(err))
	})
}

// # Session Resolution

/*
TestService_CurrentUser verifies user resolution from verified claims,
including a valid token whose account has since disappeared.
*/
func TestService_CurrentUser(t *testing.T) {
	service, _, _, _ := newTestService(t)

	created, err := service.Signup(context.Background(), signupAda)
	require.NoError(t, err)

	user, err := service.CurrentUser(context.Background(), created.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", user.Email)

	_, err = service.CurrentUser(context.Background(), "0198c0de-0000-7000-8000-000000000000")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)
}

// # Profile Updates

/*
TestService_UpdateProfile verifies the persisted change, the untouched
avatar when no picture is supplied, and the re-scheduled directory sync.
*/
func TestService_UpdateProfile(t *testing.T) {
	service, _, sink, _ := newTestService(t)

	created, err := service.Signup(context.Background(), signupAda)
	require.NoError(t, err)

	updated, err := service.UpdateProfile(context.Background(), created.User.ID, auth.UpdateProfileInput{
		FullName: "Ada King",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", updated.FullName)
	assert.Equal(t, created.User.ProfilePicture, updated.ProfilePicture)

	// The change is persisted, not just echoed.
	fetched, err := service.CurrentUser(context.Background(), created.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", fetched.FullName)

	// Signup and the update each scheduled one provisioning job.
	assert.Equal(t, []string{created.User.ID, created.User.ID}, sink.scheduled())

	t.Run("unknown_account", func(t *testing.T) {
		_, err := service.UpdateProfile(context.Background(), "0198c0de-0000-7000-8000-000000000000", auth.UpdateProfileInput{
			FullName: "Nobody",
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)
	})
}
