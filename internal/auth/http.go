// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth provides the HTTP delivery layer for user identity management.

It implements the gateway for the authentication lifecycle: account creation,
login, logout, and current-session resolution.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Derives and clears the session cookie.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lumeo/internal/platform/middleware"
	requestutil "github.com/taibuivan/lumeo/internal/platform/request"
	"github.com/taibuivan/lumeo/internal/platform/respond"
	"github.com/taibuivan/lumeo/internal/platform/sec"
	"github.com/taibuivan/lumeo/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the user lifecycle entry points
// (Signup, Login, Logout, current session).
type Handler struct {
	authService   *Service
	secureCookies bool
}

// NewHandler constructs a new [Handler] with its service dependency.
//
// secureCookies must be true in production-like environments so the session
// cookie only travels over TLS.
func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{authService: service, secureCookies: secureCookies}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /signup : Creates a new account and starts a session.
//   - POST /login  : Authenticates and starts a session.
//   - POST /logout : Clears the session cookie.
//   - GET  /me     : Returns the authenticated user.
//   - PUT  /me     : Updates the authenticated user's profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Put("/me", handler.updateProfile)
	})

	return router
}

// # Request Payloads

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	FullName       string `json:"fullName"`
	ProfilePicture string `json:"profilePicture"`
}

/*
Signup handles the creation of a new user account.

POST /api/auth/signup

Description: Validates input, checks for identity conflicts, persists a new
user profile, and establishes the first session via the cookie.

Request:
  - Body: signupRequest (FullName, Email, Password)

Response:
  - 201: User: Created, sanitized user profile
  - 400: Missing field, weak password, or malformed email
  - 409: Email already registered
  - 500: Storage or hashing failure (generic message, cause logged)
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldFullName, input.FullName).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Signup(request.Context(), SignupInput{
		FullName: input.FullName,
		Email:    input.Email,
		Password: input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, sec.SessionCookie(session.Token, SessionTokenTTL, handler.secureCookies))
	respond.CreatedUser(writer, session.User)
}

/*
Login authenticates a user and establishes a session.

POST /api/auth/login

Description: Verifies credentials and injects the session cookie into the
response. Unknown email and wrong password are indistinguishable.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: User: Sanitized user profile
  - 400: Missing field
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, sec.SessionCookie(session.Token, SessionTokenTTL, handler.secureCookies))
	respond.User(writer, session.User)
}

/*
Logout terminates the current session client-side.

POST /api/auth/logout

Description: Clears the session cookie unconditionally — no token
verification, no server state. Calling it repeatedly is harmless.

Sessions are stateless, so a token captured before logout remains valid
until its expiry; there is no server-side revocation list.

Response:
  - 200: Success message
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	http.SetCookie(writer, sec.ExpiredSessionCookie(handler.secureCookies))
	respond.Message(writer, "Logged out successfully")
}

/*
Me returns the authenticated user's sanitized profile.

GET /api/auth/me

Description: Resolves the verified session claims back into the directory
record, so clients always see current profile data rather than token-time
snapshots.

Response:
  - 200: User: Sanitized user profile
  - 401: Missing/invalid session, or the account no longer exists
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.CurrentUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.User(writer, user)
}

/*
UpdateProfile modifies the authenticated user's mutable profile fields.

PUT /api/auth/me

Description: Persists the new full name (and optionally a new profile
picture) and re-schedules directory provisioning so the chat provider's
mirror follows the change.

Request:
  - Body: updateProfileRequest (FullName, optional ProfilePicture)

Response:
  - 200: User: Updated, sanitized user profile
  - 400: Missing full name
  - 401: Missing/invalid session
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldFullName, input.FullName)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		FullName:       input.FullName,
		ProfilePicture: input.ProfilePicture,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.User(writer, user)
}
