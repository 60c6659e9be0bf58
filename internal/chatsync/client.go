// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chatsync keeps the external real-time messaging provider's user
directory in sync with the local account store.

The provider requires a mirrored copy of {id, name, image} for every member
before chat features work. Synchronization is strictly one-directional and
best-effort: account creation never waits on, and never fails because of,
the provider.

# Architecture

  - Client: Authenticated REST calls to the provider (upsert) plus
    scoped user-token minting.
  - Outbox: Redis-backed job queue fed by signup.
  - Worker: Background consumer draining the outbox with retries and a
    dead-letter list.
*/
package chatsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Record is the provider-side projection of a local user.
type Record struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Upserter is the minimal provider surface the outbox machinery depends on.
type Upserter interface {
	Upsert(context context.Context, record Record) error
}

const (
	// requestTimeout bounds every provider call independently of the caller's context.
	requestTimeout = 5 * time.Second

	// serverTokenTTL is the lifetime of the per-request server credential.
	serverTokenTTL = 5 * time.Minute
)

// Client talks to the messaging provider's user-directory API.
//
// # Authentication
//
// Every call carries the application API key plus a short-lived server JWT
// signed with the API secret. User-scoped tokens minted by [MintUserToken]
// use the same secret but carry only a user_id claim; the core treats them
// as opaque strings.
type Client struct {
	apiKey     string
	apiSecret  []byte
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a provider client.
//
// It fails fast on missing credentials so misconfiguration is caught at
// process start, not on the first signup.
func NewClient(apiKey, apiSecret, baseURL string) (*Client, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, errors.New("chatsync: provider API key and secret are required")
	}
	if baseURL == "" {
		return nil, errors.New("chatsync: provider base URL is required")
	}

	return &Client{
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}, nil
}

/*
Upsert creates or updates the user record in the provider's directory.

Description: Idempotent by contract — the provider overwrites the record
keyed by ID, so at-least-once delivery from the outbox is safe.

Parameters:
  - context: context.Context
  - record: Record

Returns:
  - error: Credential, transport, or provider-side failures
*/
func (client *Client) Upsert(context context.Context, record Record) error {
	payload := map[string]any{
		"users": []Record{record},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("chatsync_upsert_encode_failed: %w", err)
	}

	serverToken, err := client.serverToken()
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(context, http.MethodPost, client.baseURL+"/users", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("chatsync_upsert_request_failed: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+serverToken)
	request.Header.Set("X-API-Key", client.apiKey)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("chatsync_upsert_call_failed: %w", err)
	}
	defer func() {
		// Drain so the connection can be reused by the pool.
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("chatsync_upsert_rejected: provider returned status %d", response.StatusCode)
	}

	return nil
}

/*
MintUserToken issues a credential scoped to the messaging provider for the
given user.

Description: The token's scheme belongs to the provider; callers must treat
the result as an opaque string and pass it straight to the chat frontend SDK.

Parameters:
  - userID: string

Returns:
  - string: Signed provider token
  - error: Signing failures
*/
func (client *Client) MintUserToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     jwt.NewNumericDate(time.Now()),
	})

	signedToken, err := token.SignedString(client.apiSecret)
	if err != nil {
		return "", fmt.Errorf("chatsync_mint_user_token_failed: %w", err)
	}

	return signedToken, nil
}

// serverToken mints the short-lived server-side credential attached to
// directory API calls.
func (client *Client) serverToken() (string, error) {
	currentTime := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"server": true,
		"iat":    jwt.NewNumericDate(currentTime),
		"exp":    jwt.NewNumericDate(currentTime.Add(serverTokenTTL)),
	})

	signedToken, err := token.SignedString(client.apiSecret)
	if err != nil {
		return "", fmt.Errorf("chatsync_server_token_failed: %w", err)
	}

	return signedToken, nil
}
