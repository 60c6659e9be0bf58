// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chatsync_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lumeo/internal/chatsync"
)

func TestNewClient_RequiresCredentials(t *testing.T) {
	testCases := []struct {
		name      string
		apiKey    string
		apiSecret string
		baseURL   string
	}{
		{name: "missing_key", apiKey: "", apiSecret: "s3cret", baseURL: "http://chat.local"},
		{name: "missing_secret", apiKey: "key", apiSecret: "", baseURL: "http://chat.local"},
		{name: "missing_base_url", apiKey: "key", apiSecret: "s3cret", baseURL: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := chatsync.NewClient(testCase.apiKey, testCase.apiSecret, testCase.baseURL)
			assert.Error(t, err)
		})
	}
}

/*
TestClient_Upsert verifies the provider wire contract: endpoint, credentials,
and payload shape.
*/
func TestClient_Upsert(t *testing.T) {
	var (
		gotPath   string
		gotAPIKey string
		gotBearer string
		gotBody   struct {
			Users []chatsync.Record `json:"users"`
		}
	)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotPath = request.Method + " " + request.URL.Path
		gotAPIKey = request.Header.Get("X-API-Key")
		gotBearer = strings.TrimPrefix(request.Header.Get("Authorization"), "Bearer ")
		require.NoError(t, json.NewDecoder(request.Body).Decode(&gotBody))
		writer.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, err := chatsync.NewClient("key", "s3cret", server.URL)
	require.NoError(t, err)

	err = client.Upsert(context.Background(), chatsync.Record{
		ID:    "user-1",
		Name:  "Ada Lovelace",
		Image: "pic.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "POST /users", gotPath)
	assert.Equal(t, "key", gotAPIKey)

	require.Len(t, gotBody.Users, 1)
	assert.Equal(t, "user-1", gotBody.Users[0].ID)
	assert.Equal(t, "Ada Lovelace", gotBody.Users[0].Name)

	// The bearer credential is an HS256 server token signed with the API secret.
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(gotBearer, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, true, claims["server"])
}

func TestClient_Upsert_ProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client, err := chatsync.NewClient("key", "s3cret", server.URL)
	require.NoError(t, err)

	err = client.Upsert(context.Background(), chatsync.Record{ID: "user-1"})
	assert.Error(t, err)
}

func TestClient_MintUserToken(t *testing.T) {
	client, err := chatsync.NewClient("key", "s3cret", "http://chat.local")
	require.NoError(t, err)

	token, err := client.MintUserToken("user-1")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Contains(t, claims, "iat")
}
