package codeforces

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithHTTPClient(srv.URL, srv.Client(), nil)
}

func TestClient_UserInfo(t *testing.T) {
	t.Run("returns profile for known handle", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/user.info", r.URL.Path)
			assert.Equal(t, "tourist", r.URL.Query().Get("handles"))
			w.Write([]byte(`{"status":"OK","result":[{"handle":"tourist","firstName":"Gennady","lastName":"Korotkevich"}]}`))
		})

		profile, err := client.UserInfo(context.Background(), "tourist")
		require.NoError(t, err)
		assert.Equal(t, "tourist", profile.Handle)
		assert.Equal(t, "Korotkevich", profile.LastName)
	})

	t.Run("reports unknown handle", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"status":"FAILED","comment":"handles: User with handle nosuch not found"}`))
		})

		_, err := client.UserInfo(context.Background(), "nosuch")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrHandleNotFound)
	})

	t.Run("fails on malformed response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		})

		_, err := client.UserInfo(context.Background(), "abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode")
	})

	t.Run("fails on empty result set", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"OK","result":[]}`))
		})

		_, err := client.UserInfo(context.Background(), "abc")
		assert.ErrorIs(t, err, ErrHandleNotFound)
	})

	t.Run("honours client timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		t.Cleanup(srv.Close)

		client := NewClientWithHTTPClient(srv.URL, &http.Client{Timeout: 20 * time.Millisecond}, nil)

		_, err := client.UserInfo(context.Background(), "abc")
		require.Error(t, err)
	})
}

func TestClient_LastName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","result":[{"handle":"abc","lastName":"x7f3k2"}]}`))
	})

	lastName, err := client.LastName(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "x7f3k2", lastName)
}
