package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		require.Equal(t, "secret", r.Header.Get("X-Key"))
		_, _ = w.Write([]byte(`{"price":"50000.01"}`))
	}))
	defer srv.Close()

	c := New(time.Second)
	c.Headers = map[string]string{"X-Key": "secret"}

	var out struct {
		Price string `json:"price"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &out))
	require.Equal(t, "50000.01", out.Price)
}

func TestGetJSON_StatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := New(time.Second).GetJSON(context.Background(), srv.URL, &struct{}{})

	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusBadRequest, se.Code)
	require.Contains(t, se.Body, "Invalid symbol.")
}
