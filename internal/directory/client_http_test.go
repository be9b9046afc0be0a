package directory

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPClientLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/12345678901", r.URL.Path)
		assert.Equal(t, "prevcom", r.URL.Query().Get("creditorName"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(UserDetail{
			DocumentNumber: "12345678901",
			Name:           "Joao Silva Santos",
			Email:          "joao.silva@email.com",
			BirthDate:      NewDate(1997, time.January, 1),
			Creditor:       Creditor{Name: "prevcom"},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second, discard())
	detail, err := client.Lookup(context.Background(), "12345678901", "prevcom")
	require.NoError(t, err)
	assert.Equal(t, "joao.silva@email.com", detail.Email)
	assert.Equal(t, NewDate(1997, time.January, 1), detail.BirthDate)
}

func TestHTTPClientLookupErrors(t *testing.T) {
	t.Run("404 maps to not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewHTTPClient(srv.URL, time.Second, discard())
		_, err := client.Lookup(context.Background(), "12345678901", "prevcom")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("500 maps to unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewHTTPClient(srv.URL, time.Second, discard())
		_, err := client.Lookup(context.Background(), "12345678901", "prevcom")
		require.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("unreachable host maps to unavailable", func(t *testing.T) {
		client := NewHTTPClient("http://127.0.0.1:1", time.Second, discard())
		_, err := client.Lookup(context.Background(), "12345678901", "prevcom")
		require.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("malformed body maps to unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		client := NewHTTPClient(srv.URL, time.Second, discard())
		_, err := client.Lookup(context.Background(), "12345678901", "prevcom")
		require.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestDateRoundTrip(t *testing.T) {
	d := NewDate(1997, time.January, 1)
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1997-01-01"`, string(raw))

	var parsed Date
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, d, parsed)

	var bad Date
	require.Error(t, json.Unmarshal([]byte(`"01/01/1997"`), &bad))
}

func TestDateBefore(t *testing.T) {
	d := NewDate(1997, time.January, 1)
	assert.True(t, d.Before(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, NewDate(2030, time.June, 1).Before(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}
