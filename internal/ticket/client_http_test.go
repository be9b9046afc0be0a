package ticket

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

func request() DispatchRequest {
	return DispatchRequest{
		SubjectID:         "12345678901",
		Address:           "joao.silva@email.com",
		Token:             "123456",
		TokenLength:       6,
		AttemptLimit:      3,
		ExpirationSeconds: 600,
	}
}

func TestHTTPDispatcherSend(t *testing.T) {
	var received DispatchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ticket/v4/email", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(DispatchResult{Success: true})
	}))
	defer srv.Close()

	d := NewHTTPDispatcher(srv.URL, time.Second, discard())
	require.NoError(t, d.Send(context.Background(), request()))

	assert.Equal(t, "123456", received.Token)
	assert.Equal(t, 600, received.ExpirationSeconds)
	assert.Equal(t, "12345678901", received.SubjectID)
}

func TestHTTPDispatcherSendErrors(t *testing.T) {
	t.Run("channel reports failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(DispatchResult{Success: false, Message: "mailbox rejected"})
		}))
		defer srv.Close()

		d := NewHTTPDispatcher(srv.URL, time.Second, discard())
		err := d.Send(context.Background(), request())
		require.ErrorIs(t, err, ErrRejected)
		assert.Contains(t, err.Error(), "mailbox rejected")
	})

	t.Run("non-200 status is a rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(DispatchResult{Success: false})
		}))
		defer srv.Close()

		d := NewHTTPDispatcher(srv.URL, time.Second, discard())
		require.ErrorIs(t, d.Send(context.Background(), request()), ErrRejected)
	})

	t.Run("unreachable host maps to unavailable", func(t *testing.T) {
		d := NewHTTPDispatcher("http://127.0.0.1:1", time.Second, discard())
		require.ErrorIs(t, d.Send(context.Background(), request()), ErrUnavailable)
	})

	t.Run("malformed body maps to unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		d := NewHTTPDispatcher(srv.URL, time.Second, discard())
		require.ErrorIs(t, d.Send(context.Background(), request()), ErrUnavailable)
	})
}
