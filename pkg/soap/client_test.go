package soap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Post(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotType, gotBody string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotType = r.Header.Get("Content-Type")
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			_, _ = w.Write([]byte("<ok/>"))
		}))
		defer srv.Close()

		client := NewClient(nil, nil)
		body, err := client.Post(context.Background(), "subscribe", srv.URL+"/notification", []byte("<req/>"))
		require.NoError(t, err)

		assert.Equal(t, "<ok/>", string(body))
		assert.Equal(t, ContentType, gotType)
		assert.Equal(t, "<req/>", gotBody)
	})

	t.Run("non_2xx_status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "fault", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewClient(nil, nil).Post(context.Background(), "renew", srv.URL, []byte("<req/>"))

		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
		assert.Equal(t, "renew", transportErr.Op)
		assert.Contains(t, transportErr.Body, "fault")
	})

	t.Run("connection_refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewClient(nil, nil).Post(context.Background(), "unsubscribe", url, []byte("<req/>"))

		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Zero(t, transportErr.StatusCode)
		assert.NotNil(t, errors.Unwrap(err))
	})

	t.Run("tls_self_signed", func(t *testing.T) {
		srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<ok/>"))
		}))
		defer srv.Close()

		body, err := NewClient(DefaultHTTPClient(5*time.Second), nil).
			Post(context.Background(), "subscribe", srv.URL, []byte("<req/>"))
		require.NoError(t, err)
		assert.Equal(t, "<ok/>", string(body))
	})
}
