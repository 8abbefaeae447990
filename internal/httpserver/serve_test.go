package httpserver

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestServeListenerShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ServeListener(ctx, l, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "pong")
		}))
	}()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	res, err := client.Get("http://" + l.Addr().String() + "/ping")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	require.Equal(t, "pong", string(body))

	cancel()
	require.NoError(t, <-done)
}

func TestServeInvalidBind(t *testing.T) {
	err := Serve(context.Background(), "not-an-address", http.NotFoundHandler())
	require.Error(t, err)
}

func TestTrimTrailingSlash(t *testing.T) {
	handler := TrimTrailingSlash(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.URL.Path)
	}))
	apitest.Handler(handler).Get("/api/v1/status/").Expect(t).Body("/api/v1/status").End()
	apitest.Handler(handler).Get("/api/v1/status").Expect(t).Body("/api/v1/status").End()
	apitest.Handler(handler).Get("/").Expect(t).Body("/").End()
}
