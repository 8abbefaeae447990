package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andrebq/authbox/internal/logutil"
)

// Serve listens on bind and serves handler until ctx is cancelled.
func Serve(ctx context.Context, bind string, handler http.Handler) error {
	l, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("unable to listen on %v, cause %w", bind, err)
	}
	return ServeListener(ctx, l, handler)
}

// ServeListener serves handler on l and shuts down gracefully once ctx is
// done. The listener is closed when it returns.
func ServeListener(ctx context.Context, l net.Listener, handler http.Handler) error {
	server := http.Server{
		Handler:           handler,
		Addr:              l.Addr().String(),
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute * 5,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	log := logutil.GetOrDefault(ctx).With().Str("server.addr", server.Addr).Logger()

	served := make(chan error, 1)
	go func() {
		defer close(served)
		log.Info().Msg("Starting HTTP server")
		err := server.Serve(l)
		if errors.Is(err, http.ErrServerClosed) {
			log.Info().Msg("Server closed")
			return
		}
		served <- err
	}()

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("Initiating shutdown process")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	// wait for Serve to return
	<-served
	if err != nil {
		return fmt.Errorf("unable to shutdown server, cause %w", err)
	}
	log.Info().Msg("Shutdown completed")
	return nil
}

// TrimTrailingSlash routes "/a/b/" as "/a/b".
func TrimTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) > 1 && strings.HasSuffix(r.URL.Path, "/") {
			r2 := r.Clone(r.Context())
			r2.URL.Path = strings.TrimRight(r.URL.Path, "/")
			if r2.URL.Path == "" {
				r2.URL.Path = "/"
			}
			r2.URL.RawPath = ""
			r = r2
		}
		next.ServeHTTP(w, r)
	})
}
