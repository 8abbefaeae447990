package api

import (
	"github.com/andrebq/authbox/apiv1"
	"github.com/andrebq/authbox/auth"
	"github.com/andrebq/authbox/directory"
	"github.com/andrebq/authbox/internal/cmdflags"
	"github.com/andrebq/authbox/internal/config"
	"github.com/andrebq/authbox/internal/httpserver"
	"github.com/andrebq/authbox/internal/logutil"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	cfg := config.FromEnv()
	bindAddr := cfg.Bind()
	dbPath := cfg.Directory.Path
	authType := string(cfg.Auth.Type)
	hasherName := cfg.Auth.Hasher
	return &cli.Command{
		Name:  "api",
		Usage: "Start the v1 API guarded by the strategy selected with AUTH_TYPE",
		Flags: []cli.Flag{
			cmdflags.Bind(&bindAddr),
			cmdflags.Directory(&dbPath),
			cmdflags.AuthType(&authType),
			cmdflags.Hasher(&hasherName),
		},
		Action: func(ctx *cli.Context) error {
			hasher, err := auth.NewHasher(hasherName)
			if err != nil {
				return err
			}
			users, err := directory.OpenCached(ctx.Context, dbPath, cfg.Directory.CacheTTL)
			if err != nil {
				return err
			}
			defer users.Close()
			strategy, err := auth.New(auth.Kind(authType), auth.Options{
				Users:           users,
				Hasher:          hasher,
				SessionName:     cfg.Auth.SessionName,
				SessionDuration: cfg.Auth.SessionDuration,
			})
			if err != nil {
				return err
			}
			log := logutil.GetOrDefault(ctx.Context)
			log.Info().
				Str("auth_type", authType).
				Dur("session_duration", cfg.Auth.SessionDuration).
				Msg("Authentication configured")
			handler := apiv1.AsHandler(ctx.Context, users, strategy, hasher)
			return httpserver.Serve(ctx.Context, bindAddr, handler)
		},
	}
}
