package users

import (
	"github.com/andrebq/authbox/auth"
	"github.com/andrebq/authbox/directory"
	"github.com/andrebq/authbox/internal/cmdflags"
	"github.com/andrebq/authbox/internal/config"
	"github.com/andrebq/authbox/internal/httpserver"
	"github.com/andrebq/authbox/usersvc"
	"github.com/andrebq/authbox/usersvc/api"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	cfg := config.FromEnv()
	bindAddr := "0.0.0.0:5001"
	dbPath := cfg.Directory.Path
	hasherName := cfg.Auth.Hasher
	return &cli.Command{
		Name:  "users",
		Usage: "Start the user service (register, login, profile and password reset)",
		Flags: []cli.Flag{
			cmdflags.Bind(&bindAddr),
			cmdflags.Directory(&dbPath),
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
			handler := api.AsHandler(ctx.Context, usersvc.NewAuth(users, hasher))
			return httpserver.Serve(ctx.Context, bindAddr, handler)
		},
	}
}
