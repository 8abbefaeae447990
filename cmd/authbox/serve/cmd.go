package serve

import (
	"github.com/andrebq/authbox/cmd/authbox/serve/api"
	"github.com/andrebq/authbox/cmd/authbox/serve/router"
	"github.com/andrebq/authbox/cmd/authbox/serve/users"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Root command to start the authbox services",
		Subcommands: []*cli.Command{
			api.Cmd(),
			users.Cmd(),
			router.Cmd(),
		},
	}
}
