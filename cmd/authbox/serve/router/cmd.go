package router

import (
	"net/url"

	"github.com/andrebq/authbox/internal/cmdflags"
	"github.com/andrebq/authbox/internal/edgeproxy"
	"github.com/andrebq/authbox/internal/httpserver"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:7007"
	apiEndpoint := "http://localhost:5000/"
	usersEndpoint := "http://localhost:5001/"
	return &cli.Command{
		Name:  "router",
		Usage: "Start a proxy that fronts both the v1 API and the user service",
		Flags: []cli.Flag{
			cmdflags.Bind(&bindAddr),
			&cli.StringFlag{
				Name:        "api-endpoint",
				Usage:       "Base endpoint of the v1 API",
				Destination: &apiEndpoint,
				Value:       apiEndpoint,
			},
			&cli.StringFlag{
				Name:        "users-endpoint",
				Usage:       "Base endpoint of the user service",
				Destination: &usersEndpoint,
				Value:       usersEndpoint,
			},
		},
		Action: func(ctx *cli.Context) error {
			apiURL, err := url.Parse(apiEndpoint)
			if err != nil {
				return err
			}
			usersURL, err := url.Parse(usersEndpoint)
			if err != nil {
				return err
			}
			handler, err := edgeproxy.AsHandler(ctx.Context, apiURL, usersURL)
			if err != nil {
				return err
			}
			return httpserver.Serve(ctx.Context, bindAddr, handler)
		},
	}
}
