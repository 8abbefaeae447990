package users

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andrebq/authbox/auth"
	"github.com/andrebq/authbox/directory"
	"github.com/andrebq/authbox/internal/cmdflags"
	"github.com/andrebq/authbox/internal/config"
	"github.com/andrebq/authbox/usersvc"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	var dir *directory.Directory
	dbPath := config.FromEnv().Directory.Path
	return &cli.Command{
		Name:  "users",
		Usage: "Manage the users kept in a directory",
		Flags: []cli.Flag{
			cmdflags.Directory(&dbPath),
		},
		Before: func(ctx *cli.Context) error {
			var err error
			dir, err = directory.Open(ctx.Context, dbPath)
			return err
		},
		After: func(ctx *cli.Context) error {
			if dir == nil {
				return nil
			}
			return dir.Close()
		},
		Subcommands: []*cli.Command{
			registerCmd(&dir),
			listCmd(&dir),
		},
	}
}

func registerCmd(dir **directory.Directory) *cli.Command {
	var email string
	hasherName := "bcrypt"
	return &cli.Command{
		Name:  "register",
		Usage: "Register a new user (password is read from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Email of the user to register",
				Destination: &email,
				Required:    true,
			},
			cmdflags.Hasher(&hasherName),
		},
		Action: func(ctx *cli.Context) error {
			sc := bufio.NewScanner(os.Stdin)
			if !sc.Scan() {
				if sc.Err() != nil {
					return sc.Err()
				}
				return errors.New("missing password from stdin")
			}
			password := strings.TrimSpace(sc.Text())
			if len(password) == 0 {
				return errors.New("missing password from stdin")
			}
			hasher, err := auth.NewHasher(hasherName)
			if err != nil {
				return err
			}
			u, err := usersvc.NewAuth(*dir, hasher).RegisterUser(ctx.Context, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, u.ID)
			return nil
		},
	}
}

func listCmd(dir **directory.Directory) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print the id and email of every user",
		Action: func(ctx *cli.Context) error {
			all, err := (*dir).All(ctx.Context)
			if err != nil {
				return err
			}
			for _, u := range all {
				fmt.Fprintf(ctx.App.Writer, "%v\t%v\n", u.ID, u.Email)
			}
			return nil
		},
	}
}
