package cmdflags

import (
	"github.com/urfave/cli/v2"
)

func Directory(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "directory",
		Aliases:     []string{"db", "d"},
		Usage:       "Path to the sqlite file that holds users and sessions",
		EnvVars:     []string{"AUTHBOX_DB"},
		Destination: out,
		Value:       *out,
	}
}

func Bind(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "bind",
		Usage:       "Address to bind for incoming requests",
		Destination: out,
		Value:       *out,
	}
}

func AuthType(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "auth-type",
		Usage:       "Authentication strategy: basic_auth, session_auth, session_exp_auth or session_db_auth. Empty disables authentication",
		EnvVars:     []string{"AUTH_TYPE"},
		Destination: out,
		Value:       *out,
	}
}

func Hasher(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "hasher",
		Usage:       "Password hashing algorithm (bcrypt or argon2id)",
		EnvVars:     []string{"AUTH_HASHER"},
		Destination: out,
		Value:       *out,
	}
}

func LogLevel(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "log-level",
		Usage:       "Minimum level of log messages (debug, info, warn, error)",
		Destination: out,
		Value:       *out,
	}
}
