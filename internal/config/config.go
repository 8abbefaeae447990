package config

import (
	"errors"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/andrebq/authbox/auth"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Auth struct {
			Type            auth.Kind
			SessionName     string
			SessionDuration time.Duration
			Hasher          string
		}
		HTTP struct {
			Host string
			Port int
		}
		Directory struct {
			Path     string
			CacheTTL time.Duration
		}
	}
)

const (
	DefaultDatabasePath = "authbox.db"
)

// FromEnv reads the configuration from the process environment.
func FromEnv() *Config {
	v := viper.New()
	v.AutomaticEnv()
	return load(v)
}

func load(v *viper.Viper) *Config {
	v.SetDefault("auth_type", "")
	v.SetDefault("session_name", auth.DefaultSessionName)
	v.SetDefault("session_duration", "0")
	v.SetDefault("auth_hasher", "bcrypt")
	v.SetDefault("user_cache_ttl", "0s")
	v.SetDefault("api_host", "0.0.0.0")
	v.SetDefault("api_port", 5000)
	v.SetDefault("authbox_db", DefaultDatabasePath)

	c := &Config{}
	c.Auth.Type = auth.Kind(v.GetString("AUTH_TYPE"))
	c.Auth.SessionName = v.GetString("SESSION_NAME")
	c.Auth.SessionDuration = sessionDuration(v.GetString("SESSION_DURATION"))
	c.Auth.Hasher = v.GetString("AUTH_HASHER")
	c.HTTP.Host = v.GetString("API_HOST")
	c.HTTP.Port = v.GetInt("API_PORT")
	c.Directory.Path = v.GetString("AUTHBOX_DB")
	c.Directory.CacheTTL = v.GetDuration("USER_CACHE_TTL")
	return c
}

const (
	maxSessionSeconds = math.MaxInt64 / int64(time.Second)
)

// sessionDuration parses a number of seconds, anything else means no expiry.
// Values beyond what a time.Duration holds are clamped.
func sessionDuration(s string) time.Duration {
	// out of range input is saturated by ParseInt
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	switch {
	case n > maxSessionSeconds:
		n = maxSessionSeconds
	case n < -maxSessionSeconds:
		n = -maxSessionSeconds
	}
	return time.Duration(n) * time.Second
}

func (c *Config) Bind() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.HTTP.Port))
}
