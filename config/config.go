// Package config reads the settings shared by the commands from the environment.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	// Database is a backend.Open DSN.
	Database string `env:"GLUBBLOG_DB" envDefault:"sqlite:glubblog.db"`
	// Lang selects the language of the default content.
	Lang  string `env:"GLUBBLOG_LANG" envDefault:"en"`
	Debug bool   `env:"GLUBBLOG_DEBUG"`

	Addr    string `env:"GLUBBLOG_BIND" envDefault:"localhost:8080"`
	Network string `env:"GLUBBLOG_NET" envDefault:"tcp"`
	// Prefix is a directory with templates/ and static/. Empty uses the built in theme.
	Prefix string `env:"GLUBBLOG_PREFIX"`
	// Git serves Prefix from the master branch of the git repository at Prefix.
	Git bool `env:"GLUBBLOG_GIT"`
	// Bootstrap seeds the default blog when the server starts.
	Bootstrap bool `env:"GLUBBLOG_BOOTSTRAP" envDefault:"true"`
	// UserHeader names the header a fronting proxy stores the member ID in.
	UserHeader string `env:"GLUBBLOG_USER_HEADER" envDefault:"X-Remote-User"`
}

func Load() (Config, error) {
	return Parse(nil)
}

// Parse reads the config from environ, or from the process environment if environ is nil.
func Parse(environ map[string]string) (Config, error) {
	var c Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return c, errors.Wrap(err, "Cannot parse environment")
	}
	return c, nil
}

// NewLogger returns a development logger in debug mode and a production logger otherwise.
func NewLogger(debug bool) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	return log, errors.Wrap(err, "Cannot create logger")
}
