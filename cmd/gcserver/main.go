package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/lemmi/compress"
	"github.com/lemmi/glubblog"
	"github.com/lemmi/glubblog/backend"
	"github.com/lemmi/glubblog/config"
	"github.com/lemmi/glubblog/theme"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	flag.StringVar(&cfg.Prefix, "prefix", cfg.Prefix, "directory with templates/ and static/, empty for the built in theme")
	flag.StringVar(&cfg.Addr, "bind", cfg.Addr, "address or path to bind to")
	flag.StringVar(&cfg.Network, "net", cfg.Network, `"tcp", "tcp4", "tcp6", "unix" or "unixpacket"`)
	flag.StringVar(&cfg.Database, "db", cfg.Database, `"memory:" or "sqlite:<path>"`)
	flag.StringVar(&cfg.Lang, "lang", cfg.Lang, "language of the default blog content")
	flag.BoolVar(&cfg.Git, "git", cfg.Git, "prefix is a git repo")
	flag.BoolVar(&cfg.Bootstrap, "bootstrap", cfg.Bootstrap, "create the default blog if there is none")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "set debug output")
	flag.Parse()

	log, err := config.NewLogger(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	store, err := backend.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Bootstrap {
		_, err := glubblog.Bootstrapper{
			Store:    store,
			Language: glubblog.MatchLanguage(cfg.Lang),
			Log:      log,
		}.Run(ctx)
		if err != nil {
			return err
		}
	}

	h := &handler{
		store:      store,
		log:        log,
		debug:      cfg.Debug,
		userHeader: cfg.UserHeader,
		site:       dirSite(http.FS(theme.FS)),
	}
	if cfg.Prefix != "" {
		path, err := filepath.Abs(cfg.Prefix)
		if err != nil {
			return err
		}
		if cfg.Git {
			h.site = gitSite(path)
		} else {
			h.site = dirSite(http.Dir(path))
		}
	}

	ln, err := net.Listen(cfg.Network, cfg.Addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	if strings.HasPrefix(cfg.Network, "unix") {
		if err := os.Chmod(cfg.Addr, 0666); err != nil {
			return err
		}
	}
	log.Info("Starting", zap.String("addr", cfg.Addr), zap.String("network", cfg.Network))
	log.Debug("Config",
		zap.String("prefix", cfg.Prefix),
		zap.String("db", cfg.Database),
		zap.Bool("git", cfg.Git))
	return http.Serve(ln, compress.New(h.routes()))
}
