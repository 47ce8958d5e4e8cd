package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lemmi/glubblog"
	"github.com/lemmi/glubblog/backend"
	"github.com/lemmi/glubblog/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// tool carries what every command needs.
type tool struct {
	cfg   config.Config
	log   *zap.Logger
	store backend.Backend
}

func (t *tool) open(ctx context.Context) error {
	log, err := config.NewLogger(t.cfg.Debug)
	if err != nil {
		return err
	}
	t.log = log
	t.store, err = backend.Open(ctx, t.cfg.Database)
	return err
}

func (t *tool) close() {
	if t.store != nil {
		t.store.Close()
	}
	if t.log != nil {
		t.log.Sync()
	}
}

// holder finds the draft of the blog holder with URL segment segment.
func (t *tool) holder(ctx context.Context, segment string) (glubblog.BlogHolder, error) {
	pages, err := t.store.PagesByType(ctx, glubblog.StageDraft, glubblog.TypeBlogHolder)
	if err != nil {
		return glubblog.BlogHolder{}, err
	}
	for _, p := range pages {
		if p.URLSegment == segment {
			h, _ := glubblog.AsBlogHolder(p)
			return h, nil
		}
	}
	return glubblog.BlogHolder{}, errors.Wrapf(glubblog.ErrNotFound, "blog %q", segment)
}

func newRootCmd() (*cobra.Command, *tool) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Config{Database: "sqlite:glubblog.db", Lang: "en"}
		fmt.Fprintln(os.Stderr, err)
	}
	t := &tool{cfg: cfg}

	root := &cobra.Command{
		Use:           "gctool",
		Short:         "Maintain the blogs of a glubblog database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return t.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&t.cfg.Database, "db", t.cfg.Database, `"memory:" or "sqlite:<path>"`)
	root.PersistentFlags().BoolVar(&t.cfg.Debug, "debug", t.cfg.Debug, "set debug output")

	root.AddCommand(
		t.bootstrapCmd(),
		t.ownersCmd(),
		t.memberCmd(),
		t.grantCmd(),
		t.entryCmd(),
		t.blogCmd(),
	)
	return root, t
}

func main() {
	root, t := newRootCmd()
	err := root.ExecuteContext(context.Background())
	t.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
