package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lemmi/glubblog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (t *tool) bootstrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the default blog if the database has none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := glubblog.Bootstrapper{
				Store:    t.store,
				Language: glubblog.MatchLanguage(t.cfg.Lang),
				Log:      t.log,
			}.Run(cmd.Context())
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintln(cmd.OutOrStdout(), "blog exists, nothing to do")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&t.cfg.Lang, "lang", t.cfg.Lang, "language of the default content")
	return cmd
}

func (t *tool) ownersCmd() *cobra.Command {
	var sortKey, order string
	cmd := &cobra.Command{
		Use:   "owners",
		Short: "List the members that may own a blog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := glubblog.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			o, err := glubblog.ParseOrder(order)
			if err != nil {
				return err
			}
			owners, err := glubblog.NewOwnerResolver(t.store).Resolve(cmd.Context(), key, o)
			if err != nil {
				return err
			}
			return printMembers(cmd.OutOrStdout(), owners)
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", string(glubblog.SortByName), "sort by name, id or email")
	cmd.Flags().StringVar(&order, "order", string(glubblog.Ascending), "ASC or DESC")
	return cmd
}

func printMembers(w io.Writer, members []glubblog.Principal) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, m := range members {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Email, m.Roles)
	}
	return tw.Flush()
}

func parseRoles(names []string) glubblog.RoleSet {
	rs := glubblog.NewRoleSet()
	for _, n := range names {
		rs.Add(glubblog.Role(strings.ToUpper(strings.TrimSpace(n))))
	}
	return rs
}

func (t *tool) memberCmd() *cobra.Command {
	var (
		name, email string
		roles       []string
	)
	cmd := &cobra.Command{
		Use:   "member ID",
		Short: "Create or update a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := glubblog.Principal{ID: args[0], Name: name, Email: email, Roles: parseRoles(roles)}
			if p.Name == "" {
				p.Name = p.ID
			}
			return t.store.SaveMember(cmd.Context(), p)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name, defaults to the ID")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "roles, e.g. ADMIN or BLOG_MANAGEMENT")
	return cmd
}

func (t *tool) grantCmd() *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "grant ID ROLE...",
		Short: "Grant roles to a member",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := t.store.Member(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if p.Roles == nil {
				p.Roles = glubblog.NewRoleSet()
			}
			for r := range parseRoles(args[1:]) {
				if revoke {
					delete(p.Roles, r)
				} else {
					p.Roles.Add(r)
				}
			}
			if err := t.store.SaveMember(cmd.Context(), p); err != nil {
				return err
			}
			return printMembers(cmd.OutOrStdout(), []glubblog.Principal{p})
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove the roles instead")
	return cmd
}

// editContent opens vim on a temporary markdown file and returns what was saved.
func editContent(initial string) (string, error) {
	vimpath, err := exec.LookPath("vim")
	if err != nil {
		return "", errors.Wrap(err, "Cannot find vim")
	}
	dir, err := os.MkdirTemp("", "gctool")
	if err != nil {
		return "", errors.Wrap(err, "Cannot create temporary directory")
	}
	defer os.RemoveAll(dir)
	fpath := filepath.Join(dir, "article.md")
	if err := os.WriteFile(fpath, []byte(initial), 0600); err != nil {
		return "", errors.Wrapf(err, "Cannot write %q", fpath)
	}

	cmd := exec.Command(vimpath, fpath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(err, "vim failed")
	}
	b, err := os.ReadFile(fpath)
	return string(b), errors.Wrapf(err, "Cannot read %q", fpath)
}

func (t *tool) entryCmd() *cobra.Command {
	var (
		blog, author, title, segment, tags, content string
		simulate, edit                              bool
	)
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Write and publish a new blog entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := t.holder(ctx, blog)
			if err != nil {
				return err
			}
			if segment == "" {
				segment = glubblog.URLSegment(title)
			}
			if edit {
				if content, err = editContent(content); err != nil {
					return err
				}
			}
			entry := glubblog.Page{
				ParentID:   h.ID,
				Type:       glubblog.TypeBlogEntry,
				Title:      title,
				URLSegment: segment,
				Author:     author,
				Tags:       tags,
				Content:    content,
				Date:       glubblog.GCTime(time.Now()),
			}
			if !h.CanContain(entry) {
				return errors.Wrapf(glubblog.ErrChildNotAllowed, "%s below %s", entry.Type, h.Type)
			}

			if !simulate {
				if err := t.store.WritePage(ctx, &entry); err != nil {
					return err
				}
				if err := t.store.Publish(ctx, entry.ID); err != nil {
					return err
				}
			}
			b, err := json.MarshalIndent(entry, "", "\t")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h.EntryLink(entry))
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&blog, "blog", glubblog.DefaultBlogSegment, "URL segment of the blog")
	cmd.Flags().StringVar(&author, "author", "Webmaster", "Set the autorname")
	cmd.Flags().StringVar(&title, "title", "New Entry", "Set the title")
	cmd.Flags().StringVar(&segment, "segment", "", "Set the URL segment, derived from the title if empty")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	cmd.Flags().StringVar(&content, "content", "", "markdown content")
	cmd.Flags().BoolVarP(&simulate, "simulate", "n", false, "Only show the result")
	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "Open vim to edit the content")
	return cmd
}

func (t *tool) blogCmd() *cobra.Command {
	var blog string
	cmd := &cobra.Command{
		Use:   "blog",
		Short: "Inspect and configure a blog",
	}
	cmd.PersistentFlags().StringVar(&blog, "blog", glubblog.DefaultBlogSegment, "URL segment of the blog")

	fields := &cobra.Command{
		Use:   "fields",
		Short: "Show the CMS fields of the blog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := t.holder(cmd.Context(), blog)
			if err != nil {
				return err
			}
			fs, err := glubblog.NewEditor(glubblog.NewOwnerResolver(t.store)).Fields(cmd.Context(), h)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, f := range fs.Fields() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%q\n", f.Tab, f.Name, f.Kind, f.Value)
				for _, o := range f.Options {
					fmt.Fprintf(tw, "\t\t\t%q = %s\n", o.Value, o.Label)
				}
			}
			return tw.Flush()
		},
	}

	set := &cobra.Command{
		Use:   "set NAME=VALUE...",
		Short: "Change CMS fields of the blog and publish it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := t.holder(ctx, blog)
			if err != nil {
				return err
			}
			values := map[string]string{}
			for _, a := range args {
				k, v, ok := strings.Cut(a, "=")
				if !ok {
					return errors.Errorf("expected NAME=VALUE: %q", a)
				}
				values[k] = v
			}
			if owner, ok := values["OwnerID"]; ok && owner != "" {
				if err := checkOwner(cmd, t, owner); err != nil {
					return err
				}
			}
			h.ApplyFields(values)
			p := h.ToPage()
			if err := t.store.WritePage(ctx, &p); err != nil {
				return err
			}
			return t.store.Publish(ctx, p.ID)
		},
	}

	outline := &cobra.Command{
		Use:   "outline",
		Short: "Print the live blog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := t.holder(cmd.Context(), blog)
			if err != nil {
				return err
			}
			v, err := glubblog.LoadHolderView(cmd.Context(), t.store, h, glubblog.Route{}, glubblog.Anonymous)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), v.Outline())
			return nil
		},
	}

	cmd.AddCommand(fields, set, outline)
	return cmd
}

// checkOwner rejects owners that are not in the owner list.
func checkOwner(cmd *cobra.Command, t *tool, id string) error {
	owners, err := glubblog.NewOwnerResolver(t.store).Resolve(cmd.Context(), glubblog.SortByID, glubblog.Ascending)
	if err != nil {
		return err
	}
	for _, o := range owners {
		if o.ID == id {
			return nil
		}
	}
	return errors.Errorf("%q may not own a blog", id)
}
