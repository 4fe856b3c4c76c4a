// ABOUTME: Non-interactive subcommands: list, show, create, rename, delete, export, changelog
// ABOUTME: Each parses its own flag set and runs against the configured template store

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/mauromedda/contract-editor-go/internal/changelog"
	"github.com/mauromedda/contract-editor-go/internal/config"
	"github.com/mauromedda/contract-editor-go/internal/export"
	"github.com/mauromedda/contract-editor-go/internal/mode/print"
	"github.com/mauromedda/contract-editor-go/internal/store"
	"github.com/mauromedda/contract-editor-go/internal/template"
)

// cmdArgs holds the flags shared by every subcommand.
type cmdArgs struct {
	store   string
	dsn     string
	format  string
	preview bool
	raw     bool
	output  string
	vars    varsFlag
}

type command struct {
	usage   string
	nargs   int // minimum positional arguments
	noStore bool
	run     func(ctx context.Context, st template.Store, a cmdArgs, pos []string, w io.Writer) error
}

var commands = map[string]command{
	"list": {
		usage: "List stored templates [--format text|markdown|json]",
		run: func(ctx context.Context, st template.Store, a cmdArgs, _ []string, w io.Writer) error {
			return print.List(ctx, print.Config{OutputFormat: a.format}, print.Deps{Store: st, Out: w})
		},
	},
	"show": {
		usage: "Print template <id> [--format ...] [--preview] [--var Name=Value]",
		nargs: 1,
		run: func(ctx context.Context, st template.Store, a cmdArgs, pos []string, w io.Writer) error {
			id, err := parseID(pos[0])
			if err != nil {
				return err
			}
			cfg := print.Config{OutputFormat: a.format, Preview: a.preview || len(a.vars) > 0, Overrides: a.vars}
			return print.Show(ctx, cfg, print.Deps{Store: st, Out: w}, id)
		},
	},
	"create": {
		usage: "Create an empty template called <name>",
		nargs: 1,
		run: func(ctx context.Context, st template.Store, _ cmdArgs, pos []string, w io.Writer) error {
			doc, err := st.Create(ctx, strings.Join(pos, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "created #%d %s\n", doc.ID, doc.Name)
			return err
		},
	},
	"rename": {
		usage: "Rename template <id> to <name>",
		nargs: 2,
		run: func(ctx context.Context, st template.Store, _ cmdArgs, pos []string, w io.Writer) error {
			id, err := parseID(pos[0])
			if err != nil {
				return err
			}
			name := strings.TrimSpace(strings.Join(pos[1:], " "))
			if name == "" {
				return errors.New("name must not be empty")
			}
			if err := template.Rename(ctx, st, id, name); err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "renamed #%d to %s\n", id, name)
			return err
		},
	},
	"delete": {
		usage: "Delete template <id>",
		nargs: 1,
		run: func(ctx context.Context, st template.Store, _ cmdArgs, pos []string, w io.Writer) error {
			id, err := parseID(pos[0])
			if err != nil {
				return err
			}
			if err := st.Delete(ctx, id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "deleted #%d\n", id)
			return err
		},
	},
	"export": {
		usage: "Write template <id> as HTML [-o file] [--raw] [--var Name=Value]",
		nargs: 1,
		run: func(ctx context.Context, st template.Store, a cmdArgs, pos []string, w io.Writer) error {
			id, err := parseID(pos[0])
			if err != nil {
				return err
			}
			doc, err := st.Fetch(ctx, id)
			if err != nil {
				return fmt.Errorf("fetch template %d: %w", id, err)
			}
			if a.output == "" {
				return export.ExportHTML(doc, export.Options{Overrides: a.vars, Raw: a.raw}, w)
			}
			f, err := os.Create(a.output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", a.output, err)
			}
			if err := export.ExportHTML(doc, export.Options{Overrides: a.vars, Raw: a.raw}, f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	},
	"changelog": {
		usage:   "Show the changelog, or one [version]",
		noStore: true,
		run: func(_ context.Context, _ template.Store, _ cmdArgs, pos []string, w io.Writer) error {
			text := changelog.Get()
			if len(pos) > 0 {
				if text = changelog.Section(pos[0]); text == "" {
					return fmt.Errorf("no changelog entry for %s", pos[0])
				}
			}
			_, err := fmt.Fprintln(w, text)
			return err
		},
	},
}

func commandNames() []string {
	return slices.Sorted(maps.Keys(commands))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid template id %q", s)
	}
	return id, nil
}

// runCommand parses argv for the named subcommand and runs it. Store flags
// override the loaded settings.
func runCommand(ctx context.Context, settings *config.Settings, name string, argv []string, stdout, stderr io.Writer) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}

	a := cmdArgs{vars: make(varsFlag)}
	fs := flag.NewFlagSet("ctedit "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.store, "store", "", "Template store: memory, sqlite or postgres")
	fs.StringVar(&a.dsn, "dsn", "", "Store DSN")
	fs.StringVar(&a.format, "format", "text", "Output format: text, markdown or json")
	fs.BoolVar(&a.preview, "preview", false, "Substitute placeholders as the live preview does")
	fs.BoolVar(&a.raw, "raw", false, "Export without placeholder substitution")
	fs.StringVar(&a.output, "o", "", "Write output to file")
	fs.Var(a.vars, "var", "Preview variable Name=Value (repeatable)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: ctedit %s: %s\n", name, cmd.usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		return err
	}
	if fs.NArg() < cmd.nargs {
		fs.Usage()
		return fmt.Errorf("%s: expected %d argument(s), got %d", name, cmd.nargs, fs.NArg())
	}

	if cmd.noStore {
		return cmd.run(ctx, nil, a, fs.Args(), stdout)
	}

	applyStoreFlags(settings, a.store, a.dsn)
	st, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer st.Close()

	if settings.StoreDriver() == config.DefaultStoreDriver && name != "list" && name != "show" && name != "export" {
		logger.Warn("memory store: changes are discarded on exit; use --store sqlite to keep them")
	}
	return cmd.run(ctx, st, a, fs.Args(), stdout)
}

// applyStoreFlags lets command-line store flags win over settings.
func applyStoreFlags(s *config.Settings, driver, dsn string) {
	if driver != "" {
		s.Store.Driver = driver
	}
	if dsn != "" {
		s.Store.DSN = dsn
	}
}

// openStore opens the configured backend. Fresh databases and the memory
// store start with the demo contracts.
func openStore(ctx context.Context, s *config.Settings) (template.Store, error) {
	driver := s.StoreDriver()
	if driver == config.DefaultStoreDriver {
		return store.NewMemory(store.Seed()...), nil
	}

	sqlStore, err := store.Open(ctx, driver, s.StoreDSN())
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", driver, err)
	}
	n, err := sqlStore.SeedIfEmpty(ctx, store.Seed())
	if err != nil {
		sqlStore.Close()
		return nil, err
	}
	if n > 0 {
		logger.Info("seeded %d templates", n)
	}
	return sqlStore, nil
}
