// ABOUTME: CLI entry point for ctedit, the terminal contract-template editor
// ABOUTME: Dispatches subcommands, loads config, opens the store and runs the editor

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	// termfix must be imported before any package that imports bubbletea.
	_ "github.com/mauromedda/contract-editor-go/internal/termfix"

	"github.com/mauromedda/contract-editor-go/internal/config"
	"github.com/mauromedda/contract-editor-go/internal/directory"
	"github.com/mauromedda/contract-editor-go/internal/editor"
	"github.com/mauromedda/contract-editor-go/internal/log"
	"github.com/mauromedda/contract-editor-go/internal/mention"
	"github.com/mauromedda/contract-editor-go/internal/mode/interactive"
	"github.com/mauromedda/contract-editor-go/internal/mode/print"
	"github.com/mauromedda/contract-editor-go/internal/upload"
	"github.com/mauromedda/contract-editor-go/internal/validate"
	"golang.org/x/term"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var logger = log.For("main")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Intercept subcommands before flag parsing.
	if len(os.Args) > 1 {
		if _, ok := commands[os.Args[1]]; ok {
			cfg, err := loadSettings()
			if err == nil {
				err = runCommand(ctx, cfg, os.Args[1], os.Args[2:], os.Stdout, os.Stderr)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				stop()
				os.Exit(1)
			}
			return
		}
	}

	args := parseFlags()

	if args.version {
		fmt.Printf("ctedit %s (%s) built %s\n", version, commit, date)
		return
	}

	if err := run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func loadSettings() (*config.Settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.LogLevel != "" {
		log.SetLevel(log.ParseLevel(cfg.LogLevel))
	}
	return cfg, nil
}

// run opens the requested template and blocks in the interactive editor.
func run(ctx context.Context, args cliArgs) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stderr.Fd())) {
		return errors.New("the editor needs a terminal; use `ctedit show <id>` for non-interactive output")
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if args.verbose {
		log.SetLevel(log.LevelDebug)
	}
	applyStoreFlags(cfg, args.store, args.dsn)

	// Log lines would tear the alternate screen; send them to a file.
	closeLog, err := redirectLog()
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	cwd, _ := os.Getwd()
	kb, err := config.LoadKeybindings(config.GlobalKeybindingsFile(), config.LocalKeybindingsFile(cwd))
	if err != nil {
		return fmt.Errorf("loading keybindings: %w", err)
	}

	var people directory.Source = directory.Default()
	if cfg.Mention.DirectoryFile != "" {
		people = directory.File{Path: cfg.Mention.DirectoryFile}
	}

	sess, err := editor.Open(ctx, args.id, editor.Deps{
		Store:     st,
		Directory: people,
		Uploader:  &upload.Simulated{Delay: cfg.UploadDelay(), BaseURL: cfg.UploadBaseURL()},
		Gate:      validate.New(validate.WithRequireTags(cfg.RequireTags())),
	}, sessionOptions(cfg))
	if err != nil {
		return err
	}
	defer sess.Close()
	logger.Info("editing template %d (store %s)", args.id, cfg.StoreDriver())

	exit, err := interactive.Run(ctx, interactive.AppDeps{
		Session:       sess,
		Keybindings:   kb,
		Directory:     people,
		DirectoryFile: cfg.Mention.DirectoryFile,
	})
	if err != nil || !exit.Saved {
		return err
	}
	// A saved session returns to the template listing.
	return print.List(ctx, print.Config{}, print.Deps{Store: st, Out: os.Stdout})
}

func sessionOptions(cfg *config.Settings) editor.Options {
	return editor.Options{
		QuietPeriod:    cfg.QuietPeriod(),
		MatchMode:      mention.ParseMatchMode(cfg.MatchMode()),
		CommitPolicy:   mention.ParseCommitPolicy(cfg.CommitPolicy()),
		HonorOverrides: cfg.HonorOverrides(),
		AvailableTags:  cfg.AvailableTags(),
	}
}

// redirectLog points the logger at ~/.ctedit/ctedit.log for the lifetime
// of the editor.
func redirectLog() (func(), error) {
	dir := config.GlobalDir()
	if err := config.EnsureDir(dir); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "ctedit.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	prev := log.SetOutput(f)
	return func() {
		log.SetOutput(prev)
		f.Close()
	}, nil
}
