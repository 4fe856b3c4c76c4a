// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports --id, --store, --dsn, --verbose, --version for the interactive editor

package main

import (
	"flag"
	"fmt"
	"strings"
)

type cliArgs struct {
	id      int64
	store   string
	dsn     string
	verbose bool
	version bool
}

func parseFlags() cliArgs {
	var args cliArgs

	flag.Int64Var(&args.id, "id", 1, "Template id to open")
	flag.StringVar(&args.store, "store", "", "Template store: memory, sqlite or postgres")
	flag.StringVar(&args.dsn, "dsn", "", "Store DSN (sqlite file path or postgres URL)")
	flag.BoolVar(&args.verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&args.version, "version", false, "Show version and exit")
	flag.Usage = usage

	flag.Parse()
	return args
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: ctedit [flags]\n       ctedit <command> [flags] [args]\n\nCommands:\n")
	for _, name := range commandNames() {
		fmt.Fprintf(out, "  %-10s %s\n", name, commands[name].usage)
	}
	fmt.Fprintf(out, "\nFlags:\n")
	flag.PrintDefaults()
}

// varsFlag collects repeated Name=Value preview variables.
type varsFlag map[string]string

func (v varsFlag) String() string {
	parts := make([]string, 0, len(v))
	for k, val := range v {
		parts = append(parts, k+"="+val)
	}
	return strings.Join(parts, ",")
}

func (v varsFlag) Set(s string) error {
	name, val, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("want Name=Value, got %q", s)
	}
	v[name] = val
	return nil
}
