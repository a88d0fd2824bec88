// Package main is the ti4lookup CLI entry point.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/ti4lookup/internal/catalog"
	"github.com/hyperjump/ti4lookup/internal/cli"
	"github.com/hyperjump/ti4lookup/internal/config"
	"github.com/hyperjump/ti4lookup/internal/data"
	"github.com/hyperjump/ti4lookup/internal/models"
	"github.com/hyperjump/ti4lookup/internal/search"
	"github.com/hyperjump/ti4lookup/internal/server"
	"github.com/hyperjump/ti4lookup/internal/storage"
	"github.com/hyperjump/ti4lookup/internal/visibility"
	"github.com/hyperjump/ti4lookup/internal/watcher"
	"github.com/hyperjump/ti4lookup/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/ti4lookup/config.yaml"

var errUsage = errors.New("usage")

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory takes precedence; when neither exists the built-in defaults are used.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				cfg, err := config.Load(fallback)
				if err != nil {
					return nil, "", err
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}
	var err error
	switch command := args[0]; command {
	case "server":
		err = runServer(args[1:], stderr)
	case "search":
		err = runSearch(args[1:], stdout, stderr)
	case "browse":
		err = runBrowse(args[1:], stdout, stderr)
	case "faction":
		err = runFaction(args[1:], stdout, stderr)
	case "factions":
		err = runFactions(args[1:], stdout, stderr)
	case "live":
		err = runLive(args[1:], stdin, stdout, stderr)
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "ti4lookup version %s\n", version)
	case "help", "--help", "-h":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}
	if err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// commonFlags are the flags shared by every lookup command.
type commonFlags struct {
	fs             *flag.FlagSet
	config         *string
	format         *string
	expansions     *string
	includeRetired *bool
	limit          *int
	faction        *string
	profile        *string
	debug          *bool
}

func newFlagSet(name string, stderr io.Writer) *commonFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return &commonFlags{
		fs:             fs,
		config:         fs.String("config", defaultConfigPath, "config file path"),
		format:         fs.String("format", "text", "output format: text, compact or json"),
		expansions:     fs.String("expansions", "", "comma-separated expansions (pok,codex1..codex4,thundersEdge or all); default from preferences"),
		includeRetired: fs.Bool("include-retired", false, "include cards retired by the selected expansions"),
		limit:          fs.Int("limit", 0, "maximum number of results (0 = default)"),
		faction:        fs.String("faction", "", "faction id or name for faction-only cards"),
		profile:        fs.String("profile", "", "preferences profile id (default from config)"),
		debug:          fs.Bool("debug", false, "enable debug logging"),
	}
}

// parse parses args with trailing flags moved to the front and returns the positionals.
func (c *commonFlags) parse(args []string) ([]string, error) {
	if err := c.fs.Parse(reorderArgs(c.fs, args)); err != nil {
		return nil, err
	}
	return c.fs.Args(), nil
}

func (c *commonFlags) isSet(name string) bool {
	set := false
	c.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// reorderArgs moves flags (and their values) to the front so flag.Parse sees them, keeping
// positionals in order. The flag package stops at the first non-flag argument. Everything
// after "--" stays positional.
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if f := fs.Lookup(name); f != nil && !isBoolFlag(f) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	if len(positional) > 0 && positional[0] == "--" {
		return append(flags, positional...)
	}
	if len(positional) > 0 {
		flags = append(flags, "--")
	}
	return append(flags, positional...)
}

func isBoolFlag(f *flag.Flag) bool {
	bf, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && bf.IsBoolFlag()
}

// buildQuery joins positional args so multi-word queries work with or without quotes.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// app holds the components of one command invocation.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	engine  *search.Engine
	store   storage.Store
	prefs   *storage.Manager
	flags   *commonFlags
	catalog *catalog.Catalog
}

func newApp(ctx context.Context, flags *commonFlags, serve bool) (*app, error) {
	cfg, resolved, err := loadConfig(*flags.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	debug := cfg.Debug || *flags.debug
	logger := zap.NewNop()
	if serve || debug {
		if logger, err = utils.NewLogger(debug); err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	logger.Info("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debug))

	tables, err := data.LoadPath(ctx, cfg.Data.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load card data: %w", err)
	}
	cat := catalog.New(tables)
	engine, err := search.NewEngine(cat, &cfg.Search,
		search.WithLogger(logger),
		search.WithSortConfig(cfg.Sort),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize search engine: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, engine: engine, flags: flags, catalog: cat}
	store, err := storage.Open(cfg.Preferences.Backend, cfg.Preferences.Path)
	if err != nil {
		logger.Warn("preferences disabled", zap.String("path", cfg.Preferences.Path), zap.Error(err))
		return a, nil
	}
	a.store = store
	if serve {
		return a, nil
	}
	profile := cfg.Preferences.Profile
	if *flags.profile != "" {
		profile = *flags.profile
	}
	a.prefs, err = storage.NewManager(ctx, store, profile, storage.WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logger.Sync()
}

// options resolves visibility from the flags, falling back to the stored preferences.
func (a *app) options() (visibility.Options, error) {
	prefs := models.DefaultPreferences()
	if a.prefs != nil {
		prefs = a.prefs.Preferences()
	}
	opts := visibility.Options{
		Selection:      visibility.NewSelection(prefs.Expansions...),
		IncludeRetired: prefs.IncludeRetired,
	}
	if a.flags.isSet("expansions") {
		sel, err := visibility.ParseSelection(strings.Split(*a.flags.expansions, ","))
		if err != nil {
			return opts, err
		}
		opts.Selection = sel
	}
	if a.flags.isSet("include-retired") {
		opts.IncludeRetired = *a.flags.includeRetired
	}
	if *a.flags.faction != "" {
		f, ok := catalog.ResolveFaction(a.catalog.Factions, *a.flags.faction)
		if !ok {
			return opts, fmt.Errorf("unknown faction: %s", *a.flags.faction)
		}
		opts.FactionID = f.ID
	}
	return opts, nil
}

func (a *app) search(ctx context.Context, req search.Request) (*search.Response, error) {
	resp, err := a.engine.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if a.prefs != nil && req.Query != "" {
		if err := a.prefs.AddRecent(ctx, req.Query); err != nil {
			a.logger.Warn("failed to record recent search", zap.Error(err))
		}
	}
	return resp, nil
}

// lookup runs one search command: it parses flags, builds the app and hands each
// positional argument list to fn.
func lookup(name string, args []string, stderr io.Writer, fn func(ctx context.Context, a *app, format cli.SearchOutputFormat, positional []string) error) error {
	flags := newFlagSet(name, stderr)
	positional, err := flags.parse(args)
	if err != nil {
		return err
	}
	format, err := cli.ParseFormat(*flags.format)
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := newApp(ctx, flags, false)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a, format, positional)
}

func runSearch(args []string, stdout, stderr io.Writer) error {
	return lookup("search", args, stderr, func(ctx context.Context, a *app, format cli.SearchOutputFormat, positional []string) error {
		query := buildQuery(positional)
		if query == "" {
			fmt.Fprintln(stderr, "Usage: ti4lookup search [flags] <query>")
			return errUsage
		}
		opts, err := a.options()
		if err != nil {
			return err
		}
		resp, err := a.search(ctx, search.Request{Query: query, Limit: *a.flags.limit, Options: opts})
		if err != nil {
			return err
		}
		return cli.WriteSearchResults(stdout, resp, format)
	})
}

func runBrowse(args []string, stdout, stderr io.Writer) error {
	return lookup("browse", args, stderr, func(ctx context.Context, a *app, format cli.SearchOutputFormat, positional []string) error {
		if len(positional) == 0 {
			fmt.Fprintln(stderr, "Usage: ti4lookup browse [flags] <category> [query]")
			fmt.Fprintf(stderr, "Categories: %s\n", strings.Join(categorySlugs(), ", "))
			return errUsage
		}
		category, ok := models.CategoryFromSlug(positional[0])
		if !ok {
			return fmt.Errorf("unknown category: %s (want one of %s)", positional[0], strings.Join(categorySlugs(), ", "))
		}
		opts, err := a.options()
		if err != nil {
			return err
		}
		resp, err := a.search(ctx, search.Request{
			Query:    buildQuery(positional[1:]),
			Limit:    *a.flags.limit,
			Category: category,
			Options:  opts,
		})
		if err != nil {
			return err
		}
		return cli.WriteSearchResults(stdout, resp, format)
	})
}

func runFaction(args []string, stdout, stderr io.Writer) error {
	return lookup("faction", args, stderr, func(ctx context.Context, a *app, format cli.SearchOutputFormat, positional []string) error {
		if len(positional) == 0 {
			fmt.Fprintln(stderr, "Usage: ti4lookup faction [flags] <faction id or name> [query]")
			return errUsage
		}
		f, ok := catalog.ResolveFaction(a.catalog.Factions, positional[0])
		if !ok {
			return fmt.Errorf("unknown faction: %s", positional[0])
		}
		opts, err := a.options()
		if err != nil {
			return err
		}
		opts.FactionID = f.ID
		resp, err := a.search(ctx, search.Request{Query: buildQuery(positional[1:]), Limit: *a.flags.limit, Options: opts})
		if err != nil {
			return err
		}
		prefix, techs := a.catalog.StartingTechs(f)
		return cli.WriteFactionView(stdout, cli.FactionView{
			Faction:            f,
			StartingTechPrefix: prefix,
			StartingTechs:      techs,
			Search:             resp,
		}, format)
	})
}

func runFactions(args []string, stdout, stderr io.Writer) error {
	return lookup("factions", args, stderr, func(_ context.Context, a *app, format cli.SearchOutputFormat, _ []string) error {
		return cli.WriteFactions(stdout, a.catalog.Factions, format)
	})
}

// runLive reads queries from stdin, one per line, through a debounced session. Only the
// response to the latest line is printed once input pauses.
func runLive(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	return lookup("live", args, stderr, func(ctx context.Context, a *app, format cli.SearchOutputFormat, _ []string) error {
		opts, err := a.options()
		if err != nil {
			return err
		}
		delivered := make(chan struct{}, 1)
		session := search.NewSession(a.engine, search.Request{Limit: *a.flags.limit, Options: opts}, a.cfg.Search.Debounce(),
			func(resp *search.Response, err error) {
				if err != nil {
					fmt.Fprintf(stderr, "Error: %v\n", err)
				} else if werr := cli.WriteSearchResults(stdout, resp, format); werr != nil {
					fmt.Fprintf(stderr, "Error: %v\n", werr)
				}
				select {
				case delivered <- struct{}{}:
				default:
				}
			})
		defer session.Close()

		last, lines := "", 0
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			lines++
			last = strings.TrimSpace(scanner.Text())
			session.SetQuery(last)
			select {
			case <-delivered:
			default:
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		if lines == 0 {
			return nil
		}
		select {
		case <-delivered:
		case <-time.After(10 * time.Second):
			return errors.New("timed out waiting for results")
		}
		if a.prefs != nil && last != "" {
			if err := a.prefs.AddRecent(ctx, last); err != nil {
				a.logger.Warn("failed to record recent search", zap.Error(err))
			}
		}
		return nil
	})
}

func runServer(args []string, stderr io.Writer) error {
	flags := newFlagSet("server", stderr)
	if _, err := flags.parse(args); err != nil {
		return err
	}
	ctx := context.Background()
	a, err := newApp(ctx, flags, true)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	reloader := watcher.NewReloader(a.cfg.Data.Path, a.engine, logger)
	if a.cfg.Data.WatchOrDefault() {
		w, err := watcher.NewWatcher(a.cfg.Data.Path, reloader.OnChange(30*time.Second),
			watcher.WithLogger(logger),
			watcher.WithDebounce(time.Duration(a.cfg.Data.WatchDebounceMS)*time.Millisecond),
		)
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		watchCtx, watchCancel := context.WithCancel(ctx)
		defer watchCancel()
		if err := w.Start(watchCtx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()
	}

	srv := server.NewServer(a.engine, a.store, reloader, a.cfg, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			return err
		}
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func categorySlugs() []string {
	out := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = c.Slug()
	}
	return out
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `ti4lookup - Twilight Imperium 4 card lookup

Usage:
  ti4lookup server [flags]                       Start the HTTP server
  ti4lookup search [flags] <query>               Search every category
  ti4lookup browse [flags] <category> [query]    List or search one category
  ti4lookup faction [flags] <faction> [query]    Show a faction's setup and cards
  ti4lookup factions [flags]                     List factions
  ti4lookup live [flags]                         Read queries from stdin, one per line
  ti4lookup version                              Show version
  ti4lookup help                                 Show this help

Flags:
  --config string           Config file path (default: ./config.yaml, then /usr/local/etc/ti4lookup/config.yaml)
  --format string           Output format: text, compact or json (default: text)
  --expansions string       Comma-separated expansions: pok,codex1,codex2,codex3,codex4,thundersEdge or all
  --include-retired         Include cards retired by the selected expansions
  --limit int               Maximum number of results (default: 50 per category, 120 overall)
  --faction string          Faction id or name whose faction-only cards are shown
  --profile string          Preferences profile id
  --debug                   Enable debug logging

Query syntax:
  word        fuzzy match
  'word       exact substring
  =word       name or text equal to word
  ^word       starts with word
  word$       ends with word
  !word       exclude cards containing word (also !^word, !word$)
  a | b       either term
  "a phrase"  keep spaces inside one term

Examples:
  ti4lookup search sabotage
  ti4lookup search --expansions pok,codex1 "skilled retreat"
  ti4lookup browse technologies --faction sol
  ti4lookup faction hacan trade
  ti4lookup server`)
}
