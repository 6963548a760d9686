package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brogergvhs/mangatoc/internal/config"
	"github.com/brogergvhs/mangatoc/internal/fetch"
	"github.com/brogergvhs/mangatoc/internal/log"
	"github.com/brogergvhs/mangatoc/internal/providers"
	"github.com/brogergvhs/mangatoc/internal/rules"
	"github.com/brogergvhs/mangatoc/internal/store"
	"github.com/brogergvhs/mangatoc/internal/toc"
	"github.com/brogergvhs/mangatoc/internal/ui"
	"github.com/brogergvhs/mangatoc/internal/util"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// selection
	flagSource  string
	flagURL     string
	flagTocURL  string
	flagName    string
	flagReverse bool
	flagChapter string
	flagRange   string
	flagList    string

	// runtime
	flagSave     bool
	flagDryRun   bool
	flagFanout   int
	flagSources  string
	flagDBDriver string
	flagDBDSN    string
	flagLogFile  string

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	tocCmd := &cobra.Command{
		Use:   "toc",
		Short: "Resolve the chapter list of a book. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runToc,
	}

	// selection
	tocCmd.Flags().StringVar(&flagSource, "source", "", "name of the source the book belongs to")
	tocCmd.Flags().StringVar(&flagURL, "url", "", "book page URL")
	tocCmd.Flags().StringVar(&flagTocURL, "toc-url", "", "table of contents URL when it differs from the book page")
	tocCmd.Flags().StringVar(&flagName, "name", "", "book name stored with the catalog")
	tocCmd.Flags().BoolVar(&flagReverse, "reverse", false, "list the newest chapter first")
	tocCmd.Flags().StringVar(&flagChapter, "chapter", "", "show a single chapter by title or position (e.g. 5)")
	tocCmd.Flags().StringVar(&flagRange, "range", "", "show a range of chapters by position (e.g. 5-12)")
	tocCmd.Flags().StringVar(&flagList, "list", "", "show specific chapter positions (e.g. 1,3,5)")

	// runtime
	tocCmd.Flags().BoolVar(&flagSave, "save", true, "store the catalog and bookkeeping")
	tocCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "resolve and print, never create or write the catalog store")
	tocCmd.Flags().IntVar(&flagFanout, "fanout", 0, "max toc pages fetched at once (0 = no limit)")
	tocCmd.Flags().StringVar(&flagSources, "sources", "", "path to the sources file")
	tocCmd.Flags().StringVar(&flagDBDriver, "db-driver", "", "catalog database driver (sqlite3 or mysql)")
	tocCmd.Flags().StringVar(&flagDBDSN, "db-dsn", "", "catalog database dsn or sqlite file")
	tocCmd.Flags().StringVar(&flagLogFile, "log-file", "", "write structured logs to this file")

	// headers/auth
	tocCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	tocCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	tocCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(tocCmd)
}

func runToc(cmd *cobra.Command, _ []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:  flagIgnoreConfig,
		Debug:         flagDebug,
		SourcesFile:   flagSources,
		DefaultSource: flagSource,
		DBDriver:      flagDBDriver,
		DBDSN:         flagDBDSN,
		FanoutLimit:   flagFanout,
		Cookie:        flagCookie,
		CookieFile:    flagCookieFile,
		UserAgent:     flagUserAgent,
		LogFile:       flagLogFile,
	})
	if err != nil {
		return err
	}

	logger, closer := log.New(log.Options{Debug: cfg.Debug, LogFile: cfg.LogFile})
	defer closer.Close()
	defer func() { _ = logger.Sync() }()

	logSvc := ui.NewLogger(cfg.Debug, logger)
	logSvc.Debugf("Config file: %s\n", usedPath)

	if flagURL == "" {
		return fmt.Errorf("missing --url")
	}

	sources, err := config.LoadSources(cfg.SourcesFile)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no sources file at %s\nRun `mangatoc config init` to create one", cfg.SourcesFile)
	}
	if err != nil {
		return err
	}

	src, err := pickSource(sources, cfg.DefaultSource)
	if err != nil {
		return err
	}

	ctx, stop := util.SetupInterruptHandler(context.Background())
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	book, known, err := loadBook(ctx, st, src)
	if err != nil && flagDryRun {
		logSvc.Debugf("No prior bookkeeping: %v\n", err)
		book, known, err = loadBook(ctx, nil, src)
	}
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("reverse") {
		book.ReverseToc = flagReverse
	} else if !known {
		book.ReverseToc = cfg.Reverse
	}

	stats := &ui.Stats{}
	pm := ui.NewProgressManager(os.Stderr)
	handle := pm.Register(src.Name, stats)

	client, err := fetch.NewClient(fetch.Options{
		Timeout:          cfg.Timeout,
		UserAgent:        cfg.UserAgent,
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		Retries:          cfg.Retries,
		RatePerSecond:    cfg.RatePerSecond,
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      logSvc,
		OnRead:           stats.Read,
	})
	if err != nil {
		return err
	}

	opts := []toc.Option{
		toc.WithLogger(logger),
		toc.WithFanoutLimit(cfg.FanoutLimit),
		toc.WithPageHook(handle.PageDone),
	}
	if cfg.Debug {
		opts = append(opts, toc.WithDebugLog(toc.ZapDebugLog{Logger: logger}))
	}
	resolver := toc.NewResolver(client, rules.NewEngine(), opts...)

	start := time.Now()
	res, err := resolver.ResolveBook(ctx, src, book)
	if err != nil {
		handle.Abort()
		pm.Close()
		logger.Error("toc failed", zap.String("book", book.BookURL), zap.Error(err))
		return describe(err)
	}
	handle.MarkDone()
	pm.Close()

	selected := providers.Filter(res.Catalog, flagChapter, flagRange, flagList)
	if len(selected) == 0 {
		return fmt.Errorf("no chapters selected")
	}
	printCatalog(selected)

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("Chapters: %d\n", res.Book.TotalChapterCount)
	if known {
		fmt.Printf("New:      %d\n", max(res.Book.TotalChapterCount-book.TotalChapterCount, 0))
	}
	fmt.Printf("Latest:   %s\n", res.Book.LatestChapterTitle)
	fmt.Printf("Current:  %s\n", res.Book.CurrentChapterTitle)
	fmt.Printf("Pages:    %d\n", res.Pages)
	elapsed := time.Since(start)
	fmt.Printf("Data:     %s (%s)\n", util.Human(stats.Bytes()), util.HumanRate(stats.Bytes(), elapsed))
	fmt.Printf("Time:     %s\n", elapsed.Round(time.Millisecond))

	if flagDryRun || !flagSave {
		fmt.Println("\nNothing stored.")
		return nil
	}

	if err := st.SaveCatalog(ctx, res.Book, res.Catalog); err != nil {
		return err
	}
	fmt.Println("\nCatalog stored.")

	return nil
}

func pickSource(sources []providers.Source, name string) (providers.Source, error) {
	if name != "" {
		return config.FindSource(sources, name)
	}
	if len(sources) == 0 {
		return providers.Source{}, fmt.Errorf("no sources configured")
	}
	if len(sources) == 1 {
		return sources[0], nil
	}

	items := make([]string, 0, len(sources))
	for _, s := range sources {
		items = append(items, fmt.Sprintf("%s  (%s)", s.Name, s.URL))
	}

	prompt := promptui.Select{
		Label: "Select source",
		Items: items,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return providers.Source{}, fmt.Errorf("selection cancelled")
	}

	return sources[idx], nil
}

// openStore opens and migrates the catalog store. A dry run opens it
// read-only and gets a nil store when the database does not exist yet.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store.Store, error) {
	if flagDryRun {
		st, err := store.Open(cfg.DBDriver, cfg.DBDSN, store.WithLogger(logger), store.ReadOnly())
		if errors.Is(err, store.ErrNoDatabase) {
			return nil, nil
		}
		return st, err
	}

	st, err := store.Open(cfg.DBDriver, cfg.DBDSN, store.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	return st, nil
}

// loadBook returns the stored book for --url, or a fresh one. known reports
// whether bookkeeping from an earlier run exists. A nil store knows no books.
func loadBook(ctx context.Context, st *store.Store, src providers.Source) (providers.Book, bool, error) {
	err := store.ErrBookNotFound
	var book providers.Book
	if st != nil {
		book, err = st.LoadBook(ctx, flagURL)
	}
	switch {
	case errors.Is(err, store.ErrBookNotFound):
		book = providers.Book{BookURL: flagURL}
	case err != nil:
		return book, false, err
	}
	known := err == nil

	book.Origin = src.Name
	if flagTocURL != "" {
		book.TocURL = flagTocURL
	}
	if flagName != "" {
		book.Name = flagName
	}

	return book, known, nil
}

func printCatalog(chs []providers.Chapter) {
	for _, ch := range chs {
		var marks []string
		if ch.IsVip {
			marks = append(marks, "vip")
		}
		if ch.IsPay {
			marks = append(marks, "pay")
		}
		if ch.Tag != "" {
			marks = append(marks, ch.Tag)
		}

		line := fmt.Sprintf("%4d) %s", ch.Index+1, ch.Title)
		if len(marks) > 0 {
			line += "  [" + strings.Join(marks, ", ") + "]"
		}
		fmt.Printf("%s\n      %s\n", line, ch.URL)
	}
}

func describe(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("interrupted")
	case errors.Is(err, providers.ErrEmptyCatalog):
		return fmt.Errorf("the source returned no chapters, check its toc rules: %w", err)
	case errors.Is(err, providers.ErrSelector):
		return fmt.Errorf("a toc rule is invalid: %w", err)
	default:
		return err
	}
}
