package main

import (
	"avito-position-probe/bot"
	"avito-position-probe/config"
	"avito-position-probe/models"
	"avito-position-probe/scraper/avito"
	"avito-position-probe/services"
	"avito-position-probe/storage"
	"avito-position-probe/utils"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
)

// app holds what every command needs once the configuration is loaded.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	fetcher avito.PageFetcher
	closers []func()
}

func newApp(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("env"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	a := &app{cfg: cfg, logger: logger}

	switch cfg.FetchMode {
	case config.FetchModeBrowser:
		browser := avito.NewBrowserFetcher(cfg.BaseURL, cfg.RequestTimeout, cfg.Headless, logger)
		a.fetcher = browser
		a.closers = append(a.closers, browser.Close)
	default:
		fetcher, err := avito.NewHTTPFetcher(avito.HTTPFetcherOptions{
			BaseURL:           cfg.BaseURL,
			Timeout:           cfg.RequestTimeout,
			RequestsPerMinute: cfg.RequestsPerMin,
			Logger:            logger,
		})
		if err != nil {
			return nil, err
		}
		a.fetcher = fetcher
	}

	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var regions []models.RegionCode
	for _, r := range cmd.StringSlice("region") {
		regions = append(regions, models.RegionCode(strings.TrimSpace(r)))
	}

	var requests []models.SweepRequest
	for _, id := range cmd.StringSlice("id") {
		requests = append(requests, models.SweepRequest{
			TargetID: strings.TrimSpace(id),
			Queries:  cmd.StringSlice("query"),
			Regions:  regions,
		})
	}

	// Validate everything up front so a bad id never costs a network call.
	for _, req := range requests {
		if err := req.Validate(a.cfg.MaxQueries); err != nil {
			return err
		}
	}

	sweeper := avito.NewSweeper(a.cfg,
		avito.WithLogger(a.logger),
		avito.WithProgress(func(job models.SweepJob) {
			a.logger.Info("checking",
				"progress", fmt.Sprintf("%d/%d", job.Index, job.Total),
				"query", job.Query,
				"region", models.RegionName(job.Region),
			)
		}),
	)

	var results []avito.SweepResult
	if len(requests) == 1 {
		cells, err := sweeper.Run(ctx, requests[0], a.fetcher)
		results = []avito.SweepResult{{Request: requests[0], Cells: cells, Err: err}}
	} else {
		results = avito.NewSweepPool(sweeper, a.fetcher, a.cfg).Run(ctx, requests)
	}

	csvPath := cmd.String("csv")
	if csvPath == "" {
		csvPath = a.cfg.CSVPath
	}

	var runErr error
	for _, res := range results {
		if res.Cells == nil {
			runErr = errors.Join(runErr, res.Err)
			continue
		}
		if res.Err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("check of %s interrupted: %w", res.Request.TargetID, res.Err))
		}

		fmt.Println(services.BuildReport(res.Cells, res.Request.TargetID))
		if cmd.Bool("table") {
			if err := services.PrintReport(os.Stdout, res.Cells, res.Request.TargetID); err != nil {
				runErr = errors.Join(runErr, err)
			}
		}

		if csvPath != "" {
			path := csvPath
			if len(results) > 1 {
				path = csvPathFor(csvPath, res.Request.TargetID)
			}
			if err := storage.NewCSVWriter(path).Write(res.Request.TargetID, res.Cells); err != nil {
				runErr = errors.Join(runErr, err)
				continue
			}
			a.logger.Info("results saved", "path", path)
		}
	}

	return runErr
}

// csvPathFor derives a per-listing file name: out/report.csv -> out/report_123.csv
func csvPathFor(path, targetID string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + targetID + ext
}

func probeAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id := strings.TrimSpace(cmd.String("id"))
	exists, err := avito.NewProber(a.fetcher, a.cfg.MaxRetries).Exists(ctx, id)
	if err != nil {
		return err
	}

	if exists {
		fmt.Printf("listing %s is live\n", id)
		return nil
	}
	fmt.Printf("listing %s was not found\n", id)
	return nil
}

func chatAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := newSessionStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	b := bot.New(a.cfg, store, a.fetcher, avito.NewProber(a.fetcher, a.cfg.MaxRetries), a.logger)
	return runChat(ctx, b, cmd.Int64("chat-id"), os.Stdin, os.Stdout)
}

type sessionStore interface {
	bot.SessionStore
	Close()
}

func newSessionStore(ctx context.Context, cfg *config.Config) (sessionStore, error) {
	if cfg.SessionBackend != config.SessionBackendPostgres {
		return storage.NewMemorySessionStore(), nil
	}

	store, err := storage.NewPostgresSessionStore(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// runChat feeds stdin to the bot. Commands are sent as soon as they are typed;
// other text is collected until an empty line so several search phrases can
// be sent as one message. It returns as soon as ctx is done, even while
// waiting for input.
func runChat(ctx context.Context, b *bot.Bot, chatID int64, in io.Reader, out io.Writer) error {
	reply := func(text string) error {
		_, err := fmt.Fprintf(out, "%s\n\n", text)
		return err
	}

	if err := b.Handle(ctx, chatID, "/start", reply); err != nil {
		return err
	}
	fmt.Fprintln(out, "(finish every message with an empty line)")

	var pending []string
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		text := strings.Join(pending, "\n")
		pending = pending[:0]
		return b.Handle(ctx, chatID, text, reply)
	}

	lines, readErr := readLines(ctx, in)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if err := <-readErr; err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				return flush()
			}

			line = strings.TrimSpace(line)
			var err error
			switch {
			case strings.HasPrefix(line, "/") && len(pending) == 0:
				err = b.Handle(ctx, chatID, line, reply)
			case line == "":
				err = flush()
			default:
				pending = append(pending, line)
			}
			if err != nil {
				return err
			}
		}
	}
}

// readLines scans in on its own goroutine. lines is closed at EOF, on a read
// error or once ctx is done; the scan error is sent on errc before lines
// closes. A read blocked on in is abandoned when ctx is done.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}
