package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"labstats/internal/config"
	"labstats/internal/files"
	"labstats/internal/infrastructure"
	"labstats/pkg/contracts"
)

func main() {
	fromStr := flag.String("from", "", "first report date (YYYY-MM-DD); defaults to the day after the newest downloaded report")
	toStr := flag.String("to", "", "last report date (YYYY-MM-DD); defaults to the from date")
	outDir := flag.String("out", "", "directory to save reports (defaults to configured downloads dir)")
	headless := flag.Bool("headless", false, "run browser headless (requires an already saved session)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if *outDir == "" {
		*outDir = cfg.Paths.DownloadsDir
	}

	var from time.Time
	if *fromStr != "" {
		from, err = time.Parse("2006-01-02", *fromStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -from date %q: %v\n", *fromStr, err)
			os.Exit(2)
		}
	} else if latest, found := files.NewDiscovery("").LatestExportDate(*outDir); found {
		// Resume the range after the newest report already on disk.
		from = latest.AddDate(0, 0, 1)
		logger.Info("resuming after last downloaded report",
			slog.String("last_downloaded", latest.Format("2006-01-02")))
	} else {
		fmt.Fprintln(os.Stderr, "Usage: download -from YYYY-MM-DD [-to YYYY-MM-DD] [-out dir]")
		fmt.Fprintln(os.Stderr, "No previous downloads found to resume from; -from is required.")
		os.Exit(2)
	}

	to := from
	if *toStr != "" {
		to, err = time.Parse("2006-01-02", *toStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -to date %q: %v\n", *toStr, err)
			os.Exit(2)
		}
	}
	if to.Before(from) {
		fmt.Fprintln(os.Stderr, "-to date is before -from date")
		os.Exit(2)
	}

	if err := files.NewManager("").EnsureDirectory(*outDir); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create output directory %s: %v\n", *outDir, err)
		os.Exit(1)
	}

	if flagPassed("headless") {
		cfg.Download.Headless = *headless
	}

	logger.Info("starting report download",
		slog.String("url", cfg.Download.URL),
		slog.String("from", from.Format("2006-01-02")),
		slog.String("to", to.Format("2006-01-02")),
		slog.String("output_dir", *outDir),
		slog.Bool("headless", cfg.Download.Headless))

	downloaded, err := runDownloads(cfg, logger, from, to, *outDir)
	if err != nil {
		logger.Error("download run failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Download failed: %v\n", err)
		os.Exit(1)
	}
	if downloaded == 0 {
		fmt.Fprintln(os.Stderr, "No reports were downloaded")
		os.Exit(1)
	}

	fmt.Printf("Downloaded %d report(s) to %s\n", downloaded, *outDir)
}

func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

// runDownloads drives one browser session through the whole date range. The
// browser profile persists under browser_data so a login survives across
// runs.
func runDownloads(cfg *config.Config, logger *slog.Logger, from, to time.Time, outDir string) (int, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Download.Headless),
		chromedp.UserDataDir("browser_data"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	if err := chromedp.Run(ctx, chromedp.Navigate(cfg.Download.URL)); err != nil {
		return 0, fmt.Errorf("navigate to %s: %w", cfg.Download.URL, err)
	}

	if err := waitForLogin(ctx, cfg.Download.LoginWait, logger); err != nil {
		return 0, err
	}
	logger.Info("session detected, starting downloads")

	limiter := rate.NewLimiter(rate.Every(cfg.Download.DelayBetween), 1)
	manager := files.NewManager(outDir)

	downloaded := 0
	first := true
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		dateStr := day.Format("2006-01-02")
		if manager.FileExists(dateStr + ".xlsx") {
			logger.Info("report already downloaded, skipping", slog.String("date", dateStr))
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return downloaded, err
		}

		if err := downloadDay(ctx, cfg.Download, logger, dateStr, outDir, first); err != nil {
			logger.Warn("skipping day after download failure",
				slog.String("date", dateStr),
				slog.String("error", err.Error()))
			continue
		}
		first = false
		downloaded++
	}

	logger.Info("download run finished", slog.Int("files_downloaded", downloaded))
	return downloaded, nil
}

// waitForLogin polls for the report-generation button. The page may sit on a
// login form until the operator signs in by hand, so failures to evaluate are
// retried until the deadline.
func waitForLogin(ctx context.Context, maxWait time.Duration, logger *slog.Logger) error {
	const checkInterval = 2 * time.Second

	js := `[...document.querySelectorAll('button')].some(b => b.textContent.includes('Generar informe'))`

	deadline := time.Now().Add(maxWait)
	announced := false
	for {
		var ready bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(js, &ready)); err == nil && ready {
			return nil
		}

		if !announced {
			logger.Info("no active session detected, waiting for operator login",
				slog.Duration("max_wait", maxWait))
			fmt.Println("Please sign in using the browser window...")
			announced = true
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s waiting for login", maxWait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(checkInterval):
		}
	}
}

// downloadDay requests the report for a single date and saves it as
// {date}.xlsx. On the first day it also selects the grouping that yields the
// section-by-attendance-type layout.
func downloadDay(ctx context.Context, dl config.DownloadConfig, logger *slog.Logger, dateStr, outDir string, first bool) error {
	logger.Info("requesting report", slog.String("date", dateStr))

	setDates := fmt.Sprintf(`
		document.getElementById(%[1]q).value = %[3]q;
		document.getElementById(%[2]q).value = %[3]q;
		document.getElementById(%[1]q).dispatchEvent(new Event('input', { bubbles: true }));
		document.getElementById(%[2]q).dispatchEvent(new Event('input', { bubbles: true }));
	`, dl.DateFromID, dl.DateToID, dateStr)

	if err := chromedp.Run(ctx, chromedp.Evaluate(setDates, nil)); err != nil {
		return fmt.Errorf("set date inputs: %w", err)
	}

	if first {
		selectGroup := fmt.Sprintf(`
			(() => {
				const el = document.getElementById(%q);
				if (!el) return false;
				el.value = %q;
				el.dispatchEvent(new Event('change', { bubbles: true }));
				return true;
			})()
		`, dl.GroupDropdownID, dl.GroupValue)

		var ok bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(selectGroup, &ok)); err != nil {
			return fmt.Errorf("select grouping: %w", err)
		}
		if !ok {
			logger.Warn("grouping dropdown not found, using page default",
				slog.String("dropdown_id", dl.GroupDropdownID))
		}
	}

	href, err := findExcelLink(ctx, dl.DownloadTimeout)
	if err != nil {
		return err
	}

	dest := filepath.Join(outDir, dateStr+".xlsx")
	if err := downloadFile(ctx, href, dest, logger); err != nil {
		return err
	}

	logger.Info("report saved", slog.String("file", filepath.Base(dest)))
	return nil
}

// findExcelLink clicks the generate button if the export menu is closed and
// polls for the Excel link's absolute URL.
func findExcelLink(ctx context.Context, timeout time.Duration) (string, error) {
	const pollInterval = 250 * time.Millisecond

	js := `
		(() => {
			const link = [...document.querySelectorAll('a')].find(a => a.textContent.includes('Excel'));
			if (link) return link.href;
			const btn = [...document.querySelectorAll('button')].find(b => b.textContent.includes('Generar informe'));
			if (btn) btn.click();
			return '';
		})()
	`

	deadline := time.Now().Add(timeout)
	for {
		var href string
		if err := chromedp.Run(ctx, chromedp.Evaluate(js, &href)); err != nil {
			return "", fmt.Errorf("locate excel link: %w", err)
		}
		if href != "" {
			return href, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("excel link did not appear within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func downloadFile(ctx context.Context, url, dest string, logger *slog.Logger) error {
	logger.Debug("downloading file",
		slog.String("url", url),
		slog.String("destination", dest))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download failed for %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status for %s: %s", url, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create file %s: %w", dest, err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("write file %s: %w", dest, err)
	}

	logger.Debug("file downloaded",
		slog.String("file", filepath.Base(dest)),
		slog.Int64("size_bytes", written))

	return nil
}
