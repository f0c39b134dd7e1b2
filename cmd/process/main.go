package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"labstats/internal/config"
	"labstats/internal/dataprocessing"
	apperrors "labstats/internal/errors"
	"labstats/internal/exporter"
	"labstats/internal/files"
	"labstats/internal/infrastructure"
	"labstats/pkg/contracts"
	"labstats/pkg/contracts/domain"
)

func main() {
	inDir := flag.String("in", "", "input directory with daily export files (defaults to configured downloads dir)")
	outFile := flag.String("out", "", "output workbook path (defaults to configured output file)")
	examConfigPath := flag.String("config", "", "exam lookup table file (defaults to configured path)")
	csvPath := flag.String("csv", "", "optional path for a CSV sidecar of the summary sheet")
	preview := flag.Bool("preview", false, "print the leading summary rows to the console")
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

	if *inDir == "" {
		*inDir = cfg.Paths.DownloadsDir
	}
	if *outFile == "" {
		*outFile = cfg.Paths.OutputFile
	}
	if *examConfigPath == "" {
		*examConfigPath = cfg.Paths.ExamConfigFile
	}

	ctx := infrastructure.WithRunID(context.Background(), uuid.NewString())

	logger.InfoContext(ctx, "starting statistics processing",
		slog.String("input_dir", *inDir),
		slog.String("output_file", *outFile),
		slog.String("exam_config", *examConfigPath))

	if err := run(ctx, cfg, logger, *inDir, *outFile, *examConfigPath, *csvPath, *preview); err != nil {
		logger.ErrorContext(ctx, "processing failed", slog.String("error", err.Error()))
		switch {
		case apperrors.IsNoData(err):
			fmt.Fprintf(os.Stderr, "No usable export files were found in %s. Run the download tool first.\n", *inDir)
		case apperrors.IsLocked(err):
			fmt.Fprintf(os.Stderr, "The output file %s appears to be open in another program. Close it and retry.\n", *outFile)
		default:
			fmt.Fprintf(os.Stderr, "Processing failed: %v\n", err)
		}
		os.Exit(1)
	}

	logger.InfoContext(ctx, "processing completed", slog.String("output_file", *outFile))
	fmt.Printf("Workbook saved to %s\n", *outFile)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, inDir, outFile, examConfigPath, csvPath string, preview bool) error {
	examCfg, err := config.LoadExamConfig(examConfigPath, logger)
	if err != nil {
		return err
	}

	discovery := files.NewDiscovery("")
	exports, err := discovery.FindDailyExports(inDir)
	if err != nil {
		return err
	}
	if len(exports) == 0 {
		return apperrors.NewNoDataError("no daily export files found")
	}

	ingester := dataprocessing.NewIngester(logger, cfg.Report.HeaderSkipRows)
	schema := detectSchema(ingester, exports, logger)

	records, err := ingester.IngestFiles(ctx, exports, schema)
	if err != nil {
		return err
	}

	resolver := dataprocessing.NewMultiplierResolver(examCfg, logger)
	resolver.Apply(ctx, records)

	// Snapshot for the raw sheet: combined and scaled, but before any row
	// is dropped or categorized.
	raw := make([]domain.ExamRecord, len(records))
	for i := range records {
		raw[i] = records[i].Clone()
	}

	filtered := dataprocessing.FilterRecords(ctx, records, logger)

	categorizer := dataprocessing.NewCategorizer(examCfg, logger)
	categorizer.Apply(ctx, filtered)

	derived := cfg.Report.DerivedGroups
	if len(derived) == 0 {
		derived = config.DefaultDerivedGroups()
	}

	aggregator := dataprocessing.NewAggregator(schema, derived, examCfg.CategoryOrder, logger)
	summary := aggregator.Summarize(ctx, filtered)

	writer := exporter.NewWorkbookWriter(schema, logger)
	if err := writer.Write(ctx, outFile, summary, filtered, raw); err != nil {
		return err
	}

	if csvPath != "" {
		csvWriter := exporter.NewCSVWriter(logger)
		if err := csvWriter.WriteSummary(ctx, csvPath, summary); err != nil {
			return err
		}
	}

	if preview {
		fmt.Println(exporter.RenderSummaryPreview(summary, 0))
	}

	return nil
}

// detectSchema reads the header of the first readable export. Unreadable
// leading files are skipped here the same way ingestion will skip them; if
// nothing is readable the schema stays unrecognized and ingestion reports the
// no-data condition.
func detectSchema(ingester *dataprocessing.Ingester, exports []files.ExportFile, logger *slog.Logger) domain.Schema {
	for _, export := range exports {
		columns, err := ingester.ReadColumns(export.Path)
		if err != nil {
			logger.Warn("skipping unreadable export during schema detection",
				slog.String("file", export.Name),
				slog.String("error", err.Error()))
			continue
		}
		return dataprocessing.DetectSchema(columns, logger)
	}
	return domain.SchemaUnrecognized
}
