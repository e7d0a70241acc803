package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"facility-recon/internal/cli"
	"facility-recon/internal/publish"
	"facility-recon/internal/reconcile/model"
	"facility-recon/internal/reconcile/service"
	"facility-recon/internal/storage"
)

type matchFlags struct {
	threshold    float64
	scorer       string
	masterCol    string
	referenceCol string
	masterHdr    int
	referenceHdr int
	out          string
	publish      bool
	quiet        bool
	norm         model.Normalize
}

func matchCmd() *cobra.Command {
	var f matchFlags
	cmd := &cobra.Command{
		Use:   "match MASTER REFERENCE",
		Short: "Reconcile a master list of facility names against a reference list",
		Long: `Reads both files (csv, tsv, xlsx or xls), matches every master name
against the whole reference list and prints a summary. With --out the
per-row report is written as csv or xlsx, chosen by extension.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, args[0], args[1], f)
		},
	}
	fl := cmd.Flags()
	fl.Float64VarP(&f.threshold, "threshold", "t", -1, "acceptance threshold 0..100 (default from config)")
	fl.StringVarP(&f.scorer, "scorer", "s", "", "scorer: "+strings.Join(service.Scorers(), ", "))
	fl.StringVar(&f.masterCol, "master-column", "", "name column in MASTER (default: auto)")
	fl.StringVar(&f.referenceCol, "reference-column", "", "name column in REFERENCE (default: auto)")
	fl.IntVar(&f.masterHdr, "master-header-row", 1, "header row in MASTER (1-based)")
	fl.IntVar(&f.referenceHdr, "reference-header-row", 1, "header row in REFERENCE (1-based)")
	fl.StringVarP(&f.out, "out", "o", "", "write the report to this .csv or .xlsx file")
	fl.BoolVar(&f.publish, "publish", false, "upload the report to the configured S3 bucket")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "no progress bar")
	fl.BoolVar(&f.norm.Lowercase, "lowercase", false, "compare case-insensitively")
	fl.BoolVar(&f.norm.StripPunct, "strip-punct", false, "ignore punctuation")
	fl.BoolVar(&f.norm.FoldDiacritics, "fold-diacritics", false, "ignore diacritics")
	fl.BoolVar(&f.norm.TokenSort, "token-sort", false, "ignore word order")
	return cmd
}

func runMatch(cmd *cobra.Command, masterPath, referencePath string, f matchFlags) error {
	ctx := cmd.Context()
	start := time.Now()

	opt := model.Options{Threshold: cfg.Threshold, Scorer: cfg.Scorer, Normalize: f.norm}
	if cmd.Flags().Changed("threshold") {
		opt.Threshold = f.threshold
	}
	if f.scorer != "" {
		opt.Scorer = f.scorer
	}
	sc, err := service.NewScorer(opt.Scorer)
	if err != nil {
		return err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.out), "."))
	if f.out != "" && ext != "csv" && ext != "xlsx" {
		return fmt.Errorf("--out must end in .csv or .xlsx, got %q", f.out)
	}
	if f.publish && (f.out == "" || !cfg.S3.Enabled()) {
		return errors.New("--publish needs --out and S3_BUCKET")
	}

	master, errM := service.LoadFile(masterPath, "master", f.masterCol, f.masterHdr)
	reference, errR := service.LoadFile(referencePath, "reference", f.referenceCol, f.referenceHdr)
	if err := errors.Join(errM, errR); err != nil {
		return err
	}
	logger.Debug().
		Str("master_column", master.Column).
		Str("reference_column", reference.Column).
		Int("master_rows", master.Len()).
		Int("reference_rows", reference.Len()).
		Msg("inputs loaded")

	var progress service.ProgressFunc
	if !f.quiet {
		progress = cli.NewProgress(cmd.ErrOrStderr(), master.Len())
	}
	res, err := service.RunWith(master, reference, opt, sc, progress)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	elapsed := time.Since(start)
	logger.Info().
		Str("run_id", runID).
		Int("exact", res.Summary.Exact).
		Int("high", res.Summary.High).
		Int("low", res.Summary.Low).
		Dur("elapsed", elapsed).
		Msg("reconcile done")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderSummary(res.Summary, res.Opts.Scorer))

	if f.out != "" {
		var buf bytes.Buffer
		if err := service.WriteReport(&buf, ext, res); err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		if err := os.WriteFile(f.out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintln(out, cli.FormatSuccess("report written to "+f.out))

		if f.publish {
			pub, err := publish.NewS3Publisher(ctx, publish.Config{
				Bucket:    cfg.S3.Bucket,
				Prefix:    cfg.S3.Prefix,
				Region:    cfg.S3.Region,
				Profile:   cfg.S3.Profile,
				PathStyle: cfg.S3.PathStyle,
			})
			if err != nil {
				return err
			}
			key, err := pub.Publish(ctx, runID, ext, contentType(ext), buf.Bytes())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("published s3://%s/%s", cfg.S3.Bucket, key)))
		}
	}

	if cfg.HistoryDB != "" {
		if err := saveRun(cmd, runID, start, elapsed, masterPath, referencePath, res); err != nil {
			// история вторична: сверка уже выполнена
			logger.Warn().Err(err).Msg("save run history")
		}
	}
	return nil
}

func saveRun(cmd *cobra.Command, runID string, start time.Time, elapsed time.Duration,
	masterPath, referencePath string, res model.Result,
) error {
	store, err := storage.Open(cmd.Context(), cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.SaveRun(cmd.Context(), storage.Run{
		ID:              runID,
		CreatedAt:       start,
		MasterSource:    filepath.Base(masterPath),
		ReferenceSource: filepath.Base(referencePath),
		Scorer:          res.Opts.Scorer,
		Threshold:       res.Opts.Threshold,
		Summary:         res.Summary,
		Duration:        elapsed,
	})
}

func contentType(ext string) string {
	if ext == "xlsx" {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
