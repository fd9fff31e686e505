package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cfgpkg "github.com/local/topicsplitter/internal/config"
	logpkg "github.com/local/topicsplitter/internal/logger"
	"github.com/local/topicsplitter/internal/metrics"
	"github.com/local/topicsplitter/internal/report"
)

func main() {
	_ = godotenv.Load()
	cfg := cfgpkg.FromEnv()

	_ = logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
	defer logpkg.Close()

	root := &cobra.Command{
		Use:           "topicsplitter",
		Short:         "Split merged exam-prep review PDFs into per-topic unit PDFs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(cfg), newReportCmd(cfg))

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRunCmd(cfg cfgpkg.Config) *cobra.Command {
	var opts runOptions
	var baseDir, outDir string
	var withOCR bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan the study-material tree, segment every review PDF and write unit PDFs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if baseDir != "" {
				cfg.Paths.BaseDir = baseDir
			}
			if outDir != "" {
				cfg.Paths.OutDir = outDir
			}
			if withOCR {
				cfg.OCR.Enabled = true
			}
			rules, err := cfgpkg.LoadRules(cfg.Paths.RulesFile)
			if err != nil {
				return err
			}
			cfg.Rules = rules

			if cfg.Metrics.Enabled {
				metrics.Init()
				go serveMetrics(cfg.Metrics.Addr)
			}
			return runPipeline(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "preview boundaries without writing files")
	cmd.Flags().BoolVar(&withOCR, "ocr", false, "recognize image-only documents with tesseract")
	cmd.Flags().StringVar(&opts.Single, "single", "", "process one PDF instead of scanning the base dir")
	cmd.Flags().StringVar(&opts.Subject, "subject", "", "only process sources with this subject label")
	cmd.Flags().StringVar(&opts.Exam, "exam", "", "only process exam packets of this round (e.g. 138회)")
	cmd.Flags().StringVar(&baseDir, "base-dir", "", "study-material root (default from SPLIT_BASE_DIR)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "unit PDF output root (default from SPLIT_OUT_DIR)")
	return cmd
}

func newReportCmd(cfg cfgpkg.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "report [file]",
		Short: "Print the summary of a run report (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				matches, err := filepath.Glob(filepath.Join(cfg.Paths.DataDir, "run_*.json"))
				if err != nil || len(matches) == 0 {
					return fmt.Errorf("no run reports under %s", cfg.Paths.DataDir)
				}
				sort.Slice(matches, func(i, j int) bool {
					return modTime(matches[i]).After(modTime(matches[j]))
				})
				path = matches[0]
			}

			rep, err := report.ReadFile(path)
			if err != nil {
				return err
			}
			printReport(rep)
			return nil
		},
	}
}

func printReport(rep report.RunReport) {
	fmt.Printf("run %s  (%s)\n", rep.RunID, rep.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("documents: %d  units: %d\n", rep.Documents, rep.Units)
	fmt.Println("by status:")
	for _, st := range sortedKeys(rep.ByStatus) {
		fmt.Printf("  %-10s %d\n", st, rep.ByStatus[st])
	}
	fmt.Println("by format:")
	for _, f := range sortedKeys(rep.ByFormat) {
		fmt.Printf("  %-14s %d\n", f, rep.ByFormat[f])
	}
	if len(rep.Failures) > 0 {
		fmt.Println("failures:")
		for _, r := range sortedKeys(rep.Failures) {
			fmt.Printf("  %-26s %d\n", r, rep.Failures[r])
		}
	}
	for _, res := range rep.Results {
		if res.Status != "ok" {
			fmt.Printf("  %s: %s %s (%s)\n", res.Status, res.DocumentID, filepath.Base(res.SourcePath), res.FailureReason)
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func modTime(path string) time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Info().Str("addr", addr).Msg("metrics listener started")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics listener failed")
	}
}
