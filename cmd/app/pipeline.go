package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/topicsplitter/internal/boundary"
	cfgpkg "github.com/local/topicsplitter/internal/config"
	"github.com/local/topicsplitter/internal/corpus"
	"github.com/local/topicsplitter/internal/export"
	"github.com/local/topicsplitter/internal/ocr"
	"github.com/local/topicsplitter/internal/pdfio"
	"github.com/local/topicsplitter/internal/report"
	"github.com/local/topicsplitter/internal/scan"
	"github.com/local/topicsplitter/internal/segment"
	"github.com/local/topicsplitter/internal/worker"
)

type runOptions struct {
	DryRun  bool
	Single  string
	Subject string
	Exam    string
}

// runPipeline wires scan -> worker pool -> segmentation -> export -> report
// for one run.
func runPipeline(ctx context.Context, cfg cfgpkg.Config, opts runOptions) error {
	reader := pdfio.NewReader()

	var ocrEngine segment.OCREngine
	if cfg.OCR.Enabled {
		ocrEngine = ocr.New(reader, cfg.OCR)
	}
	engine := segment.New(reader, ocrEngine, cfg)
	agg := report.NewAggregator()

	sources, err := collectSources(cfg, opts)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		log.Warn().Str("base_dir", cfg.Paths.BaseDir).Msg("no review pdfs found")
		return nil
	}
	log.Info().Str("run", agg.RunID()).Int("sources", len(sources)).Bool("dry_run", opts.DryRun).Msg("run started")

	proc := &docProcessor{engine: engine, reader: reader, agg: agg, dryRun: opts.DryRun, runID: agg.RunID()}
	if !opts.DryRun {
		store, err := corpus.Open(filepath.Join(cfg.Paths.DataDir, "corpus.db"))
		if err != nil {
			return err
		}
		defer store.Close()
		proc.store = store
		proc.writer = export.NewWriter(cfg.Paths.OutDir, splitterFunc(pdfio.WriteSubrange), reader)
	}

	pool := worker.New(cfg.Worker, proc)
	pool.Start(ctx)
	for _, src := range sources {
		pool.Submit(ctx, worker.Job{
			Source:   src,
			Document: segment.Document{ID: uuid.NewString(), SourcePath: src.Path},
		})
	}
	pool.Drain()

	path, err := agg.WriteFile(cfg.Paths.DataDir)
	if err != nil {
		return err
	}
	rep := agg.Finalize()
	fmt.Printf("%d documents, %d units (ok %d, partial %d, failed %d)\nreport: %s\n",
		rep.Documents, rep.Units, rep.ByStatus[segment.StatusOK],
		rep.ByStatus[segment.StatusPartial], rep.ByStatus[segment.StatusFailed], path)
	return nil
}

func collectSources(cfg cfgpkg.Config, opts runOptions) ([]scan.Source, error) {
	var sources []scan.Source
	if opts.Single != "" {
		fn := filepath.Base(opts.Single)
		sources = []scan.Source{{
			Path:     opts.Single,
			Filename: fn,
			Gen:      "single",
			Week:     "single",
			Subject:  scan.ExtractSubject("", fn),
			Session:  scan.ExtractSession(fn),
		}}
	} else {
		var err error
		sources, err = scan.FindReviewPDFs(cfg.Paths.BaseDir, nil)
		if err != nil {
			return nil, err
		}
	}
	if opts.Subject == "" && opts.Exam == "" {
		return sources, nil
	}
	filtered := sources[:0]
	for _, src := range sources {
		if opts.Subject != "" && src.Subject != opts.Subject {
			continue
		}
		if opts.Exam != "" && src.ExamRound != opts.Exam {
			continue
		}
		filtered = append(filtered, src)
	}
	return filtered, nil
}

type splitterFunc func(src, dst string, start, end int) error

func (f splitterFunc) WriteSubrange(src, dst string, start, end int) error {
	return f(src, dst, start, end)
}

// docProcessor segments one source, writes its unit PDFs and records the
// outcome. With dryRun only segmentation runs.
type docProcessor struct {
	engine *segment.Engine
	reader *pdfio.Reader
	writer *export.Writer
	store  *corpus.Store
	agg    *report.Aggregator
	dryRun bool
	runID  string
}

func (p *docProcessor) Process(ctx context.Context, job worker.Job) {
	res := p.engine.Process(ctx, job.Document)
	defer p.agg.Add(res)

	if p.dryRun {
		for _, u := range res.Units {
			log.Info().Str("source", job.Source.Filename).Str("unit", segment.Describe(u)).Str("title", u.Title).Msg("would write unit")
		}
		return
	}
	if res.Status == segment.StatusFailed || p.writer == nil {
		return
	}

	exported, err := p.writer.WriteUnits(job.Source, res)
	if err != nil {
		log.Error().Err(err).Str("source", job.Source.Path).Msg("unit export incomplete")
	}

	bySeq := map[int]int{}
	for i, u := range res.Units {
		bySeq[u.Seq] = i
	}
	for _, ex := range exported {
		u := res.Units[bySeq[ex.Seq]]
		rec := corpus.UnitRecord{
			RunID:      p.runID,
			Gen:        job.Source.Gen,
			Week:       job.Source.Week,
			Subject:    job.Source.Subject,
			Session:    job.Source.Session,
			Source:     job.Source.Filename,
			Seq:        ex.Seq,
			Title:      ex.Title,
			Domain:     u.Domain,
			Text:       p.unitText(job.Source.Path, u),
			StartPage:  u.StartPage,
			EndPage:    u.EndPage,
			Pages:      ex.Pages,
			ImagePages: ex.ImagePages,
			NeedsOCR:   ex.NeedsOCR,
			Format:     string(res.Format),
			Confidence: u.Confidence,
			Path:       ex.Path,
		}
		if err := p.store.InsertUnit(ctx, rec); err != nil {
			log.Error().Err(err).Str("unit", ex.Filename).Msg("catalog insert failed")
		}
	}
}

// unitText re-reads the unit's page range so the catalog row carries the raw
// text for downstream search. Pages that fail extraction are skipped.
func (p *docProcessor) unitText(path string, u boundary.Boundary) string {
	var b strings.Builder
	for pg := u.StartPage; pg <= u.EndPage; pg++ {
		text, err := p.reader.ExtractPageText(path, pg)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}
