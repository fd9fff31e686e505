package segment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/topicsplitter/internal/boundary"
	"github.com/local/topicsplitter/internal/config"
	"github.com/local/topicsplitter/internal/format"
	"github.com/local/topicsplitter/internal/mergesplit"
	"github.com/local/topicsplitter/internal/metrics"
	"github.com/local/topicsplitter/internal/stream"
)

// Statuses of one processed document.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Failure reasons reported on partial/failed documents.
const (
	ReasonClassification = "classification_unresolved"
	ReasonMergeAmbiguous = "merge_point_ambiguous"
	ReasonCoverageGap    = "coverage_gap"
	ReasonOCRTimeout     = "ocr_timeout"
	ReasonOCRUnavailable = "ocr_unavailable"
	ReasonExtractFailed  = "extract_failed"
)

// PageReader yields per-page text from a source file. Pages are 0-based.
type PageReader interface {
	PageCount(path string) (int, error)
	ExtractPageText(path string, page int) (string, error)
}

// OCREngine recognizes text on rendered pages when extraction yields nothing.
type OCREngine interface {
	Available() bool
	PagesText(ctx context.Context, path string, first, count int) ([]string, error)
}

// Document is one input to segment.
type Document struct {
	ID         string
	SourcePath string
}

// Result is the terminal outcome for one document. Unit page ranges are
// physical pages of the source file.
type Result struct {
	DocumentID    string              `json:"document_id"`
	SourcePath    string              `json:"source_path"`
	Pages         int                 `json:"pages"`
	Format        format.Tag          `json:"format"`
	Confidence    float64             `json:"confidence"`
	Status        string              `json:"status"`
	FailureReason string              `json:"failure_reason,omitempty"`
	Units         []boundary.Boundary `json:"units"`
	Elapsed       time.Duration       `json:"elapsed"`
}

// Engine runs classification, merge separation, boundary detection and the
// OCR fallback for one document at a time. It is stateless across documents
// and safe for concurrent use.
type Engine struct {
	reader     PageReader
	ocr        OCREngine
	rules      config.Rules
	ocrCfg     config.OCRConfig
	classifier *format.Classifier
	detector   *boundary.Detector
	separator  *mergesplit.Separator
}

func New(reader PageReader, ocr OCREngine, cfg config.Config) *Engine {
	return &Engine{
		reader:     reader,
		ocr:        ocr,
		rules:      cfg.Rules,
		ocrCfg:     cfg.OCR,
		classifier: format.NewClassifier(cfg.Rules),
		detector:   boundary.NewDetector(cfg.Rules),
		separator:  mergesplit.NewSeparator(cfg.Rules),
	}
}

// Process segments one document end to end.
func (e *Engine) Process(ctx context.Context, doc Document) Result {
	start := time.Now()

	res := e.process(ctx, doc)
	res.DocumentID = doc.ID
	res.SourcePath = doc.SourcePath
	res.Elapsed = time.Since(start)
	for i := range res.Units {
		res.Units[i].Seq = i + 1
	}

	metrics.ObserveDocument(res.Status, string(res.Format), len(res.Units), res.Elapsed)
	if res.FailureReason != "" {
		metrics.IncFailure(res.FailureReason)
	}

	ev := log.Info()
	if res.Status == StatusFailed {
		ev = log.Warn()
	}
	ev.Str("doc", doc.ID).
		Str("format", string(res.Format)).
		Str("status", res.Status).
		Str("reason", res.FailureReason).
		Int("pages", res.Pages).
		Int("units", len(res.Units)).
		Dur("elapsed", res.Elapsed).
		Msg("document segmented")
	return res
}

func (e *Engine) process(ctx context.Context, doc Document) Result {
	n, err := e.reader.PageCount(doc.SourcePath)
	if err != nil {
		return Result{Status: StatusFailed, FailureReason: ReasonExtractFailed, Format: format.Unknown}
	}
	pages := make([]string, n)
	for p := 0; p < n; p++ {
		text, err := e.reader.ExtractPageText(doc.SourcePath, p)
		if err != nil {
			return Result{Status: StatusFailed, FailureReason: ReasonExtractFailed, Format: format.Unknown, Pages: n}
		}
		pages[p] = text
	}

	s := stream.Build(pages, e.rules.MinPageChars)
	res := e.segment(ctx, doc, s, false)
	res.Pages = n
	return res
}

// segment handles one stream, recursing once per merged half. ocred marks
// that this stream was already rebuilt from OCR output, which stops a sparse
// reclassification from looping.
func (e *Engine) segment(ctx context.Context, doc Document, s *stream.Stream, ocred bool) Result {
	cls := e.classifier.Classify(s)

	switch cls.Tag {
	case format.Unknown:
		return Result{Format: cls.Tag, Confidence: cls.Confidence, Status: StatusFailed, FailureReason: ReasonClassification}

	case format.Merged:
		return e.segmentMerged(ctx, doc, s, cls)

	case format.Sparse:
		if ocred {
			// OCR ran and the page text is still unusable
			return Result{
				Format:     cls.Tag,
				Confidence: cls.Confidence,
				Status:     StatusPartial,
				Units:      []boundary.Boundary{placeholder(s)},
			}
		}
		return e.segmentSparse(ctx, doc, s, cls)

	default:
		bs, err := e.detector.Detect(s, cls.Tag)
		if err != nil {
			var cov *boundary.CoverageError
			if errors.As(err, &cov) {
				log.Warn().Str("doc", doc.ID).Str("defect", cov.Error()).Msg("boundary coverage defect")
				return Result{Format: cls.Tag, Confidence: cls.Confidence, Status: StatusFailed, FailureReason: ReasonCoverageGap}
			}
			return Result{Format: cls.Tag, Confidence: cls.Confidence, Status: StatusFailed, FailureReason: ReasonClassification}
		}
		for i := range bs {
			bs[i].StartPage += s.Offset
			bs[i].EndPage += s.Offset
		}
		return Result{Format: cls.Tag, Confidence: cls.Confidence, Status: StatusOK, Units: bs}
	}
}

func (e *Engine) segmentMerged(ctx context.Context, doc Document, s *stream.Stream, cls format.Result) Result {
	a, b, err := e.separator.Split(s)
	if err != nil {
		return Result{Format: cls.Tag, Confidence: cls.Confidence, Status: StatusFailed, FailureReason: ReasonMergeAmbiguous}
	}
	log.Info().Str("doc", doc.ID).Int("split_page", b.Offset).Msg("merged document split")

	ra := e.segment(ctx, doc, a, false)
	rb := e.segment(ctx, doc, b, false)

	res := Result{
		Format:     format.Merged,
		Confidence: minf(ra.Confidence, rb.Confidence),
		Status:     worst(ra.Status, rb.Status),
		Units:      append(ra.Units, rb.Units...),
	}
	if res.FailureReason = ra.FailureReason; res.FailureReason == "" {
		res.FailureReason = rb.FailureReason
	}
	return res
}

// segmentSparse renders and recognizes the document's pages, then reruns
// segmentation over the recognized text. Without a usable OCR engine the
// document keeps a single whole-range unit and is reported partial.
func (e *Engine) segmentSparse(ctx context.Context, doc Document, s *stream.Stream, cls format.Result) Result {
	if !e.ocrCfg.Enabled || e.ocr == nil || !e.ocr.Available() {
		metrics.IncOCR("unavailable")
		return Result{
			Format:        cls.Tag,
			Confidence:    cls.Confidence,
			Status:        StatusPartial,
			FailureReason: ReasonOCRUnavailable,
			Units:         []boundary.Boundary{placeholder(s)},
		}
	}

	octx, cancel := context.WithTimeout(ctx, e.ocrCfg.Timeout)
	defer cancel()

	texts, err := e.ocr.PagesText(octx, doc.SourcePath, s.Offset, s.Pages)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.IncOCR("timeout")
			return Result{Format: cls.Tag, Confidence: cls.Confidence, Status: StatusFailed, FailureReason: ReasonOCRTimeout}
		}
		metrics.IncOCR("error")
		log.Error().Err(err).Str("doc", doc.ID).Msg("ocr failed")
		return Result{Format: cls.Tag, Confidence: cls.Confidence, Status: StatusFailed, FailureReason: ReasonOCRUnavailable}
	}
	metrics.IncOCR("success")
	if len(texts) != s.Pages {
		return Result{Format: cls.Tag, Confidence: cls.Confidence, Status: StatusFailed, FailureReason: ReasonOCRUnavailable}
	}

	rs := stream.Build(texts, e.rules.MinPageChars)
	rs.Offset = s.Offset
	return e.segment(ctx, doc, rs, true)
}

func placeholder(s *stream.Stream) boundary.Boundary {
	return boundary.Boundary{StartPage: s.Offset, EndPage: s.Offset + s.Pages - 1}
}

func worst(a, b string) string {
	rank := func(st string) int {
		switch st {
		case StatusFailed:
			return 2
		case StatusPartial:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

func minf(a, b float64) float64 {
	if b < a {
		return b
	}
	return a
}

// Describe renders one unit range for logs, 1-based for humans.
func Describe(b boundary.Boundary) string {
	return fmt.Sprintf("Q%02d p%d-%d", b.Seq, b.StartPage+1, b.EndPage+1)
}
