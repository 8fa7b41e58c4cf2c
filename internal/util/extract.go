package util

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/fadilmartias/converge/internal/metrics"
	"github.com/fadilmartias/converge/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/go-fitz"
	"golang.org/x/sync/errgroup"
)

const pdfMIME = "application/pdf"

// UnsupportedFormatError is returned before any parsing when the bytes are
// not a PDF.
type UnsupportedFormatError struct {
	Detected string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format %q, a PDF is required", e.Detected)
}

// ExtractionUnavailableError means no document parser is wired in.
type ExtractionUnavailableError struct {
	Reason string
}

func (e *ExtractionUnavailableError) Error() string {
	return "document text extraction unavailable: " + e.Reason
}

// PageSource is an opened page-based document. Pages are numbered from 1.
type PageSource interface {
	NumPage() int
	PageText(page int) (string, error)
	Close() error
}

// DocumentOpener opens raw document bytes as a PageSource.
type DocumentOpener func(data []byte) (PageSource, error)

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) NumPage() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) PageText(page int) (string, error) {
	return d.doc.Text(page - 1)
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}

// OpenFitzDocument opens a document through MuPDF.
func OpenFitzDocument(data []byte) (PageSource, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return &fitzDocument{doc: doc}, nil
}

// ProcessedDocument is what registration and upload send to the backend.
type ProcessedDocument struct {
	Base64 string
	Text   string
}

type ResumeExtractor struct {
	open    DocumentOpener
	metrics *metrics.Metrics
}

// NewResumeExtractor builds an extractor. A nil opener yields an extractor
// that fails every call with ExtractionUnavailableError.
func NewResumeExtractor(open DocumentOpener, m *metrics.Metrics) *ResumeExtractor {
	return &ResumeExtractor{open: open, metrics: m}
}

// Process encodes and extracts concurrently and returns once both are done.
func (e *ResumeExtractor) Process(ctx context.Context, data []byte) (ProcessedDocument, error) {
	if err := e.check(data); err != nil {
		return ProcessedDocument{}, err
	}

	var out ProcessedDocument
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Base64 = base64.StdEncoding.EncodeToString(data)
		return nil
	})
	g.Go(func() error {
		text, err := e.extract(ctx, data)
		out.Text = text
		return err
	})
	if err := g.Wait(); err != nil {
		return ProcessedDocument{}, err
	}
	return out, nil
}

// ExtractText returns the page texts separated by a blank line.
func (e *ResumeExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if err := e.check(data); err != nil {
		return "", err
	}
	return e.extract(ctx, data)
}

func (e *ResumeExtractor) check(data []byte) error {
	if e.open == nil {
		e.metrics.ObserveExtraction("unavailable")
		return &ExtractionUnavailableError{Reason: "no document parser configured"}
	}
	mt := mimetype.Detect(data)
	if !mt.Is(pdfMIME) {
		e.metrics.ObserveExtraction("unsupported")
		return &UnsupportedFormatError{Detected: mt.String()}
	}
	return nil
}

func (e *ResumeExtractor) extract(ctx context.Context, data []byte) (string, error) {
	doc, err := e.open(data)
	if err != nil {
		e.metrics.ObserveExtraction("failed")
		return "", fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	logger.Debug().Int("pages", total).Msg("extracting resume text")

	var sb strings.Builder
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		raw, err := doc.PageText(n)
		if err != nil {
			e.metrics.ObserveExtraction("failed")
			return "", fmt.Errorf("page %d: %w", n, err)
		}
		sb.WriteString(joinFragments(raw))
		sb.WriteString("\n\n")
	}

	text := strings.TrimSpace(sb.String())
	e.metrics.ObserveExtraction("ok")
	logger.Debug().Int("pages", total).Int("chars", len(text)).Msg("resume text extracted")
	return text, nil
}

// joinFragments collapses a page's text runs into one line, fragments
// separated by a single space.
func joinFragments(raw string) string {
	lines := strings.Split(raw, "\n")
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
