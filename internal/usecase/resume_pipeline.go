package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fadilmartias/converge/internal/config"
	"github.com/fadilmartias/converge/internal/service"
	"github.com/fadilmartias/converge/internal/util"
)

// DocumentProcessor turns resume bytes into base64 plus extracted text.
type DocumentProcessor interface {
	Process(ctx context.Context, data []byte) (util.ProcessedDocument, error)
}

// ResumePipeline runs document processing with a simulated progress
// estimate that the shell can poll.
type ResumePipeline struct {
	processor DocumentProcessor
	maxBytes  int64
	interval  time.Duration

	mu      sync.Mutex
	current *util.ProgressEstimator
}

func NewResumePipeline(processor DocumentProcessor, cfg *config.ResumeConfig) *ResumePipeline {
	return &ResumePipeline{
		processor: processor,
		maxBytes:  cfg.MaxBytes,
		interval:  util.DefaultProgressInterval,
	}
}

func (p *ResumePipeline) Run(ctx context.Context, data []byte) (util.ProcessedDocument, error) {
	if len(data) == 0 {
		return util.ProcessedDocument{}, ErrDocumentRequired
	}
	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		return util.ProcessedDocument{}, service.NewValidationError("resume",
			fmt.Sprintf("document is %d bytes, the limit is %d", len(data), p.maxBytes))
	}

	est := util.NewProgressEstimator(p.interval)
	p.mu.Lock()
	p.current = est
	p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	est.Start(runCtx)

	doc, err := p.processor.Process(ctx, data)
	est.Finish()
	return doc, err
}

// Progress reports the estimate of the latest run.
func (p *ResumePipeline) Progress() util.ProgressEstimate {
	p.mu.Lock()
	est := p.current
	p.mu.Unlock()
	if est == nil {
		return util.ProgressEstimate{Simulated: true}
	}
	return est.Estimate()
}
