package usecase

import (
	"context"

	"github.com/fadilmartias/converge/internal/config"
	"github.com/fadilmartias/converge/internal/service"
	"github.com/fadilmartias/converge/internal/util"
)

type ResumeUsecase struct {
	backend     service.BackendServiceInterface
	pipeline    *ResumePipeline
	downloadDir string
}

func NewResumeUsecase(backend service.BackendServiceInterface, pipeline *ResumePipeline, cfg *config.ResumeConfig) *ResumeUsecase {
	return &ResumeUsecase{backend: backend, pipeline: pipeline, downloadDir: cfg.DownloadDir}
}

// Upload replaces the stored resume. The document is encoded and its text
// extracted before the upload is issued.
func (uc *ResumeUsecase) Upload(ctx context.Context, document []byte) (util.ProcessedDocument, error) {
	doc, err := uc.pipeline.Run(ctx, document)
	if err != nil {
		return util.ProcessedDocument{}, err
	}
	if err := uc.backend.UploadResume(ctx, doc.Base64); err != nil {
		return util.ProcessedDocument{}, err
	}
	return doc, nil
}

func (uc *ResumeUsecase) DownloadOwn(ctx context.Context) (string, error) {
	return uc.backend.DownloadOwnResume(ctx, uc.downloadDir)
}

func (uc *ResumeUsecase) DownloadOf(ctx context.Context, userID string) (string, error) {
	return uc.backend.DownloadResumeOf(ctx, userID, uc.downloadDir)
}

func (uc *ResumeUsecase) Progress() util.ProgressEstimate {
	return uc.pipeline.Progress()
}
