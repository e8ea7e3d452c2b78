package jobimport

import (
	"context"

	"resume-coach/internal/documents"
	"resume-coach/internal/schemas"
	"resume-coach/internal/shared/telemetry"
	"resume-coach/internal/shared/util"
)

// PageFetcher returns the readable text of a job posting URL.
type PageFetcher interface {
	Fetch(ctx context.Context, raw string) (string, error)
}

// DocumentProcessor extracts text from an uploaded PDF.
type DocumentProcessor interface {
	Process(ctx context.Context, up documents.Upload, opts documents.Options) (documents.Result, error)
}

// Extractor turns posting text into structured job data.
type Extractor interface {
	ExtractJob(ctx context.Context, source string) (schemas.JobData, error)
}

// Service imports job postings from a URL or a PDF.
type Service struct {
	Fetcher   PageFetcher
	Pipeline  DocumentProcessor
	Extractor Extractor
}

// FromURL fetches the posting and extracts company, title and description.
func (s *Service) FromURL(ctx context.Context, ownerID, raw string) (schemas.JobData, error) {
	text, err := s.Fetcher.Fetch(ctx, raw)
	if err != nil {
		telemetry.Warn("job_import.fetch_failed", map[string]any{"user_id": ownerID, "error": err})
		return schemas.JobData{}, err
	}
	text, truncated := util.Truncate(text, util.MaxTextChars)
	telemetry.Info("job_import.fetched", map[string]any{
		"user_id":   ownerID,
		"chars":     util.CharCount(text),
		"truncated": truncated,
	})
	return s.Extractor.ExtractJob(ctx, text)
}

// FromPDF extracts posting text from a PDF without rendering a preview.
func (s *Service) FromPDF(ctx context.Context, up documents.Upload) (schemas.JobData, error) {
	res, err := s.Pipeline.Process(ctx, up, documents.Options{MaxBytes: documents.MaxJobPDFBytes})
	if err != nil {
		return schemas.JobData{}, err
	}
	return s.Extractor.ExtractJob(ctx, res.Markdown)
}
