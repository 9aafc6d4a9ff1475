package services

import (
	"context"

	ingestion "github.com/markdave123-py/quizsmith/internal/core/ingestion_engine"
	"github.com/markdave123-py/quizsmith/internal/models"
)

// Source is one entry of the files field: an uploaded part or a reference.
type Source struct {
	Upload *models.UploadedFile
	Ref    string
}

// QuizRequest carries the raw form values of a quiz request.
type QuizRequest struct {
	RequestID    string
	Subject      string
	Format       string
	NumQuestions string
	Sources      []Source
	AccessToken  string
	AllowPartial bool
}

type QuizService struct {
	ingestor ingestion.Ingestor
	resolver *SourceResolver
}

func NewQuizService(ingestor ingestion.Ingestor, resolver *SourceResolver) *QuizService {
	return &QuizService{ingestor: ingestor, resolver: resolver}
}

// Generate runs the pipeline over the request's sources in form order.
func (s *QuizService) Generate(ctx context.Context, req QuizRequest) (*models.PipelineResult, error) {
	files := make([]ingestion.FileSource, 0, len(req.Sources))
	for _, src := range req.Sources {
		if src.Upload != nil {
			files = append(files, ingestion.NewBytesSource(src.Upload.Name, src.Upload.MimeType, src.Upload.Bytes))
			continue
		}
		files = append(files, s.resolver.Resolve(src.Ref, req.AccessToken))
	}

	return s.ingestor.Run(ctx, ingestion.Input{
		RequestID:    req.RequestID,
		Subject:      req.Subject,
		Format:       req.Format,
		NumQuestions: req.NumQuestions,
		Files:        files,
		AllowPartial: req.AllowPartial,
	})
}
