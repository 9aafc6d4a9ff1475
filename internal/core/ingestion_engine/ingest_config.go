package ingestion_engine

import (
	"context"
	"log/slog"

	"github.com/markdave123-py/quizsmith/internal/core"
	"github.com/markdave123-py/quizsmith/internal/core/replyparser"
	"github.com/markdave123-py/quizsmith/internal/models"
)

// IngestConfig tunes the pipeline.
//
// FailFast:       abort the request on the first failed file or batch.
// ExtractWorkers: files extracted concurrently (minimum 1).
// Caps:           questions allowed per generative call.
// SystemPrompt:   system instruction sent with every batch.
// TempDir:        root for per-request temp directories.
// MaxQuestions:   largest numQuestions accepted per request.
type IngestConfig struct {
	FailFast       bool
	ExtractWorkers int
	Caps           CapPolicy
	SystemPrompt   string
	TempDir        string
	MaxQuestions   int
}

// DefaultMaxQuestions is used when IngestConfig.MaxQuestions is unset.
const DefaultMaxQuestions = 200

// FileSource yields one input document. Load runs inside the extraction
// stage so remote fetches are bounded by the same worker limit.
type FileSource interface {
	Name() string
	Load(ctx context.Context) (*models.UploadedFile, error)
}

// Input is one quiz request as received from the transport layer.
// NumQuestions is the raw form value.
type Input struct {
	RequestID    string
	Subject      string
	Format       string
	NumQuestions string
	Files        []FileSource
	AllowPartial bool
}

// Stage is a state of the per-request pipeline.
type Stage string

const (
	StageReceived    Stage = "received"
	StageValidated   Stage = "validated"
	StageExtracting  Stage = "extracting"
	StagePlanning    Stage = "planning"
	StageGenerating  Stage = "generating"
	StageAggregating Stage = "aggregating"
	StageCompleted   Stage = "completed"
	StageErrored     Stage = "errored"
)

// QuizPipeline turns uploaded files into a question table:
//
// extractor: MIME-dispatched text extraction.
// llm:       generative provider, one call per batch.
// prompts:   prompt renderer.
// parser:    reply parser.
// cfg:       runtime policy.
type QuizPipeline struct {
	extractor core.DocumentExtractor
	llm       core.LLMProvider
	prompts   core.PromptBuilder
	parser    *replyparser.Parser
	cfg       IngestConfig
	logger    *slog.Logger
}

type bytesSource struct {
	file models.UploadedFile
}

// NewBytesSource wraps an in-memory upload.
func NewBytesSource(name, mimeType string, data []byte) FileSource {
	return &bytesSource{file: models.UploadedFile{Name: name, MimeType: mimeType, Bytes: data}}
}

func (s *bytesSource) Name() string { return s.file.Name }

func (s *bytesSource) Load(ctx context.Context) (*models.UploadedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := s.file
	return &f, nil
}
