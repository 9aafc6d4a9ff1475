// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/markdave123-py/quizsmith/internal/api/handlers"
	"github.com/markdave123-py/quizsmith/internal/config"
	"github.com/markdave123-py/quizsmith/internal/core"
	driveclient "github.com/markdave123-py/quizsmith/internal/core/drive-client"
	"github.com/markdave123-py/quizsmith/internal/core/ingestion_engine"
	"github.com/markdave123-py/quizsmith/internal/core/llm"
	objectclient "github.com/markdave123-py/quizsmith/internal/core/object-client"
	"github.com/markdave123-py/quizsmith/internal/core/prompts"
	textextractor "github.com/markdave123-py/quizsmith/internal/core/text-extractor"
	"github.com/markdave123-py/quizsmith/internal/services"
)

type App struct {
	QuizPipeline ingestion_engine.Ingestor
	Server       *Server
	closers      []io.Closer
}

// providers holds the generative clients: quiz and topic generation ask for
// JSON output, chat gets plain text.
type providers struct {
	structured core.LLMProvider
	plain      core.LLMProvider
	closer     io.Closer
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	llms, err := newProviders(appCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider, %w", err)
	}
	logger.Info("llm provider ready", slog.String("backend", cfg.LLMBackend), slog.String("model", cfg.GenModel))

	builder, err := prompts.NewBuilder()
	if err != nil {
		return nil, fmt.Errorf("couldn't load prompt templates, %w", err)
	}
	systemPrompt := builder.SystemPrompt()

	maxBytes := int64(cfg.MaxUploadMB) << 20
	extractor := textextractor.New(textextractor.Options{
		Languages:      cfg.OCRLanguages,
		TessdataPrefix: cfg.TessdataPrefix,
	})

	drive, err := driveclient.New(appCtx, driveclient.Options{
		CredentialsFile:        cfg.DriveCredsFile,
		ServiceAccountFallback: cfg.DriveFallback,
		MaxBytes:               maxBytes,
	})
	if err != nil {
		return nil, err
	}

	// A nil interface keeps s3 references failing per file when storage is
	// not configured.
	var objects core.ObjectClient
	s3Opts := objectclient.Options{
		AccessKey:      cfg.AwsAccessKey,
		SecretKey:      cfg.AwsSecretKey,
		Region:         cfg.AwsRegion,
		Endpoint:       cfg.S3Endpoint,
		PathStyle:      cfg.S3Endpoint != "",
		MaxBytes:       maxBytes,
		AllowedBuckets: cfg.S3Buckets,
	}
	if s3Opts.Configured() {
		s3Client, err := objectclient.NewS3Client(appCtx, s3Opts)
		if err != nil {
			return nil, err
		}
		objects = s3Client
		if len(cfg.S3Buckets) == 0 {
			logger.Warn("S3_ALLOWED_BUCKETS is empty, every s3 reference will be rejected")
		}
		logger.Info("object client initialized and ready.", slog.Any("allowed_buckets", cfg.S3Buckets))
	}

	pipeline := ingestion_engine.NewQuizPipeline(extractor, llms.structured, builder, ingestion_engine.IngestConfig{
		FailFast:       cfg.FailFast,
		ExtractWorkers: cfg.ExtractWorkers,
		Caps:           ingestion_engine.DefaultCapPolicy(),
		SystemPrompt:   systemPrompt,
		TempDir:        cfg.TempDir,
		MaxQuestions:   cfg.MaxQuestions,
	}, logger)

	quizService := services.NewQuizService(pipeline, services.NewSourceResolver(drive, objects))
	documentService := services.NewDocumentService(extractor, llms.plain, builder, cfg.TempDir)
	questionService := services.NewQuestionService(llms.structured, builder, cfg.MaxQuestions, logger)

	// Room for multipart boundaries and the text fields.
	bodyLimit := maxBytes + 1<<20
	server := NewServer(cfg, logger, Routes{
		Documents: handlers.NewDocumentHandler(quizService, bodyLimit),
		Chat:      handlers.NewChatHandler(documentService, bodyLimit),
		Questions: handlers.NewQuestionHandler(questionService),
		Env:       handlers.NewEnvHandler(cfg.ClientID, cfg.PickerAPIKey),
	})

	a := &App{QuizPipeline: pipeline, Server: server}
	if llms.closer != nil {
		a.closers = append(a.closers, llms.closer)
	}
	return a, nil
}

func newProviders(ctx context.Context, cfg *config.Config) (*providers, error) {
	switch cfg.LLMBackend {
	case config.BackendMock:
		mock := llm.NewMockLLM()
		return &providers{structured: mock, plain: mock}, nil

	case config.BackendGenAI, config.BackendVertex:
		opts := llm.GenAIOptions{APIKey: cfg.AIAPIKey, Model: cfg.GenModel}
		if cfg.LLMBackend == config.BackendVertex {
			if cfg.GCPProject == "" {
				return nil, fmt.Errorf("GCP_PROJECT is required for the vertex backend")
			}
			opts.Project, opts.Location = cfg.GCPProject, cfg.GCPLocation
		}
		g, err := llm.NewGenAILLM(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &providers{structured: g.WithJSONOutput(), plain: g, closer: g}, nil

	case config.BackendGenerativeAI, "":
		g, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			return nil, err
		}
		return &providers{structured: g.WithJSONOutput(), plain: g, closer: g}, nil

	default:
		return nil, fmt.Errorf("unknown LLM_BACKEND %q", cfg.LLMBackend)
	}
}

func (a *App) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}
