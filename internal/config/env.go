package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	AIAPIKey       string
	GenModel       string
	LLMBackend     string
	GCPProject     string
	GCPLocation    string
	OCRLanguages   []string
	TessdataPrefix string
	TempDir        string
	FailFast       bool
	ExtractWorkers int
	MaxUploadMB    int
	MaxQuestions   int
	RequestTimeout int
	ClientID       string
	PickerAPIKey   string
	DriveCredsFile string
	DriveFallback  bool
	AwsAccessKey   string
	AwsSecretKey   string
	AwsRegion      string
	S3Endpoint     string
	S3Buckets      []string
	LogLevel       string
	LogNoColor     bool
	StaticDir      string
	CORSOrigins    []string
}

// LLM backends selectable with LLM_BACKEND.
const (
	BackendGenerativeAI = "generative-ai"
	BackendGenAI        = "genai"
	BackendVertex       = "vertex"
	BackendMock         = "mock"
)

// LoadConfig loads .env if present and reads the environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AIAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GenModel:       getEnv("GEN_MODEL", "gemini-1.5-flash"),
		LLMBackend:     strings.ToLower(getEnv("LLM_BACKEND", BackendGenerativeAI)),
		GCPProject:     getEnv("GCP_PROJECT", ""),
		GCPLocation:    getEnv("GCP_LOCATION", "us-central1"),
		OCRLanguages:   getEnvList("OCR_LANG", []string{"eng"}),
		TessdataPrefix: getEnv("TESSDATA_PREFIX", ""),
		TempDir:        getEnv("TEMP_DIR", os.TempDir()),
		FailFast:       getEnvBool("FAIL_FAST", false),
		ExtractWorkers: getEnvInt("EXTRACT_WORKERS", 4),
		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", 32),
		MaxQuestions:   getEnvInt("MAX_QUESTIONS", 200),
		RequestTimeout: getEnvInt("REQUEST_TIMEOUT_SEC", 300),
		ClientID:       getEnv("CLIENT_ID", ""),
		PickerAPIKey:   getEnv("API_KEY", ""),
		DriveCredsFile: getEnv("DRIVE_CREDENTIALS_FILE", ""),
		DriveFallback:  getEnvBool("DRIVE_SERVICE_ACCOUNT_FALLBACK", false),
		AwsAccessKey:   getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:   getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:      getEnv("AWS_REGION", "us-east-2"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3Buckets:      getEnvList("S3_ALLOWED_BUCKETS", nil),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogNoColor:     getEnvBool("LOG_NO_COLOR", false),
		StaticDir:      getEnv("STATIC_DIR", "./public"),
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"*"}),
	}
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("env value is not an int, using default", slog.String("key", key), slog.String("value", v), slog.Int("default", def))
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("env value is not a bool, using default", slog.String("key", key), slog.String("value", v), slog.Bool("default", def))
		return def
	}
	return b
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
