package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

func init() {
	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		log.Warnf("警告: 无法加载.env文件: %v", err)
	}
}

// Config 应用配置
type Config struct {
	Server    ServerConfig
	Claude    ProviderConfig
	OpenAI    ProviderConfig
	Image     ImageConfig
	MinIO     MinIOConfig
	Paths     PathsConfig
	Crawler   CrawlerConfig
	LogLevel  string
	Timeout   time.Duration
	EnvFile   string
	Providers []string
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string
	Env  string
}

// ProviderConfig 文本生成服务配置
type ProviderConfig struct {
	BaseURL   string
	Model     string
	MaxTokens int
}

// ImageConfig 图片生成服务配置
type ImageConfig struct {
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiBaseURL string
	GeminiModel   string
	FontPath      string
}

// MinIOConfig MinIO存储配置
type MinIOConfig struct {
	Enabled         bool
	Endpoint        string
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// PathsConfig 本地文件路径配置
type PathsConfig struct {
	AutomationConfig string
	FeedsFile        string
	ProcessedFile    string
	OutputDir        string
	LogDir           string
	TempDir          string
}

// CrawlerConfig 抓取相关配置
type CrawlerConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// LoadConfig 从环境变量加载配置
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("APP_PORT", "3001"),
			Env:  getEnvOrDefault("WORKER_ENV", "production"),
		},
		Claude: ProviderConfig{
			BaseURL:   getEnvOrDefault("CLAUDE_BASE_URL", "https://api.anthropic.com/v1"),
			Model:     getEnvOrDefault("CLAUDE_MODEL", "claude-sonnet-4-20250514"),
			MaxTokens: getEnvIntOrDefault("CLAUDE_MAX_TOKENS", 1500),
		},
		OpenAI: ProviderConfig{
			BaseURL:   getEnvOrDefault("OPENAI_BASE_URL", ""),
			Model:     getEnvOrDefault("OPENAI_MODEL", "gpt-4o"),
			MaxTokens: getEnvIntOrDefault("OPENAI_MAX_TOKENS", 1500),
		},
		Image: ImageConfig{
			OpenAIBaseURL: getEnvOrDefault("OPENAI_IMAGE_BASE_URL", "https://api.openai.com/v1"),
			OpenAIModel:   getEnvOrDefault("OPENAI_IMAGE_MODEL", "dall-e-3"),
			GeminiBaseURL: getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			GeminiModel:   getEnvOrDefault("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image-preview"),
			FontPath:      getEnvOrDefault("FONT_PATH", ""),
		},
		MinIO: MinIOConfig{
			Enabled:         getEnvBoolOrDefault("MINIO_ENABLED", false),
			Endpoint:        getEnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
			BucketName:      getEnvOrDefault("MINIO_BUCKET_NAME", "linkedin-posts"),
			AccessKeyID:     getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:          getEnvBoolOrDefault("MINIO_USE_SSL", false),
		},
		Paths: PathsConfig{
			AutomationConfig: getEnvOrDefault("AUTOMATION_CONFIG", "automation_config.json"),
			FeedsFile:        getEnvOrDefault("FEEDS_FILE", "feeds.txt"),
			ProcessedFile:    getEnvOrDefault("PROCESSED_FILE", "processed_articles.txt"),
			OutputDir:        getEnvOrDefault("OUTPUT_DIR", "generated_posts"),
			LogDir:           getEnvOrDefault("LOG_DIR", "logs"),
			TempDir:          getEnvOrDefault("TEMP_DIR", os.TempDir()),
		},
		Crawler: CrawlerConfig{
			UserAgent: getEnvOrDefault("CRAWLER_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"),
			Timeout:   getEnvDurationOrDefault("CRAWLER_TIMEOUT", 30*time.Second),
		},
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		Timeout:   getEnvDurationOrDefault("PROVIDER_TIMEOUT", 60*time.Second),
		EnvFile:   getEnvOrDefault("ENV_FILE", ".env"),
		Providers: splitList(getEnvOrDefault("TEXT_PROVIDERS", "claude,openai")),
	}
}

// getEnvOrDefault 获取环境变量或默认值
func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvIntOrDefault 获取环境变量(整数)或默认值
func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvBoolOrDefault 获取环境变量(布尔)或默认值
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvDurationOrDefault 获取环境变量(时长，如 30s)或默认值
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
