package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration.
// Keys are prefixed by section (MONGO_URI, DB_HOST, ...). Tagged keys also
// fall back to the bare tag name, so SERVER_PORT may be given as PORT and
// PIPELINE_AUDIO_SEGMENT_DURATION as AUDIO_SEGMENT_DURATION.
type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	Mongo         MongoConfig         `envconfig:"MONGO"`
	Storage       StorageConfig       `envconfig:"MINIO"`
	Database      DatabaseConfig      `envconfig:"DB"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	Elasticsearch ElasticsearchConfig `envconfig:"ELASTICSEARCH"`
	Assembly      AssemblyAIConfig    `envconfig:"ASSEMBLYAI"`
	Groq          GroqConfig          `envconfig:"GROQ"`
	Translate     TranslateConfig     `envconfig:"GOOGLE_TRANSLATE"`
	Pipeline      PipelineConfig      `envconfig:"PIPELINE"`
	JWT           JWTConfig           `envconfig:"JWT"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development" validate:"oneof=development staging production test"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// MongoConfig holds the document store configuration
type MongoConfig struct {
	URI             string        `split_words:"true" default:"mongodb://localhost:27017" validate:"required"`
	Database        string        `envconfig:"DB" default:"talk_tracer" validate:"required"`
	Collection      string        `envconfig:"DB_COLLECTION" default:"meetings" validate:"required"`
	AuditCollection string        `split_words:"true" default:"pipeline_execution_logs" validate:"required"`
	MaxPoolSize     uint64        `split_words:"true" default:"20"`
	ConnectTimeout  time.Duration `split_words:"true" default:"10s"`
}

// StorageConfig holds blob storage configuration
type StorageConfig struct {
	Endpoint   string `split_words:"true" default:"localhost:9000" validate:"required"`
	AccessKey  string `split_words:"true" default:"minioadmin"`
	SecretKey  string `split_words:"true" default:"minioadmin"`
	BucketName string `split_words:"true" default:"meetings" validate:"required"`
	UseSSL     bool   `split_words:"true" default:"false"`
}

// DatabaseConfig holds the run-history database configuration
type DatabaseConfig struct {
	Enabled     bool   `split_words:"true" default:"false"`
	Host        string `split_words:"true" default:"localhost" validate:"required_if=Enabled true"`
	Port        string `split_words:"true" default:"5432"`
	User        string `split_words:"true" default:"postgres"`
	Password    string `split_words:"true" default:"postgres"`
	Name        string `split_words:"true" default:"talk_tracer" validate:"required_if=Enabled true"`
	SSLMode     string `envconfig:"SSLMODE" default:"disable"`
	MaxConns    int    `split_words:"true" default:"25"`
	MinConns    int    `split_words:"true" default:"5"`
	AutoMigrate bool   `split_words:"true" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `split_words:"true" default:"false"`
	Host     string `split_words:"true" default:"localhost"`
	Port     string `split_words:"true" default:"6379"`
	Password string `split_words:"true"`
	DB       int    `split_words:"true" default:"0"`
}

// ElasticsearchConfig holds search sink configuration
type ElasticsearchConfig struct {
	Host  string `split_words:"true" default:"http://localhost:9200" validate:"required,url"`
	Index string `split_words:"true" default:"meetings" validate:"required"`
}

// AssemblyAIConfig holds speech recognition configuration
type AssemblyAIConfig struct {
	APIKey string `split_words:"true"`
}

// GroqConfig holds summarization model configuration
type GroqConfig struct {
	APIKey  string        `split_words:"true"`
	BaseURL string        `envconfig:"API_URL" default:"https://api.groq.com"`
	Model   string        `split_words:"true" default:"llama-3.1-8b-instant"`
	Timeout time.Duration `split_words:"true" default:"60s"`
}

// TranslateConfig holds translation provider configuration
type TranslateConfig struct {
	APIKey string `split_words:"true"`
}

// PipelineConfig holds pipeline execution settings
type PipelineConfig struct {
	SegmentSeconds   int           `envconfig:"AUDIO_SEGMENT_DURATION" default:"60" validate:"min=1,max=600"`
	TargetLanguages  []string      `envconfig:"TRANSLATION_TARGET_LANGUAGE" default:"es-ES,fr-FR" validate:"dive,required"`
	StageTimeout     time.Duration `split_words:"true" default:"30m" validate:"gt=0"`
	RunTimeout       time.Duration `split_words:"true" default:"2h" validate:"gt=0"`
	StageRetries     int           `split_words:"true" default:"1" validate:"min=0,max=5"`
	RetryBackoff     time.Duration `split_words:"true" default:"5s"`
	Workers          int           `split_words:"true" default:"2" validate:"min=1"`
	QueueSize        int           `split_words:"true" default:"100" validate:"min=1"`
	LockTTL          time.Duration `split_words:"true" default:"3h" validate:"gt=0"`
	DetectLanguage   bool          `split_words:"true" default:"true"`
	FFmpegPath       string        `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	FFprobePath      string        `envconfig:"FFPROBE_PATH" default:"ffprobe"`
	RecognizeTimeout time.Duration `split_words:"true" default:"5m"`
}

// JWTConfig holds API authentication configuration
type JWTConfig struct {
	Enabled      bool          `split_words:"true" default:"false"`
	AccessSecret string        `split_words:"true" default:"your-access-secret-change-in-production" validate:"required_if=Enabled true"`
	AccessExpiry time.Duration `split_words:"true" default:"15m"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Server.Environment == "production" && c.Database.AutoMigrate {
		return fmt.Errorf("DB_AUTO_MIGRATE must be disabled in production")
	}
	return nil
}

// SegmentDuration returns the transcription window length
func (c *Config) SegmentDuration() time.Duration {
	return time.Duration(c.Pipeline.SegmentSeconds) * time.Second
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
