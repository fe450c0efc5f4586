package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	VectorMemory = "memory"
	VectorQdrant = "qdrant"
)

type (
	APP struct {
		Name      string
		Host      string
		Port      string
		Env       string
		JWTSecret string
		// StorageDriver selects the metadata and object stores.
		StorageDriver string
		CORSOrigins   []string
	}
	DB struct {
		User     string
		Password string
		Name     string
		Host     string
		Port     string
	}
	S3 struct {
		Region          string
		AccessKeyID     string
		SecretAccessKey string
		Bucket          string
		// Endpoint is set for S3-compatible stores (MinIO).
		Endpoint     string
		PublicURL    string
		UsePathStyle bool
	}
	MQ struct {
		Enabled      bool
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}
	AI struct {
		BaseURL         string        `yaml:"base_url"`
		APIKey          string        `yaml:"-"`
		TextModel       string        `yaml:"text_model"`
		VisionModel     string        `yaml:"vision_model"`
		EmbeddingURL    string        `yaml:"embedding_url"`
		EmbeddingModel  string        `yaml:"embedding_model"`
		EmbeddingAPIKey string        `yaml:"-"`
		Timeout         time.Duration `yaml:"timeout"`
	}
	Vector struct {
		Driver     string        `yaml:"driver"`
		URL        string        `yaml:"url"`
		APIKey     string        `yaml:"-"`
		Collection string        `yaml:"collection"`
		Timeout    time.Duration `yaml:"timeout"`
		TopK       int           `yaml:"top_k"`
		MinScore   float64       `yaml:"min_score"`
	}
	Redis struct {
		URL       string
		KeyPrefix string
	}
	Limits struct {
		MaxFileSize    int64 `yaml:"max_file_size"`
		IndexWorkers   int   `yaml:"index_workers"`
		IndexQueueSize int   `yaml:"index_queue_size"`
		PDFMaxChars    int   `yaml:"pdf_max_chars"`
	}

	Config struct {
		App    APP
		DB     DB
		S3     S3
		MQ     MQ
		AI     AI
		Vector Vector
		Redis  Redis
		Limits Limits
	}

	// overlay is the part of Config a YAML file may override.
	overlay struct {
		AI     AI     `yaml:"ai"`
		Vector Vector `yaml:"vector"`
		Limits Limits `yaml:"limits"`
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// LoadDotEnv loads path into the environment when the file exists.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

func Load() (Config, error) {
	var p parser

	app := APP{
		Name:          getEnv("SERVICE_NAME", "cloudy"),
		Host:          getEnv("SERVICE_HOST", ""),
		Port:          getEnv("SERVICE_PORT", "8080"),
		Env:           getEnv("SERVICE_ENV", ""),
		JWTSecret:     getEnv("SERVICE_JWT_SECRET", ""),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "")),
	}
	db := DB{
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		Name:     getEnv("POSTGRES_DB", ""),
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
	}
	s3 := S3{
		Region:          getEnv("S3_REGION", "us-east-1"),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		Bucket:          getEnv("S3_BUCKET_UPLOADS", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		PublicURL:       getEnv("S3_PUBLIC_URL", ""),
		UsePathStyle:    p.bool("S3_USE_PATH_STYLE", false),
	}
	mq := MQ{
		Enabled:      p.bool("RABBITMQ_ENABLED", false),
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", ""),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", "cloudy.files"),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", "direct"),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", "cloudy.indexing"),
	}
	ai := AI{
		BaseURL:         getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
		APIKey:          getEnv("AI_API_KEY", ""),
		TextModel:       getEnv("AI_TEXT_MODEL", ""),
		VisionModel:     getEnv("AI_VISION_MODEL", ""),
		EmbeddingURL:    getEnv("AI_EMBEDDING_URL", ""),
		EmbeddingModel:  getEnv("AI_EMBEDDING_MODEL", ""),
		EmbeddingAPIKey: getEnv("AI_EMBEDDING_API_KEY", ""),
		Timeout:         p.duration("AI_TIMEOUT", 60*time.Second),
	}
	vector := Vector{
		Driver:     strings.ToLower(getEnv("VECTOR_DRIVER", VectorMemory)),
		URL:        getEnv("QDRANT_URL", ""),
		APIKey:     getEnv("QDRANT_API_KEY", ""),
		Collection: getEnv("QDRANT_COLLECTION", "cloudy_files"),
		Timeout:    p.duration("QDRANT_TIMEOUT", 15*time.Second),
		TopK:       p.int("SEARCH_TOP_K", 5),
		MinScore:   p.float("SEARCH_MIN_SCORE", 0.75),
	}
	redis := Redis{
		URL:       getEnv("REDIS_URL", ""),
		KeyPrefix: getEnv("REDIS_KEY_PREFIX", "cloudy:view:"),
	}
	limits := Limits{
		MaxFileSize:    int64(p.int("MAX_FILE_SIZE", 50<<20)),
		IndexWorkers:   p.int("INDEX_WORKERS", 2),
		IndexQueueSize: p.int("INDEX_QUEUE_SIZE", 128),
		PDFMaxChars:    p.int("PDF_MAX_CHARS", 15000),
	}
	if p.err != nil {
		return Config{}, p.err
	}

	cfg := Config{
		App:    app,
		DB:     db,
		S3:     s3,
		MQ:     mq,
		AI:     ai,
		Vector: vector,
		Redis:  redis,
		Limits: limits,
	}

	if path := getEnv("CLOUDY_CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	return c.applyYAML(b)
}

// applyYAML overrides the AI, Vector and Limits sections with the keys
// present in b. Absent keys keep their environment value.
func (c *Config) applyYAML(b []byte) error {
	o := overlay{AI: c.AI, Vector: c.Vector, Limits: c.Limits}
	if err := yaml.Unmarshal(b, &o); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.AI, c.Vector, c.Limits = o.AI, o.Vector, o.Limits
	c.Vector.Driver = strings.ToLower(c.Vector.Driver)
	return nil
}

// Validate checks the values required by the selected drivers.
func (c Config) Validate() error {
	var errs []error

	if c.App.Port == "" {
		errs = append(errs, errors.New("SERVICE_PORT is required"))
	}
	if c.App.JWTSecret == "" {
		errs = append(errs, errors.New("SERVICE_JWT_SECRET is required"))
	}

	switch c.App.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if _, err := c.DBDSN(); err != nil {
			errs = append(errs, err)
		}
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET_UPLOADS is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.App.StorageDriver))
	}

	switch c.Vector.Driver {
	case VectorMemory:
	case VectorQdrant:
		if c.Vector.URL == "" {
			errs = append(errs, errors.New("QDRANT_URL is required for the qdrant vector driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown VECTOR_DRIVER %q", c.Vector.Driver))
	}

	if c.MQ.Enabled {
		if _, err := c.AMQPDSN(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Limits.MaxFileSize <= 0 {
		errs = append(errs, errors.New("MAX_FILE_SIZE must be positive"))
	}
	if c.Limits.IndexWorkers <= 0 || c.Limits.IndexQueueSize <= 0 {
		errs = append(errs, errors.New("INDEX_WORKERS and INDEX_QUEUE_SIZE must be positive"))
	}
	if c.Vector.MinScore < 0 || c.Vector.MinScore >= 1 {
		errs = append(errs, errors.New("SEARCH_MIN_SCORE must be in [0, 1)"))
	}

	return errors.Join(errs...)
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s",
		url.UserPassword(c.DB.User, c.DB.Password).String(),
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
	), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}

// parser collects the first conversion error so Load can report it once.
type parser struct{ err error }

func (p *parser) int(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return f
}

func (p *parser) bool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return d
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config %s: %w", key, err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
