package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"

	VectorStoreQdrant  = "qdrant"
	VectorStoreChromem = "chromem"
)

// AppConfig is the runtime configuration read from config.json (or yaml) and the environment.
type AppConfig struct {
	UploadFolder string            `yaml:"upload_folder"`
	IndexName    string            `yaml:"index_name"`
	ListenAddr   string            `yaml:"listen_addr"`
	VectorStore  VectorStoreConfig `yaml:"vector_store"`
	Embedding    EmbeddingConfig   `yaml:"embedding"`
	LLM          LLMConfig         `yaml:"llm"`
	OpenAI       OpenAIConfig      `yaml:"openai"`
	Google       GoogleConfig      `yaml:"google"`
	Redis        RedisConfig       `yaml:"redis"`
	Log          LogConfig         `yaml:"log"`
}

type VectorStoreConfig struct {
	Provider string        `yaml:"provider"`
	Qdrant   QdrantConfig  `yaml:"qdrant"`
	Chromem  ChromemConfig `yaml:"chromem"`
}

type QdrantConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
	UseTLS bool   `yaml:"use_tls"`
}

// ChromemConfig keeps the store in memory when Path is empty.
type ChromemConfig struct {
	Path     string `yaml:"path"`
	Compress bool   `yaml:"compress"`
}

type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Dimension int32  `yaml:"dimension"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type GoogleConfig struct {
	APIKey string `yaml:"api_key"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Disabled bool   `yaml:"disabled"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

func Default() AppConfig {
	return AppConfig{
		UploadFolder: "uploads",
		IndexName:    "pdf-chat",
		ListenAddr:   ServerListenAddr,
		VectorStore: VectorStoreConfig{
			Provider: VectorStoreQdrant,
			Qdrant:   QdrantConfig{Host: QdrantHost, Port: QdrantGrpcPort, UseTLS: QdrantUseTLS},
		},
		Embedding: EmbeddingConfig{Provider: ProviderOpenAI, Dimension: EmbeddingOutputDimensionality},
		LLM:       LLMConfig{Provider: ProviderOpenAI, Temperature: ModelTemperature},
		Redis:     RedisConfig{Addr: RedisAddr},
		Log:       LogConfig{Level: LOG_LEVEL_PROD.String(), JSON: IS_PROD},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, cfg.validate()
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.UploadFolder, "UPLOAD_FOLDER")
	setString(&cfg.IndexName, "INDEX_NAME")
	setString(&cfg.ListenAddr, "LISTEN_ADDR")

	setString(&cfg.VectorStore.Provider, "VECTOR_STORE")
	setString(&cfg.VectorStore.Qdrant.Host, "QDRANT_HOST")
	setString(&cfg.VectorStore.Qdrant.APIKey, "QDRANT_API_KEY")
	if port, err := strconv.Atoi(os.Getenv("QDRANT_PORT")); err == nil {
		cfg.VectorStore.Qdrant.Port = port
	}
	setString(&cfg.VectorStore.Chromem.Path, "CHROMEM_PATH")

	setString(&cfg.Embedding.Provider, "EMBEDDING_PROVIDER")
	setString(&cfg.Embedding.Model, "EMBEDDING_MODEL")
	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.Model, "LLM_MODEL")

	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Google.APIKey, "GOOGLE_API_KEY")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	if v, err := strconv.ParseBool(os.Getenv("LOG_JSON")); err == nil {
		cfg.Log.JSON = v
	}
}

func setString(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func applyDefaults(cfg *AppConfig) {
	cfg.VectorStore.Provider = strings.ToLower(cfg.VectorStore.Provider)
	cfg.Embedding.Provider = strings.ToLower(cfg.Embedding.Provider)
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)

	if cfg.LLM.Provider == "gemini" {
		cfg.LLM.Provider = ProviderGoogle
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = OpenAIEmbeddingModel
		if cfg.Embedding.Provider == ProviderGoogle {
			cfg.Embedding.Model = GoogleEmbeddingModel
		}
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = OpenAIChatModel
		if cfg.LLM.Provider == ProviderGoogle {
			cfg.LLM.Model = GeminiModelName
		}
	}
	if cfg.Embedding.Dimension <= 0 {
		cfg.Embedding.Dimension = EmbeddingOutputDimensionality
	}
	if cfg.VectorStore.Qdrant.Port == 0 {
		cfg.VectorStore.Qdrant.Port = QdrantGrpcPort
	}
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.UploadFolder) == "" {
		return errors.New("upload_folder must not be empty")
	}
	if strings.TrimSpace(c.IndexName) == "" {
		return errors.New("index_name must not be empty")
	}
	switch c.VectorStore.Provider {
	case VectorStoreQdrant, VectorStoreChromem:
	default:
		return fmt.Errorf("unknown vector store %q", c.VectorStore.Provider)
	}
	for _, p := range []string{c.Embedding.Provider, c.LLM.Provider} {
		if p != ProviderOpenAI && p != ProviderGoogle {
			return fmt.Errorf("unknown provider %q", p)
		}
	}
	return nil
}

// SlogLevel maps the configured level name, falling back to LOG_LEVEL_PROD.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return LOG_LEVEL_PROD
	}
	return level
}
