package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.UploadFolder != "uploads" || cfg.IndexName != "pdf-chat" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Embedding.Model != OpenAIEmbeddingModel || cfg.LLM.Model != OpenAIChatModel {
		t.Errorf("model defaults not applied: %s / %s", cfg.Embedding.Model, cfg.LLM.Model)
	}
}

func TestLoad_JSONFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"upload_folder": "files", "index_name": "docs", "llm": {"provider": "gemini"}, "vector_store": {"provider": "chromem"}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INDEX_NAME", "from-env")
	t.Setenv("QDRANT_PORT", "7000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"upload folder from file", cfg.UploadFolder, "files"},
		{"index name from env", cfg.IndexName, "from-env"},
		{"gemini alias", cfg.LLM.Provider, ProviderGoogle},
		{"gemini model default", cfg.LLM.Model, GeminiModelName},
		{"vector store", cfg.VectorStore.Provider, VectorStoreChromem},
		{"qdrant port", cfg.VectorStore.Qdrant.Port, 7000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("VECTOR_STORE", "pinecone")
	if _, err := Load(""); err == nil {
		t.Error("expected error for unknown vector store")
	}
}

func TestLogConfig_SlogLevel(t *testing.T) {
	if got := (LogConfig{Level: "debug"}).SlogLevel(); got != slog.LevelDebug {
		t.Errorf("got %v", got)
	}
	if got := (LogConfig{Level: "loud"}).SlogLevel(); got != slog.LevelInfo {
		t.Errorf("unknown level should fall back to the prod level, got %v", got)
	}
}

func TestDefault_LogLevelIsProdLevel(t *testing.T) {
	if got := Default().Log.SlogLevel(); got != LOG_LEVEL_PROD {
		t.Errorf("default level got %v want %v", got, LOG_LEVEL_PROD)
	}
}
