package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Runtime holds the deploy-specific knobs that cannot be constants: provider
// selection, credentials and endpoints. Precedence: defaults < config.yaml <
// environment (a .env file, if present, is folded into the environment first).
type Runtime struct {
	LLMProvider   string `yaml:"llm_provider"`   // "gemini" or "openai"
	VectorBackend string `yaml:"vector_backend"` // "memory" or "qdrant"

	GeminiAPIKey  string `yaml:"gemini_api_key"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"` // set for OpenAI-compatible hosts, e.g. a local Ollama

	AuthToken    string `yaml:"auth_token"`
	NoAuthBypass bool   `yaml:"no_auth_bypass"`

	RedisAddr string `yaml:"redis_addr"`

	QdrantHost string `yaml:"qdrant_host"`
	QdrantPort int    `yaml:"qdrant_port"`
}

func LoadRuntime(configFile string) Runtime {
	//missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	rt := Runtime{
		LLMProvider:   "gemini",
		VectorBackend: "memory",
		RedisAddr:     RedisAddr,
		QdrantHost:    QdrantHost,
		QdrantPort:    QdrantGrpcPort,
	}

	if configFile != "" {
		if data, err := os.ReadFile(configFile); err == nil {
			_ = yaml.Unmarshal(data, &rt)
		}
	}

	overlayEnv(&rt.LLMProvider, "LLM_PROVIDER")
	overlayEnv(&rt.VectorBackend, "VECTOR_BACKEND")
	overlayEnv(&rt.GeminiAPIKey, "GEMINI_API_KEY")
	overlayEnv(&rt.OpenAIAPIKey, "OPENAI_API_KEY")
	overlayEnv(&rt.OpenAIBaseURL, "OPENAI_BASE_URL")
	overlayEnv(&rt.AuthToken, "AUTH_TOKEN")
	overlayEnv(&rt.RedisAddr, "REDIS_ADDR")
	overlayEnv(&rt.QdrantHost, "QDRANT_HOST")

	if os.Getenv("NO_AUTH_BYPASS") == "true" {
		rt.NoAuthBypass = true
	}
	if rt.AuthToken == "" {
		//no token configured means nothing to compare against
		rt.NoAuthBypass = true
	}

	return rt
}

func overlayEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}
