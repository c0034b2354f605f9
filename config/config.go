package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type OpenAI struct {
	OpenAIAPIKey     string  `env:"OPENAI_API_KEY,required"`
	OpenAIModel      string  `yaml:"openai_model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	OpenAIBaseURL    string  `yaml:"open_ai_base_url" env:"OPENAI_BASE_URL"`
	ModelTemperature float32 `yaml:"model_temperature" env:"MODEL_TEMPERATURE" env-default:"1"`
	HistoryTokenCap  int     `yaml:"history_token_cap" env:"HISTORY_TOKEN_CAP" env-default:"3500"`
}

type HTTP struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":5000"`
	AllowedOrigin   string        `yaml:"allowed_origin" env:"HTTP_ALLOWED_ORIGIN" env-default:"*"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type Storage struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"docchat.db"`
}

type Redis struct {
	Endpoint string        `yaml:"endpoint" env:"REDIS_ENDPOINT"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL" env-default:"720h"`
}

type Docs struct {
	FilePath string `yaml:"file_path" env:"DOCS_FILE_PATH"`
	PageURL  string `yaml:"page_url" env:"DOCS_PAGE_URL"`
}

type Config struct {
	OpenAI  OpenAI  `yaml:"openai"`
	HTTP    HTTP    `yaml:"http"`
	Storage Storage `yaml:"storage"`
	Redis   Redis   `yaml:"redis"`
	Docs    Docs    `yaml:"docs"`
}

func LoadConfig(cfgPath string) (*Config, error) {
	var cfg Config
	if cfgPath != "" {
		if err := cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
			return nil, err
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
