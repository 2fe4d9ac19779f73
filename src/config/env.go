package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIKeyPath = "/run/secrets/api_keys/openrouter"
	APIKeyPathEnvVar  = "OPENROUTER_API_KEY_FILE"
	EnvFileEnvVar     = "SCREEN_TRANSLATE_ENV"

	TranslatorGoogle     = "google"
	TranslatorOpenRouter = "openrouter"

	OCREngineExec      = "exec"
	OCREngineGosseract = "gosseract"
)

// Env holds process-level settings that live outside config.json.
type Env struct {
	EnableFileLogging bool
	Translator        string
	TranslateEndpoint string
	APIKey            string
	APIKeyPath        string
	Model             string
	DeadlineSec       int
	CopyToClipboard   bool
	OCREngine         string
}

// LoadEnv reads settings from the environment. Sources, in priority order:
// 1) .env in the executable directory
// 2) the file named by SCREEN_TRANSLATE_ENV
// Values already present in the process environment win over both.
func LoadEnv() Env {
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	deadlineSec := 30
	if v := os.Getenv("PIPELINE_DEADLINE_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			deadlineSec = n
		}
	}

	apiKeyPath := resolveAPIKeyPath(dotenvValues)

	return Env{
		EnableFileLogging: envBool("ENABLE_FILE_LOGGING"),
		Translator:        resolveChoice(os.Getenv("TRANSLATOR"), TranslatorGoogle, TranslatorOpenRouter),
		TranslateEndpoint: strings.TrimSpace(os.Getenv("TRANSLATE_ENDPOINT")),
		APIKey:            resolveAPIKey(apiKeyPath),
		APIKeyPath:        apiKeyPath,
		Model:             os.Getenv("MODEL"),
		DeadlineSec:       deadlineSec,
		CopyToClipboard:   envBool("COPY_TO_CLIPBOARD"),
		OCREngine:         resolveChoice(os.Getenv("OCR_ENGINE"), OCREngineExec, OCREngineGosseract),
	}
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	return keyPath
}

func resolveAPIKey(keyPath string) string {
	if data, err := os.ReadFile(keyPath); err == nil {
		if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
			return fileKey
		}
	}

	return os.Getenv("OPENROUTER_API_KEY")
}

func envBool(key string) bool {
	return strings.ToLower(strings.TrimSpace(os.Getenv(key))) == "true"
}

// resolveChoice returns value lowercased when it is one of the allowed
// options, otherwise the first option.
func resolveChoice(value string, options ...string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, o := range options {
		if v == o {
			return o
		}
	}
	return options[0]
}
