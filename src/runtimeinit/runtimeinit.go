package runtimeinit

import (
	"fmt"
	"log"

	"screen-translate/src/config"
	"screen-translate/src/logutil"
	"screen-translate/src/ocr"
	"screen-translate/src/translate"
)

type Options struct {
	// ConfigPath overrides the default config.json location.
	ConfigPath   string
	SetupLogging func(bool)
}

// Runtime holds the adapters shared by the resident app and the CLI.
type Runtime struct {
	Store      *config.Store
	Env        config.Env
	Recognizer *ocr.Recognizer
	Translator *translate.Translator
}

func Bootstrap(opts Options) (*Runtime, error) {
	env := config.LoadEnv()

	if opts.SetupLogging != nil {
		opts.SetupLogging(env.EnableFileLogging)
	}

	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	store := config.Open(path)

	backend, err := NewBackend(env)
	if err != nil {
		return nil, err
	}

	cfg := store.Get()
	log.Printf("config: %s hotkey=%q target_lang=%q tesseract_path=%q", store.Path(), cfg.Hotkey, cfg.TargetLang, cfg.TesseractPath)
	log.Printf("config: translator=%s ocr_engine=%s deadline=%ds", backend.Name(), env.OCREngine, env.DeadlineSec)

	return &Runtime{
		Store:      store,
		Env:        env,
		Recognizer: ocr.New(env.OCREngine),
		Translator: translate.New(backend),
	}, nil
}

// NewBackend selects the translation backend named by env.Translator.
func NewBackend(env config.Env) (translate.Backend, error) {
	switch env.Translator {
	case config.TranslatorOpenRouter:
		if env.APIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is required for the openrouter translator. Checked key file %s and OPENROUTER_API_KEY env var", env.APIKeyPath)
		}
		if env.Model == "" {
			return nil, fmt.Errorf("MODEL is required for the openrouter translator. Please set it in your .env file")
		}
		log.Printf("config: openrouter model=%s key=%s", env.Model, logutil.RedactKey(env.APIKey))
		return translate.NewOpenRouter(env.TranslateEndpoint, env.APIKey, env.Model), nil
	default:
		return translate.NewGoogle(env.TranslateEndpoint), nil
	}
}
