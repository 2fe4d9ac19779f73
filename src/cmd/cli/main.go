package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screen-translate/src/runtimeinit"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	filePath   string
	lang       string
	tesseract  string
	configPath string
	jsonOutput bool
	verbose    bool
}

type recognizer interface {
	Recognize(ctx context.Context, img image.Image, binaryPath string) (string, error)
}

type translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-translate-cli"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-translate-cli",
		Short:         "Recognize and translate the text in a PNG image",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Target language code (default: target_lang from config.json)")
	cmd.Flags().StringVar(&opts.tesseract, "tesseract", "", "Path to the tesseract executable (default: tesseract_path from config.json)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config.json")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(opts cliOptions) error {
	// Configure logging BEFORE any other operations.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
		fmt.Fprintf(os.Stderr, "[verbose] Starting screen-translate-cli\n")
	}

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{ConfigPath: opts.configPath})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	cfg := rt.Store.Get()
	lang := firstNonEmpty(opts.lang, cfg.TargetLang)
	bin := firstNonEmpty(opts.tesseract, cfg.TesseractPath)
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Config %s: target_lang=%s tesseract_path=%s\n", rt.Store.Path(), lang, bin)
	}

	data, err := readInput(opts.filePath, os.Stdin)
	if err != nil {
		return err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode PNG: %w", err)
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Decoded %dx%d image\n", img.Bounds().Dx(), img.Bounds().Dy())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(rt.Env.DeadlineSec)*time.Second)
	defer cancel()

	res, err := translateImage(ctx, rt.Recognizer, rt.Translator, img, bin, lang)
	if err != nil {
		return err
	}
	res.Source = opts.filePath
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Done in %.2fs, recognized %d characters\n", res.Duration, res.CharCount)
	}
	return outputResult(os.Stdout, res, opts.jsonOutput)
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"file", "lang", "tesseract", "config", "json", "verbose"} {
			single := "-" + name
			if arg == single || strings.HasPrefix(arg, single+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func readInput(filePath string, stdin io.Reader) ([]byte, error) {
	var data []byte
	var err error

	if filePath == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return nil, fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return data, nil
}

// Result is the JSON shape printed with --json.
type Result struct {
	Text        string  `json:"text"`
	Translation string  `json:"translation"`
	TargetLang  string  `json:"target_lang"`
	Source      string  `json:"source"`
	Timestamp   string  `json:"timestamp"`
	Duration    float64 `json:"duration_seconds"`
	CharCount   int     `json:"character_count"`
}

func translateImage(ctx context.Context, r recognizer, t translator, img image.Image, bin, lang string) (Result, error) {
	start := time.Now()
	text, err := r.Recognize(ctx, img, bin)
	if err != nil {
		return Result{}, fmt.Errorf("OCR failed: %w", err)
	}

	var translation string
	if text != "" {
		translation, err = t.Translate(ctx, text, lang)
		if err != nil {
			return Result{}, fmt.Errorf("translation failed: %w", err)
		}
	}

	return Result{
		Text:        text,
		Translation: translation,
		TargetLang:  lang,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Duration:    time.Since(start).Seconds(),
		CharCount:   len([]rune(text)),
	}, nil
}

func outputResult(w io.Writer, res Result, jsonOutput bool) error {
	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(res); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprint(w, res.Translation)
	return err
}
