package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/docparse/internal/logging"
	"github.com/a3tai/docparse/internal/output"
)

const (
	// Commands
	CommandText     = "text"
	CommandRender   = "render"
	CommandPages    = "pages"
	CommandValidate = "validate"
	CommandServe    = "serve"

	// Serve transports
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	// Image formats for render
	ImageFormatPNG = "png"
	ImageFormatRaw = "raw"

	// Default values
	DefaultDPI         = 224
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultCacheSize   = 32
	MaxDPI             = 2400

	// EnvPrefix prefixes every environment variable, e.g. DOCPARSE_DPI
	EnvPrefix = "DOCPARSE"
)

// Commands lists every command accepted as the first positional argument
var Commands = []string{CommandText, CommandRender, CommandPages, CommandValidate, CommandServe}

// Config holds all configuration for the docparse CLI and MCP server
type Config struct {
	// Invocation
	Command     string
	InputPath   string
	ShowVersion bool

	// Output
	OutputPath  string
	Format      string
	ImageFormat string

	// Extraction and rendering
	DPI     int
	Page    int // zero-based page index for render
	Workers int // 0 means one worker per CPU

	// Server configuration
	Transport    string
	Host         string
	Port         int
	PDFDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	LogJSON     bool
	MaxFileSize int64 // Maximum PDF file size in bytes
	CacheSize   int   // Extraction results kept in memory, 0 disables

	// StrictValidation checks document structure against the PDF
	// specification instead of tolerating common writer mistakes
	StrictValidation bool
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Format:      string(output.FormatJSONLines),
		ImageFormat: ImageFormatPNG,
		DPI:         DefaultDPI,
		Transport:   TransportStdio,
		Host:        DefaultHost,
		Port:        DefaultPort,
		Version:     "1.0.0",
		ServerName:  "docparse",
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
		CacheSize:   DefaultCacheSize,
	}
}

// Load parses args (without the program name) using defaults, then
// DOCPARSE_* environment variables, then flags. When --version is present
// the returned config has ShowVersion set and is not validated.
func Load(args []string, stderr io.Writer) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()
	fs := pflag.NewFlagSet("docparse", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	bindFlagsToViper(v, fs)
	setupUsageMessage(fs, stderr)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	populateConfigFromViper(v, cfg)
	cfg.ShowVersion, _ = fs.GetBool("version")
	if cfg.ShowVersion {
		return cfg, nil
	}

	positional := fs.Args()
	if len(positional) == 0 {
		return nil, fmt.Errorf("missing command (must be one of: %s)", strings.Join(Commands, ", "))
	}
	cfg.Command = positional[0]
	if len(positional) > 1 {
		cfg.InputPath = positional[1]
	}
	if len(positional) > 2 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(positional[2:], " "))
	}

	// The server sandboxes paths to the working directory unless told otherwise
	if cfg.Command == CommandServe && cfg.PDFDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.PDFDirectory = wd
		}
	}
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("output", cfg.OutputPath)
	v.SetDefault("format", cfg.Format)
	v.SetDefault("image-format", cfg.ImageFormat)
	v.SetDefault("dpi", cfg.DPI)
	v.SetDefault("page", cfg.Page)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("transport", cfg.Transport)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("logjson", cfg.LogJSON)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("cachesize", cfg.CacheSize)
	v.SetDefault("strict", cfg.StrictValidation)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringP("output", "o", cfg.OutputPath, "Write output to this file instead of stdout")
	formats := make([]string, 0, len(output.SupportedFormats()))
	for _, f := range output.SupportedFormats() {
		formats = append(formats, string(f))
	}
	fs.String("format", cfg.Format, "Line output format: "+strings.Join(formats, ", "))
	fs.String("image-format", cfg.ImageFormat, "Rendered image format: png, raw (packed RGB)")
	fs.IntP("dpi", "d", cfg.DPI, "Render resolution in dots per inch")
	fs.Int("page", cfg.Page, "Zero-based page index to render")
	fs.Int("workers", cfg.Workers, "Pages reconstructed in parallel (0 = one per CPU)")
	fs.String("transport", cfg.Transport, "MCP transport for serve: stdio or http")
	fs.String("host", cfg.Host, "HTTP host address (http transport only)")
	fs.Int("port", cfg.Port, "HTTP port (http transport only)")
	fs.String("dir", cfg.PDFDirectory, "Restrict served documents to this directory (serve defaults to the working directory)")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Bool("logjson", cfg.LogJSON, "Emit logs as JSON")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	fs.Int("cachesize", cfg.CacheSize, "Extraction results cached by the server (0 disables)")
	fs.Bool("strict", cfg.StrictValidation, "Validate document structure strictly instead of relaxed")
	fs.BoolP("version", "v", false, "Print version information and exit")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	for _, name := range []string{
		"output", "format", "image-format", "dpi", "page", "workers", "transport",
		"host", "port", "dir", "loglevel", "logjson", "maxfilesize", "cachesize", "strict",
	} {
		_ = v.BindPFlag(name, fs.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet, w io.Writer) {
	fs.Usage = func() {
		fmt.Fprintf(w, "Usage: docparse <command> [file.pdf] [options]\n")
		fmt.Fprintf(w, "\ndocparse - layout-aware line reconstruction from PDF glyph geometry\n")
		fmt.Fprintf(w, "\nCommands:\n")
		fmt.Fprintf(w, "  text <file>      Print reconstructed lines, one JSON object per line\n")
		fmt.Fprintf(w, "  render <file>    Rasterize one page to PNG or raw RGB\n")
		fmt.Fprintf(w, "  pages <file>     Print the page count\n")
		fmt.Fprintf(w, "  validate <file>  Check that the file is a readable PDF\n")
		fmt.Fprintf(w, "  serve            Run the MCP server\n")
		fmt.Fprintf(w, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  docparse text report.pdf -o lines.jsonl\n")
		fmt.Fprintf(w, "  docparse render report.pdf --page 2 --dpi 150 -o page3.png\n")
		fmt.Fprintf(w, "  docparse serve --dir=/path/to/pdfs\n")
		fmt.Fprintf(w, "  docparse serve --transport=http --port=8081\n")
		fmt.Fprintf(w, "\nEnvironment Variables:\n")
		fmt.Fprintf(w, "  %s_DPI, %s_FORMAT, %s_DIR, %s_LOGLEVEL, %s_MAXFILESIZE, ...\n",
			EnvPrefix, EnvPrefix, EnvPrefix, EnvPrefix, EnvPrefix)
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.OutputPath = v.GetString("output")
	cfg.Format = v.GetString("format")
	cfg.ImageFormat = v.GetString("image-format")
	cfg.DPI = v.GetInt("dpi")
	cfg.Page = v.GetInt("page")
	cfg.Workers = v.GetInt("workers")
	cfg.Transport = v.GetString("transport")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.LogJSON = v.GetBool("logjson")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.CacheSize = v.GetInt("cachesize")
	cfg.StrictValidation = v.GetBool("strict")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Command {
	case CommandText, CommandRender, CommandPages, CommandValidate:
		if c.InputPath == "" {
			return fmt.Errorf("command %q requires a PDF file argument", c.Command)
		}
	case CommandServe:
		if c.Transport != TransportStdio && c.Transport != TransportHTTP {
			return errors.New("transport must be either 'stdio' or 'http'")
		}
		if c.Transport == TransportHTTP && (c.Port < 1 || c.Port > 65535) {
			return errors.New("port must be between 1 and 65535")
		}
	default:
		return fmt.Errorf("unknown command: %q (must be one of: %s)", c.Command, strings.Join(Commands, ", "))
	}

	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}

	if c.ImageFormat != ImageFormatPNG && c.ImageFormat != ImageFormatRaw {
		return fmt.Errorf("invalid image format: %s (must be one of: png, raw)", c.ImageFormat)
	}

	if c.DPI < 1 || c.DPI > MaxDPI {
		return fmt.Errorf("dpi must be between 1 and %d", MaxDPI)
	}

	if c.Page < 0 {
		return errors.New("page index cannot be negative")
	}

	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.CacheSize < 0 {
		return errors.New("cache size cannot be negative")
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(logging.Levels, ", "))
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Command: %s, Input: %s, Output: %s, Format: %s, DPI: %d, Page: %d, Workers: %d, "+
		"Transport: %s, Address: %s, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, CacheSize: %d, Strict: %t}",
		c.Command, c.InputPath, c.OutputPath, c.Format, c.DPI, c.Page, c.Workers,
		c.Transport, c.Address(), c.PDFDirectory, c.LogLevel, c.MaxFileSize, c.CacheSize, c.StrictValidation)
}
