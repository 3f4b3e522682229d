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
)

const (
	// Mode constants
	ModeDetect  = "detect"
	ModeSuggest = "suggest"
	ModeAuto    = "auto"
	ModeFill    = "fill"
	ModeStdio   = "stdio"
	ModeServer  = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB
	DefaultOutDir      = "./output"
	DefaultSoffice     = "soffice"
	DefaultWorkers     = 1

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "DOCX_FILLER"
)

// ErrVersionRequested is returned when --version is on the command line.
var ErrVersionRequested = errors.New("version requested")

var validModes = map[string]bool{
	ModeDetect: true, ModeSuggest: true, ModeAuto: true, ModeFill: true,
	ModeStdio: true, ModeServer: true,
}

// Config holds all configuration for the form filler
type Config struct {
	// Run mode: one of the batch modes or an MCP transport
	Mode string

	// Batch inputs
	Doc       string
	Input     string
	Excel     string
	Row       int
	OutDir    string
	DryRun    bool
	Templates []string
	Soffice   string
	Workers   int

	// MCP server configuration
	Directory string
	Host      string
	Port      int

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:        ModeStdio,
		OutDir:      DefaultOutDir,
		Soffice:     DefaultSoffice,
		Workers:     DefaultWorkers,
		Directory:   currentDir,
		Host:        DefaultHost,
		Port:        DefaultPort,
		Version:     "1.0.0",
		ServerName:  "mcp-docx-filler",
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// LoadFromFlags parses the process command line and environment.
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[1:])
}

// Load parses args and DOCX_FILLER_* environment variables into a
// validated configuration. Flags win over the environment.
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()
	fs := pflag.NewFlagSet("docx-filler", pflag.ContinueOnError)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	bindFlagsToViper(v, fs)
	setupUsageMessage(fs, os.Stderr)

	if err := checkVersionFlag(args); err != nil {
		return nil, err
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	populateConfigFromViper(v, cfg)

	if cfg.Directory != "" {
		if abs, err := filepath.Abs(cfg.Directory); err == nil {
			cfg.Directory = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("out", cfg.OutDir)
	v.SetDefault("soffice", cfg.Soffice)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("dir", cfg.Directory)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("mode", cfg.Mode, "Run mode: detect, suggest, auto, fill, or 'stdio'/'server' for MCP")
	fs.String("doc", "", "Input .docx or .doc file")
	fs.String("input", "", "Directory (or glob) with input documents")
	fs.String("excel", "", "Master workbook (sheet 'data'; 'mapping' and 'settings' for fill mode)")
	fs.Int("row", 0, "Use only this 1-based data row")
	fs.String("out", cfg.OutDir, "Output directory for filled documents")
	fs.Bool("dry-run", false, "Print the fill trace without writing files")
	fs.StringSlice("templates", nil, "Extra YAML template catalogs")
	fs.String("soffice", cfg.Soffice, "LibreOffice binary used to convert .doc files")
	fs.Int("workers", cfg.Workers, "Documents processed in parallel")
	fs.String("dir", cfg.Directory, "Working directory the MCP tools are confined to")
	fs.String("host", cfg.Host, "Server host address (server mode only)")
	fs.Int("port", cfg.Port, "Server port (server mode only)")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum input file size in bytes")
}

var boundFlags = []string{
	"mode", "doc", "input", "excel", "row", "out", "dry-run", "templates", "soffice",
	"workers", "dir", "host", "port", "loglevel", "maxfilesize",
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	for _, name := range boundFlags {
		_ = v.BindPFlag(name, fs.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet, w io.Writer) {
	fs.Usage = func() {
		fmt.Fprintf(w, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(w, "\nDOCX Filler - recognizes university form templates and fills them from a workbook\n\n")
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  %s --mode=detect --input=./forms                        # classify every form\n", os.Args[0])
		fmt.Fprintf(w, "  %s --mode=suggest --doc=new.docx                        # anchor hints for a new template\n", os.Args[0])
		fmt.Fprintf(w, "  %s --mode=auto --input=./forms --excel=master.xlsx      # recognize and fill\n", os.Args[0])
		fmt.Fprintf(w, "  %s --mode=fill --doc=a.docx --excel=master.xlsx --row=1 # fill by workbook mapping\n", os.Args[0])
		fmt.Fprintf(w, "  %s --mode=server --dir=/srv/forms --port=8081           # MCP over SSE\n", os.Args[0])
		fmt.Fprintf(w, "\nEnvironment Variables:\n")
		fmt.Fprintf(w, "  %s_<FLAG> sets any flag, dashes as underscores (e.g. %s_DRY_RUN=true)\n", envPrefix, envPrefix)
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag(args []string) error {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = strings.ToLower(v.GetString("mode"))
	cfg.Doc = v.GetString("doc")
	cfg.Input = v.GetString("input")
	cfg.Excel = v.GetString("excel")
	cfg.Row = v.GetInt("row")
	cfg.OutDir = v.GetString("out")
	cfg.DryRun = v.GetBool("dry-run")
	cfg.Templates = v.GetStringSlice("templates")
	cfg.Soffice = v.GetString("soffice")
	cfg.Workers = v.GetInt("workers")
	cfg.Directory = v.GetString("dir")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !validModes[c.Mode] {
		return errors.New("mode must be one of: detect, suggest, auto, fill, stdio, server")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.IsBatchMode() && c.Doc == "" && c.Input == "" {
		return fmt.Errorf("mode %s needs --doc or --input", c.Mode)
	}
	if (c.Mode == ModeAuto || c.Mode == ModeFill) && c.Excel == "" {
		return fmt.Errorf("mode %s needs --excel", c.Mode)
	}
	if c.Row < 0 {
		return errors.New("row must be a positive 1-based index")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}

	if c.IsMCPMode() {
		if c.Directory == "" {
			return errors.New("working directory cannot be empty")
		}
		if _, err := os.Stat(c.Directory); os.IsNotExist(err) {
			if err := os.MkdirAll(c.Directory, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create working directory %s: %w", c.Directory, err)
			}
		} else if err != nil {
			return fmt.Errorf("cannot access working directory %s: %w", c.Directory, err)
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
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
	return fmt.Sprintf("Config{Mode: %s, Doc: %s, Input: %s, Excel: %s, Row: %d, OutDir: %s, DryRun: %t, Workers: %d, Directory: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Doc, c.Input, c.Excel, c.Row, c.OutDir, c.DryRun, c.Workers, c.Directory, c.LogLevel, c.MaxFileSize)
}

// IsBatchMode reports whether the run processes files from the command line.
func (c *Config) IsBatchMode() bool {
	switch c.Mode {
	case ModeDetect, ModeSuggest, ModeAuto, ModeFill:
		return true
	}
	return false
}

// IsMCPMode reports whether the run serves MCP clients.
func (c *Config) IsMCPMode() bool {
	return c.Mode == ModeStdio || c.Mode == ModeServer
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
