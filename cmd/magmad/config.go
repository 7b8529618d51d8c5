package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedisct1/go-magma"
	"github.com/jedisct1/go-magma/magmahttp"
	"github.com/jedisct1/go-magma/sboxfile"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename  = "magmad.conf"
	defaultLogDirname      = "logs"
	defaultLogFilename     = "magmad.log"
	defaultListen          = "localhost:8080"
	defaultLogLevel        = "info"
	defaultMaxLogFiles     = 3
	defaultMaxLogFileSize  = 10
	defaultShutdownTimeout = 10 * time.Second
)

// legacyConfig groups the switches that reproduce legacy behavior.
type legacyConfig struct {
	BitLengthPadding bool `long:"bitlengthpadding" description:"Decide padding from the bit length of the input read as an integer, ignoring leading zero bytes"`
	TruncateKeys     bool `long:"truncatekeys" description:"Reduce keys wider than 256 bits modulo 2^256 instead of rejecting them"`
}

// config defines the configuration options for magmad.
type config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`

	Listen          string        `long:"listen" description:"Interface and port for the HTTP API"`
	ShutdownTimeout time.Duration `long:"shutdowntimeout" description:"Time allowed for in-flight requests on shutdown"`

	LogDir         string `long:"logdir" description:"Directory to log output"`
	MaxLogFiles    int    `long:"maxlogfiles" description:"Maximum logfiles to keep (0 for no rotation)"`
	MaxLogFileSize int    `long:"maxlogfilesize" description:"Maximum logfile size in MB"`
	DebugLevel     string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	SBoxFile    string `long:"sboxfile" description:"YAML file holding the default substitution table"`
	Workers     int    `long:"workers" description:"Maximum number of blocks of one request processed concurrently (0 for GOMAXPROCS)"`
	MaxBodySize int64  `long:"maxbodysize" description:"Maximum request body size in bytes"`

	Legacy *legacyConfig `group:"legacy" namespace:"legacy"`

	// sbox is the table loaded from SBoxFile, or the default table.
	sbox *magma.SBox
}

// defaultConfig returns a config with sane settings.
func defaultConfig() config {
	return config{
		ConfigFile:      defaultConfigFilename,
		Listen:          defaultListen,
		ShutdownTimeout: defaultShutdownTimeout,
		LogDir:          defaultLogDirname,
		MaxLogFiles:     defaultMaxLogFiles,
		MaxLogFileSize:  defaultMaxLogFileSize,
		DebugLevel:      defaultLogLevel,
		MaxBodySize:     magmahttp.DefaultMaxBodySize,
		Legacy:          &legacyConfig{},
	}
}

// loadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func loadConfig(args []string) (*config, error) {
	preCfg := defaultConfig()
	if _, err := flags.NewParser(&preCfg, flags.Default).ParseArgs(args); err != nil {
		return nil, err
	}

	if preCfg.ShowVersion {
		return &preCfg, nil
	}

	var configFileError error
	cfg := preCfg
	cfg.Legacy = &legacyConfig{}
	*cfg.Legacy = *preCfg.Legacy
	if err := flags.IniParse(preCfg.ConfigFile, &cfg); err != nil {
		// A missing file is fine, a malformed one is not.
		var iniErr *flags.IniError
		if errors.As(err, &iniErr) {
			return nil, err
		}
		configFileError = err
	}

	if _, err := flags.NewParser(&cfg, flags.Default).ParseArgs(args); err != nil {
		return nil, err
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	if configFileError != nil && preCfg.ConfigFile != defaultConfigFilename {
		mgmdLog.Warnf("%v", configFileError)
	}

	return &cfg, nil
}

// validateConfig checks the given configuration to be sane and loads the
// substitution table.
func validateConfig(cfg *config) error {
	if cfg.Listen == "" {
		return errors.New("listen address must not be empty")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d",
			cfg.Workers)
	}
	if cfg.MaxBodySize <= 0 {
		return fmt.Errorf("maxbodysize must be positive, got %d",
			cfg.MaxBodySize)
	}
	if cfg.MaxLogFileSize <= 0 {
		return fmt.Errorf("maxlogfilesize must be positive, got %d",
			cfg.MaxLogFileSize)
	}
	if cfg.MaxLogFiles < 0 {
		return fmt.Errorf("maxlogfiles must not be negative, got %d",
			cfg.MaxLogFiles)
	}

	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	cfg.sbox = magma.DefaultSBox()
	if cfg.SBoxFile != "" {
		cfg.SBoxFile = cleanAndExpandPath(cfg.SBoxFile)

		sbox, err := sboxfile.Load(cfg.SBoxFile)
		if err != nil {
			return fmt.Errorf("unable to load sbox: %w", err)
		}
		cfg.sbox = sbox
	}

	return nil
}

// serverConfig converts the daemon options into the HTTP server's settings.
func (c *config) serverConfig() magmahttp.Config {
	padding := magma.PadByteLength
	if c.Legacy.BitLengthPadding {
		padding = magma.PadLegacyBitLength
	}

	return magmahttp.Config{
		SBox:         c.sbox,
		Padding:      padding,
		TruncateKeys: c.Legacy.TruncateKeys,
		Workers:      c.Workers,
		MaxBodySize:  c.MaxBodySize,
	}
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.Replace(path, "~", home, 1)
		}
	}

	return filepath.Clean(os.ExpandEnv(path))
}
