package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jedisct1/go-magma"
	"github.com/jedisct1/go-magma/sboxfile"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig([]string{
		"--configfile", filepath.Join(t.TempDir(), "missing.conf"),
	})
	require.NoError(t, err)

	require.Equal(t, defaultListen, cfg.Listen)
	require.Equal(t, defaultShutdownTimeout, cfg.ShutdownTimeout)
	require.Equal(t, defaultLogLevel, cfg.DebugLevel)
	require.Equal(t, magma.DefaultSBox().Rows(), cfg.sbox.Rows())

	srvCfg := cfg.serverConfig()
	require.Equal(t, magma.PadByteLength, srvCfg.Padding)
	require.False(t, srvCfg.TruncateKeys)
}

func TestLoadConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()

	sboxData, err := sboxfile.Marshal(magma.SBoxParamZ(), "param-Z")
	require.NoError(t, err)
	sboxPath := filepath.Join(dir, "paramz.yaml")
	require.NoError(t, os.WriteFile(sboxPath, sboxData, 0o600))

	confPath := filepath.Join(dir, "magmad.conf")
	conf := "[Application Options]\n" +
		"listen=127.0.0.1:9999\n" +
		"workers=4\n" +
		"shutdowntimeout=3s\n" +
		"sboxfile=" + sboxPath + "\n"
	require.NoError(t, os.WriteFile(confPath, []byte(conf), 0o600))

	// Command line options take precedence over the file.
	cfg, err := loadConfig([]string{
		"--configfile", confPath,
		"--workers", "2",
		"--legacy.bitlengthpadding",
		"--legacy.truncatekeys",
	})
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9999", cfg.Listen)
	require.Equal(t, 2, cfg.Workers)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, magma.SBoxParamZ().Rows(), cfg.sbox.Rows())

	srvCfg := cfg.serverConfig()
	require.Equal(t, magma.PadLegacyBitLength, srvCfg.Padding)
	require.True(t, srvCfg.TruncateKeys)
	require.Equal(t, 2, srvCfg.Workers)
}

func TestLoadConfigRejects(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.conf")

	badSBox := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badSBox, []byte("rows: [[1, 1]]"), 0o600))

	testCases := []struct {
		name string
		args []string
	}{
		{"negative_workers", []string{"--workers", "-1"}},
		{"zero_body_size", []string{"--maxbodysize", "0"}},
		{"empty_listen", []string{"--listen", ""}},
		{"bad_sbox", []string{"--sboxfile", badSBox}},
		{"missing_sbox", []string{"--sboxfile", filepath.Join(dir, "nope.yaml")}},
		{"unknown_flag", []string{"--nosuchflag"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"--configfile", missing}, tc.args...)
			_, err := loadConfig(args)
			require.Error(t, err)
		})
	}
}

func TestParseAndSetDebugLevels(t *testing.T) {
	require.NoError(t, parseAndSetDebugLevels("debug"))
	require.NoError(t, parseAndSetDebugLevels("MGMA=trace,HTTP=info"))

	require.Error(t, parseAndSetDebugLevels("loud"))
	require.Error(t, parseAndSetDebugLevels("NOPE=info"))
	require.Error(t, parseAndSetDebugLevels("MGMA=loud"))
	require.Error(t, parseAndSetDebugLevels("MGMA=info,debug"))

	require.Equal(t, []string{"HTTP", "MGMA", "MGMD"}, supportedSubsystems())

	setLogLevels("info")
}

func TestInitLogRotator(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", defaultLogFilename)
	require.NoError(t, initLogRotator(logFile, 1, 2))
	defer func() {
		closeLogRotator()
		logRotator = nil
	}()

	mgmdLog.Infof("rotator test")
	require.FileExists(t, logFile)
}
