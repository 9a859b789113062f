// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/praos/praos"
)

const (
	defaultSecurityParam   = praos.DefaultSecurityParam
	defaultCacheMB         = 256
	defaultOpenFiles       = 512
	defaultVerbosity       = 3
	defaultMetricsAddr     = "localhost:2112"
	defaultValidateWorkers = 4
)

// config is the content of the yaml config file.
type config struct {
	DataDir         string `yaml:"dataDir"`
	SecurityParam   uint64 `yaml:"securityParam"`
	CacheSizeMB     int    `yaml:"cacheSizeMB"`
	OpenFilesCache  int    `yaml:"openFilesCache"`
	Verbosity       *int   `yaml:"verbosity"`
	JSONLogs        bool   `yaml:"jsonLogs"`
	MetricsAddr     string `yaml:"metricsAddr"`
	ValidateWorkers int    `yaml:"validateWorkers"`
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".praos")
	}
	return filepath.Join(os.TempDir(), ".praos")
}

func defaultConfig() *config {
	verbosity := defaultVerbosity
	return &config{
		DataDir:         defaultDataDir(),
		SecurityParam:   defaultSecurityParam,
		CacheSizeMB:     defaultCacheMB,
		OpenFilesCache:  defaultOpenFiles,
		Verbosity:       &verbosity,
		MetricsAddr:     defaultMetricsAddr,
		ValidateWorkers: defaultValidateWorkers,
	}
}

// loadConfig reads the config file over the defaults. Absent fields keep defaults.
func loadConfig(path string) (*config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if cfg.SecurityParam == 0 {
		return nil, errors.New("securityParam must be positive")
	}
	return cfg, nil
}

// flagSource is the part of cli.Context used to override config values.
type flagSource interface {
	IsSet(name string) bool
	GlobalIsSet(name string) bool
	String(name string) string
	GlobalString(name string) string
	Int(name string) int
	GlobalInt(name string) int
	Uint64(name string) uint64
	GlobalUint64(name string) uint64
	Bool(name string) bool
	GlobalBool(name string) bool
}

var _ flagSource = (*cli.Context)(nil)

// applyFlags overrides config values with flags set on the command line,
// either after the command or before it.
func (c *config) applyFlags(ctx flagSource) {
	if v, ok := stringFlag(ctx, dataDirFlag.Name); ok {
		c.DataDir = v
	}
	if v, ok := uint64Flag(ctx, securityParamFlag.Name); ok {
		c.SecurityParam = v
	}
	if v, ok := intFlag(ctx, cacheFlag.Name); ok {
		c.CacheSizeMB = v
	}
	if v, ok := intFlag(ctx, openFilesFlag.Name); ok {
		c.OpenFilesCache = v
	}
	if v, ok := intFlag(ctx, verbosityFlag.Name); ok {
		c.Verbosity = &v
	}
	if ctx.Bool(jsonLogsFlag.Name) || ctx.GlobalBool(jsonLogsFlag.Name) {
		c.JSONLogs = true
	}
	if v, ok := stringFlag(ctx, metricsAddrFlag.Name); ok {
		c.MetricsAddr = v
	}
	if v, ok := intFlag(ctx, workersFlag.Name); ok {
		c.ValidateWorkers = v
	}
}

func stringFlag(ctx flagSource, name string) (string, bool) {
	switch {
	case ctx.IsSet(name):
		return ctx.String(name), true
	case ctx.GlobalIsSet(name):
		return ctx.GlobalString(name), true
	}
	return "", false
}

func intFlag(ctx flagSource, name string) (int, bool) {
	switch {
	case ctx.IsSet(name):
		return ctx.Int(name), true
	case ctx.GlobalIsSet(name):
		return ctx.GlobalInt(name), true
	}
	return 0, false
}

func uint64Flag(ctx flagSource, name string) (uint64, bool) {
	switch {
	case ctx.IsSet(name):
		return ctx.Uint64(name), true
	case ctx.GlobalIsSet(name):
		return ctx.GlobalUint64(name), true
	}
	return 0, false
}
