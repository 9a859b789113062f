// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/praos/praos"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "praosdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range []cli.Flag{dataDirFlag, securityParamFlag, cacheFlag, verbosityFlag, jsonLogsFlag, workersFlag} {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, praos.DefaultSecurityParam, cfg.SecurityParam)
	assert.Equal(t, defaultCacheMB, cfg.CacheSizeMB)
	assert.Equal(t, defaultVerbosity, *cfg.Verbosity)
	assert.False(t, cfg.JSONLogs)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
dataDir: /data/praos
securityParam: 10
verbosity: 0
validateWorkers: 8
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/praos", cfg.DataDir)
	assert.Equal(t, uint64(10), cfg.SecurityParam)
	assert.Equal(t, 0, *cfg.Verbosity)
	assert.Equal(t, 8, cfg.ValidateWorkers)
	// untouched fields keep defaults
	assert.Equal(t, defaultMetricsAddr, cfg.MetricsAddr)
	assert.Equal(t, defaultOpenFiles, cfg.OpenFilesCache)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	_, err = loadConfig(writeConfig(t, "securityParam: [1"))
	assert.Error(t, err)

	_, err = loadConfig(writeConfig(t, "securityParam: 0"))
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "dataDir: /from/file\nsecurityParam: 10\ncacheSizeMB: 64\n"))
	require.NoError(t, err)

	cfg.applyFlags(newContext(t, "--k", "5", "--verbosity", "5", "--json-logs"))
	assert.Equal(t, uint64(5), cfg.SecurityParam)
	assert.Equal(t, 5, *cfg.Verbosity)
	assert.True(t, cfg.JSONLogs)
	// flags not given don't override the file, even if they have defaults
	assert.Equal(t, "/from/file", cfg.DataDir)
	assert.Equal(t, 64, cfg.CacheSizeMB)
	assert.Equal(t, defaultValidateWorkers, cfg.ValidateWorkers)
}
