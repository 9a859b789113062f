// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a yaml config file, flags take precedence over it",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for chain databases",
	}
	securityParamFlag = cli.Uint64Flag{
		Name:  "k",
		Value: defaultSecurityParam,
		Usage: "security parameter, the max number of blocks a rollback may undo",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: defaultCacheMB,
		Usage: "megabytes of ram allocated to the database read cache",
	}
	openFilesFlag = cli.IntFlag{
		Name:   "open-files",
		Value:  defaultOpenFiles,
		Hidden: true,
		Usage:  "max number of files kept open by the database",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: defaultVerbosity,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: defaultMetricsAddr,
		Usage: "metrics service listening address",
	}
	workersFlag = cli.IntFlag{
		Name:  "workers",
		Value: defaultValidateWorkers,
		Usage: "number of chunks validated in parallel",
	}
	chunkFlag = cli.Uint64Flag{
		Name:  "chunk",
		Usage: "chunk number",
	}
	fromSlotFlag = cli.Uint64Flag{
		Name:  "from",
		Usage: "slot of the first block",
	}
	toSlotFlag = cli.Uint64Flag{
		Name:  "to",
		Usage: "slot of the last block, defaults to the tip",
	}
	exclusiveFlag = cli.BoolFlag{
		Name:  "exclusive",
		Usage: "exclude the first block",
	}
	componentFlag = cli.StringFlag{
		Name:  "component",
		Value: "hash",
		Usage: "block component to print (hash|slot|prev-hash|size|header-size|ebb)",
	}
)
