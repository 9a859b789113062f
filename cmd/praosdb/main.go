// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	if gitTag == "" {
		return fmt.Sprintf("%s-%s", version, gitCommit)
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, gitTag)
}

func main() {
	common := []cli.Flag{
		configFlag,
		dataDirFlag,
		securityParamFlag,
		cacheFlag,
		openFilesFlag,
		verbosityFlag,
		jsonLogsFlag,
	}

	app := cli.App{
		Version: fullVersion(),
		Name:    "praosdb",
		Usage:   "Inspect and maintain an Ouroboros Praos chain database",
		Flags:   common,
		Commands: []cli.Command{
			{
				Name:   "tip",
				Usage:  "Print the stable and current chain tips",
				Flags:  common,
				Action: tipAction,
			},
			{
				Name:   "verify",
				Usage:  "Validate the checksums and linkage of all stable chunks",
				Flags:  append(common, workersFlag),
				Action: verifyAction,
			},
			{
				Name:   "recover",
				Usage:  "Truncate the stable chain to its longest valid prefix",
				Flags:  common,
				Action: recoverAction,
			},
			{
				Name:   "reconstruct-chunk",
				Usage:  "Recompute the checksum record of a stable chunk",
				Flags:  append(common, chunkFlag),
				Action: reconstructChunkAction,
			},
			{
				Name:   "stream",
				Usage:  "Print a component of the stable blocks between two slots",
				Flags:  append(common, fromSlotFlag, toSlotFlag, exclusiveFlag, componentFlag),
				Action: streamAction,
			},
			{
				Name:   "serve-metrics",
				Usage:  "Validate the database and serve its metrics until interrupted",
				Flags:  append(common, metricsAddrFlag, workersFlag),
				Action: serveMetricsAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
