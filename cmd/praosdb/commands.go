// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/praos/chaindb"
	"github.com/vechain/praos/metrics"
	"github.com/vechain/praos/praos"
	"github.com/vechain/praos/stable"
)

// withChainDB resolves the config, sets up logging and opens the chain database for action.
func withChainDB(ctx *cli.Context, action func(cfg *config, cdb *chaindb.ChainDB) error) error {
	cfg, err := resolveConfig(ctx)
	if err != nil {
		return err
	}
	initLogger(cfg)

	cdb, closeDB, err := openChainDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB()
	return action(cfg, cdb)
}

// withStableStore is like withChainDB, but opens only the stable store.
func withStableStore(ctx *cli.Context, action func(cfg *config, s *stable.Store) error) error {
	cfg, err := resolveConfig(ctx)
	if err != nil {
		return err
	}
	initLogger(cfg)

	s, closeDB, err := openStableStore(cfg)
	if err != nil {
		return err
	}
	defer closeDB()
	return action(cfg, s)
}

func tipAction(ctx *cli.Context) error {
	return withChainDB(ctx, func(_ *config, cdb *chaindb.ChainDB) error {
		stableTip := cdb.Stable().Tip()
		tip := cdb.Tip()
		fmt.Printf("stable:   %v blocks=%d\n", stableTip.Point(), stableTip.BlockCount)
		fmt.Printf("current:  %v number=%d volatile=%d\n", tip.Point, tip.BlockNumber, cdb.VolatileLen())
		return nil
	})
}

func verifyAction(ctx *cli.Context) error {
	return withStableStore(ctx, func(cfg *config, s *stable.Store) error {
		intact, err := s.ValidateIntegrity()
		if err != nil {
			return err
		}
		if !intact {
			return errors.New("stable chain corrupted, run recover to truncate it")
		}

		bad, err := verifyChunks(handleExitSignal(), s, cfg.ValidateWorkers, os.Stdout)
		if err != nil {
			return err
		}
		if len(bad) > 0 {
			return errors.Errorf("%d invalid chunks: %v", len(bad), bad)
		}
		fmt.Println("stable chain intact, all chunks valid")
		return nil
	})
}

func recoverAction(ctx *cli.Context) error {
	return withStableStore(ctx, func(_ *config, s *stable.Store) error {
		report, err := s.RecoverFromCorruption()
		if err != nil {
			return err
		}
		if !report.Truncated {
			fmt.Println("stable chain intact, nothing to recover")
			return nil
		}
		fmt.Printf("truncated to %v, removed %d blocks: %v\n", report.Tip.Point(), report.Removed, report.Cause)
		return nil
	})
}

func reconstructChunkAction(ctx *cli.Context) error {
	if !ctx.IsSet(chunkFlag.Name) {
		return errors.New("chunk flag required")
	}
	return withStableStore(ctx, func(_ *config, s *stable.Store) error {
		chunk := ctx.Uint64(chunkFlag.Name)
		if err := s.ReconstructChunk(chunk); err != nil {
			return err
		}
		fmt.Printf("chunk %d reconstructed\n", chunk)
		return nil
	})
}

func streamAction(ctx *cli.Context) error {
	return withStableStore(ctx, func(_ *config, s *stable.Store) error {
		if s.Tip().IsEmpty() {
			return errors.New("stable chain is empty")
		}

		from := stable.FromInclusive(praos.Origin)
		if ctx.IsSet(fromSlotFlag.Name) {
			point, err := pointAt(s, ctx.Uint64(fromSlotFlag.Name))
			if err != nil {
				return err
			}
			from = stable.FromInclusive(point)
			if ctx.Bool(exclusiveFlag.Name) {
				from = stable.FromExclusive(point)
			}
		}
		to := stable.ToInclusive(s.Tip().Point())
		if ctx.IsSet(toSlotFlag.Name) {
			point, err := pointAt(s, ctx.Uint64(toSlotFlag.Name))
			if err != nil {
				return err
			}
			to = stable.ToInclusive(point)
		}
		return printStream(os.Stdout, s, ctx.String(componentFlag.Name), from, to)
	})
}

func serveMetricsAction(ctx *cli.Context) error {
	// meters are created lazily, so they bind to prometheus if it's initialized before the db opens.
	metrics.InitializePrometheusMetrics()
	return withChainDB(ctx, func(cfg *config, cdb *chaindb.ChainDB) error {
		url, stop, err := startMetricsServer(cfg.MetricsAddr, cdb)
		if err != nil {
			return err
		}
		defer stop()
		logger.Info("metrics server started", "url", url)

		exitCtx := handleExitSignal()
		bad, err := verifyChunks(exitCtx, cdb.Stable(), cfg.ValidateWorkers, io.Discard)
		if err != nil {
			return err
		}
		if len(bad) > 0 {
			logger.Warn("invalid chunks found", "chunks", bad)
		}
		<-exitCtx.Done()
		return nil
	})
}

// verifyChunks validates all stable chunks, drawing progress to w.
func verifyChunks(ctx context.Context, s *stable.Store, workers int, w io.Writer) ([]uint64, error) {
	tip := s.Tip()
	if tip.IsEmpty() {
		return nil, nil
	}
	total := s.ChunkOf(tip.Slot) + 1

	pb.NotPrint = false
	defer func() { pb.NotPrint = true }()
	bar := pb.New64(int64(total)).
		Set64(0).
		SetMaxWidth(90)
	bar.Output = w
	bar.Prefix("chunks ")
	bar.Start()

	start := time.Now()
	bad, err := s.ValidateAllChunks(ctx, workers, func(uint64) { bar.Add64(1) })
	if err != nil {
		bar.Finish()
		return nil, err
	}
	bar.Finish()
	logger.Info("chunks verified", "count", total, "invalid", len(bad), "elapsed", time.Since(start).Round(time.Millisecond))
	return bad, nil
}

func pointAt(s *stable.Store, slot uint64) (praos.Point, error) {
	hash, err := s.GetHashBySlot(slot)
	if err != nil {
		return praos.Point{}, err
	}
	return praos.NewPoint(slot, hash), nil
}

func printStream(w io.Writer, s *stable.Store, component string, from stable.From, to stable.To) error {
	switch component {
	case stable.ComponentHash.Name():
		return printComponent(w, s, stable.ComponentHash, from, to, praos.Hash32.String)
	case stable.ComponentSlot.Name():
		return printComponent(w, s, stable.ComponentSlot, from, to, formatUint)
	case stable.ComponentPrevHash.Name():
		return printComponent(w, s, stable.ComponentPrevHash, from, to, praos.Hash32.String)
	case stable.ComponentBlockSize.Name():
		return printComponent(w, s, stable.ComponentBlockSize, from, to, formatUint)
	case stable.ComponentHeaderSize.Name():
		return printComponent(w, s, stable.ComponentHeaderSize, from, to, formatUint)
	case stable.ComponentIsEBB.Name():
		return printComponent(w, s, stable.ComponentIsEBB, from, to, strconv.FormatBool)
	}
	return errors.Errorf("unknown component %q", component)
}

func formatUint(v uint64) string { return strconv.FormatUint(v, 10) }

func printComponent[T any](w io.Writer, s *stable.Store, c stable.Component[T], from stable.From, to stable.To, format func(T) string) error {
	reg := stable.NewResourceRegistry()
	defer reg.Release()

	it, err := stable.Stream(s, reg, c, from, to)
	if err != nil {
		return err
	}
	for it.Next() {
		if _, err := fmt.Fprintf(w, "%v\t%s\n", it.Point(), format(it.Value())); err != nil {
			return err
		}
	}
	return it.Error()
}
