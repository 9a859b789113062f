// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/praos/chaindb"
	"github.com/vechain/praos/co"
	"github.com/vechain/praos/log"
	"github.com/vechain/praos/metrics"
	"github.com/vechain/praos/muxdb"
	"github.com/vechain/praos/praos"
	"github.com/vechain/praos/stable"
	"github.com/vechain/praos/volatile"
)

var logger = log.WithContext("pkg", "praosdb")

// resolveConfig loads the config file named by the config flag and applies flag overrides.
func resolveConfig(ctx *cli.Context) (*config, error) {
	path := ctx.String(configFlag.Name)
	if path == "" {
		path = ctx.GlobalString(configFlag.Name)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.applyFlags(ctx)
	if cfg.SecurityParam == 0 {
		return nil, errors.New("security param must be positive")
	}
	return cfg, nil
}

func initLogger(cfg *config) *slog.LevelVar {
	lvl := &slog.LevelVar{}
	lvl.Set(log.FromLegacyLevel(*cfg.Verbosity))

	var handler slog.Handler
	if cfg.JSONLogs {
		handler = log.JSONHandlerWithLevel(os.Stderr, lvl)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return lvl
}

func openMainDB(cfg *config) (*muxdb.MuxDB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create data dir [%v]", cfg.DataDir)
	}
	path := filepath.Join(cfg.DataDir, "main.db")
	db, err := muxdb.Open(path, &muxdb.Options{
		OpenFilesCacheCapacity: cfg.OpenFilesCache,
		ReadCacheMB:            cfg.CacheSizeMB,
		WriteBufferMB:          128,
		ChunkSize:              praos.ChunkSize,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", path)
	}
	logger.Debug("main database opened", "path", path)
	return db, nil
}

func closeMainDB(db *muxdb.MuxDB) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", "err", err)
		}
	}
}

// openChainDB opens the main database and the chain database on it.
// The returned func closes the database.
func openChainDB(cfg *config) (*chaindb.ChainDB, func(), error) {
	db, err := openMainDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cdb, err := chaindb.New(db, cfg.SecurityParam)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return cdb, closeMainDB(db), nil
}

// openStableStore opens the main database and only the stable store on it,
// leaving a corrupted chain as it is.
// The returned func closes the database.
func openStableStore(cfg *config) (*stable.Store, func(), error) {
	db, err := openMainDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	s, err := stable.New(db, volatile.NewBlockStore(db))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, closeMainDB(db), nil
}

// handleExitSignal returns a context canceled on SIGINT or SIGTERM.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(exitSignalCh)

		select {
		case sig := <-exitSignalCh:
			logger.Info("exit signal received", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}

// startMetricsServer serves prometheus metrics and the chain tip at addr.
// The returned func stops the server.
func startMetricsServer(addr string, cdb *chaindb.ChainDB) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Path("/tip").Methods(http.MethodGet).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, newTipStatus(cdb))
	})
	handler := handlers.CompressHandler(router)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "err", err)
		}
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

type tipStatus struct {
	StableSlot   uint64        `json:"stableSlot"`
	StableHash   *praos.Hash32 `json:"stableHash,omitempty"`
	StableBlocks uint64        `json:"stableBlocks"`
	Slot         uint64        `json:"slot"`
	Hash         *praos.Hash32 `json:"hash,omitempty"`
	Number       uint64        `json:"number"`
	Volatile     int           `json:"volatile"`
}

func newTipStatus(cdb *chaindb.ChainDB) *tipStatus {
	stableTip := cdb.Stable().Tip()
	tip := cdb.Tip()
	status := &tipStatus{
		StableSlot:   stableTip.Slot,
		StableBlocks: stableTip.BlockCount,
		Slot:         tip.Point.Slot,
		Number:       tip.BlockNumber,
		Volatile:     cdb.VolatileLen(),
	}
	if !stableTip.IsEmpty() {
		status.StableHash = &stableTip.Hash
	}
	if !tip.Point.IsOrigin() {
		status.Hash = &tip.Point.Hash
	}
	return status
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("failed to write response", "err", err)
	}
}
