package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"soulforge.gg/internal/catalog"
	"soulforge.gg/internal/persistence/capturelog"
	"soulforge.gg/internal/persistence/statsdb"
	"soulforge.gg/internal/sim/actors"
	"soulforge.gg/internal/sim/trap"
	"soulforge.gg/internal/transport/ws"
	"soulforge.gg/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the capture statistics database")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cat, err := catalog.Load(*configDir)
	if err != nil {
		logger.Fatalf("load gem catalog: %v", err)
	}
	logger.Printf("gem catalog loaded: %d families digest=%s", len(cat.Groups()), cat.Digest[:12])

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	_ = os.MkdirAll(*dataDir, 0o755)

	var stats *statsdb.Store
	if !*disableDB {
		stats, err = statsdb.Open(filepath.Join(*dataDir, "stats.db"))
		if err != nil {
			logger.Fatalf("open stats db: %v", err)
		}
		defer stats.Close()
	}

	capLog := capturelog.New(filepath.Join(*dataDir, "captures"))
	defer capLog.Close()

	recorders := []trap.Recorder{capLog}
	if stats != nil {
		recorders = append(recorders, stats)
	}

	reg := actors.NewRegistry()
	cfg := trap.NewConfig(trap.PolicyFromTuning(tune.Policy))

	engine := trap.NewEngine(trap.EngineConfig{
		Catalog:          cat,
		Registry:         reg,
		Policy:           cfg,
		Recorder:         multiRecorder(recorders),
		Logger:           logger,
		MaxNotifications: tune.Notifications.MaxPerCapture,
	})

	wsServer := ws.NewServer(engine, reg, cat, logger)
	engine.SetNotifier(wsServer)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsServer.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		writeMetrics(rw, engine, stats)
	})

	logger.Printf("listening on %s", *addr)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatalf("serve: %v", err)
	}
}

func writeMetrics(rw http.ResponseWriter, engine *trap.Engine, stats *statsdb.Store) {
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	s := engine.Stats()
	fmt.Fprintf(rw, "trap_calls_total %d\n", s.Calls)
	fmt.Fprintf(rw, "trap_captures_total %d\n", s.Captures)
	fmt.Fprintf(rw, "trap_failures_total %d\n", s.Failures)
	fmt.Fprintf(rw, "trap_souls_processed_total %d\n", s.SoulsProcessed)
	if stats != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if captures, failures, err := stats.Totals(ctx); err == nil {
			fmt.Fprintf(rw, "statsdb_captures_total %d\n", captures)
			fmt.Fprintf(rw, "statsdb_failures_total %d\n", failures)
		}
	}
}
