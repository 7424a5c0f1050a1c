package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/blockledger/app/services/ledger/handlers"
	"github.com/ardanlabs/blockledger/business/core/ingest"
	"github.com/ardanlabs/blockledger/business/sys/metrics"
	"github.com/ardanlabs/blockledger/foundation/blockchain/digest"
	"github.com/ardanlabs/blockledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/blockledger/foundation/console"
	"github.com/ardanlabs/blockledger/foundation/events"
	"github.com/ardanlabs/blockledger/foundation/logger"
	"github.com/ardanlabs/blockledger/foundation/stream"
	"github.com/ardanlabs/blockledger/foundation/stream/kafka"
	"github.com/ardanlabs/blockledger/foundation/stream/queue"
	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("LEDGER")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		Ledger struct {
			Algorithm string `conf:"default:sha512"`
		}
		Ingest struct {
			Policy          string        `conf:"default:substitute"`
			AuditEvery      int           `conf:"default:100"`
			HaltOnViolation bool          `conf:"default:true"`
			PrintChain      bool          `conf:"default:false"`
			QueueSize       int           `conf:"default:1024"`
			RetryDelay      time.Duration `conf:"default:1s"`
		}
		Kafka struct {
			Enabled        bool          `conf:"default:true"`
			Brokers        []string      `conf:"default:localhost:9092"`
			Topic          string        `conf:"default:my-topic"`
			GroupID        string        `conf:"default:blockledger"`
			SessionTimeout time.Duration `conf:"default:6s"`
			MaxWait        time.Duration `conf:"default:500ms"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "LEDGER"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Ledger Support

	alg, err := digest.Parse(cfg.Ledger.Algorithm)
	if err != nil {
		return fmt.Errorf("ledger algorithm: %w", err)
	}

	policy, err := ingest.ParsePolicy(cfg.Ingest.Policy)
	if err != nil {
		return fmt.Errorf("ingest policy: %w", err)
	}

	// The ledger packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	ldg := ledger.New(ledger.Config{
		Algorithm: alg,
	})

	genesis := ldg.Latest()
	log.Infow("startup", "status", "genesis created", "algorithm", alg, "hash", genesis.Hash)

	mtr := metrics.New()

	// =========================================================================
	// Stream Support

	// Payloads posted to the public API go through this queue so the ingest
	// writer stays the only goroutine appending to the ledger.
	httpQueue := queue.New("http", cfg.Ingest.QueueSize)
	sources := []stream.Source{httpQueue}

	if cfg.Kafka.Enabled {
		kfk, err := kafka.New(kafka.Config{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          cfg.Kafka.Topic,
			GroupID:        cfg.Kafka.GroupID,
			MaxWait:        cfg.Kafka.MaxWait,
			SessionTimeout: cfg.Kafka.SessionTimeout,
		})
		if err != nil {
			return fmt.Errorf("constructing kafka source: %w", err)
		}
		sources = append(sources, kfk)

		log.Infow("startup", "status", "kafka source configured", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)
	}

	var reporter ingest.Reporter
	if cfg.Ingest.PrintChain {
		reporter = func(blocks []ledger.Block, valid bool) {
			table, err := console.Chain(blocks, valid)
			if err != nil {
				log.Errorw("print chain", "ERROR", err)
				return
			}
			fmt.Println(table)
		}
	}

	in, err := ingest.New(ingest.Config{
		Chain:           ldg,
		Sources:         sources,
		Policy:          policy,
		AuditEvery:      cfg.Ingest.AuditEvery,
		HaltOnViolation: cfg.Ingest.HaltOnViolation,
		RetryDelay:      cfg.Ingest.RetryDelay,
		Metrics:         mtr,
		Reporter:        reporter,
		EvHandler:       ev,
	})
	if err != nil {
		return fmt.Errorf("constructing ingest: %w", err)
	}

	ingestCtx, cancelIngest := context.WithCancel(context.Background())
	defer cancelIngest()

	// Make a channel to listen for the ingest workflow to end. A nil error
	// means every source was closed.
	ingestErrors := make(chan error, 1)

	go func() {
		log.Infow("startup", "status", "ingest started", "sources", len(sources))
		ingestErrors <- in.Run(ingestCtx)
	}()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log, ldg, mtr)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Ledger:   ldg,
		Queue:    httpQueue,
		Evts:     evts,
	})

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	var runErr error
	ingestDone := false
	select {
	case err := <-serverErrors:
		runErr = fmt.Errorf("server error: %w", err)

	case err := <-ingestErrors:
		ingestDone = true
		if err != nil {
			runErr = fmt.Errorf("ingest: %w", err)
			break
		}
		log.Infow("shutdown", "status", "every source closed")

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
	}

	// Stop accepting payloads and give the writer a deadline to append what
	// was already queued.
	log.Infow("shutdown", "status", "shutdown sources")
	for _, src := range sources {
		if err := src.Close(); err != nil {
			log.Errorw("shutdown", "source", src.Name(), "ERROR", err)
		}
	}

	if !ingestDone {
		select {
		case err := <-ingestErrors:
			if err != nil {
				runErr = errors.Join(runErr, fmt.Errorf("ingest: %w", err))
			}
		case <-time.After(cfg.Web.ShutdownTimeout):
			log.Infow("shutdown", "status", "ingest drain timed out")
			cancelIngest()
			<-ingestErrors
		}
	}

	// Release any web sockets that are currently active.
	log.Infow("shutdown", "status", "shutdown web socket channels")
	evts.Shutdown()

	// Give outstanding requests a deadline for completion.
	ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
	defer cancelPub()

	// Asking listener to shut down and shed load.
	log.Infow("shutdown", "status", "shutdown public API started")
	if err := public.Shutdown(ctx); err != nil {
		public.Close()
		return errors.Join(runErr, fmt.Errorf("could not stop public service gracefully: %w", err))
	}

	log.Infow("shutdown", "status", "final chain", "length", ldg.Len(), "valid", ldg.IsValid())

	return runErr
}
