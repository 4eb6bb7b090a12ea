package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "GlickoLab/internal/domain/repository"
	"GlickoLab/internal/usecase"
	pkgch "GlickoLab/pkg/clickhouse"
	"GlickoLab/pkg/config"
	xhttp "GlickoLab/pkg/http"
	pkgkafka "GlickoLab/pkg/kafka"
	applogger "GlickoLab/pkg/logger"
	"GlickoLab/pkg/queue"
)

// App encapsulates the entire application lifecycle: the HTTP API, the Kafka
// candle ingest, and the async job queue.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	jobQueue    *queue.RedisQueue
	publisher   domrepo.RatingPublisher
	processor   *usecase.CandleProcessor
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	jobQueue *queue.RedisQueue,
	publisher domrepo.RatingPublisher,
	processor *usecase.CandleProcessor,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		httpHandler: handler,
		consumer:    consumer,
		kh:          kh,
		chClient:    chClient,
		jobQueue:    jobQueue,
		publisher:   publisher,
		processor:   processor,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger
	if l == nil {
		var err error
		l, err = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
		if err != nil {
			return err
		}
		a.logger = l
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start candle consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Periodically flush partially-filled ingest batches
	if a.processor != nil {
		go a.flushLoop(ctx, l)
	}

	// Start async job workers if configured
	if a.jobQueue != nil {
		if err := a.jobQueue.Start(); err != nil {
			l.Error("job queue start error", applogger.Error(err))
			return err
		}
		l.Info("job queue started")
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) flushLoop(ctx context.Context, l *applogger.Logger) {
	interval := a.cfg.Engine.BatchTimeout
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.processor.Flush(ctx); err != nil {
				l.Warn("candle batch flush error", applogger.Error(err))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	if l == nil {
		log.Println("shutting down without logger")
		return nil
	}
	l.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop consumer before flushing so no new candles arrive mid-drain
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.processor != nil {
		if err := a.processor.Flush(shutdownCtx); err != nil {
			l.Warn("final candle flush error", applogger.Error(err))
		}
	}

	if a.jobQueue != nil {
		if err := a.jobQueue.Stop(shutdownCtx); err != nil {
			l.Warn("job queue stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			l.Warn("rating publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
