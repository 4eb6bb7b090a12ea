package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"GlickoLab/internal/domain/repository"
	"GlickoLab/internal/handler/api"
	internalrepo "GlickoLab/internal/repository"
	icache "GlickoLab/internal/service/cache"
	"GlickoLab/internal/service/ratelimit"
	"GlickoLab/internal/services/backtest"
	"GlickoLab/internal/services/rating"
	"GlickoLab/internal/services/scoring"
	"GlickoLab/internal/usecase"
	pkgcache "GlickoLab/pkg/cache"
	pkgch "GlickoLab/pkg/clickhouse"
	"GlickoLab/pkg/config"
	xhttp "GlickoLab/pkg/http"
	pkgkafka "GlickoLab/pkg/kafka"
	applogger "GlickoLab/pkg/logger"
	"GlickoLab/pkg/metrics"
	"GlickoLab/pkg/queue"
	"GlickoLab/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "json"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, nil when ClickHouse
// is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideCandleStore creates the candle repository and ensures its schema.
// Returns nil when ClickHouse is disabled; store-backed endpoints then
// report errors instead of serving data.
func ProvideCandleStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) (repository.CandleStore, error) {
	if chClient == nil {
		return nil, nil
	}
	store := internalrepo.NewCHCandleStore(chClient, cfg.ClickHouse.Table)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = chClient.Close()
		return nil, fmt.Errorf("candle store init: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideRatingPublisher creates the Kafka-backed rating publisher.
func ProvideRatingPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.RatingPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaRatingPublisher(producer, cfg.Kafka.RatingsTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML, nil
// when Kafka ingest is disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.CandlesTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRedisCache creates the shared Redis connection, nil when disabled.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix("glickolab"),
	)
}

// ProvideCacheService creates the cache used for windowed results and
// cross-instance locks: layered memory-over-Redis when Redis is available,
// process-local otherwise.
func ProvideCacheService(rc *pkgcache.RedisCache) pkgcache.Service {
	if rc == nil {
		return pkgcache.NewMemoryCache()
	}
	return pkgcache.NewLayeredCache(rc)
}

// ProvideRedisClient exposes the raw Redis client for the job queue.
func ProvideRedisClient(rc *pkgcache.RedisCache) *redis.Client {
	if rc == nil {
		return nil
	}
	return rc.Client()
}

// ProvideBytesCache creates the candle response cache: Redis-backed when
// available so entries are shared across instances, in-process otherwise.
func ProvideBytesCache(client *redis.Client) icache.BytesCache {
	if client != nil {
		return icache.NewRedisCache(client)
	}
	return icache.NewTTLCache()
}

// ProvideLimiter creates the shared token-bucket rate limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHybridCalculator creates the candle scorer.
func ProvideHybridCalculator() *scoring.HybridCalculator {
	return scoring.NewHybridCalculator()
}

// ProvideRatingEngine creates the Glicko-2 rating engine.
func ProvideRatingEngine(scorer *scoring.HybridCalculator, cfg *config.Config, l *applogger.Logger) *rating.Engine {
	return rating.NewEngine(scorer, l,
		rating.WithBenchmark(cfg.Engine.BenchmarkRating, cfg.Engine.BenchmarkRD),
	)
}

// ProvideSignalGenerator creates the z-score signal generator.
func ProvideSignalGenerator() *backtest.SignalGenerator {
	return backtest.NewSignalGenerator()
}

// ProvideBacktestEngine creates the single-run simulation engine.
func ProvideBacktestEngine(signals *backtest.SignalGenerator, cfg *config.Config, l *applogger.Logger) *backtest.Engine {
	return backtest.NewEngine(signals, l,
		backtest.WithFunds(cfg.Engine.InitialCash, cfg.Engine.Allocation),
	)
}

// ProvideWindowedEngine creates the worker-pool sweep engine.
func ProvideWindowedEngine(engine *backtest.Engine, cfg *config.Config, l *applogger.Logger) *backtest.WindowedEngine {
	return backtest.NewWindowedEngine(engine, cfg.Engine.Workers, l)
}

// ProvideRatingsUseCase wires candle scoring and rating publication.
func ProvideRatingsUseCase(
	engine *rating.Engine,
	store repository.CandleStore,
	pub repository.RatingPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.RatingsUseCase {
	return usecase.NewRatingsUseCase(engine, store, pub, m, l)
}

// ProvideWindowedBacktestJob creates the async sweep job.
func ProvideWindowedBacktestJob(windowed *backtest.WindowedEngine, cacheSvc pkgcache.Service, l *applogger.Logger) *usecase.WindowedBacktestJob {
	return usecase.NewWindowedBacktestJob(windowed, cacheSvc, l)
}

// ProvideJobQueue creates the Redis-backed job queue with all jobs
// registered, nil when Redis is disabled.
func ProvideJobQueue(
	cfg *config.Config,
	l *applogger.Logger,
	client *redis.Client,
	backtestJob *usecase.WindowedBacktestJob,
) *queue.RedisQueue {
	if client == nil {
		return nil
	}
	qc := &queue.QueueConfig{
		Workers:    cfg.Redis.Queue.Workers,
		QueueSize:  cfg.Redis.Queue.QueueSize,
		RetryLimit: cfg.Redis.Queue.RetryLimit,
		RetryDelay: cfg.Redis.Queue.RetryDelay,
	}
	prefix := cfg.Redis.Queue.KeyPrefix
	if prefix == "" {
		prefix = "glickolab"
	}
	q := queue.NewRedisQueue(l, qc, client, queue.ModeProducerConsumer,
		queue.WithKeyPrefix(prefix),
	)
	q.RegisterJob(backtestJob)
	return q
}

// ProvideQueueService exposes the queue behind its publish interface so use
// cases get a real nil when the queue is disabled.
func ProvideQueueService(q *queue.RedisQueue) queue.QueueService {
	if q == nil {
		return nil
	}
	return q
}

// ProvideBacktestUseCase wires the sync, stored and windowed backtest flows.
func ProvideBacktestUseCase(
	engine *backtest.Engine,
	windowed *backtest.WindowedEngine,
	ratings *usecase.RatingsUseCase,
	cacheSvc pkgcache.Service,
	limiter *ratelimit.Limiter,
	jobs queue.QueueService,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.BacktestUseCase {
	return usecase.NewBacktestUseCase(engine, windowed, ratings, cacheSvc, limiter, jobs, m, l)
}

// ProvideCandlesUseCase wires stored-candle reads.
func ProvideCandlesUseCase(store repository.CandleStore, bytesCache icache.BytesCache) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store, bytesCache)
}

// ProvideCandleProcessor creates the batching ingest processor.
func ProvideCandleProcessor(store repository.CandleStore, m repository.Metrics, cfg *config.Config) *usecase.CandleProcessor {
	return usecase.NewCandleProcessor(store, m, cfg.Engine.BatchSize, cfg.Engine.BatchTimeout)
}

// ProvideKafkaCandlesHandler registers the handler for the candles topic.
func ProvideKafkaCandlesHandler(processor *usecase.CandleProcessor, m repository.Metrics, cfg *config.Config) *usecase.KafkaCandlesHandler {
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.CandlesTopic, processor, m)
}

// ProvideHTTPHandler creates the engine API handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	ratings *usecase.RatingsUseCase,
	backtestUC *usecase.BacktestUseCase,
	candles *usecase.CandlesUseCase,
) xhttp.Handler {
	return api.NewEngineEchoHandler(l, ratings, backtestUC, candles)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	chClient *pkgch.Client,
	jobQueue *queue.RedisQueue,
	publisher repository.RatingPublisher,
	processor *usecase.CandleProcessor,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	var ingest pkgkafka.MessageHandler
	if consumer != nil && kh != nil {
		ingest = kh
	}
	return server.New(cfg, l, handler, consumer, ingest, chClient, jobQueue, publisher, processor)
}
