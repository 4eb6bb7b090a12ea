//go:build wireinject
// +build wireinject

package di

import (
	"GlickoLab/pkg/config"
	"GlickoLab/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideCacheService,
		ProvideRedisClient,
		ProvideBytesCache,
		ProvideLimiter,

		// Repositories
		ProvideCandleStore,
		ProvideRatingPublisher,

		// Engines
		ProvideHybridCalculator,
		ProvideRatingEngine,
		ProvideSignalGenerator,
		ProvideBacktestEngine,
		ProvideWindowedEngine,

		// Use cases
		ProvideRatingsUseCase,
		ProvideWindowedBacktestJob,
		ProvideJobQueue,
		ProvideQueueService,
		ProvideBacktestUseCase,
		ProvideCandlesUseCase,
		ProvideCandleProcessor,
		ProvideKafkaCandlesHandler,

		// Transport
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
