//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"fishdex/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideJWTManager,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideSupabaseClient,
	ProvideRepositories,
	ProvideProgressRepository,
	ProvideFeedbackRepository,
	ProvideEventPublisher,
	ProvideGeocoder,
	ProvideRecognizer,
	ProvideMarkService,
	ProvideAccountService,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
