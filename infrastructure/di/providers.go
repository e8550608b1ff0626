// Package di assembles the application's dependency graph.
package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"fishdex/application/ports"
	"fishdex/application/services"
	"fishdex/infrastructure/config"
	"fishdex/infrastructure/geocode/amap"
	"fishdex/infrastructure/messaging/eventbridge"
	dynamorepo "fishdex/infrastructure/persistence/dynamodb"
	supabaserepo "fishdex/infrastructure/persistence/supabase"
	"fishdex/infrastructure/recognition/siliconflow"
	"fishdex/interfaces/http/rest"
	"fishdex/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Marks       *services.MarkService
	Accounts    *services.AccountService
	Progress    ports.ProgressRepository
	Feedback    ports.FeedbackRepository
	Geocoder    ports.Geocoder
	Recognizer  ports.Recognizer
	Tokens      *auth.JWTManager
	Router      *rest.Router
}

// Handler returns the fully configured HTTP handler
func (c *Container) Handler() http.Handler {
	return c.Router.Setup()
}

// ProvideLogger creates the process logger
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideJWTManager creates the token issuer/validator
func ProvideJWTManager(cfg *config.Config) (*auth.JWTManager, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		// Development fallback; Validate rejects this in production.
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTManager(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
		Audience:  "fishdex-api",
		TokenTTL:  30 * 24 * time.Hour,
	})
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideSupabaseClient creates a Supabase client when that driver is
// selected; with the dynamodb driver it returns nil untouched.
func ProvideSupabaseClient(cfg *config.Config) (*supa.Client, error) {
	if cfg.StoreDriver != config.StoreDriverSupabase {
		return nil, nil
	}
	client, err := supa.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}

// Repositories bundles one driver's persistence implementations
type Repositories struct {
	Marks    ports.MarkRepository
	Progress ports.ProgressRepository
	Profiles ports.ProfileRepository
	Feedback ports.FeedbackRepository
}

// ProvideRepositories selects the persistence driver
func ProvideRepositories(
	cfg *config.Config,
	supaClient *supa.Client,
	dynamoClient *awsdynamodb.Client,
	logger *zap.Logger,
) (Repositories, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSupabase:
		return Repositories{
			Marks:    supabaserepo.NewMarkRepository(supaClient, logger),
			Progress: supabaserepo.NewProgressRepository(supaClient, logger),
			Profiles: supabaserepo.NewProfileRepository(supaClient, logger),
			Feedback: supabaserepo.NewFeedbackRepository(supaClient, logger),
		}, nil
	case config.StoreDriverDynamoDB:
		return Repositories{
			Marks:    dynamorepo.NewMarkRepository(dynamoClient, cfg.DynamoDBTable, logger),
			Progress: dynamorepo.NewProgressRepository(dynamoClient, cfg.DynamoDBTable, logger),
			Profiles: dynamorepo.NewProfileRepository(dynamoClient, cfg.DynamoDBTable, logger),
			Feedback: dynamorepo.NewFeedbackRepository(dynamoClient, cfg.DynamoDBTable, logger),
		}, nil
	default:
		return Repositories{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// ProvideProgressRepository exposes the selected driver's progress store
func ProvideProgressRepository(repos Repositories) ports.ProgressRepository {
	return repos.Progress
}

// ProvideFeedbackRepository exposes the selected driver's feedback store
func ProvideFeedbackRepository(repos Repositories) ports.FeedbackRepository {
	return repos.Feedback
}

// ProvideEventPublisher creates the activity publisher, or a noop when
// eventing is disabled
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return eventbridge.NoopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideGeocoder creates the reverse-geocoding collaborator
func ProvideGeocoder(cfg *config.Config, logger *zap.Logger) ports.Geocoder {
	return amap.NewClient(amap.Config{
		Endpoint: cfg.AMapEndpoint,
		APIKey:   cfg.AMapAPIKey,
		RadiusM:  cfg.GeocodeRadiusM,
	}, logger)
}

// ProvideRecognizer creates the species recognition collaborator
func ProvideRecognizer(cfg *config.Config, logger *zap.Logger) ports.Recognizer {
	return siliconflow.NewClient(siliconflow.Config{
		Endpoint: cfg.RecognizerEndpoint,
		APIKey:   cfg.RecognizerAPIKey,
		Model:    cfg.RecognizerModel,
	}, logger)
}

// ProvideMarkService creates the server-side mark service
func ProvideMarkService(repos Repositories, events ports.EventPublisher, logger *zap.Logger) *services.MarkService {
	return services.NewMarkService(repos.Marks, repos.Progress, events, logger)
}

// ProvideAccountService creates the account service
func ProvideAccountService(repos Repositories, tokens *auth.JWTManager, logger *zap.Logger) *services.AccountService {
	return services.NewAccountService(repos.Profiles, repos.Progress, tokens, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	marks *services.MarkService,
	accounts *services.AccountService,
	repos Repositories,
	geocoder ports.Geocoder,
	recognizer ports.Recognizer,
	tokens *auth.JWTManager,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, marks, accounts, repos.Progress, repos.Feedback, geocoder, recognizer, tokens, logger)
}
