package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/cache"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/httpapi"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/seed"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/internal/storage"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/pkg/github"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/pkg/recipes"
	"github.com/kaviyamagudeeswaran/Kaviya-M--Portfolio/pkg/weather"
)

const (
	commandUseName              = "server"
	commandShortDescription     = "Run the portfolio backend server"
	commandLongDescription      = "Launch the portfolio backend HTTP server"
	missingConfigurationMessage = "missing required configuration"
	loggerCreationErrorMessage  = "logger"
	logEventListening           = "listening"
	logEventSeedSkippedOnError  = "seed_failed_continuing_boot"
	logFieldAddress             = "addr"

	flagNameApplicationAddress     = "app-addr"
	flagNameDatabaseDriver         = "db-driver"
	flagNameDatabaseDataSourceName = "db-dsn"
	flagNameAuthJWTSecret          = "auth-jwt-secret"
	flagNameRedisAddress           = "redis-addr"
	flagNameRedisPassword          = "redis-password"
	flagNameWeatherAPIKey          = "weather-api-key"
	flagNameSpoonacularAPIKey      = "spoonacular-api-key"

	flagUsageApplicationAddress     = "address for the HTTP server to listen on"
	flagUsageDatabaseDriver         = "database driver name (postgres or sqlite)"
	flagUsageDatabaseDataSourceName = "database connection string"
	flagUsageAuthJWTSecret          = "HS256 secret for verifying API bearer tokens"
	flagUsageRedisAddress           = "Redis address for the proxy response cache (optional)"
	flagUsageRedisPassword          = "Redis password for the proxy response cache"
	flagUsageWeatherAPIKey          = "OpenWeatherMap API key"
	flagUsageSpoonacularAPIKey      = "Spoonacular API key"

	environmentKeyApplicationAddress = "APP_ADDR"
	environmentKeyDatabaseDriver     = "DB_DRIVER"
	environmentKeyDatabaseDataSource = "DB_DSN"
	environmentKeyAuthJWTSecret      = "AUTH_JWT_SECRET"
	environmentKeyRedisAddress       = "REDIS_ADDR"
	environmentKeyRedisPassword      = "REDIS_PASSWORD"
	environmentKeyWeatherAPIKey      = "WEATHER_API_KEY"
	environmentKeySpoonacularAPIKey  = "SPOONACULAR_API_KEY"

	defaultApplicationAddress = ":8080"

	loggerContextOpenDatabase  = "open_db"
	loggerContextAutoMigrate   = "migrate"
	loggerContextValidations   = "validations"
	loggerContextServer        = "server"
	readHeaderTimeoutSeconds   = 5
	unexpectedArgumentsMessage = "unexpected command arguments"

	commandInitializationFailure  = "failed to configure command"
	flagNotDefinedMessage         = "flag %s not defined"
	environmentConfigurationError = "failed to apply environment configuration"
)

// ServerConfig captures configuration needed to run the server.
type ServerConfig struct {
	ApplicationAddress     string
	DatabaseDriverName     string
	DatabaseDataSourceName string
	AuthJWTSecret          string
	RedisAddress           string
	RedisPassword          string
	WeatherAPIKey          string
	SpoonacularAPIKey      string
}

// DatabaseOpener opens a database connection using the provided configuration.
type DatabaseOpener func(storage.Config) (*gorm.DB, error)

// ServerApplication constructs and executes the server command.
type ServerApplication struct {
	configurationLoader *viper.Viper
	databaseOpener      DatabaseOpener
}

// NewServerApplication creates a ServerApplication with default dependencies.
func NewServerApplication() *ServerApplication {
	return &ServerApplication{
		configurationLoader: viper.New(),
		databaseOpener:      storage.OpenDatabase,
	}
}

// WithDatabaseOpener overrides the database opener dependency.
func (application *ServerApplication) WithDatabaseOpener(databaseOpener DatabaseOpener) *ServerApplication {
	application.databaseOpener = databaseOpener
	return application
}

// Command builds the Cobra command for the server.
func (application *ServerApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	return rootCommand, nil
}

func (application *ServerApplication) configureCommand(command *cobra.Command) error {
	application.configurationLoader.SetDefault(environmentKeyApplicationAddress, defaultApplicationAddress)
	application.configurationLoader.SetDefault(environmentKeyDatabaseDriver, storage.DriverNamePostgres)
	application.configurationLoader.AutomaticEnv()

	commandFlags := command.Flags()
	commandFlags.String(flagNameApplicationAddress, defaultApplicationAddress, flagUsageApplicationAddress)
	commandFlags.String(flagNameDatabaseDriver, storage.DriverNamePostgres, flagUsageDatabaseDriver)
	commandFlags.String(flagNameDatabaseDataSourceName, "", flagUsageDatabaseDataSourceName)
	commandFlags.String(flagNameAuthJWTSecret, "", flagUsageAuthJWTSecret)
	commandFlags.String(flagNameRedisAddress, "", flagUsageRedisAddress)
	commandFlags.String(flagNameRedisPassword, "", flagUsageRedisPassword)
	commandFlags.String(flagNameWeatherAPIKey, "", flagUsageWeatherAPIKey)
	commandFlags.String(flagNameSpoonacularAPIKey, "", flagUsageSpoonacularAPIKey)

	flagBindings := map[string]string{
		environmentKeyApplicationAddress: flagNameApplicationAddress,
		environmentKeyDatabaseDriver:     flagNameDatabaseDriver,
		environmentKeyDatabaseDataSource: flagNameDatabaseDataSourceName,
		environmentKeyAuthJWTSecret:      flagNameAuthJWTSecret,
		environmentKeyRedisAddress:       flagNameRedisAddress,
		environmentKeyRedisPassword:      flagNameRedisPassword,
		environmentKeyWeatherAPIKey:      flagNameWeatherAPIKey,
		environmentKeySpoonacularAPIKey:  flagNameSpoonacularAPIKey,
	}

	for environmentKey, flagName := range flagBindings {
		if bindErr := application.bindFlag(commandFlags, environmentKey, flagName); bindErr != nil {
			return bindErr
		}
		if environmentErr := application.applyEnvironmentConfiguration(commandFlags, environmentKey, flagName); environmentErr != nil {
			return environmentErr
		}
	}

	if markErr := command.MarkFlagRequired(flagNameDatabaseDataSourceName); markErr != nil {
		return markErr
	}

	if markErr := command.MarkFlagRequired(flagNameAuthJWTSecret); markErr != nil {
		return markErr
	}

	return nil
}

func (application *ServerApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

func (application *ServerApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentConfigurationError, setErr)
	}

	return nil
}

func (application *ServerApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serverConfig := ServerConfig{
		ApplicationAddress:     application.configurationLoader.GetString(environmentKeyApplicationAddress),
		DatabaseDriverName:     strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDriver)),
		DatabaseDataSourceName: strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDataSource)),
		AuthJWTSecret:          strings.TrimSpace(application.configurationLoader.GetString(environmentKeyAuthJWTSecret)),
		RedisAddress:           strings.TrimSpace(application.configurationLoader.GetString(environmentKeyRedisAddress)),
		RedisPassword:          application.configurationLoader.GetString(environmentKeyRedisPassword),
		WeatherAPIKey:          strings.TrimSpace(application.configurationLoader.GetString(environmentKeyWeatherAPIKey)),
		SpoonacularAPIKey:      strings.TrimSpace(application.configurationLoader.GetString(environmentKeySpoonacularAPIKey)),
	}

	if validationErr := application.ensureRequiredConfiguration(serverConfig); validationErr != nil {
		return validationErr
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	database, databaseErr := application.databaseOpener(storage.Config{
		DriverName:     serverConfig.DatabaseDriverName,
		DataSourceName: serverConfig.DatabaseDataSourceName,
	})
	if databaseErr != nil {
		logger.Fatal(loggerContextOpenDatabase, zap.Error(databaseErr))
	}

	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		logger.Fatal(loggerContextAutoMigrate, zap.Error(migrateErr))
	}

	if validationsErr := httpapi.RegisterValidations(); validationsErr != nil {
		logger.Fatal(loggerContextValidations, zap.Error(validationsErr))
	}

	// Seeding failures are not fatal: the service starts without example data.
	seeder := seed.NewSeeder(database, logger)
	if seedErr := seeder.Run(context.Background()); seedErr != nil {
		logger.Warn(logEventSeedSkippedOnError, zap.Error(seedErr))
	}

	responseCache := buildResponseCache(serverConfig)
	githubClient := github.NewHTTPClient(nil, logger, responseCache)
	weatherClient := weather.NewHTTPClient(nil, logger, serverConfig.WeatherAPIKey, responseCache)
	recipesClient := recipes.NewHTTPClient(nil, logger, serverConfig.SpoonacularAPIKey, responseCache)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestLogger(logger))

	submissionHandlers := httpapi.NewSubmissionHandlers(database, logger)
	proxyHandlers := httpapi.NewProxyHandlers(githubClient, weatherClient, recipesClient, logger)
	registerRoutes(router, submissionHandlers, proxyHandlers, serverConfig.AuthJWTSecret)

	httpServer := &http.Server{
		Addr:              serverConfig.ApplicationAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}

	logger.Info(logEventListening, zap.String(logFieldAddress, serverConfig.ApplicationAddress))
	if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logger.Fatal(loggerContextServer, zap.Error(serveErr))
	}

	return nil
}

func buildResponseCache(serverConfig ServerConfig) cache.Cache {
	if serverConfig.RedisAddress != "" {
		return cache.NewRedisCache(serverConfig.RedisAddress, serverConfig.RedisPassword)
	}
	return cache.NewMemoryCache()
}

func (application *ServerApplication) ensureRequiredConfiguration(configuration ServerConfig) error {
	var missingParameters []string

	if configuration.DatabaseDataSourceName == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDataSourceName)
	}

	if configuration.AuthJWTSecret == "" {
		missingParameters = append(missingParameters, flagNameAuthJWTSecret)
	}

	if len(missingParameters) == 0 {
		return nil
	}

	return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
}

func main() {
	// A local .env is a development convenience; the file is absent in production.
	_ = godotenv.Load()

	application := NewServerApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.Execute(); executeErr != nil {
		os.Exit(1)
	}
}
