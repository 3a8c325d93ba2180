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

	"video-publisher/domain/model"
	"video-publisher/domain/repository"
	"video-publisher/infrastructure/cache"
	dailymotionclient "video-publisher/infrastructure/clients/dailymotion"
	vimeoclient "video-publisher/infrastructure/clients/vimeo"
	youtubeclient "video-publisher/infrastructure/clients/youtube"
	"video-publisher/infrastructure/configuration"
	"video-publisher/infrastructure/credentials"
	"video-publisher/infrastructure/logger"
	"video-publisher/infrastructure/persistence"
	"video-publisher/infrastructure/pubsub"
	"video-publisher/infrastructure/realtime"
	"video-publisher/infrastructure/servicebus"
	"video-publisher/infrastructure/storage"
	"video-publisher/infrastructure/worker"
	httpHandler "video-publisher/interfaces/http"
	"video-publisher/server"
	"video-publisher/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	for _, f := range configuration.LoadEnvFromFile("config.env", ".env") {
		logger.GetLogger().WithField("file", f).Info("Loaded environment file")
	}

	app := configuration.C.App
	publish := configuration.C.Publish

	mediaRepository, tokenRepository, closeStores := InitiateStores(ctx)
	defer closeStores()

	pendingStore := InitiateAuthorizationStore(ctx)
	sources := InitiateSourceStore(ctx)

	hub := realtime.NewUploadHub()
	notifier, stopNotifiers := InitiateNotifiers(ctx, hub)
	defer stopNotifiers()

	registry, provider := InitiatePlatforms(tokenRepository)
	for _, p := range registry.Platforms() {
		logger.GetLogger().WithField("platform", p.Name).WithField("interactive", p.InteractiveAuth).Info("Platform adapter registered")
	}

	publishUsecase := usecase.NewPublishUsecase(mediaRepository, sources, registry, provider, notifier, usecase.PublishOptions{
		Workers:       publish.Workers,
		UploadTimeout: publish.UploadTimeout,
	})
	authorizationUsecase := usecase.NewAuthorizationUsecase(pendingStore, registry, provider, publish.AuthorizationTTL).
		WithResumer(publishUsecase)
	publishUsecase.WithAuthorization(authorizationUsecase)
	mediaUsecase := usecase.NewMediaUsecase(mediaRepository, sources)

	var dailymotionAuthHandler httpHandler.IDailymotionAuthHandler
	if _, ok := registry.Deferred(model.PlatformDailymotion); ok {
		dailymotionAuthHandler = httpHandler.NewDailymotionAuthHandler(authorizationUsecase, mediaUsecase)
	}

	router := server.InitiateRouter(
		app.CorsOrigins,
		app.SecretKey,
		httpHandler.NewMediaHandler(mediaUsecase),
		httpHandler.NewPublishHandler(publishUsecase, mediaUsecase, registry),
		dailymotionAuthHandler,
		httpHandler.NewHealthHandler(),
		hub.Serve,
	)

	reaper := worker.NewAuthorizationReaper(pendingStore, publish.ReaperSchedule)
	if err := reaper.Start(ctx); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while starting authorization reaper")
	}

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled, "workers": publish.Workers}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		var err error
		if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
			logger.GetLogger().WithFields(map[string]interface{}{"cert": app.TLSCertFile, "key": app.TLSKeyFile}).Info("Serving HTTPS")
			err = httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile)
		} else {
			if app.TLSEnabled {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateStores picks the media and token repositories from database.vendor and
// falls back to memory when the database cannot be reached.
func InitiateStores(ctx context.Context) (repository.IMedia, repository.IOAuthToken, func()) {
	vendor := configuration.C.Database.Vendor
	switch vendor {
	case "postgres", "postgresql", "":
		db, err := persistence.NewPostgreSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
			break
		}
		if err := persistence.EnsureMediaSchema(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring media schema")
		}
		if err := persistence.EnsureOAuthTokenSchema(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring oauth token schema")
		}
		logger.GetLogger().Info("PostgreSQL connected")
		return persistence.NewMediaRepository(db), persistence.NewOAuthTokenRepository(db), func() { _ = db.Close() }
	case "mssql", "sqlserver":
		db, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL")
			break
		}
		if err := persistence.EnsureMediaSchemaMSSQL(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring media schema (mssql)")
		}
		if err := persistence.EnsureOAuthTokenSchemaMSSQL(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring oauth token schema (mssql)")
		}
		logger.GetLogger().Info("MSSQL connected")
		return persistence.NewMediaRepositoryMSSQL(db), persistence.NewOAuthTokenRepositoryMSSQL(db), func() { _ = db.Close() }
	case "mysql":
		db, err := persistence.NewMySQLGorm()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MySQL")
			break
		}
		media := persistence.NewMediaRepositoryGorm(db)
		if err := media.AutoMigrate(); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed migrating media schema")
		}
		logger.GetLogger().Info("MySQL connected")
		return media, persistence.NewOAuthTokenRepositoryGorm(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	case "mongo", "mongodb":
		mongoCfg := configuration.C.Database.Mongo
		client, err := persistence.NewMongoDb(mongoCfg.Host, mongoCfg.Port, mongoCfg.User, mongoCfg.Password, mongoCfg.Name)
		if err == nil {
			err = persistence.PingMongo(ctx, client)
		}
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MongoDB")
			break
		}
		logger.GetLogger().Info("MongoDB connected")
		return persistence.NewMediaRepositoryMongo(client, mongoCfg.Name),
			persistence.NewOAuthTokenRepositoryMongo(client, mongoCfg.Name),
			func() { _ = client.Disconnect(context.Background()) }
	case "memory":
	default:
		logger.GetLogger().WithField("vendor", vendor).Warn("Unknown database vendor")
	}
	logger.GetLogger().Warn("Using in-memory media store; data is lost on restart")
	return persistence.NewMediaRepositoryMemory(), persistence.NewOAuthTokenRepositoryMemory(), func() {}
}

func InitiateAuthorizationStore(ctx context.Context) repository.IPendingAuthorization {
	if configuration.C.Publish.AuthStore != "redis" {
		return cache.NewAuthorizationMemory()
	}
	redisCfg := configuration.C.RedisClient
	client, err := cache.NewCache(ctx, fmt.Sprintf("%s:%s", redisCfg.Host, redisCfg.Port), redisCfg.Username, redisCfg.Password)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - pending authorizations kept in memory")
		return cache.NewAuthorizationMemory()
	}
	logger.GetLogger().Info("Redis client initialized successfully.")
	return cache.NewAuthorizationRedis(client)
}

func InitiateSourceStore(ctx context.Context) repository.ISourceStore {
	cfg := configuration.C.Storage
	local := storage.NewLocalStore(cfg.UploadDir)
	if cfg.S3Bucket == "" {
		return local
	}
	s3, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}, local)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("S3 not available - storing uploads on local disk")
		return local
	}
	return s3
}

// InitiateNotifiers fans upload events out to the SSE hub and, when configured, Pub/Sub and Service Bus.
func InitiateNotifiers(ctx context.Context, hub *realtime.Hub) (repository.IUploadNotifier, func()) {
	notifiers := []repository.IUploadNotifier{hub}
	stop := func() {}

	if projectID := configuration.C.Pubsub.ProjectID; projectID != "" {
		client, err := pubsub.NewPubSub(ctx, projectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while instantiate PubSub")
		} else {
			publisher := pubsub.NewUploadEventPublisher(client, configuration.C.Pubsub.Topic)
			notifiers = append(notifiers, publisher)
			stop = func() {
				publisher.Stop()
				_ = client.Close()
			}
		}
	}

	if namespace := configuration.C.ServiceBus.Namespace; namespace != "" {
		client, err := servicebus.NewServiceBus(ctx, namespace)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without Service Bus events")
		} else {
			notifiers = append(notifiers, servicebus.NewUploadEventSender(client, configuration.C.ServiceBus.Queue))
		}
	}
	return realtime.NewFanout(notifiers...), stop
}

// InitiatePlatforms builds the adapter registry and the credential provider.
// YouTube and Vimeo publish with server-side tokens; Dailymotion needs a per-user login.
func InitiatePlatforms(tokens repository.IOAuthToken) (*usecase.AdapterRegistry, *credentials.Provider) {
	yt := configuration.GetYouTubeConfig()
	vm := configuration.GetVimeoConfig()
	dm := configuration.GetDailymotionConfig()

	adapters := []repository.IPlatformAdapter{
		youtubeclient.NewYouTubeClient(&youtubeclient.Config{
			ClientID:     yt.ClientID,
			ClientSecret: yt.ClientSecret,
			RedirectURL:  yt.RedirectURL,
			CategoryID:   yt.CategoryID,
		}),
		vimeoclient.NewVimeoClient(&vimeoclient.Config{BaseURL: vm.BaseURL}),
	}
	provider := credentials.NewProvider(tokens).
		WithStatic(model.PlatformYouTube, model.Credentials{AccessToken: yt.AccessToken, RefreshToken: yt.RefreshToken, TokenType: "Bearer"}).
		WithStatic(model.PlatformVimeo, model.Credentials{AccessToken: vm.AccessToken, TokenType: "Bearer"})

	if dm.ClientID != "" {
		dmClient := dailymotionclient.NewDailymotionClient(&dailymotionclient.Config{
			ClientID:     dm.ClientID,
			ClientSecret: dm.ClientSecret,
			RedirectURL:  dm.RedirectURL,
			Channel:      dm.Channel,
			APIBaseURL:   dm.APIBaseURL,
			AuthURL:      dm.AuthURL,
			TokenURL:     dm.TokenURL,
		})
		adapters = append(adapters, dmClient)
		provider = provider.WithInteractive(dmClient)
	} else {
		logger.GetLogger().Warn("Dailymotion client id not configured - Dailymotion publishing disabled")
	}
	return usecase.NewAdapterRegistry(adapters...), provider
}
