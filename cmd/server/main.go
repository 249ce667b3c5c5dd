package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"auth-blog/internal/config"
	"auth-blog/internal/feed"
	apphttp "auth-blog/internal/http"
	"auth-blog/internal/identity"
	"auth-blog/internal/repository/sqlite"
	"auth-blog/internal/service"
	"auth-blog/internal/storage"
	"auth-blog/internal/token"
)

const tokenIssuer = "auth-blog"

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := configureLogger(logger, cfg); err != nil {
		logger.Fatalf("configure logger: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	sessionRepo := sqlite.NewSessionRepository(db)

	// posts and sessions reference users, so users go first
	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := postRepo.Init(ctx); err != nil {
		logger.Fatalf("init post repository: %v", err)
	}
	if err := sessionRepo.Init(ctx); err != nil {
		logger.Fatalf("init session repository: %v", err)
	}

	tokens := token.NewIssuer(token.Config{
		Secret: []byte(cfg.Auth.Secret),
		Issuer: tokenIssuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	users := service.NewUserService(userRepo)
	sessions := service.NewSessionService(users, sessionRepo, tokens, logger)

	bus := feed.NewBus(logger)
	posts := service.NewPostService(postRepo, bus, logger)

	cache, closeCache, err := buildCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup feed cache: %v", err)
	}
	defer closeCache()

	reader := feed.NewReader(posts, cache, logger)
	bus.Subscribe("cache", reader.Invalidate)

	if cfg.Storage.Bucket != "" {
		storageSvc, err := buildStorage(ctx, cfg, logger)
		if err != nil {
			logger.Fatalf("setup storage: %v", err)
		}

		publisher := feed.NewPublisher(feed.PublisherConfig{
			Bucket:    cfg.Storage.Bucket,
			KeyPrefix: cfg.Storage.KeyPrefix,
			Logger:    logger,
		}, posts, storageSvc)
		if err := publisher.Start(ctx); err != nil {
			logger.Fatalf("start feed publisher: %v", err)
		}
		defer publisher.Shutdown()

		bus.Subscribe("snapshot", func(ctx context.Context) error {
			publisher.Enqueue()
			return nil
		})
	} else {
		logger.Info("storage bucket not set, feed snapshots disabled")
	}

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		logger.Fatalf("setup identity provider: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		posts,
		reader,
		sessions,
		users,
		identity.NewAuthenticator(provider, identity.WithTimeout(cfg.Auth.HTTPTimeout)),
		apphttp.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
		},
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	switch cfg.Log.Format {
	case "", "text":
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}
	return nil
}

func buildCache(ctx context.Context, cfg config.Config, logger *logrus.Logger) (feed.Cache, func(), error) {
	switch cfg.Cache.Driver {
	case "redis":
		c := feed.NewRedisCache(feed.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			TTL:      cfg.Cache.TTL,
		})
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		logger.Infof("using redis feed cache at %s", cfg.Cache.Redis.Addr)
		return c, func() { _ = c.Close() }, nil
	default:
		return feed.NewMemoryCache(cfg.Cache.TTL), func() {}, nil
	}
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}

func buildProvider(ctx context.Context, cfg config.Config) (identity.Provider, error) {
	switch cfg.Auth.Provider {
	case "oidc":
		p, err := identity.NewOIDC(ctx, identity.OIDCConfig{
			Issuer:       cfg.Auth.Issuer,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			RedirectURL:  cfg.Auth.RedirectURL,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case "github":
		return identity.NewGitHub(identity.GitHubConfig{
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			RedirectURL:  cfg.Auth.RedirectURL,
			APIURL:       cfg.Auth.APIURL,
		}), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}
