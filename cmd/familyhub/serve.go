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

	"familyhub/internal/audit"
	"familyhub/internal/db"
	"familyhub/internal/server"
	"familyhub/internal/storage"
	"familyhub/internal/store"
	"familyhub/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "Apply pending migrations before serving",
		},
	},
	Action: serve,
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger := newLogger(config)

	// amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if c.Bool("migrate") {
		if err := db.Migrate(config, logger, 0); err != nil {
			return err
		}
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	var awsConfig *aws.Config
	if config.StorageBackend == "s3" || config.CognitoClientID != "" {
		loaded, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		awsConfig = &loaded
	}

	files, err := newFileManager(config, awsConfig, logger)
	if err != nil {
		return err
	}

	auth, err := newAuthenticator(ctx, config)
	if err != nil {
		return err
	}

	auditRepo := store.NewAuditRepository(pool)

	deps := server.Deps{
		Members:       store.NewMemberRepository(pool),
		Contributions: store.NewContributionRepository(pool),
		Events:        store.NewEventRepository(pool),
		Sessions:      store.NewSessionRepository(pool),
		Categories:    store.NewCategoryRepository(pool),
		Documents:     store.NewDocumentRepository(pool),
		Messages:      store.NewMessageRepository(pool),
		FamilyTree:    store.NewFamilyTreeRepository(pool),
		AuditLogs:     auditRepo,
		Audit:         audit.NewLogger(auditRepo, logger),
		Files:         files,
		Auth:          auth,
		Pinger:        pool,
	}

	if config.CognitoClientID != "" {
		deps.Cognito = cognitoidentityprovider.NewFromConfig(*awsConfig)
	} else {
		logger.Warn("COGNITO_CLIENT_ID not set, password login is disabled")
	}

	srv, err := server.New(config, logger, deps)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func newFileManager(config *types.Config, awsConfig *aws.Config, logger *logrus.Logger) (*storage.Manager, error) {
	var backend storage.Backend

	switch config.StorageBackend {
	case "s3":
		client := s3.NewFromConfig(*awsConfig, func(o *s3.Options) {
			if config.S3EndpointURL != "" {
				o.BaseEndpoint = aws.String(config.S3EndpointURL)
				o.UsePathStyle = true
			}
		})
		backend = storage.NewS3Backend(client, config.S3Bucket, config.S3Prefix)
	default:
		local, err := storage.NewLocalBackend(config.UploadDir)
		if err != nil {
			return nil, err
		}
		backend = local
	}

	logger.WithField("backend", config.StorageBackend).WithField("upload_dir", config.UploadDir).Info("file storage ready")

	return storage.NewManager(config.UploadDir, backend, logger)
}

func newAuthenticator(ctx context.Context, config *types.Config) (server.Authenticator, error) {
	if config.JWKSURL == "" {
		return server.NewSecretAuthenticator(config.JWTSecret), nil
	}

	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	if err := cache.Register(ctx, config.JWKSURL); err != nil {
		return nil, fmt.Errorf("failed to register jwks url with cache: %w", err)
	}

	return server.NewJWKSAuthenticator(cache, config.JWKSURL), nil
}
