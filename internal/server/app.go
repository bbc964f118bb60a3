// Package server wires the credential service together and runs its
// transports. It selects the storage backend, token issuer and email
// notifier from configuration, runs migrations, and serves gRPC and HTTP
// until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/awsx"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/dispatch"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

var (
	loadAWSConfig = awsx.LoadConfig

	// dialAMQP is a seam for testing notify.DialAMQP.
	dialAMQP = func(url, exchange string) (notify.Publisher, func() error, error) {
		conn, ch, err := notify.DialAMQP(url, exchange)
		if err != nil {
			return nil, nil, err
		}
		return ch, conn.Close, nil
	}
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	manager    repomanager.BackendManager
	dispatcher *dispatch.Dispatcher
	metrics    *metrics.Metrics
	closers    []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(c.LogBackend, c.LogLevel, os.Stdout)

	app := &App{config: c, logger: logger, metrics: metrics.New()}
	if err := app.build(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}

	return app, nil
}

func (app *App) needsAWS() bool {
	c := app.config
	return c.StorageBackend == config.StorageDynamoDB ||
		c.TokenIssuer == config.IssuerCognito ||
		c.Notifier == config.NotifierSES ||
		c.TemplateBucket != ""
}

func (app *App) build(ctx context.Context) error {
	c := app.config

	var awsCfg aws.Config
	if app.needsAWS() {
		var err error
		awsCfg, err = loadAWSConfig(ctx, awsx.Options{
			Region:          c.AWSRegion,
			Endpoint:        c.AWSEndpoint,
			AccessKeyID:     c.AWSAccessKeyID,
			SecretAccessKey: c.AWSSecretAccessKey,
		})
		if err != nil {
			return fmt.Errorf("aws config error: %w", err)
		}
	}

	manager, err := repomanager.New(repomanager.Options{
		Backend:     c.StorageBackend,
		DatabaseDSN: c.DatabaseDSN,
		AWS:         awsCfg,
	})
	if err != nil {
		return err
	}
	app.manager = manager
	app.closers = append(app.closers, manager.Close)

	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	issuer, err := app.newIssuer(awsCfg)
	if err != nil {
		return err
	}

	mailer, err := app.newMailer(ctx, awsCfg)
	if err != nil {
		return err
	}

	repo := credentials.NewRepository(manager.Backend(), c.TablePrefix, issuer,
		credentials.WithResetTTL(c.ResetTokenValidityDuration))

	svc := services.NewCredentialService(repo, mailer, services.Links{
		AppName:           c.AppName,
		VerificationLink:  c.VerificationLink,
		ResetPasswordLink: c.ResetPasswordLink,
	}, app.logger)

	app.dispatcher = dispatch.New(svc, app.metrics, app.logger, c.RequestTimeout)

	app.logger.Info(ctx, "Components ready",
		"storage", c.StorageBackend,
		"issuer", c.TokenIssuer,
		"notifier", c.Notifier,
	)

	return nil
}

func (app *App) newIssuer(awsCfg aws.Config) (identity.Issuer, error) {
	c := app.config
	switch c.TokenIssuer {
	case "", config.IssuerJWT:
		return identity.NewJWTIssuer([]byte(c.SecretKey), c.AppName, c.AccessTokenValidityDuration), nil
	case config.IssuerCognito:
		return identity.NewCognitoIssuer(cognitoidentity.NewFromConfig(awsCfg),
			c.CognitoPoolID, c.DeveloperProviderName, int64(c.AccessTokenValidityDuration.Seconds())), nil
	}
	return nil, fmt.Errorf("unknown token issuer: %q", c.TokenIssuer)
}

func (app *App) newMailer(ctx context.Context, awsCfg aws.Config) (*notify.Mailer, error) {
	c := app.config

	var (
		templates *notify.Templates
		err       error
	)
	if c.TemplateBucket != "" {
		templates, err = notify.LoadS3Templates(ctx, s3.NewFromConfig(awsCfg), c.TemplateBucket, c.TemplatePrefix)
	} else {
		templates, err = notify.LoadEmbedded()
	}
	if err != nil {
		return nil, fmt.Errorf("templates error: %w", err)
	}

	var sender notify.Sender
	switch c.Notifier {
	case "", config.NotifierLog:
		sender = notify.NewLogSender(app.logger)
	case config.NotifierSES:
		sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), c.EmailSource)
	case config.NotifierAMQP:
		ch, closeConn, err := dialAMQP(c.RabbitMQURL, c.RabbitMQExchange)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, closeConn)
		sender = notify.NewAMQPSender(ch, c.RabbitMQExchange)
	default:
		return nil, fmt.Errorf("unknown notifier: %q", c.Notifier)
	}

	return notify.NewMailer(templates, sender), nil
}

// Handler returns the HTTP handler serving the credential API, health and
// metrics endpoints.
func (app *App) Handler() http.Handler {
	return httpapi.NewRouter(httpapi.Deps{
		Dispatcher: app.dispatcher,
		Observer:   app.metrics,
		Metrics:    app.metrics.Handler(),
		Logger:     app.logger,
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.dispatcher)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.Handler())

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(ctx, "close failed", "error", err)
		}
	}
	app.closers = nil
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrHTTP != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHTTPServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
}
