package connection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kalavedi/config"
	"kalavedi/controller/activity"
	"kalavedi/controller/auth"
	"kalavedi/controller/ledger"
	"kalavedi/controller/member"
	"kalavedi/controller/notification"
	"kalavedi/controller/registration"
	"kalavedi/metrics"
	"kalavedi/middleware"
	"kalavedi/repository"
	"kalavedi/services"
)

const (
	notificationCacheTTL = time.Minute
	shutdownTimeout      = 10 * time.Second
)

// App holds the services behind the HTTP routes.
type App struct {
	Auth          *services.AuthService
	Members       *services.MemberService
	Drafts        *services.DraftStore
	Activities    *services.ActivityService
	Notifications *services.NotificationService
	Ledger        *services.LedgerService
	Certificates  *services.CertificateRenderer
	Captcha       services.CaptchaVerifier

	closers []func() error
}

// NewApp builds the services over store. Mail, photo uploads and reCAPTCHA
// are only wired when configured.
func NewApp(ctx context.Context, cfg *config.Config, store *repository.Store, logger *zap.Logger) (*App, error) {
	var notifier services.StatusNotifier
	if cfg.SMTPConfig.Enabled() {
		notifier = services.NewMailer(cfg.SMTPConfig, logger)
	} else {
		logger.Info("SMTP not configured; status emails disabled")
	}

	var uploader services.Uploader
	if cfg.CloudinaryConfig.Enabled() {
		u, err := services.NewCloudinaryUploader(cfg.CloudinaryConfig, logger)
		if err != nil {
			return nil, err
		}
		uploader = u
	} else {
		logger.Info("Cloudinary not configured; activity photo uploads disabled")
	}

	certificates := services.NewCertificateRenderer(logger)
	if cfg.CertificateFont != "" {
		if err := certificates.LoadFont(cfg.CertificateFont); err != nil {
			return nil, err
		}
	}

	app := &App{
		Auth:          services.NewAuthService(store.Admins, cfg.AuthConfig, logger),
		Members:       services.NewMemberService(store.Members, services.NewImageCompressor(logger), notifier, logger),
		Drafts:        services.NewDraftStore(cfg.DraftTTL),
		Activities:    services.NewActivityService(store.Activities, uploader, logger),
		Notifications: services.NewNotificationService(store.Notifications, notificationCacheTTL, logger),
		Ledger:        services.NewLedgerService(store.Transactions, logger),
		Certificates:  certificates,
	}
	if store.Close != nil {
		app.closers = append(app.closers, store.Close)
	}

	if cfg.RecaptchaConfig.Enabled() {
		v, err := services.NewRecaptchaVerifier(ctx, cfg.RecaptchaConfig, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Captcha = v
		app.closers = append(app.closers, v.Close)
	}
	return app, nil
}

// Close releases the store and API clients.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AddAllowMethods("PATCH")
	c.AddAllowHeaders("Authorization", "Accept-Language", "X-Recaptcha-Token")
	c.AddExposeHeaders("Content-Disposition")
	return c
}

func NewRouter(cfg *config.Config, app *App, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 16 << 20
	router.Use(middleware.Recovery(logger), middleware.RequestLogger(logger), cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth.SignInController(router, app.Auth, logger)
	auth.CaptchaController(router, app.Captcha, logger)
	registration.RegistrationController(router, registration.Deps{
		Drafts:        app.Drafts,
		Members:       app.Members,
		Captcha:       app.Captcha,
		StatusPageURL: cfg.StatusPageURL,
		Logger:        logger,
	})
	member.MemberController(router, member.Deps{
		Members:      app.Members,
		Certificates: app.Certificates,
		Tokens:       app.Auth,
		Logger:       logger,
	})
	activity.ActivityController(router, activity.Deps{
		Activities: app.Activities,
		Tokens:     app.Auth,
		Logger:     logger,
	})
	notification.NotificationController(router, notification.Deps{
		Notifications: app.Notifications,
		Tokens:        app.Auth,
		Logger:        logger,
	})
	ledger.LedgerController(router, ledger.Deps{
		Ledger: app.Ledger,
		Tokens: app.Auth,
		Logger: logger,
	})
	return router
}

// StartServer serves until ctx is cancelled, then drains in-flight requests.
func StartServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	app, err := NewApp(ctx, cfg, store, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("failed to build services: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("shutdown cleanup failed", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.ServerConfig.Port,
		Handler: NewRouter(cfg, app, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
