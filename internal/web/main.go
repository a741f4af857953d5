package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/config"
	fiberlogger "github.com/govfinance-admin/govfinance-admin/internal/logger/adapter/fiber"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/admin/roles"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/api/audit"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/api/me"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/api/permissions"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/api/roletemplate"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/api/userpermissions"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/dashboard"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/login"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/logout"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/password"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"

	// MetricsPath exposes Prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	// Wait interrupt or shutdown request through /shutdown
	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) (*Service, error) {
	if cfg == nil || db == nil {
		return nil, handler.ErrNilDependency
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "GovFinance-Admin",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	if cfg.Webserver.CleanPath {
		app.Use(cleanPath)
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	authService := auth.NewService(db, auth.WithIdentityHeader(cfg.Auth.IdentityHeader))

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.Webserver.ShutDownTime <= 0,
		db:           db,
		authService:  authService,
	}
	service.alive.Store(true)

	app.Get(CheckAlivePath, service.checkAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// init handlers (they register their own routes with permission checks)
	handlers := []handler.Service{
		&login.Handler,
		&logout.Handler,
		&password.Handler,
		&dashboard.Handler,
		&roles.Handler,
		&permissions.Handler,
		&me.Handler,
		&roletemplate.Handler,
		&userpermissions.Handler,
		&audit.Handler,
	}

	for _, h := range handlers {
		if err := h.Init(app, cfg, db, authService); err != nil {
			return nil, err
		}
	}

	// redirect root to the landing page
	app.Get(handler.RootPath, func(c *fiber.Ctx) error {
		return c.Redirect(cfg.Auth.LandingPath)
	})

	return service, nil
}

// cleanPath collapses repeated slashes and dot segments before routing.
func cleanPath(c *fiber.Ctx) error {
	if p := c.Path(); p != "/" {
		c.Path(path.Clean(p))
	}

	return c.Next()
}

// checkAlive returns 503 once a graceful shutdown has started.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}
