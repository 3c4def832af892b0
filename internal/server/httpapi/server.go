// Package httpapi exposes the storefront over HTTP/JSON using gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/herostore/internal/logging"
	"github.com/dmitrijs2005/herostore/internal/server/models"
	"github.com/dmitrijs2005/herostore/internal/server/services"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// UserService is the account API the handlers depend on.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	VerifyEmail(ctx context.Context, username, code string) error
	ResendVerification(ctx context.Context, username string) error
	Login(ctx context.Context, username, password string) (string, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// HeroService is the hero image API the handlers depend on.
type HeroService interface {
	Upload(ctx context.Context, userID int64, f services.Upload) (*models.HeroImage, error)
	List(ctx context.Context, userID int64) ([]models.HeroImage, error)
	Get(ctx context.Context, userID, id int64) (*models.HeroImage, error)
	Update(ctx context.Context, userID, id int64, f services.Upload) (*models.HeroImage, error)
	Delete(ctx context.Context, userID, id int64) (*models.HeroImage, error)
	Activate(ctx context.Context, userID, id int64) (*models.HeroImage, error)
	GetActive(ctx context.Context, userID int64) (*models.HeroImage, error)
}

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options tune the middleware stack.
type Options struct {
	Debug          bool
	AllowedOrigins []string
}

const (
	shutdownTimeout = 10 * time.Second

	// responses shorter than this are sent uncompressed
	gzipMinLength = 1000
)

type HTTPServer struct {
	address string
	users   UserService
	heroes  HeroService
	db      Pinger
	logger  logging.Logger
	opts    Options
	handler *gin.Engine
}

func NewHTTPServer(a string, l logging.Logger, us UserService, hs HeroService, db Pinger, opts Options) *HTTPServer {
	s := &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		users:   us,
		heroes:  hs,
		db:      db,
		opts:    opts,
	}
	s.handler = s.router()
	return s
}

// Handler returns the configured gin engine.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

func (s *HTTPServer) router() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// recovery must run inside gzip so a panic still produces the 500 body
	r.Use(
		s.requestID(),
		s.requestLogger(),
		securityHeaders(),
		cors(s.opts),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithMinLength(gzipMinLength)),
		s.recovery(),
	)

	r.GET("/", s.root)
	r.GET("/healthz", s.healthz)
	r.POST("/token", s.token)

	admin := r.Group("/admin")
	admin.POST("/register", s.register)
	admin.POST("/verify/email", s.verifyEmail)
	admin.POST("/verify/resend", s.resendVerification)
	admin.GET("/users/me", s.requireUser(), s.me)

	hero := r.Group("/hero", s.requireUser())
	hero.POST("/upload/", s.uploadImage)
	hero.GET("/", s.listImages)
	hero.GET("/isactive/", s.activeImage)
	hero.PUT("/activate/:id", s.activateImage)
	hero.GET("/:id", s.getImage)
	hero.PUT("/:id", s.updateImage)
	hero.DELETE("/:id", s.deleteImage)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
