// Package httpserver exposes the pocketfile JSON API and upload downloads over HTTP.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/pocketfile/internal/repository"
	"github.com/and161185/pocketfile/internal/service"
)

// Services bundles the application services served over HTTP.
type Services struct {
	Auth     service.AuthService
	Projects service.ProjectService
	Files    service.FileService
	Share    service.ShareService
	Users    service.UserService
}

// Options tunes the HTTP surface.
type Options struct {
	PublicBaseURL string   // share-link base; the request host is used when empty
	CORSOrigins   []string // "*" allows any origin
	MaxUploadSize int64    // defaults to service.MaxUploadSize
	// TrustedProxies may set X-Forwarded-For; with none the peer address is the client IP.
	TrustedProxies []string
}

// Server wires services into gin handlers.
type Server struct {
	auth     service.AuthService
	projects service.ProjectService
	files    service.FileService
	share    service.ShareService
	users    service.UserService
	db       repository.Pinger
	log      *zap.Logger
	opts     Options
	engine   *gin.Engine
}

// New constructs a Server and its routing tree. It fails on an unusable CORS
// origin or trusted proxy list.
func New(svc Services, db repository.Pinger, log *zap.Logger, opts Options) (*Server, error) {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = service.MaxUploadSize
	}
	cc := corsConfig(opts.CORSOrigins)
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		auth:     svc.Auth,
		projects: svc.Projects,
		files:    svc.Files,
		share:    svc.Share,
		users:    svc.Users,
		db:       db,
		log:      log,
		opts:     opts,
	}
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(Recover(log), Logging(log), cors.New(cc))
	s.routes(r)
	s.engine = r
	return s, nil
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = origins
	return cc
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/health", s.health)

	auth := api.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.GET("/me", s.requireSession(), s.me)

	files := api.Group("/files", s.requireSession())
	files.GET("/projects", s.listProjects)
	files.POST("/projects", s.createProject)
	files.GET("", s.listFiles)
	files.POST("/upload", s.upload)
	files.GET("/:id", s.getFile)
	files.DELETE("/:id", s.deleteFile)
	files.GET("/:id/qrcode", s.qrcode)

	users := api.Group("/users", s.requireSession(), s.requireAdmin())
	users.GET("", s.listUsers)
	users.POST("", s.createUser)
	users.GET("/:id", s.getUser)
	users.PUT("/:id", s.updateUser)
	users.DELETE("/:id", s.deleteUser)

	r.GET("/uploads/:name", s.download)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
