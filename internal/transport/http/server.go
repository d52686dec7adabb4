package http

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"casedesk/internal/bootstrap"
	"casedesk/internal/config"
	"casedesk/internal/transport/http/handler"
	"casedesk/internal/transport/http/middleware"
	"casedesk/internal/transport/http/response"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	if app.Config.App.GinMode != "" {
		gin.SetMode(app.Config.App.GinMode)
	}
	exposeErrors := !app.Config.IsProduction()

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(app.Logger),
		middleware.Metrics(),
		middleware.Recovery(app.Logger, exposeErrors),
		cors.New(corsConfig(app.Config)),
	)

	healthHandler := handler.NewHealthHandler(app)
	chatHandler := handler.NewChatHandler(app.ChatService, exposeErrors)
	fileHandler := handler.NewFileHandler(app.FileService, exposeErrors)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.StaticFS(app.Config.Storage.PublicPrefix, visibleFS{gin.Dir(app.Config.UploadRoot(), false)})

	api := router.Group("/api")

	chatGroup := api.Group("/chat")
	chatGroup.GET("", chatHandler.ListMessages)
	chatGroup.POST("", chatHandler.SendMessage)
	chatGroup.DELETE("/:id", chatHandler.DeleteMessage)

	fileGroup := api.Group("/files")
	fileGroup.GET("", fileHandler.ListFiles)
	fileGroup.POST("/upload", fileHandler.Upload)
	fileGroup.DELETE("/:filename", fileHandler.DeleteFile)
	fileGroup.GET("/:filename/text", fileHandler.ExtractText)

	router.NoRoute(notFound(app.Config.StaticRoot()))

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range cfg.CORS.AllowOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.CORS.AllowOrigins
	if len(c.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	}
	return c
}

// notFound answers unknown API routes with JSON. When staticRoot is set,
// other GETs are served from it with index.html as the client-side route fallback.
func notFound(staticRoot string) gin.HandlerFunc {
	var files http.Handler
	if staticRoot != "" {
		files = http.FileServer(visibleFS{http.Dir(staticRoot)})
	}
	index := filepath.Join(staticRoot, "index.html")

	return func(c *gin.Context) {
		p := c.Request.URL.Path
		isRead := c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
		if files == nil || !isRead || p == "/api" || strings.HasPrefix(p, "/api/") {
			response.Message(c, http.StatusNotFound, "Not found")
			return
		}

		name := path.Clean("/" + p)
		if isHidden(name) {
			response.Message(c, http.StatusNotFound, "Not found")
			return
		}
		if info, err := os.Stat(filepath.Join(staticRoot, filepath.FromSlash(name))); err == nil && !info.IsDir() && name != "/index.html" {
			files.ServeHTTP(c.Writer, c.Request)
			return
		}
		if info, err := os.Stat(index); err != nil || info.IsDir() {
			response.Message(c, http.StatusNotFound, "Not found")
			return
		}
		c.File(index)
	}
}

// visibleFS serves plain files only. Directories and any path with a
// dot-prefixed element, which covers in-flight upload temp files, do not exist.
type visibleFS struct {
	root http.FileSystem
}

func (v visibleFS) Open(name string) (http.File, error) {
	if isHidden(name) {
		return nil, fs.ErrNotExist
	}
	f, err := v.root.Open(name)
	if err != nil {
		return nil, err
	}
	if info, err := f.Stat(); err != nil || info.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}

func isHidden(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
