package router

import (
	"net/http"
	"sync"

	"github.com/Apfirebolt/logjournal-backend/internal/config"
	"github.com/Apfirebolt/logjournal-backend/internal/handler"
	"github.com/Apfirebolt/logjournal-backend/internal/metrics"
	"github.com/Apfirebolt/logjournal-backend/internal/middleware"
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	DB      *gorm.DB
	Svc     *service.Service
	Log     logrus.FieldLogger
	Limiter *middleware.RateLimiter // guards register/login; nil disables
}

var tagNameOnce sync.Once

// useJSONFieldNames makes binding errors report the JSON attribute name.
func useJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(util.JSONFieldName)
	})
}

// SetupRouter builds the gin engine with every API route.
func SetupRouter(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	useJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log), metrics.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	st := store.New(d.DB)
	pageSize := cfg.App.PageSize

	// ====== API ======
	api := r.Group("/api")

	// register/login: public, rate limited per IP
	authHandler := handler.NewAuthHandler(d.Svc, st, cfg.JWT.Secret, cfg.JWT.Issuer,
		cfg.JWT.AccessTTLMinutes, cfg.JWT.RefreshTTLHours)
	public := api.Group("")
	if d.Limiter != nil {
		public.Use(d.Limiter.Handler())
	}
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)
	api.POST("/refresh", authHandler.Refresh)

	// everything else requires a signed-in user
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, st),
		middleware.AuditMiddleware(st, cfg.Security.EncryptionKey, d.Log),
	)

	protected.POST("/logout", authHandler.Logout)
	protected.GET("/me", handler.GetMe)

	profileHandler := handler.NewProfileHandler(d.Svc)
	protected.GET("/profile", profileHandler.GetProfile)
	protected.PATCH("/profile", profileHandler.UpdateProfile)
	protected.DELETE("/profile", profileHandler.DeleteAccount)
	protected.POST("/profile/password", profileHandler.ChangePassword)

	userHandler := handler.NewUserHandler(d.Svc, pageSize)
	protected.GET("/users", userHandler.ListUsers)

	templateHandler := handler.NewTemplateHandler(d.Svc, pageSize)
	protected.GET("/templates", templateHandler.ListTemplates)
	protected.POST("/templates", templateHandler.CreateTemplate)
	protected.GET("/templates/:id", templateHandler.GetTemplate)
	protected.PUT("/templates/:id", templateHandler.UpdateTemplate)
	protected.PATCH("/templates/:id", templateHandler.UpdateTemplate)
	protected.DELETE("/templates/:id", templateHandler.DeleteTemplate)

	categoryHandler := handler.NewCategoryHandler(d.Svc, pageSize)
	protected.GET("/categories", categoryHandler.ListCategories)
	protected.POST("/categories", categoryHandler.CreateCategory)
	protected.GET("/categories/:id", categoryHandler.GetCategory)
	protected.PUT("/categories/:id", categoryHandler.UpdateCategory)
	protected.PATCH("/categories/:id", categoryHandler.UpdateCategory)
	protected.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	fieldHandler := handler.NewFieldHandler(d.Svc, pageSize)
	protected.GET("/template-fields", fieldHandler.ListFields)
	protected.POST("/template-fields", fieldHandler.CreateField)
	protected.GET("/template-fields/:id", fieldHandler.GetField)
	protected.PUT("/template-fields/:id", fieldHandler.UpdateField)
	protected.PATCH("/template-fields/:id", fieldHandler.UpdateField)
	protected.DELETE("/template-fields/:id", fieldHandler.DeleteField)

	entryHandler := handler.NewEntryHandler(d.Svc, pageSize)
	protected.GET("/entries", entryHandler.ListEntries)
	protected.POST("/entries", entryHandler.CreateEntry)
	protected.GET("/entries/:id", entryHandler.GetEntry)
	protected.PUT("/entries/:id", entryHandler.UpdateEntry)
	protected.PATCH("/entries/:id", entryHandler.UpdateEntry)
	protected.DELETE("/entries/:id", entryHandler.DeleteEntry)

	answerHandler := handler.NewAnswerHandler(d.Svc, pageSize)
	protected.GET("/entry-field-answers", answerHandler.ListAnswers)
	protected.POST("/entry-field-answers", answerHandler.CreateAnswer)
	protected.GET("/entry-field-answers/:id", answerHandler.GetAnswer)
	protected.PUT("/entry-field-answers/:id", answerHandler.UpdateAnswer)
	protected.PATCH("/entry-field-answers/:id", answerHandler.UpdateAnswer)
	protected.DELETE("/entry-field-answers/:id", answerHandler.DeleteAnswer)

	exportHandler := handler.NewExportHandler(d.Svc)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	logHandler := handler.NewLogHandler(st, cfg.Security.EncryptionKey, pageSize)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
