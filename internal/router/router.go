package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bni27/ogp-db-api/internal/auth"
	"github.com/bni27/ogp-db-api/internal/middleware"
)

// Pinger is the probe the health endpoint runs against each backing
// service. Both the database pool and the file store satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers collects every HTTP handler the router mounts.
type Handlers struct {
	Auth       AuthHandler
	AssetClass AssetClassHandler
	RawData    RawDataHandler
	Staging    StagingHandler
	Reference  ReferenceHandler
	Prod       ProdHandler
	RCF        RCFHandler
}

// Narrow views of the handler packages, so routes can be exercised in
// tests without a database behind them.
type (
	AuthHandler interface {
		Register(c *gin.Context)
		Login(c *gin.Context)
		UpdateRole(c *gin.Context)
	}

	AssetClassHandler interface {
		List(c *gin.Context)
		Create(c *gin.Context)
		Delete(c *gin.Context)
		ListFiles(c *gin.Context)
		UploadFile(c *gin.Context)
		DownloadFile(c *gin.Context)
		DeleteFile(c *gin.Context)
	}

	RawDataHandler interface {
		LoadFile(c *gin.Context)
		LoadAssetClass(c *gin.Context)
		ListTables(c *gin.Context)
		GetTable(c *gin.Context)
		DeleteTable(c *gin.Context)
		GetRecord(c *gin.Context)
		AddRecord(c *gin.Context)
		UpdateRecord(c *gin.Context)
		DeleteRecord(c *gin.Context)
	}

	StagingHandler interface {
		Stage(c *gin.Context)
		GetData(c *gin.Context)
		GetRecord(c *gin.Context)
		Delete(c *gin.Context)
	}

	ReferenceHandler interface {
		UpdateExchangeRates(c *gin.Context)
		UpdatePPPRates(c *gin.Context)
		UpdateDeflators(c *gin.Context)
		UpdateCountries(c *gin.Context)
	}

	ProdHandler interface {
		GetData(c *gin.Context)
		Update(c *gin.Context)
	}

	RCFHandler interface {
		AvailableFields(c *gin.Context)
		Curve(c *gin.Context)
	}
)

// NewRouter builds the gin engine with every route of the API mounted.
// Reads require VIEWER, mutations EDITOR, destructive operations ADMIN.
func NewRouter(h Handlers, dbPing, storePing Pinger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", healthCheck(dbPing, storePing))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)

		users := authGroup.Group("/users")
		users.Use(middleware.AuthMiddleware(), middleware.RequireRole(auth.RoleAdmin))
		{
			users.PUT("/:id/role", h.Auth.UpdateRole)
		}
	}

	data := r.Group("/data")
	data.Use(middleware.AuthMiddleware(), middleware.RequireRole(auth.RoleViewer))
	{
		data.GET("", h.Prod.GetData)
		data.POST("/update", middleware.RequireRole(auth.RoleAdmin), h.Prod.Update)

		classes := data.Group("/assetClasses")
		{
			classes.GET("", h.AssetClass.List)
			classes.POST("/:name", middleware.RequireRole(auth.RoleAdmin), h.AssetClass.Create)
			classes.DELETE("/:name", middleware.RequireRole(auth.RoleAdmin), h.AssetClass.Delete)

			// Upload decides EDITOR vs ADMIN itself, from the verified
			// and overwrite flags of the request.
			classes.GET("/:name/files", h.AssetClass.ListFiles)
			classes.POST("/:name/files", h.AssetClass.UploadFile)
			classes.GET("/:name/files/:file", h.AssetClass.DownloadFile)
			classes.DELETE("/:name/files/:file", middleware.RequireRole(auth.RoleAdmin), h.AssetClass.DeleteFile)

			classes.POST("/:name/files/:file/load", middleware.RequireRole(auth.RoleEditor), h.RawData.LoadFile)
			classes.POST("/:name/load", middleware.RequireRole(auth.RoleEditor), h.RawData.LoadAssetClass)

			classes.POST("/:name/stage", middleware.RequireRole(auth.RoleEditor), h.Staging.Stage)
			classes.GET("/:name/stage/data", h.Staging.GetData)
			classes.GET("/:name/stage/record", h.Staging.GetRecord)
			classes.DELETE("/:name/stage", middleware.RequireRole(auth.RoleAdmin), h.Staging.Delete)
		}

		tables := data.Group("/rawTables")
		{
			tables.GET("", h.RawData.ListTables)
			tables.GET("/:table", h.RawData.GetTable)
			tables.DELETE("/:table", middleware.RequireRole(auth.RoleAdmin), h.RawData.DeleteTable)

			tables.GET("/:table/record", h.RawData.GetRecord)
			tables.POST("/:table/record", middleware.RequireRole(auth.RoleEditor), h.RawData.AddRecord)
			tables.PUT("/:table/record", middleware.RequireRole(auth.RoleEditor), h.RawData.UpdateRecord)
			tables.DELETE("/:table/record", middleware.RequireRole(auth.RoleEditor), h.RawData.DeleteRecord)
		}

		reference := data.Group("/reference")
		reference.Use(middleware.RequireRole(auth.RoleEditor))
		{
			reference.POST("/exchangeRates/update", h.Reference.UpdateExchangeRates)
			reference.POST("/pppRates/update", h.Reference.UpdatePPPRates)
			reference.POST("/gdpDeflators/update", h.Reference.UpdateDeflators)
			reference.POST("/countries/update", h.Reference.UpdateCountries)
		}

		rcf := data.Group("/rcf")
		{
			rcf.GET("/:name/availableFields", h.RCF.AvailableFields)
			rcf.GET("/:name/curve/:field", h.RCF.Curve)
		}
	}

	return r
}

// healthCheck probes the database and the file store and reports both.
// 200 only when every backing service answers.
func healthCheck(dbPing, storePing Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		dbOK := dbPing.Ping(ctx) == nil
		fsOK := storePing.Ping(ctx) == nil

		status := http.StatusOK
		if !dbOK || !fsOK {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"healthy":                dbOK && fsOK,
			"db_connection":          dbOK,
			"file_system_connection": fsOK,
		})
	}
}
