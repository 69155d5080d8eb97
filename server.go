package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/payroll_backend/config"
	"bitbucket.org/mmdatafocus/payroll_backend/workflow"
)

const defaultPort = "8080"

func healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		host, _ := os.Hostname()
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"host":      host,
			"timestamp": time.Now().Unix(),
		})
	}
}

func processEmployeesCSVHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "a CSV file upload named 'file' is required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			config.LogError(logger, "server.go", "processEmployeesCSVHandler", "open upload", fileHeader.Filename, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
			return
		}
		defer file.Close()

		reportId, rows, err := workflow.ProcessTimeReport(config.GetDB(), logger, fileHeader.Filename, file)
		if err != nil {
			var namingErr *workflow.NamingError
			var rowErr *workflow.RowParseError
			switch {
			case errors.As(err, &namingErr):
				c.JSON(http.StatusBadRequest, gin.H{"error": namingErr.Error()})
			case errors.Is(err, workflow.ErrDuplicateReport):
				c.JSON(http.StatusConflict, gin.H{"error": workflow.ErrDuplicateReport.Error()})
			case errors.As(err, &rowErr):
				// Row-level detail stays in the logs; the client only learns
				// the batch was malformed and that nothing of it survived.
				c.JSON(http.StatusBadRequest, gin.H{"error": "malformed CSV content; nothing was ingested"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process report"})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":  "Report processed",
			"reportId": reportId,
			"rows":     rows,
		})
	}
}

func payrollReportHandler(rates map[string]decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		lines, err := workflow.GeneratePayrollReport(config.GetDB(), logger, rates)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate payroll report"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"payrollReport": gin.H{"employeeReports": lines},
		})
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	if strings.EqualFold(strings.TrimSpace(os.Getenv("ENVIRONMENT")), "prod") {
		gin.SetMode(gin.ReleaseMode)
	}

	rates, err := config.JobGroupRates()
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "main"}).Fatal("invalid job group rate table: " + err.Error())
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	r := gin.New()

	// Correlation IDs: generate once per request and echo back to the client.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Set("correlation_id", cid)
		c.Writer.Header().Set("x-correlation-id", cid)
		c.Next()
	})

	// Gate app endpoints on database readiness; health stays reachable so the
	// platform's probe passes while the connect-with-retry loop runs.
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "database not ready"})
			return
		}
		c.Next()
	})

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS
	// (comma-separated). In non-production, allow all for developer convenience.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ENVIRONMENT")), "prod") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "x-correlation-id")
	corsConfig.AddExposeHeaders("Content-Length")
	r.Use(cors.New(corsConfig))

	r.Use(gin.Recovery())

	r.GET("/health", healthHandler())
	r.POST("/employees/csv", processEmployeesCSVHandler())
	r.GET("/employees/report", payrollReportHandler(rates))

	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Method not allowed on resource uri"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.WithFields(logrus.Fields{"field": "main"}).Info("listening on :" + port)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "main"}).Fatal("server error: " + serveErr.Error())
		}
	}()

	// Connect after the server is listening; the readiness gate answers 503
	// until the database is up.
	go config.ConnectDatabaseWithRetry()

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.WithFields(logrus.Fields{"field": "main"}).Warn("shutdown: " + shutdownErr.Error())
	}
}
