package transport

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"go-deepfake-detector/internal/config"
	apperrors "go-deepfake-detector/internal/errors"
	"go-deepfake-detector/internal/logger"
	"go-deepfake-detector/internal/service"
	"go-deepfake-detector/pkg/models"
	"go-deepfake-detector/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	serviceName    = "Deepfake Detection API"
	serviceVersion = "1.0.0"

	// form field carrying the uploaded image on POST /predict
	uploadField = "file"
)

// NewHandler builds the HTTP surface: service metadata, health, the
// prediction endpoints and the static upload frontend.
func NewHandler(svc service.DetectionService, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxUploadSize),
		corsMiddleware(),
		errorHandler(),
	)

	r.GET("/", serviceInfo(svc))
	r.GET("/health", healthCheck(svc))
	r.POST("/predict", predictUpload(svc, cfg))
	r.POST("/predict/url", predictURL(svc, cfg))

	// Static frontend is optional; deployments may host their own UI
	if cfg.StaticDir != "" {
		if _, err := os.Stat(cfg.StaticDir); err == nil {
			r.Static("/ui", cfg.StaticDir)
		}
	}

	return r
}

func serviceInfo(svc service.DetectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.ServiceInfo{
			Service: serviceName,
			Version: serviceVersion,
			Model:   svc.ModelName(),
			Endpoints: map[string]string{
				"predict":     "POST /predict - Upload image for analysis",
				"predict_url": "POST /predict/url - Classify a remote image by URL",
				"health":      "GET /health - Health check",
			},
		})
	}
}

func healthCheck(svc service.DetectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !svc.Ready() {
			c.JSON(http.StatusServiceUnavailable, models.HealthResponse{
				Status:      "unavailable",
				ModelLoaded: false,
			})
			return
		}
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:      "ok",
			ModelLoaded: true,
		})
	}
}

func predictUpload(svc service.DetectionService, cfg *config.Config) gin.HandlerFunc {
	uploadValidator := validation.NewUploadValidator(cfg.MaxUploadSize)

	return func(c *gin.Context) {
		startTime := time.Now()

		header, err := c.FormFile(uploadField)
		if err != nil {
			// MaxBytesReader trips while the form is being parsed
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				respondError(c, http.StatusRequestEntityTooLarge,
					"uploaded file exceeds the size limit", err)
				return
			}
			respondError(c, http.StatusBadRequest,
				"no image file provided, use \"file\" as the form field name", err)
			return
		}

		if err := uploadValidator.ValidateUpload(header); err != nil {
			respondError(c, apperrors.GetStatusCode(err), appErrorMessage(err), err)
			return
		}

		f, err := header.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "unable to read uploaded file", err)
			return
		}
		defer f.Close()

		result, err := svc.DetectUpload(c.Request.Context(), f)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), appErrorMessage(err), err)
			return
		}
		result.Filename = header.Filename

		logger.WithFields(logrus.Fields{
			"filename":           header.Filename,
			"size_bytes":         header.Size,
			"label":              result.Label,
			"confidence":         result.Confidence,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Prediction completed")

		c.JSON(http.StatusOK, result)
	}
}

func predictURL(svc service.DetectionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		var req models.URLPredictionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		ctx, cancel := contextWithFetchTimeout(c, cfg)
		defer cancel()

		result, err := svc.DetectURL(ctx, req.URL)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), appErrorMessage(err), err)
			return
		}

		logger.WithFields(logrus.Fields{
			"url":                req.URL,
			"label":              result.Label,
			"confidence":         result.Confidence,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Prediction completed")

		c.JSON(http.StatusOK, result)
	}
}

func contextWithFetchTimeout(c *gin.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), cfg.ImageFetchTimeout)
}

// appErrorMessage surfaces the AppError message; unexpected errors get a
// generic message so internal details never leak to callers.
func appErrorMessage(err error) string {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.Message
	}
	return "request processing failed"
}

// Middleware and helper functions

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// corsMiddleware lets the browser frontend call the API from another origin
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, apperrors.GetStatusCode(err.Err), "request processing failed", err)
		}
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error: message,
	})
}
