package container

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"go-deepfake-detector/internal/classifier"
	"go-deepfake-detector/internal/config"
	"go-deepfake-detector/internal/service"
	"go-deepfake-detector/internal/storage"
	"go-deepfake-detector/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config           *config.Config
	session          *classifier.Session
	imageFetcher     storage.ImageFetcher
	detectionService service.DetectionService
	handler          http.Handler
}

// NewContainer wires the dependency graph: model store → session →
// service → handler. The model session is created once here and shared
// read-only by every request.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg.AzureEnabled() {
		store, err := storage.NewAzureModelStore(
			cfg.AzureStorageAccount, cfg.AzureStorageKey, cfg.AzureModelContainer)
		if err != nil {
			return nil, fmt.Errorf("failed to create model store: %w", err)
		}
		ctx := context.Background()
		if err := store.EnsureModel(ctx, filepath.Base(cfg.ModelPath), cfg.ModelPath); err != nil {
			return nil, fmt.Errorf("failed to fetch model weights: %w", err)
		}
		if err := store.EnsureModel(ctx, filepath.Base(cfg.ModelMetadataPath), cfg.ModelMetadataPath); err != nil {
			return nil, fmt.Errorf("failed to fetch model metadata: %w", err)
		}
	}

	session, err := classifier.NewSession(cfg.ModelPath, cfg.ModelMetadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	imageFetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout)
	detectionService := service.NewDetectionService(session, imageFetcher)
	handler := transport.NewHandler(detectionService, cfg)

	return &Container{
		config:           cfg,
		session:          session,
		imageFetcher:     imageFetcher,
		detectionService: detectionService,
		handler:          handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the model session
func (c *Container) Close() {
	if c.session != nil {
		c.session.Close()
	}
}
