package service

import (
	"context"
	"errors"
	"io"

	"go-deepfake-detector/internal/classifier"
	apperrors "go-deepfake-detector/internal/errors"
	"go-deepfake-detector/internal/storage"
	"go-deepfake-detector/pkg/models"
	"go-deepfake-detector/pkg/validation"
)

// Detector runs the loaded network on one normalized tensor
type Detector interface {
	Predict(input []float32) (*models.PredictionResponse, error)
	Ready() bool
	ModelName() string
}

// DetectionService is the pipeline between an uploaded image and a
// structured prediction: validate, decode, normalize, score.
type DetectionService interface {
	DetectUpload(ctx context.Context, r io.Reader) (*models.PredictionResponse, error)
	DetectURL(ctx context.Context, imageURL string) (*models.PredictionResponse, error)
	Ready() bool
	ModelName() string
}

type detectionService struct {
	detector     Detector
	fetcher      storage.ImageFetcher
	urlValidator *validation.URLValidator
}

// NewDetectionService creates the detection pipeline service
func NewDetectionService(detector Detector, fetcher storage.ImageFetcher) DetectionService {
	return &detectionService{
		detector:     detector,
		fetcher:      fetcher,
		urlValidator: validation.NewURLValidator(),
	}
}

// DetectUpload classifies one uploaded image. The upload is transient:
// it lives only for the duration of this call and is never persisted.
func (s *detectionService) DetectUpload(ctx context.Context, r io.Reader) (*models.PredictionResponse, error) {
	if !s.detector.Ready() {
		return nil, apperrors.NewUnavailableError("model is not loaded", nil)
	}

	tensor, err := classifier.Preprocess(r)
	if err != nil {
		return nil, apperrors.NewInvalidImageError(err.Error(), err)
	}

	if err := ctx.Err(); err != nil {
		// Caller went away; the tensor is simply abandoned
		return nil, apperrors.NewTimeoutError("request canceled before inference", err)
	}

	return s.score(tensor)
}

// DetectURL fetches a remote image and runs the same pipeline on it
func (s *detectionService) DetectURL(ctx context.Context, imageURL string) (*models.PredictionResponse, error) {
	if !s.detector.Ready() {
		return nil, apperrors.NewUnavailableError("model is not loaded", nil)
	}

	if err := s.urlValidator.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	img, err := s.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("image fetch timed out", err)
		}
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}

	return s.score(classifier.PreprocessImage(img))
}

func (s *detectionService) score(tensor []float32) (*models.PredictionResponse, error) {
	result, err := s.detector.Predict(tensor)
	if err != nil {
		return nil, apperrors.NewInferenceError("inference failed", err)
	}
	return result, nil
}

// Ready reports whether the model is loaded and able to serve
func (s *detectionService) Ready() bool {
	return s.detector.Ready()
}

// ModelName returns the identifier of the loaded model
func (s *detectionService) ModelName() string {
	return s.detector.ModelName()
}
