package models

// Probabilities is the two-way class distribution emitted by the classifier.
// Real and Fake always sum to ~1.
type Probabilities struct {
	Real float64 `json:"real"`
	Fake float64 `json:"fake"`
}

// PredictionResponse is the structured prediction for one analyzed image.
// Label and IsFake encode the same decision and always agree;
// Confidence equals the larger of the two probabilities.
type PredictionResponse struct {
	Label         string        `json:"label"`
	IsFake        bool          `json:"is_fake"`
	Confidence    float64       `json:"confidence"`
	Probabilities Probabilities `json:"probabilities"`
	Filename      string        `json:"filename,omitempty"`
}

// URLPredictionRequest asks the service to fetch and classify a remote image
type URLPredictionRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ServiceInfo describes the running service for the root endpoint
type ServiceInfo struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Model     string            `json:"model"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse reports model readiness
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}
