package classifier

import (
	"math"

	"go-deepfake-detector/pkg/models"
)

const (
	// LabelReal marks images classified as authentic
	LabelReal = "Real"
	// LabelFake marks images classified as AI-generated
	LabelFake = "AI-generated"

	// Decision threshold on the fake probability. Fixed at 0.5 to match
	// the calibration the model was shipped with.
	fakeThreshold = 0.5
)

// softmax2 converts two raw class scores into a normalized distribution.
// Shifting by the max score keeps the exponentials stable.
func softmax2(realScore, fakeScore float64) (float64, float64) {
	m := math.Max(realScore, fakeScore)
	expReal := math.Exp(realScore - m)
	expFake := math.Exp(fakeScore - m)
	sum := expReal + expFake
	return expReal / sum, expFake / sum
}

// round4 rounds probabilities to four decimals for the wire format
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// derivePrediction turns the network's two class scores into the response
// contract: is_fake is true iff probabilities.fake >= 0.5, the label always
// agrees with is_fake, and confidence is the probability mass of the
// predicted class.
func derivePrediction(realScore, fakeScore float32) *models.PredictionResponse {
	probReal, probFake := softmax2(float64(realScore), float64(fakeScore))

	// Round first so every reported invariant holds on the wire values
	probReal = round4(probReal)
	probFake = round4(probFake)

	isFake := probFake >= fakeThreshold
	label := LabelReal
	if isFake {
		label = LabelFake
	}

	return &models.PredictionResponse{
		Label:      label,
		IsFake:     isFake,
		Confidence: math.Max(probReal, probFake),
		Probabilities: models.Probabilities{
			Real: probReal,
			Fake: probFake,
		},
	}
}
