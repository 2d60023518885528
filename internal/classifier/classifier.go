// Package classifier wraps an external image model that scores hand crops
// against the letter alphabet.
package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayusman/librasio/internal/crop"
	"github.com/ayusman/librasio/internal/gesture"
)

// ErrClassifierUnavailable wraps every failure of the external model.
// The predictor does not retry.
var ErrClassifierUnavailable = errors.New("classifier: unavailable")

// Confidence thresholds. A top class must score strictly above the threshold.
const (
	DefaultThreshold = 0.70
	StrictThreshold  = 0.85
)

// DefaultLabels maps model output indices to letters.
var DefaultLabels = []string{
	"A", "B", "C", "D", "E", "F", "G", "I", "L", "M", "N",
	"O", "P", "Q", "R", "S", "T", "U", "V", "W", "Y",
}

// Model scores a tensor and returns one probability per class.
type Model interface {
	Predict(ctx context.Context, input crop.Tensor) ([]float32, error)
}

// Prediction is the outcome of one thresholded classification.
type Prediction struct {
	Label      gesture.Label
	Class      int
	Confidence float32
}

// Predictor picks the top class of a model's output and applies a
// confidence threshold.
type Predictor struct {
	model     Model
	labels    []string
	threshold float64
}

// NewPredictor creates a predictor. Nil labels use DefaultLabels and a
// non-positive threshold uses DefaultThreshold.
func NewPredictor(model Model, labels []string, threshold float64) *Predictor {
	if labels == nil {
		labels = DefaultLabels
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Predictor{model: model, labels: labels, threshold: threshold}
}

// Threshold returns the confidence threshold in use.
func (p *Predictor) Threshold() float64 {
	return p.threshold
}

// Predict classifies input. Scores at or below the threshold yield Unknown.
func (p *Predictor) Predict(ctx context.Context, input crop.Tensor) (Prediction, error) {
	probs, err := p.model.Predict(ctx, input)
	if err != nil {
		return Prediction{Label: gesture.Unknown, Class: -1}, fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}
	if len(probs) != len(p.labels) {
		return Prediction{Label: gesture.Unknown, Class: -1},
			fmt.Errorf("%w: got %d scores for %d labels", ErrClassifierUnavailable, len(probs), len(p.labels))
	}

	class, conf := argmax(probs)
	pred := Prediction{Label: gesture.Unknown, Class: class, Confidence: conf}
	if float64(conf) > p.threshold {
		pred.Label = gesture.Letter(p.labels[class])
	}
	return pred, nil
}

// argmax returns the first index holding the highest score.
func argmax(scores []float32) (int, float32) {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best, scores[best]
}
