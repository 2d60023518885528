package app

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/librasio/internal/classifier"
	"github.com/ayusman/librasio/internal/crop"
	"github.com/ayusman/librasio/internal/detector"
	"github.com/ayusman/librasio/internal/gesture"
)

// LandmarkRecognizer classifies the first detected hand with a rule table.
type LandmarkRecognizer struct {
	detector   detector.Detector
	classifier *gesture.Classifier
	mode       gesture.Mode
	extract    gesture.ExtractOptions
	padding    int
}

// NewLandmarkRecognizer creates a recognizer for mode.
func NewLandmarkRecognizer(d detector.Detector, c *gesture.Classifier, mode gesture.Mode, opts gesture.ExtractOptions) *LandmarkRecognizer {
	return &LandmarkRecognizer{
		detector:   d,
		classifier: c,
		mode:       mode,
		extract:    opts,
		padding:    crop.DefaultPadding,
	}
}

// Recognize detects hands in frame and classifies the first valid one.
// No hand yields Unknown without an error.
func (r *LandmarkRecognizer) Recognize(ctx context.Context, frame *gocv.Mat) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{Raw: gesture.Unknown}, err
	}

	hands, err := r.detector.Detect(frame)
	if err != nil {
		return Result{Raw: gesture.Unknown}, fmt.Errorf("detect hands: %w", err)
	}

	hand := detector.FirstHand(hands)
	if hand == nil {
		return Result{Raw: gesture.Unknown}, nil
	}

	res := Result{Raw: gesture.Unknown, Hand: hand}
	if frame != nil && !frame.Empty() {
		res.Box = crop.BoundingBox(hand, frame.Cols(), frame.Rows(), r.padding)
	}

	f, err := gesture.Extract(hand, r.extract)
	if err != nil {
		return res, err
	}
	res.Raw, err = r.classifier.Classify(f, r.mode)
	return res, err
}

// ImageRecognizer classifies the centered crop of a frame with an image model.
type ImageRecognizer struct {
	predictor *classifier.Predictor
	fraction  float64
	size      int
}

// NewImageRecognizer creates a recognizer cropping fraction of the shorter
// frame side. A non-positive fraction uses crop.DefaultFraction.
func NewImageRecognizer(p *classifier.Predictor, fraction float64) *ImageRecognizer {
	if fraction <= 0 {
		fraction = crop.DefaultFraction
	}
	return &ImageRecognizer{predictor: p, fraction: fraction, size: crop.DefaultInputSize}
}

// Recognize crops, normalizes and classifies frame.
func (r *ImageRecognizer) Recognize(ctx context.Context, frame *gocv.Mat) (Result, error) {
	if frame == nil || frame.Empty() {
		return Result{Raw: gesture.Unknown}, fmt.Errorf("%w: no frame", crop.ErrInvalidFrame)
	}

	region, err := crop.Compute(frame.Cols(), frame.Rows(), r.fraction)
	if err != nil {
		return Result{Raw: gesture.Unknown}, err
	}
	box := region.Normalized(frame.Cols(), frame.Rows())
	res := Result{Raw: gesture.Unknown, Box: box.Rect(frame.Cols(), frame.Rows()), Crop: &box}

	tensor, err := crop.Extract(*frame, box, r.size)
	if err != nil {
		return res, err
	}

	pred, err := r.predictor.Predict(ctx, tensor)
	if err != nil {
		return res, err
	}
	res.Raw = pred.Label
	res.Confidence = pred.Confidence
	return res, nil
}
