// Package gesture turns hand landmarks into sign labels: feature extraction,
// ordered rule tables for letters and words, and label vocabulary.
package gesture

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/librasio/internal/detector"
)

var (
	// ErrInvalidObservation is returned when a landmark set cannot be used.
	// It wraps detector.ErrInvalidObservation.
	ErrInvalidObservation = fmt.Errorf("gesture: %w", detector.ErrInvalidObservation)

	// ErrInvalidFeatureVector is returned when a feature vector is inconsistent.
	ErrInvalidFeatureVector = errors.New("gesture: invalid feature vector")
)

// ThumbJoint selects the landmark the thumb tip is compared against.
type ThumbJoint int

const (
	// ThumbJointMCP compares the thumb tip with landmark 2.
	ThumbJointMCP ThumbJoint = detector.ThumbMCP
	// ThumbJointIP compares the thumb tip with landmark 3.
	ThumbJointIP ThumbJoint = detector.ThumbIP
)

// Cue thresholds, in hand-size units.
const (
	// ExtendedRatio is the minimum MCP to tip length for a straight finger.
	ExtendedRatio = 0.8

	// MinHandSize rejects collapsed observations.
	MinHandSize = 1e-6
)

// Thumb gaps between adjacent finger knuckles.
const (
	GapNone = iota
	GapIndexMiddle
	GapMiddleRing
	GapRingPinky
)

// ExtractOptions configures feature extraction.
type ExtractOptions struct {
	ThumbJoint ThumbJoint
}

// DefaultExtractOptions compares the thumb against its MCP joint.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{ThumbJoint: ThumbJointMCP}
}

// Features is the per-frame feature vector derived from one hand.
type Features struct {
	ThumbUp  bool
	IndexUp  bool
	MiddleUp bool
	RingUp   bool
	PinkyUp  bool

	// FingersUp counts raised fingers, thumb excluded (0-4).
	FingersUp int

	// ThumbDown is true when the thumb tip is below landmark 2,
	// independent of the thumb joint option.
	ThumbDown bool

	// Raw image-plane distances between tips.
	ThumbIndex  float64
	ThumbMiddle float64
	IndexMiddle float64

	HandSize  float64
	IndexTipX float64
	WristX    float64

	// Shape cues used by the letter table.
	IndexExtended   bool
	MiddleExtended  bool
	IndexHorizontal bool
	IndexDown       bool
	MiddleDown      bool
	ThumbAcross     bool
	ThumbTucked     bool
	ThumbBelowTips  bool
	ThumbGap        int
	TipReach        float64
}

// Norm expresses a raw distance in hand-size units.
func (f Features) Norm(d float64) float64 {
	return d / f.HandSize
}

// Extract derives the feature vector for a single hand observation.
func Extract(obs *detector.HandLandmarks, opts ExtractOptions) (Features, error) {
	if err := obs.Validate(); err != nil {
		return Features{}, fmt.Errorf("%w: %v", ErrInvalidObservation, err)
	}

	size := obs.HandSize()
	if size < MinHandSize {
		return Features{}, fmt.Errorf("%w: degenerate hand size %g", ErrInvalidObservation, size)
	}

	joint := opts.ThumbJoint
	if joint != ThumbJointIP {
		joint = ThumbJointMCP
	}

	p := obs.Points
	up := func(tip, ref int) bool { return p[tip].Y < p[ref].Y }

	f := Features{
		ThumbUp:   up(detector.ThumbTip, int(joint)),
		IndexUp:   up(detector.IndexTip, detector.IndexPIP),
		MiddleUp:  up(detector.MiddleTip, detector.MiddlePIP),
		RingUp:    up(detector.RingTip, detector.RingPIP),
		PinkyUp:   up(detector.PinkyTip, detector.PinkyPIP),
		ThumbDown: p[detector.ThumbTip].Y > p[detector.ThumbMCP].Y,

		ThumbIndex:  detector.Distance2D(p[detector.ThumbTip], p[detector.IndexTip]),
		ThumbMiddle: detector.Distance2D(p[detector.ThumbTip], p[detector.MiddleTip]),
		IndexMiddle: detector.Distance2D(p[detector.IndexTip], p[detector.MiddleTip]),

		HandSize:  size,
		IndexTipX: p[detector.IndexTip].X,
		WristX:    p[detector.Wrist].X,
	}
	f.FingersUp = countUp(f.IndexUp, f.MiddleUp, f.RingUp, f.PinkyUp)

	// Shape cues are read in hand-size units with the wrist at the origin.
	n := obs.Normalize().Points
	f.IndexExtended = extended(n, detector.IndexMCP, detector.IndexTip)
	f.MiddleExtended = extended(n, detector.MiddleMCP, detector.MiddleTip)
	f.IndexHorizontal = f.IndexExtended && horizontal(n[detector.IndexMCP], n[detector.IndexTip])
	f.IndexDown = f.IndexExtended && pointsDown(n[detector.IndexMCP], n[detector.IndexTip])
	f.MiddleDown = f.MiddleExtended && pointsDown(n[detector.MiddleMCP], n[detector.MiddleTip])

	thumb := n[detector.ThumbTip]
	f.ThumbGap = thumbGap(n, thumb.X)
	f.ThumbAcross = f.ThumbGap != GapNone
	f.ThumbTucked = thumb.Z > n[detector.IndexPIP].Z
	f.ThumbBelowTips = thumb.Y > math.Max(
		math.Max(n[detector.IndexTip].Y, n[detector.MiddleTip].Y),
		math.Max(n[detector.RingTip].Y, n[detector.PinkyTip].Y),
	)

	var reach float64
	for _, tip := range []int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip} {
		reach += math.Hypot(n[tip].X, n[tip].Y)
	}
	f.TipReach = reach / 4

	return f, nil
}

// Validate checks that the vector could have come from Extract.
func (f Features) Validate() error {
	if f.FingersUp < 0 || f.FingersUp > 4 {
		return fmt.Errorf("%w: finger count %d out of range", ErrInvalidFeatureVector, f.FingersUp)
	}
	if n := countUp(f.IndexUp, f.MiddleUp, f.RingUp, f.PinkyUp); n != f.FingersUp {
		return fmt.Errorf("%w: finger count %d disagrees with flags (%d)", ErrInvalidFeatureVector, f.FingersUp, n)
	}
	if !(f.HandSize > 0) || math.IsInf(f.HandSize, 0) {
		return fmt.Errorf("%w: hand size %g", ErrInvalidFeatureVector, f.HandSize)
	}
	for name, d := range map[string]float64{
		"thumb-index":  f.ThumbIndex,
		"thumb-middle": f.ThumbMiddle,
		"index-middle": f.IndexMiddle,
		"tip reach":    f.TipReach,
	} {
		if !(d >= 0) || math.IsInf(d, 0) {
			return fmt.Errorf("%w: %s distance %g", ErrInvalidFeatureVector, name, d)
		}
	}
	if f.ThumbGap < GapNone || f.ThumbGap > GapRingPinky {
		return fmt.Errorf("%w: thumb gap %d", ErrInvalidFeatureVector, f.ThumbGap)
	}
	return nil
}

func countUp(flags ...bool) int {
	n := 0
	for _, up := range flags {
		if up {
			n++
		}
	}
	return n
}

func extended(n [detector.NumLandmarks]detector.Point3D, mcp, tip int) bool {
	return detector.Distance2D(n[mcp], n[tip]) > ExtendedRatio
}

func horizontal(base, tip detector.Point3D) bool {
	return math.Abs(tip.X-base.X) > math.Abs(tip.Y-base.Y)
}

func pointsDown(base, tip detector.Point3D) bool {
	return tip.Y-base.Y > math.Abs(tip.X-base.X)
}

// thumbGap reports which pair of adjacent knuckles the thumb tip sits between.
func thumbGap(p [detector.NumLandmarks]detector.Point3D, x float64) int {
	knuckles := []int{detector.IndexMCP, detector.MiddleMCP, detector.RingMCP, detector.PinkyMCP}
	for i := 0; i+1 < len(knuckles); i++ {
		a, b := p[knuckles[i]].X, p[knuckles[i+1]].X
		if x >= math.Min(a, b) && x <= math.Max(a, b) {
			return i + 1
		}
	}
	return GapNone
}
