package gesture

// Letter table thresholds, in hand-size units.
const (
	// FTouchMax is the thumb-index distance below which F's circle is closed.
	FTouchMax = 0.35
	// DTouchMax is the thumb-middle distance below which D's thumb meets the middle finger.
	DTouchMax = 0.35
	// RCrossMax is the index-middle distance below which the fingers are crossed (R).
	RCrossMax = 0.12
	// UTogetherMax is the index-middle distance below which the fingers are held together (U).
	UTogetherMax = 0.35
	// OTouchMax is the thumb-index distance below which O's ring is closed.
	OTouchMax = 0.3
	// COpenMin is the thumb-index distance above which the C is open.
	COpenMin = 0.5
	// CurvedReachMin is the mean tip reach separating curved hands (C, O) from a fist.
	CurvedReachMin = 1.3
)

// LetterRules returns the letter table in evaluation order.
func LetterRules() []Rule {
	indexOnly := func(f Features) bool {
		return f.IndexUp && !f.MiddleUp && !f.RingUp && !f.PinkyUp
	}
	twoUp := func(f Features) bool {
		return f.IndexUp && f.MiddleUp && !f.RingUp && !f.PinkyUp
	}
	fist := func(f Features) bool { return f.FingersUp == 0 }
	curved := func(f Features) bool { return fist(f) && f.TipReach >= CurvedReachMin }

	return []Rule{
		{
			Name:  "B",
			Match: func(f Features) bool { return f.FingersUp == 4 && !f.ThumbUp },
			Label: Letter("B"),
		},
		{
			Name:  "W",
			Match: func(f Features) bool { return f.IndexUp && f.MiddleUp && f.RingUp && !f.PinkyUp },
			Label: Letter("W"),
		},
		{
			Name: "F",
			Match: func(f Features) bool {
				return f.MiddleUp && f.RingUp && f.PinkyUp && !f.IndexUp && f.Norm(f.ThumbIndex) < FTouchMax
			},
			Label: Letter("F"),
		},
		{
			Name: "Y",
			Match: func(f Features) bool {
				return f.ThumbUp && f.PinkyUp && !f.IndexUp && !f.MiddleUp && !f.RingUp
			},
			Label: Letter("Y"),
		},
		{
			Name: "I",
			Match: func(f Features) bool {
				return f.PinkyUp && !f.ThumbUp && !f.IndexUp && !f.MiddleUp && !f.RingUp
			},
			Label: Letter("I"),
		},
		{
			Name: "G",
			Match: func(f Features) bool {
				return f.IndexHorizontal && !f.MiddleExtended && !f.RingUp && !f.PinkyUp
			},
			Label: Letter("G"),
		},
		{
			Name: "P",
			Match: func(f Features) bool {
				return f.IndexExtended && f.MiddleDown && !f.RingUp && !f.PinkyUp
			},
			Label: Letter("P"),
		},
		{
			Name:  "Q",
			Match: func(f Features) bool { return f.IndexDown && !f.MiddleExtended },
			Label: Letter("Q"),
		},
		{
			Name:  "L",
			Match: func(f Features) bool { return f.ThumbUp && indexOnly(f) },
			Label: Letter("L"),
		},
		{
			Name:  "R",
			Match: func(f Features) bool { return twoUp(f) && f.Norm(f.IndexMiddle) < RCrossMax },
			Label: Letter("R"),
		},
		{
			Name:  "U",
			Match: func(f Features) bool { return twoUp(f) && f.Norm(f.IndexMiddle) < UTogetherMax },
			Label: Letter("U"),
		},
		{
			Name:  "V",
			Match: twoUp,
			Label: Letter("V"),
		},
		{
			Name:  "D",
			Match: func(f Features) bool { return indexOnly(f) && f.Norm(f.ThumbMiddle) < DTouchMax },
			Label: Letter("D"),
		},
		{
			Name:  "O",
			Match: func(f Features) bool { return curved(f) && f.Norm(f.ThumbIndex) < OTouchMax },
			Label: Letter("O"),
		},
		{
			Name:  "C",
			Match: func(f Features) bool { return curved(f) && f.Norm(f.ThumbIndex) > COpenMin },
			Label: Letter("C"),
		},
		{
			Name:  "A",
			Match: func(f Features) bool { return fist(f) && !f.ThumbAcross && !f.ThumbBelowTips },
			Label: Letter("A"),
		},
		{
			Name:  "E",
			Match: func(f Features) bool { return fist(f) && f.ThumbAcross && f.ThumbBelowTips },
			Label: Letter("E"),
		},
		{
			Name:  "T",
			Match: func(f Features) bool { return fist(f) && f.ThumbTucked && f.ThumbGap == GapIndexMiddle },
			Label: Letter("T"),
		},
		{
			Name:  "N",
			Match: func(f Features) bool { return fist(f) && f.ThumbTucked && f.ThumbGap == GapMiddleRing },
			Label: Letter("N"),
		},
		{
			Name:  "M",
			Match: func(f Features) bool { return fist(f) && f.ThumbTucked && f.ThumbGap == GapRingPinky },
			Label: Letter("M"),
		},
		{
			Name:  "S",
			Match: func(f Features) bool { return fist(f) && f.ThumbAcross },
			Label: Letter("S"),
		},
	}
}
