package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/librasio/internal/detector"
)

func classifyHand(t *testing.T, c *Classifier, hand detector.HandLandmarks, mode Mode) Label {
	t.Helper()
	return classifyWith(t, c, hand, mode, DefaultExtractOptions())
}

func classifyWith(t *testing.T, c *Classifier, hand detector.HandLandmarks, mode Mode, opts ExtractOptions) Label {
	t.Helper()
	f, err := Extract(&hand, opts)
	require.NoError(t, err)
	label, err := c.Classify(f, mode)
	require.NoError(t, err)
	return label
}

func TestClassify_WordScenarios(t *testing.T) {
	c := NewClassifier(WordOptions{Mirror: DefaultMirror})

	t.Run("index up only points at the signer", func(t *testing.T) {
		hand := detector.PoseLandmarks(detector.Pose{})
		hand.Points[detector.IndexPIP].Y = 0.4
		hand.Points[detector.IndexTip] = detector.Point3D{X: 0.6, Y: 0.2}

		assert.Equal(t, Word(WordMe), classifyHand(t, c, hand, ModeWord))
	})

	t.Run("index up only points away", func(t *testing.T) {
		hand := detector.PoseLandmarks(detector.Pose{})
		hand.Points[detector.IndexPIP].Y = 0.4
		hand.Points[detector.IndexTip] = detector.Point3D{X: 0.4, Y: 0.2}

		assert.Equal(t, Word(WordYou), classifyHand(t, c, hand, ModeWord))
	})

	t.Run("thumb above landmark 2 with fingers down", func(t *testing.T) {
		hand := detector.ThumbsUpLandmarks()
		hand.Points[detector.ThumbTip].Y = 0.1
		hand.Points[detector.ThumbMCP].Y = 0.3

		assert.Equal(t, Word(WordCool), classifyHand(t, c, hand, ModeWord))
	})

	t.Run("presets", func(t *testing.T) {
		assert.Equal(t, Word(WordCool), classifyHand(t, c, detector.ThumbsUpLandmarks(), ModeWord))
		assert.Equal(t, Word(WordHi), classifyHand(t, c, detector.OpenPalmLandmarks(), ModeWord))
	})
}

func TestClassify_MirrorFlipsMeAndYou(t *testing.T) {
	mirrored := NewClassifier(WordOptions{Mirror: true})

	hand := detector.PoseLandmarks(detector.Pose{})
	hand.Points[detector.IndexPIP].Y = 0.4
	hand.Points[detector.IndexTip] = detector.Point3D{X: 0.6, Y: 0.2}

	assert.Equal(t, Word(WordYou), classifyHand(t, mirrored, hand, ModeWord))
}

func TestClassify_WordPoses(t *testing.T) {
	c := NewClassifier(WordOptions{})

	tests := []struct {
		name string
		pose detector.Pose
		want Label
	}{
		{"i love you", detector.Pose{Thumb: true, Index: true, Pinky: true}, Word(WordILoveYou)},
		{"phone", detector.Pose{Thumb: true, Pinky: true}, Word(WordPhone)},
		{"rock", detector.Pose{Index: true, Pinky: true}, Word(WordRock)},
		{"peace", detector.Pose{Index: true, Middle: true}, Word(WordPeace)},
		{"bad", detector.Pose{}, Word(WordBad)},
		{"hi", detector.Pose{Thumb: true, Index: true, Middle: true, Ring: true, Pinky: true}, Word(WordHi)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyHand(t, c, detector.PoseLandmarks(tt.pose), ModeWord))
		})
	}
}

// fingers builds a consistent vector with the given flags and unit hand size.
func fingers(thumb, index, middle, ring, pinky bool) Features {
	f := Features{
		ThumbUp:     thumb,
		IndexUp:     index,
		MiddleUp:    middle,
		RingUp:      ring,
		PinkyUp:     pinky,
		HandSize:    1,
		ThumbIndex:  1,
		ThumbMiddle: 1,
		IndexMiddle: 1,
		TipReach:    1,
	}
	f.FingersUp = countUp(index, middle, ring, pinky)
	return f
}

func TestClassify_WordDistances(t *testing.T) {
	c := NewClassifier(WordOptions{})

	tests := []struct {
		name  string
		f     Features
		touch float64
		want  Label
	}{
		{"ok", fingers(false, false, true, true, true), 0.05, Word(WordOK)},
		{"ok open circle", fingers(false, false, true, true, true), 0.07, Unknown},
		{"eat", fingers(false, false, false, false, false), 0.03, Word(WordEat)},
		{"drink", fingers(false, false, false, false, false), 0.2, Word(WordDrink)},
		{"between eat and drink", fingers(false, false, false, false, false), 0.08, Unknown},
		{"money", fingers(false, true, true, true, false), 0.03, Word(WordMoney)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.f
			f.ThumbIndex = tt.touch
			got, err := c.Classify(f, ModeWord)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Letters(t *testing.T) {
	c := NewClassifier(WordOptions{})

	fist := func(mut func(*Features)) Features {
		f := fingers(false, false, false, false, false)
		if mut != nil {
			mut(&f)
		}
		return f
	}
	with := func(f Features, mut func(*Features)) Features {
		mut(&f)
		return f
	}

	tests := []struct {
		want string
		f    Features
	}{
		{"B", fingers(false, true, true, true, true)},
		{"W", fingers(false, true, true, true, false)},
		{"F", with(fingers(false, false, true, true, true), func(f *Features) { f.ThumbIndex = 0.2 })},
		{"Y", fingers(true, false, false, false, true)},
		{"I", fingers(false, false, false, false, true)},
		{"G", fist(func(f *Features) { f.IndexExtended, f.IndexHorizontal = true, true })},
		{"P", fist(func(f *Features) { f.IndexExtended, f.MiddleExtended, f.MiddleDown = true, true, true })},
		{"Q", fist(func(f *Features) { f.IndexExtended, f.IndexDown = true, true })},
		{"L", fingers(true, true, false, false, false)},
		{"R", with(fingers(false, true, true, false, false), func(f *Features) { f.IndexMiddle = 0.05 })},
		{"U", with(fingers(false, true, true, false, false), func(f *Features) { f.IndexMiddle = 0.2 })},
		{"V", with(fingers(false, true, true, false, false), func(f *Features) { f.IndexMiddle = 0.6 })},
		{"D", with(fingers(false, true, false, false, false), func(f *Features) { f.ThumbMiddle = 0.1 })},
		{"O", fist(func(f *Features) { f.TipReach, f.ThumbIndex = 1.5, 0.1 })},
		{"C", fist(func(f *Features) { f.TipReach, f.ThumbIndex = 1.5, 0.8 })},
		{"A", fist(nil)},
		{"E", fist(func(f *Features) { f.ThumbAcross, f.ThumbGap, f.ThumbBelowTips = true, GapMiddleRing, true })},
		{"T", fist(func(f *Features) { f.ThumbAcross, f.ThumbGap, f.ThumbTucked = true, GapIndexMiddle, true })},
		{"N", fist(func(f *Features) { f.ThumbAcross, f.ThumbGap, f.ThumbTucked = true, GapMiddleRing, true })},
		{"M", fist(func(f *Features) { f.ThumbAcross, f.ThumbGap, f.ThumbTucked = true, GapRingPinky, true })},
		{"S", fist(func(f *Features) { f.ThumbAcross, f.ThumbGap = true, GapMiddleRing })},
	}

	seen := make(map[string]bool)
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := c.Classify(tt.f, ModeLetter)
			require.NoError(t, err)
			assert.Equal(t, Letter(tt.want), got)
		})
		seen[tt.want] = true
	}

	for _, l := range Letters {
		assert.True(t, seen[l], "letter %s has no case", l)
	}
}

func TestClassify_LetterPresets(t *testing.T) {
	c := NewClassifier(WordOptions{})

	assert.Equal(t, Letter("A"), classifyHand(t, c, detector.ThumbsUpLandmarks(), ModeLetter))
	assert.Equal(t, Letter("E"), classifyHand(t, c, detector.PoseLandmarks(detector.Pose{}), ModeLetter))
	assert.Equal(t, Unknown, classifyHand(t, c, detector.OpenPalmLandmarks(), ModeLetter))
}

func TestClassify_LettersAgainstThumbIP(t *testing.T) {
	c := NewClassifier(WordOptions{})
	ip := ExtractOptions{ThumbJoint: ThumbJointIP}

	l := detector.PoseLandmarks(detector.Pose{Thumb: true, Index: true})
	y := detector.PoseLandmarks(detector.Pose{Thumb: true, Pinky: true})

	tests := []struct {
		name string
		hand detector.HandLandmarks
		opts ExtractOptions
		want Label
	}{
		{"L", l, ip, Letter("L")},
		{"Y", y, ip, Letter("Y")},
		{"A", detector.ThumbsUpLandmarks(), ip, Letter("A")},
		{"L with thumb between joints, MCP", bentThumb(l), DefaultExtractOptions(), Letter("L")},
		{"L with thumb between joints, IP", bentThumb(l), ip, Unknown},
		{"Y with thumb between joints, MCP", bentThumb(y), DefaultExtractOptions(), Letter("Y")},
		{"Y with thumb between joints, IP", bentThumb(y), ip, Letter("I")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyWith(t, c, tt.hand, ModeLetter, tt.opts))
		})
	}
}

// bentThumb lowers the thumb tip between landmark 3 and landmark 2.
func bentThumb(h detector.HandLandmarks) detector.HandLandmarks {
	mcp, ip := h.Points[detector.ThumbMCP].Y, h.Points[detector.ThumbIP].Y
	h.Points[detector.ThumbTip].Y = (mcp + ip) / 2
	return h
}

func TestClassify_NoMatchIsUnknown(t *testing.T) {
	c := NewClassifier(WordOptions{})

	// index only, thumb away from the middle finger
	got, err := c.Classify(fingers(false, true, false, false, false), ModeLetter)
	require.NoError(t, err)
	assert.True(t, got.IsUnknown())
	assert.Equal(t, DefaultPlaceholder, got.Render(DefaultPlaceholder))
}

func TestClassify_Errors(t *testing.T) {
	c := NewClassifier(WordOptions{})

	_, err := c.Classify(Features{FingersUp: 3, HandSize: 1}, ModeWord)
	assert.ErrorIs(t, err, ErrInvalidFeatureVector)

	_, err = c.Classify(fingers(true, false, false, false, false), Mode("sentence"))
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	vectors := []Features{
		fingers(true, true, false, false, true),
		fingers(false, true, true, false, false),
		fingers(true, false, false, false, false),
		fingers(false, false, false, false, false),
		fingers(true, true, true, true, true),
	}

	for _, table := range [][]Rule{WordRules(WordOptions{}), LetterRules()} {
		for _, f := range vectors {
			want := Evaluate(table, f)

			// Move every non-matching rule to the front in reverse order.
			var matching, other []Rule
			for _, r := range table {
				if r.Match(f) {
					matching = append(matching, r)
				} else {
					other = append([]Rule{r}, other...)
				}
			}
			reordered := append(other, matching...)

			assert.Equal(t, want, Evaluate(reordered, f))
		}
	}
}

func TestWordRules_CoverCatalog(t *testing.T) {
	labels := make(map[string]bool)
	for _, r := range WordRules(WordOptions{}) {
		require.Equal(t, KindWord, r.Label.Kind, "rule %s", r.Name)
		labels[r.Label.Value] = true
	}
	for _, w := range Words {
		assert.True(t, labels[w], "word %q has no rule", w)
	}
}
