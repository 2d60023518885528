package stabilizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/librasio/internal/gesture"
)

func push(s Stabilizer, labels ...gesture.Label) gesture.Label {
	var out gesture.Label
	for _, l := range labels {
		out = s.Push(l)
	}
	return out
}

func repeat(l gesture.Label, n int) []gesture.Label {
	out := make([]gesture.Label, n)
	for i := range out {
		out[i] = l
	}
	return out
}

func TestMajorityWindow(t *testing.T) {
	a, b, c, d, e := gesture.Letter("A"), gesture.Letter("B"), gesture.Letter("C"), gesture.Letter("D"), gesture.Letter("E")

	t.Run("starts unknown", func(t *testing.T) {
		m := NewMajorityWindow(DefaultWindow)
		assert.True(t, m.Current().IsUnknown())
	})

	t.Run("same label W times", func(t *testing.T) {
		m := NewMajorityWindow(5)
		assert.Equal(t, a, push(m, repeat(a, 5)...))
	})

	t.Run("W distinct labels yield the first inserted", func(t *testing.T) {
		m := NewMajorityWindow(5)
		assert.Equal(t, a, push(m, a, b, c, d, e))
	})

	t.Run("tie goes to the label that reaches the top count first", func(t *testing.T) {
		m := NewMajorityWindow(4)
		// a a b b: a reaches 2 first
		assert.Equal(t, a, push(m, a, a, b, b))

		m = NewMajorityWindow(4)
		// b a a b: a reaches 2 at position 3, b only at position 4
		assert.Equal(t, a, push(m, b, a, a, b))
	})

	t.Run("majority beats recency", func(t *testing.T) {
		m := NewMajorityWindow(5)
		assert.Equal(t, b, push(m, b, a, b, c, b))
	})

	t.Run("oldest label is evicted", func(t *testing.T) {
		m := NewMajorityWindow(3)
		push(m, a, a, a)
		assert.Equal(t, a, m.Push(b))
		assert.Equal(t, b, m.Push(b))
		assert.Equal(t, 3, m.Len())
	})

	t.Run("reset", func(t *testing.T) {
		m := NewMajorityWindow(3)
		push(m, a, a)
		m.Reset()
		assert.Equal(t, 0, m.Len())
		assert.True(t, m.Current().IsUnknown())
		assert.Equal(t, b, m.Push(b))
	})
}

func TestDebounceHold(t *testing.T) {
	hi, bad := gesture.Word(gesture.WordHi), gesture.Word(gesture.WordBad)

	t.Run("N identical labels leave the display unchanged", func(t *testing.T) {
		d := NewDebounceHold(5)
		assert.True(t, push(d, repeat(hi, 5)...).IsUnknown())
	})

	t.Run("N+1 identical labels commit", func(t *testing.T) {
		d := NewDebounceHold(5)
		assert.Equal(t, hi, push(d, repeat(hi, 6)...))
	})

	t.Run("a different label restarts the run", func(t *testing.T) {
		d := NewDebounceHold(5)
		push(d, repeat(hi, 6)...)

		push(d, repeat(bad, 5)...)
		assert.Equal(t, hi, d.Current())

		push(d, hi)
		push(d, repeat(bad, 5)...)
		assert.Equal(t, hi, d.Current(), "interrupted run must not commit")

		assert.Equal(t, bad, d.Push(bad))
	})

	t.Run("unknown commits like any label", func(t *testing.T) {
		d := NewDebounceHold(2)
		push(d, repeat(hi, 3)...)
		assert.Equal(t, hi, push(d, gesture.Unknown, gesture.Unknown))
		assert.True(t, d.Push(gesture.Unknown).IsUnknown())
	})

	t.Run("zero hold commits immediately", func(t *testing.T) {
		d := NewDebounceHold(0)
		assert.Equal(t, bad, d.Push(bad))
	})

	t.Run("reset", func(t *testing.T) {
		d := NewDebounceHold(1)
		push(d, hi, hi)
		d.Reset()
		assert.True(t, d.Current().IsUnknown())
		assert.True(t, d.Push(hi).IsUnknown())
	})
}

func TestNoHandFrames(t *testing.T) {
	for _, cfg := range []Config{
		{Policy: PolicyMajority, Window: DefaultWindow},
		{Policy: PolicyDebounce, Hold: DefaultHold},
	} {
		t.Run(string(cfg.Policy), func(t *testing.T) {
			s, err := New(cfg)
			require.NoError(t, err)
			for i := 0; i < 10; i++ {
				assert.True(t, s.Push(gesture.Unknown).IsUnknown(), "frame %d", i)
			}
		})
	}
}

func TestNew(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &MajorityWindow{}, s)

	s, err = New(Config{Policy: PolicyDebounce, Hold: 3})
	require.NoError(t, err)
	assert.IsType(t, &DebounceHold{}, s)

	_, err = New(Config{Policy: "median", Window: 5})
	assert.Error(t, err)

	_, err = New(Config{Policy: PolicyMajority, Window: 0})
	assert.Error(t, err)
}

func TestStreamsDoNotShareState(t *testing.T) {
	alphabet := NewMajorityWindow(3)
	words := NewMajorityWindow(3)

	push(alphabet, repeat(gesture.Letter("L"), 3)...)
	assert.True(t, words.Current().IsUnknown())
	assert.Equal(t, 0, words.Len())
}
