package app

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ayusman/librasio/internal/gesture"
	"github.com/ayusman/librasio/internal/store"
)

// DisplaySink shows the committed label of a stream. It is called on every
// pass and must not block.
type DisplaySink interface {
	SetLabel(stream StreamID, text string)
}

// OverlaySink receives the drawing hints of every pass.
type OverlaySink interface {
	DrawOverlay(stream StreamID, o Overlay)
}

// MultiDisplay fans a label out to several sinks.
type MultiDisplay []DisplaySink

// SetLabel implements DisplaySink.
func (m MultiDisplay) SetLabel(stream StreamID, text string) {
	for _, d := range m {
		d.SetLabel(stream, text)
	}
}

// MultiOverlay fans an overlay out to several sinks.
type MultiOverlay []OverlaySink

// DrawOverlay implements OverlaySink.
func (m MultiOverlay) DrawOverlay(stream StreamID, o Overlay) {
	for _, s := range m {
		s.DrawOverlay(stream, o)
	}
}

type nopOverlay struct{}

func (nopOverlay) DrawOverlay(StreamID, Overlay) {}

// LabelBoard remembers the last label shown on each stream.
type LabelBoard struct {
	mu     sync.RWMutex
	labels map[StreamID]string
}

// NewLabelBoard creates an empty board.
func NewLabelBoard() *LabelBoard {
	return &LabelBoard{labels: make(map[StreamID]string)}
}

// SetLabel implements DisplaySink.
func (b *LabelBoard) SetLabel(stream StreamID, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.labels[stream] = text
}

// Label returns the last text shown on stream.
func (b *LabelBoard) Label(stream StreamID) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	text, ok := b.labels[stream]
	return text, ok
}

// HistorySink records committed label changes. Unknown labels and repeats
// of the last recorded text are skipped.
type HistorySink struct {
	repo    *store.LabelRepository
	kinds   map[StreamID]gesture.Kind
	unknown map[StreamID]string
	logger  *zap.Logger

	mu   sync.Mutex
	last map[StreamID]string
}

// NewHistorySink records into repo. kinds maps each stream to the label
// kind it produces; unknown holds each stream's placeholder text, which
// defaults to gesture.DefaultPlaceholder.
func NewHistorySink(repo *store.LabelRepository, kinds map[StreamID]gesture.Kind, unknown map[StreamID]string, logger *zap.Logger) *HistorySink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistorySink{
		repo:    repo,
		kinds:   kinds,
		unknown: unknown,
		logger:  logger,
		last:    make(map[StreamID]string),
	}
}

// SetLabel implements DisplaySink.
func (h *HistorySink) SetLabel(stream StreamID, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.last[stream] == text {
		return
	}
	h.last[stream] = text

	placeholder, ok := h.unknown[stream]
	if !ok {
		placeholder = gesture.DefaultPlaceholder
	}
	if text == "" || text == placeholder {
		return
	}

	kind, ok := h.kinds[stream]
	if !ok || kind == gesture.KindUnknown {
		return
	}

	err := h.repo.Record(&store.LabelEvent{
		Stream: string(stream),
		Kind:   kind.String(),
		Label:  text,
	})
	if err != nil {
		h.logger.Error("failed to record label", zap.String("stream", string(stream)), zap.Error(err))
	}
}
