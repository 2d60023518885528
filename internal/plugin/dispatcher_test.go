package plugin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/librasio/internal/app"
	"github.com/ayusman/librasio/internal/gesture"
)

var testKinds = map[app.StreamID]gesture.Kind{
	app.StreamWords:    gesture.KindWord,
	app.StreamAlphabet: gesture.KindLetter,
}

func TestDispatcher_SkipsPlaceholderAndRepeats(t *testing.T) {
	d := NewDispatcher(NewManager(t.TempDir()), NewExecutor(time.Second), testKinds,
		map[app.StreamID]string{app.StreamAlphabet: "?"}, nil)

	d.SetLabel(app.StreamWords, "...")
	d.SetLabel(app.StreamWords, "Hi")
	d.SetLabel(app.StreamWords, "Hi")
	d.SetLabel(app.StreamAlphabet, "?")
	d.SetLabel(app.StreamAlphabet, "L")

	if got := len(d.queue); got != 2 {
		t.Fatalf("queued %d requests, want 2", got)
	}
	first := <-d.queue
	if first.Stream != "words" || first.Kind != "word" || first.Label != "Hi" {
		t.Errorf("first request = %+v", first)
	}
	second := <-d.queue
	if second.Stream != "alphabet" || second.Kind != "letter" || second.Label != "L" {
		t.Errorf("second request = %+v", second)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(NewManager(t.TempDir()), NewExecutor(time.Second), testKinds, nil, nil)

	for i := 0; i < queueSize+3; i++ {
		// Alternate so no label repeats.
		if i%2 == 0 {
			d.SetLabel(app.StreamWords, "Hi")
		} else {
			d.SetLabel(app.StreamWords, "Me")
		}
	}

	if got := d.Dropped(); got != 3 {
		t.Errorf("Dropped() = %d, want 3", got)
	}
}

func TestDispatcher_RunsSubscribedPlugins(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "out.txt")
	writePlugin(t, dir, "record", `cat >> "`+out+`"
echo >> "`+out+`"
echo '{"success":true}'
`, Manifest{Streams: []string{"words"}})

	manager := NewManager(dir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	d := NewDispatcher(manager, NewExecutor(5*time.Second), testKinds, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	d.SetLabel(app.StreamAlphabet, "L")
	d.SetLabel(app.StreamWords, "Hi")

	deadline := time.Now().Add(5 * time.Second)
	for {
		data, _ := os.ReadFile(out)
		if strings.Contains(string(data), `"label":"Hi"`) {
			if strings.Contains(string(data), `"label":"L"`) {
				t.Error("plugin subscribed to words received an alphabet label")
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("plugin did not record the label, got %q", data)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
