package tray

import (
	"testing"

	"github.com/ayusman/librasio/internal/app"
)

func TestTray_Defaults(t *testing.T) {
	tr := New()

	if !tr.IsEnabled() {
		t.Error("expected a new tray to be enabled")
	}
	if tr.Active() != "" {
		t.Errorf("Active() = %q, want off", tr.Active())
	}
	if got := tr.LastLabel(); got != "Last: none" {
		t.Errorf("LastLabel() = %q, want Last: none", got)
	}
}

func TestTray_ShowsActiveStreamLabel(t *testing.T) {
	tr := New()
	tr.SetActive(app.StreamWords)

	tr.SetLabel(app.StreamAlphabet, "L")
	tr.SetLabel(app.StreamWords, "Hi")

	if got := tr.LastLabel(); got != "Last: Hi" {
		t.Errorf("LastLabel() = %q, want Last: Hi", got)
	}

	tr.SetActive(app.StreamAlphabet)
	if got := tr.LastLabel(); got != "Last: L" {
		t.Errorf("after switching, LastLabel() = %q, want Last: L", got)
	}
}

func TestTray_Toggle(t *testing.T) {
	tr := New()

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("expected tray to be enabled after two toggles")
	}
}

func TestTray_Select(t *testing.T) {
	tr := New()

	var selected []app.StreamID
	tr.OnSelect(func(id app.StreamID) { selected = append(selected, id) })

	tr.handleSelect(app.StreamAlphabet)
	if tr.Active() != app.StreamAlphabet {
		t.Errorf("Active() = %q, want alphabet", tr.Active())
	}

	tr.handleSelect("")
	if tr.Active() != "" {
		t.Errorf("Active() = %q, want off", tr.Active())
	}
	if len(selected) != 2 {
		t.Errorf("select callbacks = %v, want 2", selected)
	}
}

func TestTray_SetEnabledSkipsCallback(t *testing.T) {
	tr := New()
	called := false
	tr.OnToggle(func(bool) { called = true })

	tr.SetEnabled(false)

	if tr.IsEnabled() {
		t.Error("expected tray to be paused")
	}
	if called {
		t.Error("SetEnabled must not call OnToggle")
	}
}
