package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

func TestTabBarActiveAndBadge(t *testing.T) {
	bar := NewTabBar([]Tab{{ID: "home", Label: "Home"}, {ID: "alerts", Label: "Alerts"}})
	bar.SetWidth(120)
	bar.SetActiveID("alerts")
	bar.SetBadge("alerts", 3)
	bar.SetActiveID("missing")

	if bar.Active != 1 {
		t.Errorf("Active = %d, want 1", bar.Active)
	}
	out := bar.View()
	if !strings.Contains(out, "Alerts") || !strings.Contains(out, "3") {
		t.Errorf("View missing label or badge: %q", out)
	}
}

func TestTabBarCollapsed(t *testing.T) {
	bar := NewTabBar([]Tab{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}})
	bar.SetWidth(20)
	bar.SetActiveID("b")
	if out := bar.View(); !strings.Contains(out, "[2/2]") {
		t.Errorf("collapsed view = %q", out)
	}
}

func TestFormFocusAndErrors(t *testing.T) {
	f := NewForm("Product",
		NewTextField("name", "Name", "", 10),
		NewNumberField("unitWeight", "Unit weight", "kg"),
	)
	if f.Focused() != 0 || !f.Fields[0].Input.Focused() {
		t.Fatal("first field should start focused")
	}

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Rice")})
	f.Next()
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1.5")})
	f.Next()

	if got := f.Field("name").Value(); got != "Rice" {
		t.Errorf("name = %q", got)
	}
	if got := f.Field("unitWeight").Float(); got != 1.5 {
		t.Errorf("unitWeight = %v", got)
	}
	if f.Focused() != 0 {
		t.Errorf("focus should wrap, got %d", f.Focused())
	}
	if f.Field("nope") != nil {
		t.Error("unknown key should return nil")
	}

	f.SetErrors(map[string]string{"name": "required"})
	if f.Fields[0].ErrMsg != "required" || f.Fields[1].ErrMsg != "" {
		t.Errorf("errors = %q, %q", f.Fields[0].ErrMsg, f.Fields[1].ErrMsg)
	}
	if !strings.Contains(f.View(), "required") {
		t.Error("form view should show the field error")
	}
}

func TestNumberField(t *testing.T) {
	f := NewNumberField("w", "Weight", "")
	if f.Input.Validate("1.5") != nil || f.Input.Validate("") != nil {
		t.Error("numbers and empty input should validate")
	}
	if f.Input.Validate("abc") == nil {
		t.Error("letters should not validate")
	}
	f.SetValue("abc")
	if f.Float() != 0 {
		t.Errorf("malformed Float = %v, want 0", f.Float())
	}
	for _, s := range []string{"NaN", "Inf", "-Inf", "+Infinity", "1e999"} {
		if f.Input.Validate(s) == nil {
			t.Errorf("%q should not validate", s)
		}
		f.SetValue(s)
		if f.Float() != 0 {
			t.Errorf("Float(%q) = %v, want 0", s, f.Float())
		}
	}

	f.SetFloat(0)
	if f.Value() != "" {
		t.Errorf("zero should render empty, got %q", f.Value())
	}
	f.SetFloat(0.25)
	if f.Value() != "0.25" {
		t.Errorf("Value = %q", f.Value())
	}
}

func TestNewTableClampsCursor(t *testing.T) {
	cols := []table.Column{{Title: "Name", Width: 10}}
	rows := []table.Row{{"a"}, {"b"}}
	tbl := NewTable(cols, rows, 10, 7, true)
	if tbl.Cursor() != 1 {
		t.Errorf("Cursor = %d, want 1", tbl.Cursor())
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
	got := Truncate("a long product name", 8)
	if len([]rune(got)) > 8 {
		t.Errorf("Truncate too long: %q", got)
	}
}

func TestDialogView(t *testing.T) {
	d := NewDialog("Confirm", `delete product "Rice"?`)
	d.SetSize(80, 20)
	out := d.View()
	if !strings.Contains(out, `delete product "Rice"?`) || !strings.Contains(out, "confirm") {
		t.Errorf("dialog view = %q", out)
	}
}

func TestStatusBarConnection(t *testing.T) {
	sb := NewStatusBar()
	sb.SetWidth(100)
	sb.ConnLabel = "connected"
	sb.Connected = true
	sb.Hints = []KeyHint{{Key: "q", Desc: "Quit"}}
	out := sb.View()
	if !strings.Contains(out, "connected") || !strings.Contains(out, "Quit") {
		t.Errorf("status bar = %q", out)
	}
}
