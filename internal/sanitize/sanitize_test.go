package sanitize

import (
	"strings"
	"testing"
)

func TestHTML_StripsScripts(t *testing.T) {
	in := `<p>Sichuan pepper</p><script>alert("x")</script>`
	out := HTML(in)
	if strings.Contains(out, "<script") {
		t.Errorf("expected script to be stripped, got %q", out)
	}
	if !strings.Contains(out, "<p>Sichuan pepper</p>") {
		t.Errorf("expected safe markup to survive, got %q", out)
	}
}

func TestHTML_StripsEventHandlers(t *testing.T) {
	out := HTML(`<a href="/recipes" onclick="steal()">recipes</a>`)
	if strings.Contains(out, "onclick") {
		t.Errorf("expected event handler to be stripped, got %q", out)
	}
}

func TestHTML_KeepsIngredientTables(t *testing.T) {
	in := `<table><tr><td colspan="2">2 tbsp chili oil</td></tr></table>`
	out := HTML(in)
	if !strings.Contains(out, "<table>") || !strings.Contains(out, `colspan="2"`) {
		t.Errorf("expected table markup to survive, got %q", out)
	}
}

func TestPlain_RemovesAllMarkup(t *testing.T) {
	out := Plain(`<b>Weeknight</b> noodles`)
	if out != "Weeknight noodles" {
		t.Errorf("expected bare text, got %q", out)
	}
}

func TestEmptyInput(t *testing.T) {
	if HTML("") != "" || Plain("") != "" {
		t.Error("expected empty output for empty input")
	}
}
