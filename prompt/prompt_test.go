package prompt

import (
	"strings"
	"testing"
)

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Spec{Name: "Copy-Editing", System: "edit text"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	spec, ok := r.Resolve("copy-editing")
	if !ok {
		t.Fatalf("expected spec to resolve")
	}
	if spec.Version != "v1" {
		t.Fatalf("expected default version v1, got %q", spec.Version)
	}
	if _, ok := r.Resolve("copy-editing@v2"); ok {
		t.Fatalf("unexpected resolve of missing version")
	}
}

func TestRegisterRejectsEmptySystem(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Spec{Name: "x"}); err == nil {
		t.Fatalf("expected error for empty system text")
	}
}

func TestCustomLaborIdentifier(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Spec{Name: "custom:pixel-art", System: "draw pixels"}); err != nil {
		t.Fatalf("register custom labor prompt: %v", err)
	}
	if _, ok := r.Resolve("custom:pixel-art"); !ok {
		t.Fatalf("expected custom labor prompt to resolve")
	}
}

func TestSystemForFallsBack(t *testing.T) {
	RegisterBuiltins()
	if got := SystemFor("translation"); !strings.Contains(got, "translator") {
		t.Fatalf("expected translation prompt, got %q", got)
	}
	if got := SystemFor("custom:pixel-art-unregistered"); !strings.Contains(got, "autonomous AI worker") {
		t.Fatalf("expected default fallback, got %q", got)
	}
}

func TestRenderFillsTokens(t *testing.T) {
	out, err := Render("Task: {{title}} ({{laborType}})", map[string]string{
		"title":     "Retouch batch",
		"laborType": "Studio Retouch",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Task: Retouch batch (Studio Retouch)" {
		t.Fatalf("unexpected render output: %q", out)
	}
}

func TestRenderReportsMissingTokens(t *testing.T) {
	_, err := Render("{{title}} {{budget}} {{budget}}", map[string]string{"title": "x"})
	if err == nil || !strings.Contains(err.Error(), "budget") {
		t.Fatalf("expected missing-variable error naming budget, got %v", err)
	}
	if err != nil && strings.Count(err.Error(), "budget") != 1 {
		t.Fatalf("expected budget reported once, got %v", err)
	}
}

func TestDeliveryTemplateRenders(t *testing.T) {
	out, err := Render(DeliveryTemplate, map[string]string{
		"title":        "Translate launch post",
		"laborType":    "Translation",
		"budget":       "40 credits",
		"deadline":     "2026-09-15",
		"description":  "Translate the launch announcement to French.",
		"participants": "lexi",
		"updates":      "(none yet)",
	})
	if err != nil {
		t.Fatalf("render delivery template: %v", err)
	}
	if !strings.Contains(out, "Translate launch post") || !strings.Contains(out, "lexi") {
		t.Fatalf("rendered template missing fields:\n%s", out)
	}
}
