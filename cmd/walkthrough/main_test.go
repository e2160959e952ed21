package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/koscakluka/ema-walkthrough/core/page"
)

const testScript = `title: Sign up
steps:
  - text: Welcome to the sign up page
    focusTarget: intro
  - text: Say your name
    focusTarget: name
    action:
      kind: collect
      fieldRef: name
  - text: Say submit when you are ready
    focusTarget: submit
    action:
      kind: invoke
      targetPhrase: submit
      controlRef: submit
elements:
  - id: intro
    kind: block
    label: Introduction
  - id: name
    kind: field
    label: Name
  - id: submit
    kind: control
    label: Submit
`

func TestCheckCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signup.yaml")
	if err := os.WriteFile(path, []byte(testScript), 0o600); err != nil {
		t.Fatalf("expected script to be written, got %v", err)
	}

	var out bytes.Buffer
	cmd := checkCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected script to be valid, got %v", err)
	}

	for _, want := range []string{"Sign up", "1. narrate", "2. fill name", `3. say "submit" to click submit`, "3 steps"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected output to contain %q, got %q", want, out.String())
		}
	}
}

func TestCheckCommandRejectsInvalidScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("steps: []\n"), 0o600); err != nil {
		t.Fatalf("expected script to be written, got %v", err)
	}

	cmd := checkCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an empty script to be rejected")
	}
}

func TestSchemaCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := schemaCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected schema to be printed, got %v", err)
	}
	if !strings.Contains(out.String(), `"steps"`) {
		t.Fatalf("expected schema to describe steps, got %q", out.String())
	}
}

func TestRenderElement(t *testing.T) {
	field := renderElement(page.Element{ID: "name", Label: "Name", Value: "Ada", IsField: true, Focused: true})
	if !strings.Contains(field, "Name: [Ada] ◂") {
		t.Fatalf("expected focused field, got %q", field)
	}

	control := renderElement(page.Element{ID: "submit", IsControl: true})
	if !strings.Contains(control, "(submit)") {
		t.Fatalf("expected control to fall back to its id, got %q", control)
	}
}
