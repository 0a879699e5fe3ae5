package packet

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePacket = `
name: Round 1
tossups:
  - question: "This author of Ulysses (*) wrote Dubliners."
    answer: James Joyce
  - question: "Name this element with atomic number 79."
    answer: gold
bonuses:
  - leadin: "For 10 points each, name these rivers:"
    parts:
      - question: "This river flows through Cairo."
        answer: Nile
        value: 10
      - question: "This river flows through Baghdad."
        answer: Tigris
        value: 10
`

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(samplePacket))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("expected 2 tossups, got %d", p.Len())
	}
	if p.Tossups[0].Answer != "James Joyce" {
		t.Errorf("unexpected answer %q", p.Tossups[0].Answer)
	}
	if len(p.Bonuses) != 1 || len(p.Bonuses[0].Parts) != 2 {
		t.Fatalf("unexpected bonuses %+v", p.Bonuses)
	}
	if p.Bonuses[0].Parts[1].Answer != "Tigris" {
		t.Errorf("unexpected part answer %q", p.Bonuses[0].Parts[1].Answer)
	}
}

func TestParseJSON(t *testing.T) {
	p, err := Parse(strings.NewReader(`{"tossups": [{"question": "q one", "answer": "a"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Len() != 1 || len(p.Bonuses) != 0 {
		t.Errorf("unexpected packet %+v", p)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty", input: "", wantErr: "packet is empty"},
		{name: "no tossups", input: "tossups: []\n", wantErr: "no tossups"},
		{name: "blank question", input: "tossups:\n  - question: ' '\n    answer: x\n", wantErr: "tossup 1: question is empty"},
		{name: "unknown field", input: "tossups:\n  - question: q\n    answer: a\n    points: 10\n", wantErr: "decoding packet"},
		{
			name:    "bonus without parts",
			input:   "tossups:\n  - question: q\n    answer: a\nbonuses:\n  - leadin: l\n",
			wantErr: "bonus 1: no parts",
		},
		{
			name:    "too many bonuses",
			input:   "tossups:\n  - question: q\n    answer: a\nbonuses:\n  - parts: [{question: a, answer: b}]\n  - parts: [{question: c, answer: d}]\n",
			wantErr: "2 bonuses for 1 tossups",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestWriteThenLoad(t *testing.T) {
	p, err := Parse(strings.NewReader(samplePacket))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		t.Fatalf("write: %v", err)
	}

	path := filepath.Join(t.TempDir(), "round1.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Tossups[1].Question != p.Tossups[1].Question {
		t.Errorf("expected %q, got %q", p.Tossups[1].Question, loaded.Tossups[1].Question)
	}
	if loaded.Bonuses[0].Parts[0].Value != 10 {
		t.Errorf("expected part value 10, got %d", loaded.Bonuses[0].Parts[0].Value)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidate(t *testing.T) {
	p, err := Parse(strings.NewReader(samplePacket))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := Validate(p); err != nil {
		t.Errorf("parsed packet should validate: %v", err)
	}

	p.Tossups[1].Answer = ""
	if err := Validate(p); err == nil || !strings.Contains(err.Error(), "tossup 2: answer is empty") {
		t.Errorf("expected empty answer error, got %v", err)
	}
}
