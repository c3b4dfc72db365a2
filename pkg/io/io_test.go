package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/adforge/pkg/creative"
)

func TestReadBrief(t *testing.T) {
	in := `{
	  "territory": {"id": "t1", "name": "Summer", "headlines": [{"headline": "Beat the heat"}]},
	  "guidelines": {"name": "Acme"},
	  "assets": [{"id": "logo", "role": "logo"}],
	  "channels": ["instagram_post"],
	  "styles": ["bold"]
	}`
	req, err := ReadBrief(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadBrief: %v", err)
	}
	if req.Territory.Name != "Summer" || len(req.Assets) != 1 || req.Channels[0] != "instagram_post" {
		t.Errorf("unexpected brief: %+v", req)
	}
	if string(req.Styles[0]) != "bold" {
		t.Errorf("style = %q", req.Styles[0])
	}
}

func TestReadBriefErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"channels": [`},
		{"unknown field", `{"channels": ["a"], "chanels": ["b"]}`},
		{"no channels", `{"territory": {"name": "x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadBrief(strings.NewReader(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestVariationsRoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := []*creative.LayoutVariation{
		{ID: "v1", Name: "One", Channel: "instagram_post", Width: 1080, Height: 1080, CreatedAt: now, UpdatedAt: now},
		{ID: "v2", Name: "Two", Channel: "a4_print", Width: 2480, Height: 3508, PerformanceScore: 81},
	}
	path := filepath.Join(t.TempDir(), "variations.json")
	if err := ExportVariations(in, path); err != nil {
		t.Fatalf("ExportVariations: %v", err)
	}
	out, err := ImportVariations(path)
	if err != nil {
		t.Fatalf("ImportVariations: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d variations, want 2", len(out))
	}
	if out[0].ID != "v1" || !out[0].CreatedAt.Equal(now) || out[1].PerformanceScore != 81 {
		t.Errorf("round trip mismatch: %+v %+v", out[0], out[1])
	}
}

func TestReadVariationsShapes(t *testing.T) {
	bare := `[{"id": "v1", "channel": "instagram_post"}]`
	generated := `{"variations": [{"id": "v1", "channel": "instagram_post"}], "requestHash": "abc", "stats": {}}`
	for _, in := range []string{bare, generated} {
		vs, err := ReadVariations(strings.NewReader(in))
		if err != nil {
			t.Fatalf("ReadVariations(%s): %v", in, err)
		}
		if len(vs) != 1 || vs[0].ID != "v1" {
			t.Errorf("unexpected variations: %+v", vs)
		}
	}

	for _, in := range []string{`[null]`, `[{"channel": "x"}]`, `[{"id": "v1"}]`, `{`} {
		if _, err := ReadVariations(strings.NewReader(in)); err == nil {
			t.Errorf("ReadVariations(%s) should fail", in)
		}
	}
}

func TestWriteVariationsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVariations(nil, &buf); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "{\n  \"variations\": []\n}" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
