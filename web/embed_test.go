package web

import (
	"net/http"
	"strings"
	"testing"

	"svw.info/sudokucoach/internal/domain"
)

func TestRenderIndexSelectsVariant(t *testing.T) {
	tmpl, err := Templates()
	if err != nil {
		t.Fatalf("Templates() returned error: %v", err)
	}
	var b strings.Builder
	if err := RenderIndex(tmpl, &b, NewIndex(domain.Mega16)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, `<option value="mega16" selected>`) {
		t.Fatalf("mega16 should be preselected:\n%s", out)
	}
	for _, want := range []string{`value="mini4"`, `value="classic9"`, `value="expert"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s", want)
		}
	}
}

func TestStaticFSServesAssets(t *testing.T) {
	for _, name := range []string{"/app.css", "/app.js"} {
		f, err := StaticFS().Open(name)
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		f.Close()
	}
	if _, err := StaticFS().Open("/missing.css"); err == nil {
		t.Fatalf("missing asset should not open")
	}
	var _ http.FileSystem = StaticFS()
}
