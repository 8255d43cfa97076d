package main

import (
	"path/filepath"
	"testing"

	"jasm/internal/diagfmt"
	"jasm/internal/driver"
)

func TestSingleOutput(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name, output, want string
	}{
		{"next to listing", "", "src/add.mp"},
		{"existing dir", dir, filepath.Join(dir, "add.mp")},
		{"explicit file", "out/member.bin", "out/member.bin"},
		{"new dir", "out", filepath.Join("out", "add.mp")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := singleOutput("src/add.jasm", tt.output, driver.FormatMsgpack); got != tt.want {
				t.Fatalf("singleOutput = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBatchOutputKeepsLayout(t *testing.T) {
	got := batchOutput("src", "src/a/m.jasm", "out", driver.FormatJSON)
	if want := filepath.Join("out", "a", "m.json"); got != want {
		t.Fatalf("batchOutput = %q, want %q", got, want)
	}
	if got := batchOutput("src", "src/a/m.jasm", "", driver.FormatJSON); got != "src/a/m.json" {
		t.Fatalf("batchOutput without -o = %q", got)
	}
}

func TestReadModes(t *testing.T) {
	if m, err := readPathMode("Basename"); err != nil || m != diagfmt.PathModeBasename {
		t.Fatalf("readPathMode = %v, %v", m, err)
	}
	if _, err := readPathMode("short"); err == nil {
		t.Fatal("expected error for unknown path mode")
	}
	if m, err := readUIMode(" ON "); err != nil || m != uiModeOn {
		t.Fatalf("readUIMode = %v, %v", m, err)
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Fatal("expected error for unknown ui mode")
	}
}
