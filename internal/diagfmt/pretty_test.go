package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"jasm/internal/diag"
	"jasm/internal/source"
)

const listing = "DEFINE static m()V\n    ILOAD x\nRETURN\n"

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSetWithBase("/home/user/project")
	id := fs.AddVirtual("/home/user/project/src/m.jasm", []byte(listing))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.VerBadLocal, source.At(id, 2), "local 0 is not an int").
		WithNote(source.At(id, 1), "declared here"))
	return bag, fs
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	bag, fs := sampleBag(t)

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/m.jasm:2:"},
		{"relative", PathModeRelative, "src/m.jasm:2:"},
		{"basename", PathModeBasename, "m.jasm:2:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			out := buf.String()
			if !strings.Contains(out, tt.contains) {
				t.Errorf("output does not contain %q:\n%s", tt.contains, out)
			}
			if !strings.Contains(out, "ERROR VER3005: local 0 is not an int") {
				t.Errorf("missing header:\n%s", out)
			}
		})
	}
}

func TestPrettyUnderline(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, source and underline, got:\n%s", buf.String())
	}
	if lines[1] != " 2 |     ILOAD x" {
		t.Errorf("source line = %q", lines[1])
	}
	if lines[2] != "   |     ^~~~~~~" {
		t.Errorf("underline = %q", lines[2])
	}
}

func TestPrettyContextAndNotes(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, ShowNotes: true, PathMode: PathModeBasename})
	out := buf.String()

	for _, want := range []string{" 1 | DEFINE static m()V", " 3 | RETURN", "note: m.jasm:1: declared here"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestPrettyWithoutLine(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("m.jasm", []byte(listing))
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.AsmNoDefinition, source.At(id, -1), "listing has no DEFINE"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	if got := buf.String(); got != "m.jasm: ERROR ASM2002: listing has no DEFINE\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := sampleBag(t)
	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Error("plain output contains escape codes")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Error("colored output has no escape codes")
	}
}

func TestPrettyWidth(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("m.jasm", []byte("LDC \""+strings.Repeat("x", 80)+"\"\n"))
	bag := diag.NewBag(0)
	bag.Add(diag.NewWarning(diag.DisRenamedVariable, source.At(id, 1), "long"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Width: 30})
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasSuffix(lines[1], "...") {
		t.Errorf("long line not clipped: %q", lines[1])
	}
}
