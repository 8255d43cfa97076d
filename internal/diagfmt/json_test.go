package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"jasm/internal/ast"
	"jasm/internal/diag"
	"jasm/internal/opcode"
	"jasm/internal/source"
)

func TestJSONOutput(t *testing.T) {
	bag, fs := sampleBag(t)
	bag.Add(diag.NewWarning(diag.DisSplitVariable, source.At(0, 3), "slot 1 holds a and b"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d, items = %d", out.Count, len(out.Diagnostics))
	}
	first := out.Diagnostics[0]
	if first.Severity != "ERROR" || first.Code != "VER3005" || first.Location.File != "m.jasm" || first.Location.Line != 2 {
		t.Errorf("first = %+v", first)
	}
	if first.Title != diag.VerBadLocal.Title() {
		t.Errorf("title = %q", first.Title)
	}
	if len(first.Notes) != 1 || first.Notes[0].Location.Line != 1 {
		t.Errorf("notes = %+v", first.Notes)
	}
	if second := out.Diagnostics[1]; second.Severity != "WARNING" || second.Code != "DIS5001" {
		t.Errorf("second = %+v", second)
	}
}

func TestJSONMaxAndNotes(t *testing.T) {
	bag, fs := sampleBag(t)
	bag.Add(diag.NewError(diag.AsmEmptyBody, source.At(0, 1), "empty"))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 {
		t.Fatalf("count = %d, want 1", out.Count)
	}
	if out.Diagnostics[0].Notes != nil {
		t.Error("notes must be omitted unless requested")
	}
}

func TestFileLevelLocationOmitsLine(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("m.jasm", nil)
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.AsmNoDefinition, source.At(id, -1), "listing has no DEFINE"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `"line"`) {
		t.Errorf("file level diagnostic carries a line:\n%s", buf.String())
	}
}

func TestASTOutput(t *testing.T) {
	root := &ast.Root{}
	root.Add(&ast.Label{Pos: ast.At(1), Name: "A"})
	root.Add(&ast.Instruction{Pos: ast.At(2), Op: opcode.Return})

	nodes := BuildASTJSON(root)
	if len(nodes) != 2 {
		t.Fatalf("nodes = %d", len(nodes))
	}
	if nodes[0].Kind != "label" || nodes[0].Text != "A:" || nodes[1].Kind != "instruction" {
		t.Errorf("nodes = %+v", nodes)
	}

	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, root); err != nil {
		t.Fatal(err)
	}
	if want := "   1 | A:\n   2 | RETURN\n"; buf.String() != want {
		t.Errorf("pretty = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := FormatASTJSON(&buf, root); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"kind": "instruction"`) {
		t.Errorf("json:\n%s", buf.String())
	}
}
