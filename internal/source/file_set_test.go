package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("prog.tn", []byte("$a = 1\n"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}

	// Добавляем тот же файл с новым содержимым
	id2 := fs.Add("prog.tn", []byte("$a = 2\n"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	if got := string(fs.Get(id2).Content); got != "$a = 2\n" {
		t.Errorf("Expected second file content, got %q", got)
	}

	// старая версия всё ещё доступна
	if got := string(fs.Get(id1).Content); got != "$a = 1\n" {
		t.Errorf("Expected first file content to be kept, got %q", got)
	}
	if fs.Get(FileID(42)) != nil {
		t.Error("Expected nil for unknown FileID")
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("a.tn", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("Expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("Expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
}

func TestCRLFNormalization(t *testing.T) {
	normalized, changed := normalizeCRLF([]byte("a\r\nb\r\n"))
	if !changed {
		t.Error("Expected CRLF normalization to be detected")
	}
	if string(normalized) != "a\nb\n" {
		t.Errorf("Expected normalized content %q, got %q", "a\nb\n", string(normalized))
	}

	same, changed := normalizeCRLF([]byte("a\rb"))
	if changed || string(same) != "a\rb" {
		t.Errorf("lone \\r must be kept, got %q (changed=%v)", same, changed)
	}
}

func TestLoadStripsBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.tn")
	content := []byte{0xEF, 0xBB, 0xBF, '$', 'x', '\r', '\n'}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "$x\n" {
		t.Errorf("content = %q, want %q", file.Content, "$x\n")
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b, want BOM and CRLF set", file.Flags)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lines.tn", []byte("first\n\n$bla = (0 == (10 % $bla))\nlast"))
	file := fs.Get(id)

	tests := []struct {
		line uint32
		want string
	}{
		{0, ""},
		{1, "first"},
		{2, ""},
		{3, "$bla = (0 == (10 % $bla))"},
		{4, "last"},
		{5, ""},
	}
	for _, tt := range tests {
		if got := file.GetLine(tt.line); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
	if n := file.LineCount(); n != 4 {
		t.Errorf("LineCount = %d, want 4", n)
	}
	if lines := file.Lines(); len(lines) != 4 || lines[3] != "last" {
		t.Errorf("Lines = %q", lines)
	}
}

func TestLineCountTrailingNewline(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("t.tn", []byte("a\nb\n")))
	if n := file.LineCount(); n != 2 {
		t.Errorf("LineCount = %d, want 2", n)
	}
	empty := fs.Get(fs.AddVirtual("e.tn", nil))
	if n := empty.LineCount(); n != 0 {
		t.Errorf("LineCount(empty) = %d, want 0", n)
	}
}

func TestDisplayPath(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("testdata/golden/vm_trace/basic.tn", nil))

	if got := file.DisplayPath(false); got != "testdata/golden/vm_trace/basic.tn" {
		t.Errorf("DisplayPath(false) = %q", got)
	}
	if got := file.DisplayPath(true); got != "basic.tn" {
		t.Errorf("DisplayPath(true) = %q", got)
	}
}
