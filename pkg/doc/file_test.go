package doc

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestWriteReadFile(t *testing.T) {
	d := sample()
	path := filepath.Join(t.TempDir(), "outline.json")

	if err := WriteFile(d, path); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !reflect.DeepEqual(got, d) {
		t.Errorf("file round trip mismatch:\n got %+v\nwant %+v", got, d)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestReadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"roots": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("err = %v, want decode error", err)
	}
}

func TestMarshalDocumentIndented(t *testing.T) {
	data, err := MarshalDocument(Document{Roots: []Node{{ID: "a"}}})
	if err != nil {
		t.Fatalf("MarshalDocument error: %v", err)
	}
	if !bytes.Contains(data, []byte("\n  ")) {
		t.Error("output should be indented")
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		t.Error("output should end with a newline")
	}
}

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	d := sample()

	if err := Write(d, &buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if !reflect.DeepEqual(got, d) {
		t.Error("writer round trip mismatch")
	}
}
