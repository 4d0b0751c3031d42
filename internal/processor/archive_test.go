package processor

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestZipCreateExtractRoundTrip(t *testing.T) {
	files := []File{
		{Name: "a.txt", Data: []byte("alpha")},
		{Name: "b.txt", Data: []byte("beta")},
	}

	created, err := Dispatch(context.Background(), "zip-create", files, nil, nil)
	if err != nil {
		t.Fatalf("zip-create failed: %v", err)
	}
	if created.Outputs[0].Name != "archive.zip" {
		t.Errorf("unexpected archive name %q", created.Outputs[0].Name)
	}

	archive := []File{{Name: "archive.zip", Data: created.Outputs[0].Data}}
	extracted, err := Dispatch(context.Background(), "zip-extract", archive, nil, nil)
	if err != nil {
		t.Fatalf("zip-extract failed: %v", err)
	}

	// Few enough entries to come back as individual files.
	if len(extracted.Outputs) != 2 {
		t.Fatalf("expected 2 extracted files, got %d", len(extracted.Outputs))
	}
	got := map[string]string{}
	for _, out := range extracted.Outputs {
		got[out.Name] = string(out.Data)
	}
	if got["a.txt"] != "alpha" || got["b.txt"] != "beta" {
		t.Errorf("unexpected extracted contents: %v", got)
	}
}

func TestZipExtractManyEntriesRezips(t *testing.T) {
	entries := map[string]string{}
	for _, name := range []string{"1.txt", "2.txt", "3.txt", "4.txt", "5.txt", "6.txt", "7.txt"} {
		entries[name] = "content of " + name
	}
	archive := []File{{Name: "many.zip", Data: buildZip(t, entries)}}

	res, err := Dispatch(context.Background(), "zip-extract", archive, nil, nil)
	if err != nil {
		t.Fatalf("zip-extract failed: %v", err)
	}
	if len(res.Outputs) != 1 || res.Outputs[0].Name != "extracted.zip" {
		t.Fatalf("expected single re-zipped output, got %v", outputNames(res))
	}

	r, err := zip.NewReader(bytes.NewReader(res.Outputs[0].Data), int64(len(res.Outputs[0].Data)))
	if err != nil {
		t.Fatalf("re-zipped output is not a valid zip: %v", err)
	}
	if len(r.File) != len(entries) {
		t.Errorf("expected %d entries, got %d", len(entries), len(r.File))
	}
}

func TestZipExtractRejectsInvalidArchive(t *testing.T) {
	archive := []File{{Name: "broken.zip", Data: []byte("not a zip")}}
	if _, err := Dispatch(context.Background(), "zip-extract", archive, nil, nil); err == nil {
		t.Fatal("expected error for invalid archive")
	}
}

func TestZipExtractRejectsEmptyArchive(t *testing.T) {
	archive := []File{{Name: "empty.zip", Data: buildZip(t, nil)}}
	if _, err := Dispatch(context.Background(), "zip-extract", archive, nil, nil); err == nil {
		t.Fatal("expected error for archive with no files")
	}
}

func TestTarGzCreate(t *testing.T) {
	files := []File{
		{Name: "a.txt", Data: []byte("alpha")},
		{Name: "b.txt", Data: []byte("beta")},
	}

	res, err := Dispatch(context.Background(), "tar-gz-create", files, nil, nil)
	if err != nil {
		t.Fatalf("tar-gz-create failed: %v", err)
	}
	out := res.Outputs[0]
	if out.Name != "archive.tar.gz" {
		t.Errorf("unexpected archive name %q", out.Name)
	}
	// Gzip magic bytes.
	if len(out.Data) < 2 || out.Data[0] != 0x1f || out.Data[1] != 0x8b {
		t.Error("output is not gzip data")
	}
}

func outputNames(res *Result) []string {
	names := make([]string, 0, len(res.Outputs))
	for _, out := range res.Outputs {
		names = append(names, out.Name)
	}
	return names
}
