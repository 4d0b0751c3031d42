package processor

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"time"
)

func processArchive(ctx context.Context, toolName string, files []File, options Options, onProgress ProgressFunc) (*Result, error) {
	switch toolName {
	case "zip-create":
		return createZip(files, onProgress)

	case "zip-extract":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		return extractZip(f, onProgress)

	case "tar-gz-create":
		return createTarGz(files, onProgress)

	default:
		return nil, fmt.Errorf("tool %s is not available", toolName)
	}
}

func createZip(files []File, onProgress ProgressFunc) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to archive")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for i, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		onProgress(30 + ((i + 1) * 40 / len(files)))
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	onProgress(80)

	return &Result{Outputs: []Output{{
		Name:     "archive.zip",
		Data:     buf.Bytes(),
		MimeType: "application/zip",
	}}}, nil
}

func extractZip(f File, onProgress ProgressFunc) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}

	onProgress(40)

	var outputs []Output
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name, err)
		}

		outputs = append(outputs, Output{
			Name:     entry.Name,
			Data:     data,
			MimeType: "application/octet-stream",
		})
	}

	if len(outputs) == 0 {
		return nil, fmt.Errorf("archive contains no files")
	}

	onProgress(80)

	// Small archives come back as individual files; larger ones are re-zipped
	// so the client downloads a single artifact.
	if len(outputs) <= 5 {
		return &Result{Outputs: outputs}, nil
	}

	rezipped, err := createZip(fileOutputs(outputs), func(int) {})
	if err != nil {
		return nil, err
	}
	rezipped.Outputs[0].Name = "extracted.zip"
	return rezipped, nil
}

func createTarGz(files []File, onProgress ProgressFunc) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to archive")
	}

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	tw := tar.NewWriter(gz)

	now := time.Now()
	for i, f := range files {
		hdr := &tar.Header{
			Name:    f.Name,
			Mode:    0644,
			Size:    int64(len(f.Data)),
			ModTime: now,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", f.Name, err)
		}
		if _, err := tw.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		onProgress(30 + ((i + 1) * 40 / len(files)))
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize tar: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize gzip: %w", err)
	}

	onProgress(80)

	return &Result{Outputs: []Output{{
		Name:     "archive.tar.gz",
		Data:     buf.Bytes(),
		MimeType: "application/gzip",
	}}}, nil
}

// fileOutputs converts outputs back into handler inputs for re-archiving.
func fileOutputs(outputs []Output) []File {
	files := make([]File, len(outputs))
	for i, o := range outputs {
		files[i] = File{Name: o.Name, Data: o.Data, MimeType: o.MimeType}
	}
	return files
}
