package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var pdfConfOnce sync.Once

// pdfConf returns a relaxed pdfcpu configuration. The config dir is disabled
// so nothing is written outside the process.
func pdfConf() *model.Configuration {
	pdfConfOnce.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func processPDF(ctx context.Context, toolName string, files []File, options Options, onProgress ProgressFunc) (*Result, error) {
	switch toolName {
	case "merge-pdf":
		return mergePDF(files, onProgress)

	case "split-pdf":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		return splitPDF(f, onProgress)

	case "extract-pages":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		opts, err := decodeExtractPagesOptions(options)
		if err != nil {
			return nil, err
		}
		return extractPages(f, opts, onProgress)

	case "delete-pages":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		opts, err := decodeDeletePagesOptions(options)
		if err != nil {
			return nil, err
		}
		return deletePages(f, opts, onProgress)

	case "rotate-pages":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		opts, err := decodeRotatePagesOptions(options)
		if err != nil {
			return nil, err
		}
		return rotatePages(f, opts, onProgress)

	case "compress-pdf":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		return rewritePDF(f, "compressed.pdf", onProgress)

	case "add-watermark":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		opts, err := decodePDFWatermarkOptions(options)
		if err != nil {
			return nil, err
		}
		return watermarkPDF(f, opts, onProgress)

	case "remove-metadata":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		return rewritePDF(f, "no-metadata.pdf", onProgress)

	case "jpg-to-pdf", "images-to-pdf":
		return imagesToPDF(files, onProgress)

	default:
		return nil, fmt.Errorf("tool %s is not available", toolName)
	}
}

func mergePDF(files []File, onProgress ProgressFunc) (*Result, error) {
	if len(files) < 2 {
		return nil, fmt.Errorf("merging requires at least two PDF files")
	}

	readers := make([]io.ReadSeeker, len(files))
	for i, f := range files {
		readers[i] = bytes.NewReader(f.Data)
	}

	onProgress(40)

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, pdfConf()); err != nil {
		return nil, fmt.Errorf("failed to merge PDF files: %w", err)
	}

	onProgress(80)

	return &Result{Outputs: []Output{{
		Name:     "merged.pdf",
		Data:     buf.Bytes(),
		MimeType: "application/pdf",
	}}}, nil
}

func splitPDF(f File, onProgress ProgressFunc) (*Result, error) {
	count, err := api.PageCount(bytes.NewReader(f.Data), pdfConf())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	outputs := make([]Output, 0, count)
	for i := 1; i <= count; i++ {
		var buf bytes.Buffer
		sel := []string{fmt.Sprintf("%d", i)}
		if err := api.Trim(bytes.NewReader(f.Data), &buf, sel, pdfConf()); err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		outputs = append(outputs, Output{
			Name:     fmt.Sprintf("page-%d.pdf", i),
			Data:     buf.Bytes(),
			MimeType: "application/pdf",
		})
		onProgress(30 + (i*50)/count)
	}

	return &Result{Outputs: outputs}, nil
}

func extractPages(f File, opts ExtractPagesOptions, onProgress ProgressFunc) (*Result, error) {
	var buf bytes.Buffer
	if err := api.Trim(bytes.NewReader(f.Data), &buf, pageSelection(opts.Pages), pdfConf()); err != nil {
		return nil, fmt.Errorf("failed to extract pages: %w", err)
	}

	onProgress(70)

	return &Result{Outputs: []Output{{
		Name:     "extracted.pdf",
		Data:     buf.Bytes(),
		MimeType: "application/pdf",
	}}}, nil
}

func deletePages(f File, opts DeletePagesOptions, onProgress ProgressFunc) (*Result, error) {
	var buf bytes.Buffer
	if err := api.RemovePages(bytes.NewReader(f.Data), &buf, pageSelection(opts.Pages), pdfConf()); err != nil {
		return nil, fmt.Errorf("failed to delete pages: %w", err)
	}

	onProgress(70)

	return &Result{Outputs: []Output{{
		Name:     "modified.pdf",
		Data:     buf.Bytes(),
		MimeType: "application/pdf",
	}}}, nil
}

func rotatePages(f File, opts RotatePagesOptions, onProgress ProgressFunc) (*Result, error) {
	// nil selection rotates all pages
	var sel []string
	if len(opts.Pages) > 0 {
		sel = pageSelection(opts.Pages)
	}

	var buf bytes.Buffer
	if err := api.Rotate(bytes.NewReader(f.Data), &buf, opts.Rotation, sel, pdfConf()); err != nil {
		return nil, fmt.Errorf("failed to rotate pages: %w", err)
	}

	onProgress(70)

	return &Result{Outputs: []Output{{
		Name:     "rotated.pdf",
		Data:     buf.Bytes(),
		MimeType: "application/pdf",
	}}}, nil
}

// rewritePDF optimizes the document, which rewrites its object streams and
// drops orphaned metadata. Backs both compress-pdf and remove-metadata.
func rewritePDF(f File, outputName string, onProgress ProgressFunc) (*Result, error) {
	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(f.Data), &buf, pdfConf()); err != nil {
		return nil, fmt.Errorf("failed to rewrite PDF: %w", err)
	}

	onProgress(70)

	return &Result{Outputs: []Output{{
		Name:     outputName,
		Data:     buf.Bytes(),
		MimeType: "application/pdf",
	}}}, nil
}

func watermarkPDF(f File, opts PDFWatermarkOptions, onProgress ProgressFunc) (*Result, error) {
	desc := fmt.Sprintf("font:Helvetica, scale:0.6, rot:45, op:%.2f", opts.Opacity)
	wm, err := api.TextWatermark(opts.Text, desc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("invalid watermark settings: %w", err)
	}

	onProgress(40)

	var buf bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(f.Data), &buf, nil, wm, pdfConf()); err != nil {
		return nil, fmt.Errorf("failed to add watermark: %w", err)
	}

	onProgress(80)

	return &Result{Outputs: []Output{{
		Name:     "watermarked.pdf",
		Data:     buf.Bytes(),
		MimeType: "application/pdf",
	}}}, nil
}

func imagesToPDF(files []File, onProgress ProgressFunc) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no images provided")
	}

	readers := make([]io.Reader, len(files))
	for i, f := range files {
		readers[i] = bytes.NewReader(f.Data)
	}

	onProgress(40)

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, readers, nil, pdfConf()); err != nil {
		return nil, fmt.Errorf("failed to convert images to PDF: %w", err)
	}

	onProgress(80)

	return &Result{Outputs: []Output{{
		Name:     "images.pdf",
		Data:     buf.Bytes(),
		MimeType: "application/pdf",
	}}}, nil
}

// pageSelection renders 1-based page numbers into pdfcpu's selection syntax.
func pageSelection(pages []int) []string {
	sel := make([]string, len(pages))
	for i, p := range pages {
		sel[i] = fmt.Sprintf("%d", p)
	}
	return sel
}
