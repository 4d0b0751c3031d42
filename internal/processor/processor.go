package processor

import (
	"context"
	"errors"
	"fmt"
)

// File is a fully materialized input handed to a category handler.
type File struct {
	Name     string
	Data     []byte
	MimeType string
}

// Output is one produced artifact.
type Output struct {
	Name     string
	Data     []byte
	MimeType string
}

// Result carries the outputs of a successful dispatch.
type Result struct {
	Outputs []Output
}

// Options is the opaque per-tool configuration blob. Values arrive from JSON,
// so numbers are float64; the typed accessors below normalize that at the
// dispatch boundary.
type Options map[string]interface{}

// ProgressFunc reports incremental progress (0-100) to the orchestrator.
type ProgressFunc func(progress int)

// Category identifies the handler family owning a set of tool names.
type Category string

const (
	CategoryPDF     Category = "pdf"
	CategoryImages  Category = "images"
	CategoryArchive Category = "archive"
	CategoryText    Category = "text"
	CategoryUnknown Category = "unknown"
)

// ErrUnrecognizedTool is returned when a tool name belongs to no category.
var ErrUnrecognizedTool = errors.New("tool unavailable")

var pdfTools = []string{
	"compress-pdf", "merge-pdf", "split-pdf", "extract-pages", "delete-pages",
	"rotate-pages", "jpg-to-pdf", "add-watermark", "remove-metadata", "images-to-pdf",
}

var imageTools = []string{
	"convert-image", "compress-image", "resize-image", "crop-image",
	"rotate-flip-image", "remove-exif", "watermark-image",
}

var archiveTools = []string{
	"zip-create", "zip-extract", "tar-gz-create",
}

var textTools = []string{
	"case-converter", "word-counter", "extract-emails", "extract-urls",
	"base64-encode-decode", "url-encode-decode", "hash-generator", "uuid-generator",
	"password-generator", "json-formatter", "csv-json-converter", "qr-code-generator",
	"barcode-generator", "unix-time-converter", "file-size-converter",
}

// Route maps a tool name to the category handler that owns it.
func Route(toolName string) Category {
	switch {
	case contains(pdfTools, toolName):
		return CategoryPDF
	case contains(imageTools, toolName):
		return CategoryImages
	case contains(archiveTools, toolName):
		return CategoryArchive
	case contains(textTools, toolName):
		return CategoryText
	default:
		return CategoryUnknown
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Dispatch routes a job to its category handler. It never panics across this
// boundary: any internal fault is recovered and converted into an error whose
// message is suitable for the job's error_message field.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - toolName: identifier of the requested operation.
//   - files: decoded input files, fully materialized in memory.
//   - options: tool-specific configuration blob.
//   - onProgress: progress side channel; handlers report monotonically.
// Returns:
//   - *Result: outputs on success.
//   - error: human-readable failure.
func Dispatch(ctx context.Context, toolName string, files []File, options Options, onProgress ProgressFunc) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("processing failed: %v", r)
		}
	}()

	if options == nil {
		options = Options{}
	}
	if onProgress == nil {
		onProgress = func(int) {}
	}

	switch Route(toolName) {
	case CategoryPDF:
		return processPDF(ctx, toolName, files, options, onProgress)
	case CategoryImages:
		return processImage(ctx, toolName, files, options, onProgress)
	case CategoryArchive:
		return processArchive(ctx, toolName, files, options, onProgress)
	case CategoryText:
		return processText(ctx, toolName, files, options, onProgress)
	default:
		return nil, ErrUnrecognizedTool
	}
}

// requireFile returns the first input or an error for tools that need one.
func requireFile(files []File) (File, error) {
	if len(files) == 0 {
		return File{}, errors.New("no input file provided")
	}
	return files[0], nil
}

// optString reads a string option with a default.
func optString(o Options, key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// optInt reads an integer option with a default. JSON numbers decode as
// float64, so both forms are accepted.
func optInt(o Options, key string, def int) int {
	switch v := o[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}

// optFloat reads a float option with a default.
func optFloat(o Options, key string, def float64) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// optBool reads a boolean option with a default.
func optBool(o Options, key string, def bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return def
}

// optIntSlice reads a list of page numbers. Accepts []interface{} of JSON
// numbers.
func optIntSlice(o Options, key string) []int {
	raw, ok := o[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			out = append(out, int(n))
		case int:
			out = append(out, n)
		}
	}
	return out
}
