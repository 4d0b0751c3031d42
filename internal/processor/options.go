package processor

import (
	"fmt"
	"strings"
)

// Typed option records, one per tool that takes configuration. The raw
// options blob is decoded and validated here, at the dispatch boundary,
// so handlers only ever see well-formed values.

type ExtractPagesOptions struct {
	Pages []int
}

func decodeExtractPagesOptions(o Options) (ExtractPagesOptions, error) {
	pages := optIntSlice(o, "pages")
	if len(pages) == 0 {
		pages = []int{1}
	}
	for _, p := range pages {
		if p < 1 {
			return ExtractPagesOptions{}, fmt.Errorf("page numbers start at 1, got %d", p)
		}
	}
	return ExtractPagesOptions{Pages: pages}, nil
}

type DeletePagesOptions struct {
	Pages []int
}

func decodeDeletePagesOptions(o Options) (DeletePagesOptions, error) {
	pages := optIntSlice(o, "pages")
	if len(pages) == 0 {
		return DeletePagesOptions{}, fmt.Errorf("no pages selected for deletion")
	}
	for _, p := range pages {
		if p < 1 {
			return DeletePagesOptions{}, fmt.Errorf("page numbers start at 1, got %d", p)
		}
	}
	return DeletePagesOptions{Pages: pages}, nil
}

type RotatePagesOptions struct {
	Rotation int
	Pages    []int // empty rotates all pages
}

func decodeRotatePagesOptions(o Options) (RotatePagesOptions, error) {
	rotation := optInt(o, "rotation", 90)
	if rotation%90 != 0 {
		return RotatePagesOptions{}, fmt.Errorf("rotation must be a multiple of 90, got %d", rotation)
	}
	return RotatePagesOptions{Rotation: rotation, Pages: optIntSlice(o, "pages")}, nil
}

type PDFWatermarkOptions struct {
	Text    string
	Opacity float64
}

func decodePDFWatermarkOptions(o Options) (PDFWatermarkOptions, error) {
	opacity := optFloat(o, "opacity", 0.3)
	if opacity <= 0 || opacity > 1 {
		return PDFWatermarkOptions{}, fmt.Errorf("opacity must be in (0, 1], got %g", opacity)
	}
	return PDFWatermarkOptions{
		Text:    optString(o, "text", "Watermark"),
		Opacity: opacity,
	}, nil
}

type ConvertImageOptions struct {
	Format string // normalized target format
}

func decodeConvertImageOptions(o Options) (ConvertImageOptions, error) {
	format := strings.ToLower(optString(o, "format", "png"))
	switch format {
	case "jpeg", "jpg", "png", "gif", "tiff", "bmp":
	case "webp", "avif":
		return ConvertImageOptions{}, fmt.Errorf("output format %s is not supported", format)
	default:
		format = "png"
	}
	return ConvertImageOptions{Format: format}, nil
}

type CompressImageOptions struct {
	Quality int
}

func decodeCompressImageOptions(o Options) (CompressImageOptions, error) {
	quality := optInt(o, "quality", 80)
	if quality < 1 || quality > 100 {
		return CompressImageOptions{}, fmt.Errorf("quality must be between 1 and 100, got %d", quality)
	}
	return CompressImageOptions{Quality: quality}, nil
}

type ResizeImageOptions struct {
	Width  int
	Height int
	Fit    string // cover, fill, inside
}

func decodeResizeImageOptions(o Options) (ResizeImageOptions, error) {
	opts := ResizeImageOptions{
		Width:  optInt(o, "width", 0),
		Height: optInt(o, "height", 0),
		Fit:    optString(o, "fit", "inside"),
	}
	if opts.Width <= 0 && opts.Height <= 0 {
		return ResizeImageOptions{}, fmt.Errorf("target width or height is required")
	}
	switch opts.Fit {
	case "cover", "fill", "inside":
	default:
		return ResizeImageOptions{}, fmt.Errorf("unknown fit mode %q", opts.Fit)
	}
	return opts, nil
}

type CropImageOptions struct {
	Left   int
	Top    int
	Width  int
	Height int
}

func decodeCropImageOptions(o Options) (CropImageOptions, error) {
	opts := CropImageOptions{
		Left:   optInt(o, "left", 0),
		Top:    optInt(o, "top", 0),
		Width:  optInt(o, "width", 0),
		Height: optInt(o, "height", 0),
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return CropImageOptions{}, fmt.Errorf("crop dimensions are required")
	}
	if opts.Left < 0 || opts.Top < 0 {
		return CropImageOptions{}, fmt.Errorf("crop origin cannot be negative")
	}
	return opts, nil
}

type RotateFlipOptions struct {
	Rotation       int // clockwise degrees
	FlipHorizontal bool
	FlipVertical   bool
}

func decodeRotateFlipOptions(o Options) (RotateFlipOptions, error) {
	return RotateFlipOptions{
		Rotation:       optInt(o, "rotation", 0),
		FlipHorizontal: optBool(o, "flipHorizontal", false),
		FlipVertical:   optBool(o, "flipVertical", false),
	}, nil
}

type ImageWatermarkOptions struct {
	Text string
}

func decodeImageWatermarkOptions(o Options) (ImageWatermarkOptions, error) {
	return ImageWatermarkOptions{Text: optString(o, "text", "Watermark")}, nil
}

type CaseConverterOptions struct {
	Case string
}

func decodeCaseConverterOptions(o Options) (CaseConverterOptions, error) {
	c := optString(o, "case", "upper")
	switch c {
	case "upper", "lower", "title", "sentence":
	default:
		return CaseConverterOptions{}, fmt.Errorf("unknown case mode %q", c)
	}
	return CaseConverterOptions{Case: c}, nil
}

type CodecModeOptions struct {
	Mode string // encode or decode
}

func decodeCodecModeOptions(o Options) (CodecModeOptions, error) {
	mode := optString(o, "mode", "encode")
	if mode != "encode" && mode != "decode" {
		return CodecModeOptions{}, fmt.Errorf("mode must be encode or decode, got %q", mode)
	}
	return CodecModeOptions{Mode: mode}, nil
}

type HashOptions struct {
	Algorithm string
}

func decodeHashOptions(o Options) (HashOptions, error) {
	algorithm := strings.ToLower(optString(o, "algorithm", "sha256"))
	switch algorithm {
	case "md5", "sha1", "sha256", "sha512":
	default:
		return HashOptions{}, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}
	return HashOptions{Algorithm: algorithm}, nil
}

type UUIDOptions struct {
	Count int
}

func decodeUUIDOptions(o Options) (UUIDOptions, error) {
	count := optInt(o, "count", 10)
	if count < 1 {
		count = 1
	}
	if count > 100 {
		count = 100
	}
	return UUIDOptions{Count: count}, nil
}

type PasswordOptions struct {
	Length    int
	Count     int
	Uppercase bool
	Lowercase bool
	Numbers   bool
	Symbols   bool
}

func decodePasswordOptions(o Options) (PasswordOptions, error) {
	length := optInt(o, "length", 16)
	if length < 1 {
		length = 16
	}
	if length > 128 {
		length = 128
	}
	count := optInt(o, "count", 10)
	if count < 1 {
		count = 1
	}
	if count > 50 {
		count = 50
	}
	return PasswordOptions{
		Length:    length,
		Count:     count,
		Uppercase: optBool(o, "uppercase", true),
		Lowercase: optBool(o, "lowercase", true),
		Numbers:   optBool(o, "numbers", true),
		Symbols:   optBool(o, "symbols", true),
	}, nil
}

type JSONFormatterOptions struct {
	Mode string // format or minify
}

func decodeJSONFormatterOptions(o Options) (JSONFormatterOptions, error) {
	mode := optString(o, "mode", "format")
	if mode != "format" && mode != "minify" {
		return JSONFormatterOptions{}, fmt.Errorf("mode must be format or minify, got %q", mode)
	}
	return JSONFormatterOptions{Mode: mode}, nil
}

type CSVJSONOptions struct {
	Direction string // csv-to-json or json-to-csv
}

func decodeCSVJSONOptions(o Options) (CSVJSONOptions, error) {
	direction := optString(o, "direction", "csv-to-json")
	if direction != "csv-to-json" && direction != "json-to-csv" {
		return CSVJSONOptions{}, fmt.Errorf("direction must be csv-to-json or json-to-csv, got %q", direction)
	}
	return CSVJSONOptions{Direction: direction}, nil
}

type QRCodeOptions struct {
	Content string
	Size    int
}

func decodeQRCodeOptions(o Options) (QRCodeOptions, error) {
	content := strings.TrimSpace(optString(o, "content", ""))
	if content == "" {
		return QRCodeOptions{}, fmt.Errorf("content for the QR code is required")
	}
	size := optInt(o, "size", 300)
	if size < 64 {
		size = 64
	}
	if size > 2048 {
		size = 2048
	}
	return QRCodeOptions{Content: content, Size: size}, nil
}

type BarcodeOptions struct {
	Content string
}

func decodeBarcodeOptions(o Options) (BarcodeOptions, error) {
	content := strings.TrimSpace(optString(o, "content", "123456789"))
	if content == "" {
		return BarcodeOptions{}, fmt.Errorf("content for the barcode is required")
	}
	return BarcodeOptions{Content: content}, nil
}

type UnixTimeOptions struct {
	Direction string // unix-to-date or date-to-unix
	UnixInput string
	DateInput string
}

func decodeUnixTimeOptions(o Options) (UnixTimeOptions, error) {
	direction := optString(o, "direction", "unix-to-date")
	if direction != "unix-to-date" && direction != "date-to-unix" {
		return UnixTimeOptions{}, fmt.Errorf("direction must be unix-to-date or date-to-unix, got %q", direction)
	}
	return UnixTimeOptions{
		Direction: direction,
		UnixInput: optString(o, "unixInput", ""),
		DateInput: optString(o, "dateInput", ""),
	}, nil
}

type FileSizeOptions struct {
	Size     string
	FromUnit string
}

func decodeFileSizeOptions(o Options) (FileSizeOptions, error) {
	unit := strings.ToLower(optString(o, "fromUnit", "bytes"))
	switch unit {
	case "bytes", "kb", "mb", "gb", "tb":
	default:
		return FileSizeOptions{}, fmt.Errorf("unknown size unit %q", unit)
	}
	return FileSizeOptions{
		Size:     optString(o, "size", "1024"),
		FromUnit: unit,
	}, nil
}
