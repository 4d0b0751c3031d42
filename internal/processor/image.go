package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	// webp inputs decode through the stdlib registry
	_ "golang.org/x/image/webp"
)

func processImage(ctx context.Context, toolName string, files []File, options Options, onProgress ProgressFunc) (*Result, error) {
	switch toolName {
	case "convert-image":
		opts, err := decodeConvertImageOptions(options)
		if err != nil {
			return nil, err
		}
		return convertImage(files, opts, onProgress)

	case "compress-image":
		opts, err := decodeCompressImageOptions(options)
		if err != nil {
			return nil, err
		}
		return compressImage(files, opts, onProgress)

	case "resize-image":
		opts, err := decodeResizeImageOptions(options)
		if err != nil {
			return nil, err
		}
		return resizeImage(files, opts, onProgress)

	case "crop-image":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		opts, err := decodeCropImageOptions(options)
		if err != nil {
			return nil, err
		}
		return cropImage(f, opts, onProgress)

	case "rotate-flip-image":
		opts, err := decodeRotateFlipOptions(options)
		if err != nil {
			return nil, err
		}
		return rotateFlipImage(files, opts, onProgress)

	case "remove-exif":
		return removeEXIF(files, onProgress)

	case "watermark-image":
		opts, err := decodeImageWatermarkOptions(options)
		if err != nil {
			return nil, err
		}
		return watermarkImage(files, opts, onProgress)

	default:
		return nil, fmt.Errorf("tool %s is not available", toolName)
	}
}

// decodeImage decodes input bytes and reports the detected source format.
func decodeImage(f File) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image %s: %w", f.Name, err)
	}
	return img, format, nil
}

// encodeImage encodes into the named format with a sensible quality setting.
func encodeImage(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case "jpeg", "jpg":
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
		return buf.Bytes(), "image/jpeg", err
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
		return buf.Bytes(), "image/png", err
	case "gif":
		err = imaging.Encode(&buf, img, imaging.GIF)
		return buf.Bytes(), "image/gif", err
	case "tiff":
		err = imaging.Encode(&buf, img, imaging.TIFF)
		return buf.Bytes(), "image/tiff", err
	case "bmp":
		err = imaging.Encode(&buf, img, imaging.BMP)
		return buf.Bytes(), "image/bmp", err
	default:
		// webp and avif inputs are decodable but have no encoder here
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
		return buf.Bytes(), "image/jpeg", err
	}
}

func convertImage(files []File, opts ConvertImageOptions, onProgress ProgressFunc) (*Result, error) {
	format := opts.Format

	ext := format
	if ext == "jpeg" {
		ext = "jpg"
	}

	outputs := make([]Output, 0, len(files))
	for i, f := range files {
		img, _, err := decodeImage(f)
		if err != nil {
			return nil, err
		}

		data, mime, err := encodeImage(img, format, 90)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f.Name, err)
		}

		base := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
		outputs = append(outputs, Output{
			Name:     base + "." + ext,
			Data:     data,
			MimeType: mime,
		})

		onProgress(30 + ((i + 1) * 50 / len(files)))
	}

	return &Result{Outputs: outputs}, nil
}

func compressImage(files []File, opts CompressImageOptions, onProgress ProgressFunc) (*Result, error) {
	quality := opts.Quality

	outputs := make([]Output, 0, len(files))
	for i, f := range files {
		img, format, err := decodeImage(f)
		if err != nil {
			return nil, err
		}

		// Re-encode in the source format; anything without a native encoder
		// falls back to JPEG.
		data, mime, err := encodeImage(img, format, quality)
		if err != nil {
			return nil, fmt.Errorf("failed to compress %s: %w", f.Name, err)
		}

		outputs = append(outputs, Output{
			Name:     "compressed-" + f.Name,
			Data:     data,
			MimeType: mime,
		})

		onProgress(30 + ((i + 1) * 50 / len(files)))
	}

	return &Result{Outputs: outputs}, nil
}

func resizeImage(files []File, opts ResizeImageOptions, onProgress ProgressFunc) (*Result, error) {
	width, height, fit := opts.Width, opts.Height, opts.Fit

	outputs := make([]Output, 0, len(files))
	for i, f := range files {
		img, format, err := decodeImage(f)
		if err != nil {
			return nil, err
		}

		var resized image.Image
		switch {
		case width > 0 && height > 0 && fit == "cover":
			resized = imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
		case width > 0 && height > 0 && fit == "fill":
			resized = imaging.Resize(img, width, height, imaging.Lanczos)
		case width > 0 && height > 0:
			// inside: fit into the bounding box without enlargement
			resized = imaging.Fit(img, width, height, imaging.Lanczos)
		default:
			resized = imaging.Resize(img, width, height, imaging.Lanczos)
		}

		data, mime, err := encodeImage(resized, format, 90)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f.Name, err)
		}

		outputs = append(outputs, Output{
			Name:     "resized-" + f.Name,
			Data:     data,
			MimeType: mime,
		})

		onProgress(30 + ((i + 1) * 50 / len(files)))
	}

	return &Result{Outputs: outputs}, nil
}

func cropImage(f File, opts CropImageOptions, onProgress ProgressFunc) (*Result, error) {
	left, top, width, height := opts.Left, opts.Top, opts.Width, opts.Height

	img, format, err := decodeImage(f)
	if err != nil {
		return nil, err
	}

	onProgress(40)

	cropped := imaging.Crop(img, image.Rect(left, top, left+width, top+height))

	data, mime, err := encodeImage(cropped, format, 90)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", f.Name, err)
	}

	onProgress(80)

	return &Result{Outputs: []Output{{
		Name:     "cropped-" + f.Name,
		Data:     data,
		MimeType: mime,
	}}}, nil
}

func rotateFlipImage(files []File, opts RotateFlipOptions, onProgress ProgressFunc) (*Result, error) {
	rotation := opts.Rotation
	flipH := opts.FlipHorizontal
	flipV := opts.FlipVertical

	outputs := make([]Output, 0, len(files))
	for i, f := range files {
		img, format, err := decodeImage(f)
		if err != nil {
			return nil, err
		}

		out := img
		// imaging rotates counter-clockwise; user rotation is clockwise
		switch ((rotation % 360) + 360) % 360 {
		case 90:
			out = imaging.Rotate270(out)
		case 180:
			out = imaging.Rotate180(out)
		case 270:
			out = imaging.Rotate90(out)
		case 0:
		default:
			out = imaging.Rotate(out, float64(-rotation), color.Transparent)
		}

		if flipH {
			out = imaging.FlipH(out)
		}
		if flipV {
			out = imaging.FlipV(out)
		}

		data, mime, err := encodeImage(out, format, 90)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f.Name, err)
		}

		outputs = append(outputs, Output{
			Name:     "edited-" + f.Name,
			Data:     data,
			MimeType: mime,
		})

		onProgress(30 + ((i + 1) * 50 / len(files)))
	}

	return &Result{Outputs: outputs}, nil
}

// removeEXIF strips metadata by decoding and re-encoding the pixels.
func removeEXIF(files []File, onProgress ProgressFunc) (*Result, error) {
	outputs := make([]Output, 0, len(files))
	for i, f := range files {
		img, format, err := decodeImage(f)
		if err != nil {
			return nil, err
		}

		data, mime, err := encodeImage(img, format, 95)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f.Name, err)
		}

		outputs = append(outputs, Output{
			Name:     "no-exif-" + f.Name,
			Data:     data,
			MimeType: mime,
		})

		onProgress(30 + ((i + 1) * 50 / len(files)))
	}

	return &Result{Outputs: outputs}, nil
}

func watermarkImage(files []File, opts ImageWatermarkOptions, onProgress ProgressFunc) (*Result, error) {
	text := opts.Text

	outputs := make([]Output, 0, len(files))
	for i, f := range files {
		img, format, err := decodeImage(f)
		if err != nil {
			return nil, err
		}

		canvas := imaging.Clone(img)
		drawWatermarkText(canvas, text)

		data, mime, err := encodeImage(canvas, format, 90)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f.Name, err)
		}

		outputs = append(outputs, Output{
			Name:     "watermarked-" + f.Name,
			Data:     data,
			MimeType: mime,
		})

		onProgress(30 + ((i + 1) * 50 / len(files)))
	}

	return &Result{Outputs: outputs}, nil
}

// drawWatermarkText draws semi-transparent centered text onto the canvas.
func drawWatermarkText(canvas *image.NRGBA, text string) {
	face := basicfont.Face7x13
	bounds := canvas.Bounds()

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 128}),
		Face: face,
	}

	textWidth := d.MeasureString(text).Ceil()
	d.Dot = fixed.P(
		bounds.Min.X+(bounds.Dx()-textWidth)/2,
		bounds.Min.Y+bounds.Dy()/2,
	)
	d.DrawString(text)
}
