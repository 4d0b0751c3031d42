package processor

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

func processText(ctx context.Context, toolName string, files []File, options Options, onProgress ProgressFunc) (*Result, error) {
	switch toolName {
	case "case-converter":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		opts, err := decodeCaseConverterOptions(options)
		if err != nil {
			return nil, err
		}
		return caseConverter(f, opts, onProgress)

	case "word-counter":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		return wordCounter(f, onProgress)

	case "extract-emails":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		return extractPattern(f, emailRegex, "emails.txt", "no email addresses found", onProgress)

	case "extract-urls":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		return extractPattern(f, urlRegex, "urls.txt", "no URLs found", onProgress)

	case "base64-encode-decode":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		opts, err := decodeCodecModeOptions(options)
		if err != nil {
			return nil, err
		}
		return base64EncodeDecode(f, opts, onProgress)

	case "url-encode-decode":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		opts, err := decodeCodecModeOptions(options)
		if err != nil {
			return nil, err
		}
		return urlEncodeDecode(f, opts, onProgress)

	case "hash-generator":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		opts, err := decodeHashOptions(options)
		if err != nil {
			return nil, err
		}
		return hashGenerator(f, opts, onProgress)

	case "uuid-generator":
		opts, err := decodeUUIDOptions(options)
		if err != nil {
			return nil, err
		}
		return uuidGenerator(opts, onProgress)

	case "password-generator":
		opts, err := decodePasswordOptions(options)
		if err != nil {
			return nil, err
		}
		return passwordGenerator(opts, onProgress)

	case "json-formatter":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		opts, err := decodeJSONFormatterOptions(options)
		if err != nil {
			return nil, err
		}
		return jsonFormatter(f, opts, onProgress)

	case "csv-json-converter":
		f, err := requireFile(files)
		if err != nil {
			return nil, err
		}
		opts, err := decodeCSVJSONOptions(options)
		if err != nil {
			return nil, err
		}
		return csvJSONConverter(f, opts, onProgress)

	case "qr-code-generator":
		opts, err := decodeQRCodeOptions(options)
		if err != nil {
			return nil, err
		}
		return qrCodeGenerator(opts, onProgress)

	case "barcode-generator":
		opts, err := decodeBarcodeOptions(options)
		if err != nil {
			return nil, err
		}
		return barcodeGenerator(opts, onProgress)

	case "unix-time-converter":
		opts, err := decodeUnixTimeOptions(options)
		if err != nil {
			return nil, err
		}
		return unixTimeConverter(opts, onProgress)

	case "file-size-converter":
		opts, err := decodeFileSizeOptions(options)
		if err != nil {
			return nil, err
		}
		return fileSizeConverter(opts, onProgress)

	default:
		return nil, fmt.Errorf("tool %s is not available", toolName)
	}
}

func textOutput(name, content string) *Result {
	return &Result{Outputs: []Output{{
		Name:     name,
		Data:     []byte(content),
		MimeType: "text/plain",
	}}}
}

func caseConverter(f File, opts CaseConverterOptions, onProgress ProgressFunc) (*Result, error) {
	text := string(f.Data)

	onProgress(50)

	var result string
	switch opts.Case {
	case "upper":
		result = strings.ToUpper(text)
	case "lower":
		result = strings.ToLower(text)
	case "title":
		result = titleCase(text)
	case "sentence":
		result = sentenceCase(text)
	default:
		result = text
	}

	return textOutput("converted.txt", result), nil
}

// titleCase uppercases the first letter of every word.
func titleCase(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	prevLetter := false
	for _, r := range text {
		isLetter := unicode.IsLetter(r) || unicode.IsDigit(r)
		switch {
		case isLetter && !prevLetter:
			b.WriteRune(unicode.ToUpper(r))
		case isLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}

// sentenceCase lowercases everything, then capitalizes sentence starts.
func sentenceCase(text string) string {
	runes := []rune(strings.ToLower(text))
	capitalize := true
	for i, r := range runes {
		if capitalize && unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			capitalize = false
		}
		if r == '.' || r == '!' || r == '?' {
			capitalize = true
		}
	}
	return string(runes)
}

func wordCounter(f File, onProgress ProgressFunc) (*Result, error) {
	text := string(f.Data)

	onProgress(50)

	words := strings.Fields(text)
	characters := len([]rune(text))
	noSpaces := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			noSpaces++
		}
	}

	sentences := 0
	for _, part := range regexp.MustCompile(`[.!?]+`).Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			sentences++
		}
	}

	paragraphs := 0
	for _, part := range regexp.MustCompile(`\n\n+`).Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			paragraphs++
		}
	}

	lines := strings.Count(text, "\n") + 1

	output := fmt.Sprintf(`Text statistics
----------------------
Words: %d
Characters: %d
Characters (no spaces): %d
Sentences: %d
Paragraphs: %d
Lines: %d`,
		len(words), characters, noSpaces, sentences, paragraphs, lines)

	return textOutput("statistics.txt", output), nil
}

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	urlRegex   = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)
)

// extractPattern finds unique matches preserving first-seen order.
func extractPattern(f File, re *regexp.Regexp, outputName, emptyMessage string, onProgress ProgressFunc) (*Result, error) {
	text := string(f.Data)

	onProgress(50)

	seen := make(map[string]struct{})
	var matches []string
	for _, m := range re.FindAllString(text, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		matches = append(matches, m)
	}

	result := emptyMessage
	if len(matches) > 0 {
		result = strings.Join(matches, "\n")
	}

	return textOutput(outputName, result), nil
}

func base64EncodeDecode(f File, opts CodecModeOptions, onProgress ProgressFunc) (*Result, error) {
	onProgress(50)

	if opts.Mode == "encode" {
		encoded := base64.StdEncoding.EncodeToString(f.Data)
		return textOutput("encoded.txt", encoded), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(f.Data)))
	if err != nil {
		return nil, fmt.Errorf("input is not valid base64: %w", err)
	}

	return &Result{Outputs: []Output{{
		Name:     "decoded.bin",
		Data:     decoded,
		MimeType: "application/octet-stream",
	}}}, nil
}

func urlEncodeDecode(f File, opts CodecModeOptions, onProgress ProgressFunc) (*Result, error) {
	text := string(f.Data)

	onProgress(50)

	if opts.Mode == "encode" {
		return textOutput("url-encoded.txt", url.QueryEscape(text)), nil
	}

	decoded, err := url.QueryUnescape(text)
	if err != nil {
		return nil, fmt.Errorf("input is not valid URL encoding: %w", err)
	}
	return textOutput("url-decoded.txt", decoded), nil
}

func hashGenerator(f File, opts HashOptions, onProgress ProgressFunc) (*Result, error) {
	algorithm := opts.Algorithm

	var h hash.Hash
	switch algorithm {
	case "md5":
		h = md5.New()
	case "sha1":
		h = sha1.New()
	case "sha256":
		h = sha256.New()
	case "sha512":
		h = sha512.New()
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}

	onProgress(50)

	h.Write(f.Data)
	digest := hex.EncodeToString(h.Sum(nil))

	result := fmt.Sprintf("File: %s\nAlgorithm: %s\nDigest: %s",
		f.Name, strings.ToUpper(algorithm), digest)

	return textOutput(fmt.Sprintf("%s.%s.txt", f.Name, algorithm), result), nil
}

func uuidGenerator(opts UUIDOptions, onProgress ProgressFunc) (*Result, error) {
	onProgress(50)

	ids := make([]string, opts.Count)
	for i := range ids {
		ids[i] = uuid.New().String()
	}

	return textOutput("uuids.txt", strings.Join(ids, "\n")), nil
}

const (
	charsetUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	charsetLower   = "abcdefghijklmnopqrstuvwxyz"
	charsetDigits  = "0123456789"
	charsetSymbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

func passwordGenerator(opts PasswordOptions, onProgress ProgressFunc) (*Result, error) {
	length := opts.Length
	count := opts.Count

	charset := ""
	if opts.Uppercase {
		charset += charsetUpper
	}
	if opts.Lowercase {
		charset += charsetLower
	}
	if opts.Numbers {
		charset += charsetDigits
	}
	if opts.Symbols {
		charset += charsetSymbols
	}
	if charset == "" {
		charset = charsetUpper + charsetLower + charsetDigits
	}

	onProgress(50)

	passwords := make([]string, count)
	for i := range passwords {
		randomBytes := make([]byte, length)
		if _, err := rand.Read(randomBytes); err != nil {
			return nil, fmt.Errorf("failed to generate random bytes: %w", err)
		}
		pw := make([]byte, length)
		for j, b := range randomBytes {
			pw[j] = charset[int(b)%len(charset)]
		}
		passwords[i] = string(pw)
	}

	return textOutput("passwords.txt", strings.Join(passwords, "\n")), nil
}

func jsonFormatter(f File, opts JSONFormatterOptions, onProgress ProgressFunc) (*Result, error) {
	onProgress(40)

	var parsed interface{}
	if err := json.Unmarshal(f.Data, &parsed); err != nil {
		return nil, fmt.Errorf("input is not valid JSON")
	}

	var data []byte
	var name string
	var err error

	if opts.Mode == "minify" {
		data, err = json.Marshal(parsed)
		name = "minified.json"
	} else {
		data, err = json.MarshalIndent(parsed, "", "  ")
		name = "formatted.json"
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render JSON: %w", err)
	}

	return &Result{Outputs: []Output{{
		Name:     name,
		Data:     data,
		MimeType: "application/json",
	}}}, nil
}

func csvJSONConverter(f File, opts CSVJSONOptions, onProgress ProgressFunc) (*Result, error) {
	onProgress(50)

	if opts.Direction == "csv-to-json" {
		return csvToJSON(f)
	}
	return jsonToCSV(f)
}

func csvToJSON(f File) (*Result, error) {
	r := csv.NewReader(strings.NewReader(string(f.Data)))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("input is not valid CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV input is empty")
	}

	headers := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render JSON: %w", err)
	}

	return &Result{Outputs: []Output{{
		Name:     "data.json",
		Data:     data,
		MimeType: "application/json",
	}}}, nil
}

func jsonToCSV(f File) (*Result, error) {
	var rows []map[string]interface{}
	if err := json.Unmarshal(f.Data, &rows); err != nil {
		return nil, fmt.Errorf("input must be a JSON array of objects")
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("JSON input is empty")
	}

	// Headers in first-object key order are not stable in Go maps; sort for
	// deterministic output.
	headerSet := make(map[string]struct{})
	var headers []string
	for _, row := range rows {
		for k := range row {
			if _, ok := headerSet[k]; !ok {
				headerSet[k] = struct{}{}
				headers = append(headers, k)
			}
		}
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to render CSV: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(headers))
		for i, h := range headers {
			if v, ok := row[h]; ok && v != nil {
				record[i] = fmt.Sprintf("%v", v)
			}
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to render CSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to render CSV: %w", err)
	}

	return &Result{Outputs: []Output{{
		Name:     "data.csv",
		Data:     []byte(buf.String()),
		MimeType: "text/csv",
	}}}, nil
}

func qrCodeGenerator(opts QRCodeOptions, onProgress ProgressFunc) (*Result, error) {
	onProgress(50)

	data, err := qrcode.Encode(opts.Content, qrcode.Medium, opts.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	return &Result{Outputs: []Output{{
		Name:     "qrcode.png",
		Data:     data,
		MimeType: "image/png",
	}}}, nil
}

func barcodeGenerator(opts BarcodeOptions, onProgress ProgressFunc) (*Result, error) {
	content := opts.Content

	onProgress(50)

	// Visual bar pattern derived from character bits; not a scannable
	// symbology.
	var bars strings.Builder
	const barWidth = 2
	x := 20

	for _, r := range content {
		pattern := fmt.Sprintf("%08b", r&0xff)
		for _, bit := range pattern {
			if bit == '1' {
				fmt.Fprintf(&bars, `<rect x="%d" y="20" width="%d" height="80" fill="black"/>`+"\n  ", x, barWidth)
			}
			x += barWidth
		}
		x += barWidth
	}

	totalWidth := x + 20
	svg := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="120" xmlns="http://www.w3.org/2000/svg">
  <rect width="100%%" height="100%%" fill="white"/>
  %s<text x="%d" y="115" text-anchor="middle" font-family="monospace" font-size="12">%s</text>
</svg>`, totalWidth, bars.String(), totalWidth/2, content)

	return &Result{Outputs: []Output{{
		Name:     "barcode.svg",
		Data:     []byte(svg),
		MimeType: "image/svg+xml",
	}}}, nil
}

func unixTimeConverter(opts UnixTimeOptions, onProgress ProgressFunc) (*Result, error) {
	onProgress(50)

	var result string

	if opts.Direction == "unix-to-date" {
		input := opts.UnixInput
		if input == "" {
			input = strconv.FormatInt(time.Now().Unix(), 10)
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("timestamp must be a whole number")
		}

		t := time.Unix(ts, 0)
		result = fmt.Sprintf(`Unix timestamp: %d
----------------------
Local: %s
UTC: %s
ISO 8601: %s

Year: %d
Month: %d
Day: %d
Hour: %d
Minute: %d
Second: %d`,
			ts,
			t.Format(time.RFC1123),
			t.UTC().Format(time.RFC1123),
			t.UTC().Format(time.RFC3339),
			t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		input := opts.DateInput
		var t time.Time
		if input == "" {
			t = time.Now()
		} else {
			var err error
			t, err = time.Parse(time.RFC3339, input)
			if err != nil {
				t, err = time.Parse("2006-01-02", input)
			}
			if err != nil {
				return nil, fmt.Errorf("date must be RFC3339 or YYYY-MM-DD")
			}
		}

		result = fmt.Sprintf(`Date: %s
----------------------
Unix timestamp (seconds): %d
Unix timestamp (milliseconds): %d
ISO 8601: %s`,
			t.Format(time.RFC1123),
			t.Unix(),
			t.UnixMilli(),
			t.UTC().Format(time.RFC3339))
	}

	return textOutput("timestamp.txt", result), nil
}

func fileSizeConverter(opts FileSizeOptions, onProgress ProgressFunc) (*Result, error) {
	fromUnit := opts.FromUnit

	onProgress(50)

	size, err := strconv.ParseFloat(strings.TrimSpace(opts.Size), 64)
	if err != nil {
		return nil, fmt.Errorf("size must be a number")
	}

	var bytes float64
	switch fromUnit {
	case "kb":
		bytes = size * 1024
	case "mb":
		bytes = size * 1024 * 1024
	case "gb":
		bytes = size * 1024 * 1024 * 1024
	case "tb":
		bytes = size * 1024 * 1024 * 1024 * 1024
	default:
		bytes = size
	}

	result := fmt.Sprintf(`Input: %g %s
----------------------
Binary:
Bytes: %.0f
KB: %.2f
MB: %.2f
GB: %.4f
TB: %.6f

Decimal (SI):
kB: %.2f
MB: %.2f
GB: %.4f`,
		size, strings.ToUpper(fromUnit),
		bytes,
		bytes/1024,
		bytes/(1024*1024),
		bytes/(1024*1024*1024),
		bytes/(1024*1024*1024*1024),
		bytes/1000,
		bytes/1e6,
		bytes/1e9)

	return textOutput("size-conversion.txt", result), nil
}
