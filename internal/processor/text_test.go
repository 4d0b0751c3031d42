package processor

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"
)

func dispatchText(t *testing.T, tool string, data string, options Options) *Result {
	t.Helper()
	var files []File
	if data != "" {
		files = []File{{Name: "input.txt", Data: []byte(data), MimeType: "text/plain"}}
	}
	res, err := Dispatch(context.Background(), tool, files, options, nil)
	if err != nil {
		t.Fatalf("Dispatch(%s) failed: %v", tool, err)
	}
	if len(res.Outputs) == 0 {
		t.Fatalf("Dispatch(%s) returned no outputs", tool)
	}
	return res
}

func TestCaseConverter(t *testing.T) {
	tests := []struct {
		name     string
		caseType string
		input    string
		expected string
	}{
		{name: "upper", caseType: "upper", input: "Hello World", expected: "HELLO WORLD"},
		{name: "lower", caseType: "lower", input: "Hello World", expected: "hello world"},
		{name: "title", caseType: "title", input: "hello WORLD again", expected: "Hello World Again"},
		{name: "sentence", caseType: "sentence", input: "hello. how ARE you? fine", expected: "Hello. How are you? Fine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := dispatchText(t, "case-converter", tt.input, Options{"case": tt.caseType})
			if got := string(res.Outputs[0].Data); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWordCounter(t *testing.T) {
	res := dispatchText(t, "word-counter", "one two three. four five!\n\nsix", nil)
	out := string(res.Outputs[0].Data)

	for _, want := range []string{"Words: 6", "Sentences: 3", "Paragraphs: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("statistics output missing %q:\n%s", want, out)
		}
	}
}

func TestExtractEmails(t *testing.T) {
	input := "contact a@example.com or b@example.org, again a@example.com"
	res := dispatchText(t, "extract-emails", input, nil)
	got := string(res.Outputs[0].Data)
	if got != "a@example.com\nb@example.org" {
		t.Errorf("unexpected extraction result: %q", got)
	}

	empty := dispatchText(t, "extract-emails", "nothing here", nil)
	if !strings.Contains(string(empty.Outputs[0].Data), "no email addresses") {
		t.Errorf("expected empty-result message, got %q", empty.Outputs[0].Data)
	}
}

func TestExtractURLs(t *testing.T) {
	input := "see https://example.com/a and http://example.org, plus https://example.com/a"
	res := dispatchText(t, "extract-urls", input, nil)
	lines := strings.Split(string(res.Outputs[0].Data), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 unique URLs, got %d: %v", len(lines), lines)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	original := "the quick brown fox"

	encoded := dispatchText(t, "base64-encode-decode", original, Options{"mode": "encode"})
	wantEncoded := base64.StdEncoding.EncodeToString([]byte(original))
	if got := string(encoded.Outputs[0].Data); got != wantEncoded {
		t.Fatalf("encode: got %q, want %q", got, wantEncoded)
	}

	decoded := dispatchText(t, "base64-encode-decode", wantEncoded, Options{"mode": "decode"})
	if got := string(decoded.Outputs[0].Data); got != original {
		t.Errorf("decode: got %q, want %q", got, original)
	}
}

func TestBase64DecodeInvalid(t *testing.T) {
	files := []File{{Name: "x.txt", Data: []byte("!!! not base64 !!!")}}
	_, err := Dispatch(context.Background(), "base64-encode-decode", files, Options{"mode": "decode"}, nil)
	if err == nil {
		t.Fatal("expected error for invalid base64 input")
	}
}

func TestURLEncodeDecode(t *testing.T) {
	res := dispatchText(t, "url-encode-decode", "a b&c", Options{"mode": "encode"})
	encoded := string(res.Outputs[0].Data)

	back := dispatchText(t, "url-encode-decode", encoded, Options{"mode": "decode"})
	if got := string(back.Outputs[0].Data); got != "a b&c" {
		t.Errorf("round trip produced %q", got)
	}
}

func TestHashGenerator(t *testing.T) {
	content := "hash me"
	res := dispatchText(t, "hash-generator", content, Options{"algorithm": "sha256"})

	sum := sha256.Sum256([]byte(content))
	wantDigest := hex.EncodeToString(sum[:])

	out := string(res.Outputs[0].Data)
	if !strings.Contains(out, wantDigest) {
		t.Errorf("output does not contain expected digest %s:\n%s", wantDigest, out)
	}
	if res.Outputs[0].Name != "input.txt.sha256.txt" {
		t.Errorf("unexpected output name %q", res.Outputs[0].Name)
	}
}

func TestHashGeneratorUnsupportedAlgorithm(t *testing.T) {
	files := []File{{Name: "x.txt", Data: []byte("data")}}
	_, err := Dispatch(context.Background(), "hash-generator", files, Options{"algorithm": "crc32"}, nil)
	if err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}

func TestUUIDGenerator(t *testing.T) {
	res := dispatchText(t, "uuid-generator", "", Options{"count": 5})
	ids := strings.Split(string(res.Outputs[0].Data), "\n")
	if len(ids) != 5 {
		t.Fatalf("expected 5 UUIDs, got %d", len(ids))
	}
	seen := make(map[string]struct{})
	for _, id := range ids {
		if len(id) != 36 {
			t.Errorf("malformed UUID %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Errorf("duplicate UUID %q", id)
		}
		seen[id] = struct{}{}
	}

	// Count is capped.
	capped := dispatchText(t, "uuid-generator", "", Options{"count": 1000})
	if n := len(strings.Split(string(capped.Outputs[0].Data), "\n")); n != 100 {
		t.Errorf("expected count capped at 100, got %d", n)
	}
}

func TestPasswordGenerator(t *testing.T) {
	res := dispatchText(t, "password-generator", "", Options{
		"length":  24,
		"count":   3,
		"symbols": false,
	})
	passwords := strings.Split(string(res.Outputs[0].Data), "\n")
	if len(passwords) != 3 {
		t.Fatalf("expected 3 passwords, got %d", len(passwords))
	}
	for _, pw := range passwords {
		if len(pw) != 24 {
			t.Errorf("password %q has length %d, want 24", pw, len(pw))
		}
		if strings.ContainsAny(pw, charsetSymbols) {
			t.Errorf("password %q contains symbols despite symbols=false", pw)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	input := `{"b":1,"a":[1,2]}`

	formatted := dispatchText(t, "json-formatter", input, nil)
	if !strings.Contains(string(formatted.Outputs[0].Data), "\n") {
		t.Error("formatted output should be indented")
	}

	minified := dispatchText(t, "json-formatter", input, Options{"mode": "minify"})
	if strings.Contains(string(minified.Outputs[0].Data), "\n") {
		t.Error("minified output should be a single line")
	}

	files := []File{{Name: "x.json", Data: []byte("{broken")}}
	if _, err := Dispatch(context.Background(), "json-formatter", files, nil, nil); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestCSVJSONConverter(t *testing.T) {
	csvInput := "name,age\nalice,30\nbob,25\n"

	res := dispatchText(t, "csv-json-converter", csvInput, Options{"direction": "csv-to-json"})

	var rows []map[string]string
	if err := json.Unmarshal(res.Outputs[0].Data, &rows); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["name"] != "alice" || rows[1]["age"] != "25" {
		t.Errorf("unexpected rows: %v", rows)
	}

	// And back again.
	back := dispatchText(t, "csv-json-converter", string(res.Outputs[0].Data), Options{"direction": "json-to-csv"})
	out := string(back.Outputs[0].Data)
	if !strings.Contains(out, "alice") || !strings.Contains(out, "bob") {
		t.Errorf("CSV output missing rows:\n%s", out)
	}
}

func TestQRCodeGenerator(t *testing.T) {
	res, err := Dispatch(context.Background(), "qr-code-generator", nil, Options{
		"content": "https://example.com",
		"size":    128,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := res.Outputs[0]
	if out.Name != "qrcode.png" || out.MimeType != "image/png" {
		t.Errorf("unexpected output metadata: %s %s", out.Name, out.MimeType)
	}
	// PNG signature.
	if len(out.Data) < 8 || string(out.Data[1:4]) != "PNG" {
		t.Error("output is not a PNG")
	}

	if _, err := Dispatch(context.Background(), "qr-code-generator", nil, Options{"content": "  "}, nil); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestBarcodeGenerator(t *testing.T) {
	res, err := Dispatch(context.Background(), "barcode-generator", nil, Options{"content": "ABC123"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(res.Outputs[0].Data)
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "ABC123") {
		t.Errorf("unexpected SVG output:\n%s", out)
	}
}

func TestUnixTimeConverter(t *testing.T) {
	res, err := Dispatch(context.Background(), "unix-time-converter", nil, Options{
		"direction": "unix-to-date",
		"unixInput": "0",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(res.Outputs[0].Data)
	if !strings.Contains(out, "1970") {
		t.Errorf("epoch conversion missing 1970:\n%s", out)
	}

	res, err = Dispatch(context.Background(), "unix-time-converter", nil, Options{
		"direction": "date-to-unix",
		"dateInput": "1970-01-02",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(res.Outputs[0].Data), "Unix timestamp (seconds): 86400") {
		t.Errorf("unexpected conversion:\n%s", res.Outputs[0].Data)
	}
}

func TestFileSizeConverter(t *testing.T) {
	res, err := Dispatch(context.Background(), "file-size-converter", nil, Options{
		"size":     "1",
		"fromUnit": "mb",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(res.Outputs[0].Data)
	if !strings.Contains(out, "Bytes: 1048576") {
		t.Errorf("unexpected conversion:\n%s", out)
	}
}
