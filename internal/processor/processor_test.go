package processor

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name     string
		toolName string
		expected Category
	}{
		{name: "pdf tool", toolName: "merge-pdf", expected: CategoryPDF},
		{name: "image tool", toolName: "resize-image", expected: CategoryImages},
		{name: "archive tool", toolName: "zip-create", expected: CategoryArchive},
		{name: "text tool", toolName: "word-counter", expected: CategoryText},
		{name: "generator tool", toolName: "qr-code-generator", expected: CategoryText},
		{name: "unknown tool", toolName: "frobnicate", expected: CategoryUnknown},
		{name: "empty name", toolName: "", expected: CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Route(tt.toolName); got != tt.expected {
				t.Errorf("Route(%q) = %q, want %q", tt.toolName, got, tt.expected)
			}
		})
	}
}

func TestDispatch_UnrecognizedTool(t *testing.T) {
	_, err := Dispatch(context.Background(), "frobnicate", nil, nil, nil)
	if !errors.Is(err, ErrUnrecognizedTool) {
		t.Fatalf("expected ErrUnrecognizedTool, got %v", err)
	}
	if err.Error() != "tool unavailable" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestDispatch_NilOptionsAndProgress(t *testing.T) {
	// A tool that needs neither files nor options must work with both nil.
	res, err := Dispatch(context.Background(), "uuid-generator", nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(res.Outputs))
	}
}

func TestDispatch_MissingRequiredFile(t *testing.T) {
	_, err := Dispatch(context.Background(), "word-counter", nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestDispatch_BadInputSurfacesAsError(t *testing.T) {
	// Whatever goes wrong inside a handler must come back as an error,
	// never as a panic.
	files := []File{{Name: "x.txt", Data: []byte("hello")}}
	_, err := Dispatch(context.Background(), "resize-image", files, Options{
		"width":  "not-a-number",
		"height": -1,
	}, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	// Whatever went wrong inside, it must surface as an error string.
	if strings.TrimSpace(err.Error()) == "" {
		t.Error("expected non-empty error message")
	}
}

func TestOptionHelpers(t *testing.T) {
	o := Options{
		"str":      "hello",
		"int":      42,
		"floatInt": float64(7),
		"numStr":   "13",
		"flt":      2.5,
		"boolT":    true,
		"slice":    []interface{}{float64(1), float64(3)},
	}

	if got := optString(o, "str", "x"); got != "hello" {
		t.Errorf("optString = %q", got)
	}
	if got := optString(o, "missing", "fallback"); got != "fallback" {
		t.Errorf("optString default = %q", got)
	}
	if got := optInt(o, "int", 0); got != 42 {
		t.Errorf("optInt(int) = %d", got)
	}
	if got := optInt(o, "floatInt", 0); got != 7 {
		t.Errorf("optInt(float64) = %d", got)
	}
	if got := optInt(o, "numStr", 0); got != 13 {
		t.Errorf("optInt(string) = %d", got)
	}
	if got := optFloat(o, "flt", 0); got != 2.5 {
		t.Errorf("optFloat = %v", got)
	}
	if got := optBool(o, "boolT", false); !got {
		t.Error("optBool = false, want true")
	}
	if got := optIntSlice(o, "slice"); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("optIntSlice = %v", got)
	}
	if got := optIntSlice(o, "missing"); got != nil {
		t.Errorf("optIntSlice(missing) = %v, want nil", got)
	}
}
