package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"config error", ConfigBadDuration, "Invalid duration", CategoryConfig},
		{"server error", ServerListenFailed, "Failed to listen", CategoryServer},
		{"cli error", UnknownPayloadMode, "Unknown payload mode", CategoryCLI},
		{"protocol error", EncodeFailed, "Payload encoding failed", CategoryProtocol},
		{"unknown error code", "E999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ConfigInvalidValue), "E103: Invalid config value"},
		{"field", New(ConfigBadDuration).WithField("pollTimeout"), "E102: pollTimeout: Invalid duration"},
		{"wrapped", New(ConfigNotFound).Wrap(fs.ErrNotExist), "E100: Config file not found: file does not exist"},
		{"no code", Newf(CategoryCLI, "bad %s", "flag"), "bad flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrapAndIs(t *testing.T) {
	err := New(ConfigNotFound).Wrap(fs.ErrNotExist)

	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should reach the wrapped error")
	}
	if !stderrors.Is(err, New(ConfigNotFound)) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New(ConfigInvalidJSON)) {
		t.Error("errors.Is matched a different code")
	}
	if stderrors.Is(Newf(CategoryCLI, "x"), Newf(CategoryCLI, "x")) {
		t.Error("uncoded errors should not match each other")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, EncodeFailed) != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New(ConfigInvalidValue)
	if FromError(orig, EncodeFailed) != orig {
		t.Error("FromError should return an *Error unchanged")
	}

	wrapped := FromError(fs.ErrClosed, EncodeFailed)
	if wrapped.Code != EncodeFailed || wrapped.Wrapped != fs.ErrClosed {
		t.Errorf("FromError() = %#v", wrapped)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer func() { colorEnabled = true }()

	err := New(ConfigBadDuration).
		WithField("pollTimeout").
		WithSuggestion(`Use a value like "30s"`).
		WithExample(`"pollTimeout": "30s"`).
		Wrap(stderrors.New("time: invalid duration \"soon\""))

	out := err.Format()
	for _, want := range []string{
		"ERROR E102: pollTimeout: Invalid duration",
		"Go duration strings",
		"Cause: time: invalid duration",
		`Hint: Use a value like "30s"`,
		"Example:\n    \"pollTimeout\": \"30s\"",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	err := New(UnknownPayloadMode).WithField("mode").Wrap(stderrors.New("v9"))

	var got map[string]string
	if e := json.Unmarshal([]byte(err.FormatJSON()), &got); e != nil {
		t.Fatalf("FormatJSON() is not JSON: %v", e)
	}
	if got["code"] != "E202" || got["field"] != "mode" || got["cause"] != "v9" || got["category"] != "cli" {
		t.Errorf("FormatJSON() = %v", got)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer func() { colorEnabled = true }()

	var buf bytes.Buffer
	Fprint(&buf, New(ServerListenFailed))
	if !strings.Contains(buf.String(), "ERROR E200: Failed to listen") {
		t.Errorf("Fprint(*Error) = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("Fprint(error) = %q", buf.String())
	}
}

func TestFprintJSON(t *testing.T) {
	var buf bytes.Buffer
	FprintJSON(&buf, New(ConfigNotFound).WithField("--config"))

	var got map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("FprintJSON(*Error) is not JSON: %q", buf.String())
	}
	if got["code"] != "E100" || got["field"] != "--config" {
		t.Errorf("FprintJSON(*Error) = %v", got)
	}

	buf.Reset()
	FprintJSON(&buf, stderrors.New(`unknown flag: --nope`))
	got = nil
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("FprintJSON(error) is not JSON: %q", buf.String())
	}
	if got["category"] != "cli" || got["message"] != "unknown flag: --nope" {
		t.Errorf("FprintJSON(error) = %v", got)
	}
	if _, ok := got["code"]; ok {
		t.Errorf("uncoded error has a code: %v", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, line := range lines {
		if len(line) > 20 {
			t.Errorf("line %q longer than 20", line)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should wrap to nil")
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) != len(registry) {
		t.Fatalf("len = %d, want %d", len(codes), len(registry))
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted: %v", codes)
		}
	}
	if _, ok := GetTemplate(ConfigNotFound); !ok {
		t.Error("GetTemplate(E100) not found")
	}
}
