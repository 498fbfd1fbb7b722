package commands

import (
	"strings"
	"testing"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

func TestFormatResponseTableOK(t *testing.T) {
	t.Parallel()

	resp := visionary.Build(visionary.KindReadVariableResponse, "DeviceIdent",
		visionary.NewCommandBuilder(visionary.KindReadVariableResponse, "DeviceIdent").AppendUSInt(0x42))

	out, err := formatResponse(resp, formatTable)
	if err != nil {
		t.Fatalf("formatResponse: %v", err)
	}
	if !strings.HasPrefix(out, "ok") {
		t.Errorf("formatResponse table = %q, want prefix %q", out, "ok")
	}
	if !strings.Contains(out, "42") {
		t.Errorf("formatResponse table = %q, want hex payload containing %q", out, "42")
	}
}

func TestFormatResponseTableError(t *testing.T) {
	t.Parallel()

	resp, err := visionary.ParseCommand([]byte("sFA\x00\x03"))
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}

	out, err := formatResponse(resp, formatTable)
	if err != nil {
		t.Fatalf("formatResponse: %v", err)
	}
	if !strings.Contains(out, "error") {
		t.Errorf("formatResponse table = %q, want it to mention the error", out)
	}
}

func TestFormatResponseJSON(t *testing.T) {
	t.Parallel()

	resp := visionary.Build(visionary.KindWriteVariableResponse, "SomeVar",
		visionary.NewCommandBuilder(visionary.KindWriteVariableResponse, "SomeVar"))

	out, err := formatResponse(resp, formatJSON)
	if err != nil {
		t.Fatalf("formatResponse: %v", err)
	}
	if !strings.Contains(out, `"name": "SomeVar"`) {
		t.Errorf("formatResponse json = %q, want name field", out)
	}
}

func TestFormatResponseUnsupportedFormat(t *testing.T) {
	t.Parallel()

	resp := visionary.NetworkErrorCommand()

	if _, err := formatResponse(resp, "xml"); err == nil {
		t.Fatal("formatResponse with unsupported format did not error")
	}
}
