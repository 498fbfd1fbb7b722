package commands

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

// errUnsupportedFormat is returned when the requested output format is not supported.
var errUnsupportedFormat = errors.New("unsupported output format")

// responseView is the JSON-friendly projection of a device response.
type responseView struct {
	Name       string `json:"name,omitempty"`
	Error      string `json:"error"`
	ParamBytes string `json:"param_bytes,omitempty"`
}

// formatResponse renders a read/write/call response in the requested
// format. Parameter bytes are everything from the command's parameter
// offset onward, hex-encoded; callers that need typed fields decode
// them separately with a visionary.CommandReader before calling this.
func formatResponse(resp visionary.Command, format string) (string, error) {
	params := resp.Buffer()[min(resp.ParameterOffset(), len(resp.Buffer())):]

	switch format {
	case formatJSON:
		v := responseView{
			Name:       resp.Name(),
			Error:      resp.Error().String(),
			ParamBytes: hex.EncodeToString(params),
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal response to JSON: %w", err)
		}
		return string(data), nil
	case formatTable:
		if resp.Error() != visionary.ColaErrOK {
			return fmt.Sprintf("error: %s", resp.Error()), nil
		}
		if len(params) == 0 {
			return "ok", nil
		}
		return fmt.Sprintf("ok  %s", hex.EncodeToString(params)), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}
