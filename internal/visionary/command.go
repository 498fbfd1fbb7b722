package visionary

import (
	"crypto/md5" //nolint:gosec // required by the device's legacy password-fold scheme, not used for security
	"errors"
	"fmt"
	"math"
)

// CommandKind identifies the three-letter CoLa tag of a Command.
type CommandKind int

const (
	// KindUnknown is returned when a received buffer's tag does not match
	// any recognized CoLa command kind.
	KindUnknown CommandKind = iota - 2
	// KindNetworkError is a sentinel kind for transport-level failures;
	// it never appears on the wire.
	KindNetworkError
	// KindReadVariable is the "sRN" read-variable request tag.
	KindReadVariable
	// KindReadVariableResponse is the "sRA" read-variable response tag.
	KindReadVariableResponse
	// KindWriteVariable is the "sWN" write-variable request tag.
	KindWriteVariable
	// KindWriteVariableResponse is the "sWA" write-variable response tag.
	KindWriteVariableResponse
	// KindMethodInvocation is the "sMN" method-invoke request tag.
	KindMethodInvocation
	// KindMethodReturn is the "sAN" method-return response tag.
	KindMethodReturn
	// KindError is the "sFA" error response tag.
	KindError
)

var kindTags = map[CommandKind]string{
	KindReadVariable:          "sRN",
	KindReadVariableResponse:  "sRA",
	KindWriteVariable:         "sWN",
	KindWriteVariableResponse: "sWA",
	KindMethodInvocation:      "sMN",
	KindMethodReturn:          "sAN",
	KindError:                 "sFA",
}

var tagKinds = map[string]CommandKind{
	"sRN": KindReadVariable,
	"sRA": KindReadVariableResponse,
	"sWN": KindWriteVariable,
	"sWA": KindWriteVariableResponse,
	"sMN": KindMethodInvocation,
	"sAN": KindMethodReturn,
	"sFA": KindError,
}

// String returns the three-letter wire tag, or a placeholder for the two
// sentinel kinds that never appear on the wire.
func (k CommandKind) String() string {
	if tag, ok := kindTags[k]; ok {
		return tag
	}
	if k == KindNetworkError {
		return "<network-error>"
	}
	return "<unknown>"
}

// Command errors.
var (
	// ErrCommandTooShort indicates a received buffer is too small to
	// contain even the three-letter tag.
	ErrCommandTooShort = errors.New("command buffer shorter than tag")
	// ErrCommandNameUnterminated indicates no space was found to end the
	// variable/method name in a non-error command.
	ErrCommandNameUnterminated = errors.New("command name not space-terminated")
)

// Command is an immutable tagged value: a kind, a name, a raw wire body,
// a cursor into that body for parameter reads, and — for KindError only —
// a device error code. Built once by CommandBuilder or ParseCommand, never
// mutated afterward.
type Command struct {
	kind         CommandKind
	name         string
	buffer       []byte
	parameterOff int
	err          ColaError
}

// NetworkErrorCommand returns the sentinel Command returned to callers
// when a transport-level failure prevents an exchange from completing.
func NetworkErrorCommand() Command {
	return Command{kind: KindNetworkError, err: ColaErrNetworkError}
}

// Kind returns the command's tag kind.
func (c Command) Kind() CommandKind { return c.kind }

// Name returns the variable or method name (empty for error/unknown/network-error kinds).
func (c Command) Name() string { return c.name }

// Buffer returns the full wire body starting at the three-letter tag.
func (c Command) Buffer() []byte { return c.buffer }

// Error returns the device error code. For non-error kinds this is ColaErrOK.
func (c Command) Error() ColaError { return c.err }

// ParameterOffset returns the byte offset one past the name-terminating
// space (or three bytes past the tag, for the error form).
func (c Command) ParameterOffset() int { return c.parameterOff }

// ParseCommand parses a received wire buffer (tag onward, no checksum/
// length framing) into a Command.
func ParseCommand(buf []byte) (Command, error) {
	if len(buf) < 3 {
		return Command{}, ErrCommandTooShort
	}
	tag := string(buf[:3])
	kind, ok := tagKinds[tag]
	if !ok {
		return Command{kind: KindUnknown, buffer: buf}, nil
	}

	if kind == KindError {
		var errCode ColaError
		if len(buf) >= 5 {
			errCode = ColaError(ReadU16(buf, 3, ColaByteOrder))
		}
		return Command{kind: KindError, buffer: buf, parameterOff: 3, err: errCode}, nil
	}

	// Name starts at offset 4 (tag + space); find the name-terminating space.
	if len(buf) < 4 {
		return Command{}, fmt.Errorf("%w: name start beyond buffer", ErrCommandNameUnterminated)
	}
	i := 4
	for i < len(buf) && buf[i] != ' ' {
		i++
	}
	if i >= len(buf) {
		return Command{}, ErrCommandNameUnterminated
	}
	return Command{
		kind:         kind,
		name:         string(buf[4:i]),
		buffer:       buf,
		parameterOff: i + 1,
	}, nil
}

// CommandBuilder assembles a wire-ready Command buffer: tag, space, name,
// space, then appended parameters in command-protocol byte order.
type CommandBuilder struct {
	buf []byte
}

// NewCommandBuilder starts a new builder for the given kind and name.
// Kinds without a wire tag (unknown, network-error) get the placeholder
// tag "sXX".
func NewCommandBuilder(kind CommandKind, name string) *CommandBuilder {
	tag, ok := kindTags[kind]
	if !ok {
		tag = "sXX"
	}
	b := &CommandBuilder{buf: make([]byte, 0, len(tag)+1+len(name)+1)}
	b.buf = append(b.buf, tag...)
	b.buf = append(b.buf, ' ')
	b.buf = append(b.buf, name...)
	b.buf = append(b.buf, ' ')
	return b
}

// AppendSInt appends a signed 8-bit parameter.
func (b *CommandBuilder) AppendSInt(v int8) *CommandBuilder {
	b.buf = append(b.buf, byte(v))
	return b
}

// AppendUSInt appends an unsigned 8-bit parameter.
func (b *CommandBuilder) AppendUSInt(v uint8) *CommandBuilder {
	b.buf = append(b.buf, v)
	return b
}

// AppendInt appends a signed 16-bit parameter in command byte order.
func (b *CommandBuilder) AppendInt(v int16) *CommandBuilder {
	return b.AppendUInt(uint16(v))
}

// AppendUInt appends an unsigned 16-bit parameter in command byte order.
func (b *CommandBuilder) AppendUInt(v uint16) *CommandBuilder {
	b.buf = AppendU16(b.buf, v, ColaByteOrder)
	return b
}

// AppendDInt appends a signed 32-bit parameter in command byte order.
func (b *CommandBuilder) AppendDInt(v int32) *CommandBuilder {
	return b.AppendUDInt(uint32(v))
}

// AppendUDInt appends an unsigned 32-bit parameter in command byte order.
func (b *CommandBuilder) AppendUDInt(v uint32) *CommandBuilder {
	b.buf = AppendU32(b.buf, v, ColaByteOrder)
	return b
}

// AppendReal appends an IEEE-754 binary32 parameter in command byte order.
func (b *CommandBuilder) AppendReal(v float32) *CommandBuilder {
	return b.AppendUDInt(math.Float32bits(v))
}

// AppendLReal appends an IEEE-754 binary64 parameter in command byte order.
func (b *CommandBuilder) AppendLReal(v float64) *CommandBuilder {
	var tmp [8]byte
	PutF64(tmp[:], 0, v, ColaByteOrder)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

// AppendBool appends a single byte, 0 or 1.
func (b *CommandBuilder) AppendBool(v bool) *CommandBuilder {
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
	return b
}

// AppendFlexString appends a 16-bit length prefix (command byte order)
// followed by the raw bytes of s.
func (b *CommandBuilder) AppendFlexString(s string) *CommandBuilder {
	b.buf = AppendU16(b.buf, uint16(len(s)), ColaByteOrder)
	b.buf = append(b.buf, s...)
	return b
}

// AppendBytes appends raw bytes verbatim (used for pre-computed hashes
// and challenge responses).
func (b *CommandBuilder) AppendBytes(p []byte) *CommandBuilder {
	b.buf = append(b.buf, p...)
	return b
}

// AppendLegacyPasswordHash computes the MD5 of password, folds the
// 128-bit digest into 32 bits by XORing corresponding bytes of the four
// 32-bit quarters, and appends the result in command byte order.
func (b *CommandBuilder) AppendLegacyPasswordHash(password string) *CommandBuilder {
	return b.AppendUDInt(LegacyPasswordHash(password))
}

// Build returns the finished wire buffer.
func (b *CommandBuilder) Build() []byte { return b.buf }

// LegacyPasswordHash computes the legacy 32-bit password token: MD5(password),
// folded by XORing byte i of each of the four 32-bit quarters together,
// i in [0,3], producing 4 result bytes in digest order (not yet byte-order
// swapped — callers emit the result in command byte order).
func LegacyPasswordHash(password string) uint32 {
	digest := md5.Sum([]byte(password)) //nolint:gosec // device protocol requirement, not a security boundary
	var folded [4]byte
	for i := range folded {
		folded[i] = digest[i] ^ digest[4+i] ^ digest[8+i] ^ digest[12+i]
	}
	return uint32(folded[0]) | uint32(folded[1])<<8 | uint32(folded[2])<<16 | uint32(folded[3])<<24
}
