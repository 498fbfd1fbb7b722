package blob

import (
	"fmt"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

const (
	logicSignalsVersion    = 1
	maxLogicSignalsValues  = 20
	logicSignalElementSize = 1 + 1 + 2 + 2
)

// LogicSignalInstanceState is the packed instance-state byte: two named
// OSSD-instance bits plus 6 reserved bits.
type LogicSignalInstanceState uint8

func (s LogicSignalInstanceState) OSSD1() bool { return s&(1<<0) != 0 }
func (s LogicSignalInstanceState) OSSD2() bool { return s&(1<<1) != 0 }

// LogicSignal is one decoded logic-signal element.
type LogicSignal struct {
	SignalType      uint8
	Instance        LogicSignalInstanceState
	Configured      bool
	SignalDirection bool
	Value           uint16
}

func decodeLogicSignals(version uint16, payload []byte) ([maxLogicSignalsValues]LogicSignal, ErrorKind, error) {
	var out [maxLogicSignalsValues]LogicSignal
	if version != logicSignalsVersion {
		return out, ErrorKindUnsupportedVersion, fmt.Errorf("blob: logic-signals version %d != %d", version, logicSignalsVersion)
	}
	want := maxLogicSignalsValues * logicSignalElementSize
	if len(payload) != want {
		return out, ErrorKindLengthMismatch, fmt.Errorf("blob: logic-signals payload length %d != expected %d", len(payload), want)
	}

	off := 0
	for i := 0; i < maxLogicSignalsValues; i++ {
		flags := visionary.ReadU16(payload, off+2, visionary.LittleEndian)
		out[i] = LogicSignal{
			SignalType:      visionary.ReadU8(payload, off),
			Instance:        LogicSignalInstanceState(visionary.ReadU8(payload, off+1)),
			Configured:      flags&(1<<0) != 0,
			SignalDirection: flags&(1<<1) != 0,
			Value:           visionary.ReadU16(payload, off+4, visionary.LittleEndian),
		}
		off += logicSignalElementSize
	}

	return out, ErrorKindNone, nil
}
