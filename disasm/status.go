package disasm

import (
	"fmt"

	"github.com/sarchlab/vc4dis/insts"
)

// Status classifies a listing line.
type Status uint8

// Line statuses.
const (
	StatusOK Status = iota
	// StatusUnimplemented lines carry a marker instruction.
	StatusUnimplemented
	StatusReadFailure
	StatusInvalidLength
	StatusNoMatch
	// StatusError covers errors that are not decode errors.
	StatusError

	numStatuses
)

// Statuses lists every status in order.
func Statuses() []Status {
	out := make([]Status, numStatuses)
	for i := range out {
		out[i] = Status(i)
	}
	return out
}

// StatusOf maps a decode error to a line status.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	switch insts.KindOf(err) {
	case insts.KindUnimplemented:
		return StatusUnimplemented
	case insts.KindReadFailure:
		return StatusReadFailure
	case insts.KindInvalidLength:
		return StatusInvalidLength
	case insts.KindNoTableMatch:
		return StatusNoMatch
	case insts.KindRegisterOutOfRange:
		// The decoder wraps register failures in a table miss; this kind
		// only arrives from errors built outside the decoder.
		return StatusNoMatch
	default:
		return StatusError
	}
}

// Decoded reports whether the line owns its bytes as an instruction.
func (s Status) Decoded() bool {
	return s == StatusOK || s == StatusUnimplemented
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnimplemented:
		return "unimplemented"
	case StatusReadFailure:
		return "read-failure"
	case StatusInvalidLength:
		return "invalid-length"
	case StatusNoMatch:
		return "no-match"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for _, c := range Statuses() {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}
