package insts

import (
	"errors"
	"fmt"
)

// Sentinel errors for the decode failure kinds. Use errors.Is to classify a
// failure returned by the reader or the decoder.
var (
	ErrReadFailure        = errors.New("byte source could not supply the instruction")
	ErrInvalidLength      = errors.New("leading bits match no instruction length")
	ErrRegisterOutOfRange = errors.New("register ordinal out of range")
	ErrNoTableMatch       = errors.New("no decode table entry matched")
	ErrUnimplemented      = errors.New("instruction structure recognized but not decoded")
)

// ErrorKind classifies a DecodeError.
type ErrorKind uint8

// Decode failure kinds.
const (
	KindNone ErrorKind = iota
	KindReadFailure
	KindInvalidLength
	KindRegisterOutOfRange
	KindNoTableMatch
	KindUnimplemented
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindReadFailure:
		return ErrReadFailure
	case KindInvalidLength:
		return ErrInvalidLength
	case KindRegisterOutOfRange:
		return ErrRegisterOutOfRange
	case KindNoTableMatch:
		return ErrNoTableMatch
	case KindUnimplemented:
		return ErrUnimplemented
	default:
		return nil
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindReadFailure:
		return "ReadFailure"
	case KindInvalidLength:
		return "InvalidLength"
	case KindRegisterOutOfRange:
		return "RegisterOutOfRange"
	case KindNoTableMatch:
		return "NoTableMatch"
	case KindUnimplemented:
		return "StructureRecognizedUnimplemented"
	default:
		return "None"
	}
}

// DecodeError describes a failed (or, for KindUnimplemented, partially
// successful) decode attempt at Address.
type DecodeError struct {
	Kind    ErrorKind
	Address uint64
	// Length is the detected or estimated length class.
	Length LengthClass
	// Size is the number of bytes a caller should skip to resume.
	Size int
	// Err is the underlying cause, if any.
	Err error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decode at 0x%x (%s-bit): %s", e.Address, e.Length, e.Kind.sentinel())
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the failure kind.
func (e *DecodeError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the failure kind of err, or KindNone when err is not a
// DecodeError.
func KindOf(err error) ErrorKind {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindNone
}

// IsSoft reports whether err is the unimplemented soft failure, for which
// the decoder still returns a marker instruction.
func IsSoft(err error) bool {
	return KindOf(err) == KindUnimplemented
}
