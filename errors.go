package jscanpartial

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnsupportedAction = errors.New("unsupported action")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrNumericOverflow   = errors.New("numeric overflow")
	ErrMalformedToken    = errors.New("malformed token")
	ErrAlreadyFinished   = errors.New("already finished")
	ErrUnexpectedEOF     = errors.New("unexpected end of input")
	ErrNilDest           = errors.New("reducing into nil pointer")
)

// Malformed token errors, all of them wrap ErrMalformedToken.
var (
	ErrInvalidUTF8       = malformed("invalid UTF-8 sequence")
	ErrInvalidEscape     = malformed("invalid escape sequence")
	ErrControlChar       = malformed("control character in string")
	ErrLiteralMismatch   = malformed("literal mismatch")
	ErrDigitBufferFull   = malformed("digit buffer capacity exceeded")
	ErrInvalidNumber     = malformed("invalid number")
	ErrUnexpectedByte    = malformed("unexpected byte")
	ErrCommentNotAllowed = malformed("comments are not allowed")
	ErrTrailingComma     = malformed("trailing commas are not allowed")
	ErrUnquotedKey       = malformed("unquoted keys are not allowed")
	ErrMaxDepth          = malformed("maximum nesting depth exceeded")
)

func malformed(msg string) error { return fmt.Errorf("%w: %s", ErrMalformedToken, msg) }

// ErrorParse is returned by the driver and carries the stream offset
// of the byte at which the error was detected.
type ErrorParse struct {
	Err   error
	Index int
}

func (e ErrorParse) IsErr() bool { return e.Err != nil }

func (e ErrorParse) Error() string {
	var s strings.Builder
	s.WriteString("at index ")
	s.WriteString(strconv.Itoa(e.Index))
	s.WriteString(": ")
	s.WriteString(e.Err.Error())
	return s.String()
}

func (e ErrorParse) Unwrap() error { return e.Err }
