package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/segmentio/encoding/json"

	jscanpartial "github.com/romshark/jscan-partial"
)

// Emission modes.
const (
	EmitEach  = "each"
	EmitFinal = "final"
)

// Config configures Stream.
type Config struct {
	// ChunkSize is the number of bytes read and fed at once.
	ChunkSize int

	// Emit is either EmitEach or EmitFinal.
	Emit string

	Options jscanpartial.Options

	// Logger is optional.
	Logger *log.Logger
}

func (c Config) validate() error {
	if c.ChunkSize < 1 {
		return fmt.Errorf("invalid chunk size: %d", c.ChunkSize)
	}
	switch c.Emit {
	case EmitEach, EmitFinal:
	default:
		return fmt.Errorf("invalid emit mode: %q, expected %q or %q", c.Emit, EmitEach, EmitFinal)
	}
	return nil
}

// Stream reads r in chunks of c.ChunkSize bytes, feeds them to a decoder
// and writes the decoded value to w as one JSON line after every chunk,
// or once at the end if c.Emit is EmitFinal.
// Stream stops before the next chunk when ctx is canceled.
func Stream(ctx context.Context, r io.Reader, w io.Writer, c Config) error {
	if err := c.validate(); err != nil {
		return err
	}
	logger := c.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	d := jscanpartial.NewDriver[any](&c.Options)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	buf := make([]byte, c.ChunkSize)
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			v, ferr := d.Feed(buf[:n])
			if ferr != nil {
				return fmt.Errorf("decoding chunk at offset %d: %w", offset, ferr)
			}
			logger.Debug("fed chunk", "offset", offset, "size", n)
			offset += n
			if c.Emit == EmitEach {
				if err := enc.Encode(v); err != nil {
					return fmt.Errorf("writing value: %w", err)
				}
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}

	v, err := d.Finish()
	if err != nil {
		return fmt.Errorf("finishing: %w", err)
	}
	logger.Debug("finished", "bytes", offset)
	if c.Emit == EmitFinal {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("writing value: %w", err)
		}
	}
	return nil
}
