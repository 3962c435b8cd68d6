// Package frame implements the one-shot request framing: a single length byte
// followed by that many bytes of command text. The length is authoritative, so
// the payload carries no terminator and no escaping.
package frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/guseggert/ipcexec/transport"
)

// MaxCommandLen is the largest payload a one-byte length prefix can describe.
const MaxCommandLen = 255

var ErrOversizeCommand = errors.New("frame: command exceeds 255 bytes")

// Encode returns the wire form of command.
// Commands longer than MaxCommandLen are rejected rather than truncated.
func Encode(command string) ([]byte, error) {
	if len(command) > MaxCommandLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrOversizeCommand, len(command))
	}
	b := make([]byte, 0, 1+len(command))
	b = append(b, byte(len(command)))
	b = append(b, command...)
	return b, nil
}

// Write encodes command and writes it to w. Nothing is written if encoding fails.
func Write(w io.Writer, command string) error {
	b, err := Encode(command)
	if err != nil {
		return err
	}
	return transport.WriteAll(w, b)
}

// Read reads one frame from r and returns its payload.
func Read(r io.Reader) (string, error) {
	lenByte, err := transport.ReadExact(r, 1)
	if err != nil {
		return "", fmt.Errorf("reading frame length: %w", err)
	}
	payload, err := transport.ReadExact(r, int(lenByte[0]))
	if err != nil {
		return "", fmt.Errorf("reading %d byte frame payload: %w", lenByte[0], err)
	}
	return string(payload), nil
}
