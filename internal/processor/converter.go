package processor

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/weak-head/bin2hex64/internal/logger"
)

const (
	// WordSize is the number of bytes in a memory word.
	WordSize = 8

	// lineSize is a single hex encoded word with the line terminator.
	lineSize = 2*WordSize + 1
)

var (
	// ErrVerifyMismatch happens when the hex image does not reproduce
	// the original binary.
	ErrVerifyMismatch = errors.New("hex image does not match the binary")
)

// DecodeError reports a malformed line of a hex image.
type DecodeError struct {
	Line int
	Text string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed word %q at line %d", e.Text, e.Line)
}

// Padding returns the number of zero bytes required to align
// n bytes to the word size.
func Padding(n int) int {
	return (WordSize - n%WordSize) % WordSize
}

// WordCount returns the number of words required to hold n bytes.
func WordCount(n int) int {
	return (n + Padding(n)) / WordSize
}

// Encode pads data with zero bytes to the word size and encodes every
// word as a line of 16 lowercase hex digits of its little-endian value.
func Encode(data []byte) []byte {
	out := make([]byte, 0, WordCount(len(data))*lineSize)

	var word [WordSize]byte
	for off := 0; off < len(data); off += WordSize {
		word = [WordSize]byte{}
		copy(word[:], data[off:])
		out = appendWord(out, binary.LittleEndian.Uint64(word[:]))
	}

	return out
}

// appendWord appends the big-endian hex digits of v and a newline.
func appendWord(dst []byte, v uint64) []byte {
	var be [WordSize]byte
	binary.BigEndian.PutUint64(be[:], v)

	n := len(dst)
	dst = append(dst, make([]byte, lineSize)...)
	hex.Encode(dst[n:], be[:])
	dst[len(dst)-1] = '\n'

	return dst
}

// Decode converts a hex image back to the padded binary.
// Blank trailing input is ignored, every other line must be
// exactly 16 hex digits.
func Decode(text []byte) ([]byte, error) {
	text = bytes.TrimRight(text, "\n")
	if len(text) == 0 {
		return []byte{}, nil
	}

	lines := bytes.Split(text, []byte{'\n'})
	out := make([]byte, len(lines)*WordSize)

	var be [WordSize]byte
	for i, line := range lines {
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) != 2*WordSize {
			return nil, &DecodeError{Line: i + 1, Text: string(line)}
		}
		if _, err := hex.Decode(be[:], line); err != nil {
			return nil, &DecodeError{Line: i + 1, Text: string(line)}
		}
		binary.LittleEndian.PutUint64(out[i*WordSize:], binary.BigEndian.Uint64(be[:]))
	}

	return out, nil
}

// Verify checks that the hex image decodes to the original binary
// followed only by the zero padding.
func Verify(original, image []byte) error {
	padded, err := Decode(image)
	if err != nil {
		return err
	}

	if len(padded) != len(original)+Padding(len(original)) {
		return ErrVerifyMismatch
	}
	if !bytes.Equal(padded[:len(original)], original) {
		return ErrVerifyMismatch
	}
	for _, b := range padded[len(original):] {
		if b != 0 {
			return ErrVerifyMismatch
		}
	}

	return nil
}

// converter encodes binaries as hex images of 64-bit little-endian words.
type converter struct {
	log logger.Log
}

// NewConverter creates a new hex image converter.
func NewConverter(log logger.Log) (*converter, error) {
	return &converter{
		log: log.WithField(logger.FieldPackage, "processor"),
	}, nil
}

// Convert encodes the binary and reports the loaded size and applied padding.
func (c *converter) Convert(ctx context.Context, from []byte) (to []byte, err error) {
	log := c.log.WithField(logger.FieldFunction, "converter.Convert")

	log.WithField("size", humanize.Bytes(uint64(len(from)))).
		Infof("Loaded %d bytes.", len(from))

	if pad := Padding(len(from)); pad != 0 {
		log.Infof("Padded with %d bytes to align to %d.", pad, WordSize)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Encode(from), nil
}
