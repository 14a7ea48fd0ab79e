// Package lineio reads newline-terminated lines with a per-line size limit.
// Unlike bufio.Scanner, an oversized line is reported and skipped and reading
// continues with the next line.
package lineio

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrTooLong is returned by Next for a line over the limit. The line has been
// consumed.
var ErrTooLong = errors.New("line too long")

// DefaultMaxLine is the limit used when none is given.
const DefaultMaxLine = 1 << 20

// Reader yields lines without their "\n" or "\r\n" terminator.
type Reader struct {
	br  *bufio.Reader
	max int
}

// NewReader returns a Reader that rejects lines longer than max bytes.
// A max of zero or less selects DefaultMaxLine.
func NewReader(r io.Reader, max int) *Reader {
	if max <= 0 {
		max = DefaultMaxLine
	}
	return &Reader{br: bufio.NewReaderSize(r, 64*1024), max: max}
}

// Max returns the line limit in bytes.
func (r *Reader) Max() int {
	return r.max
}

// Next returns the next line. At end of input it returns io.EOF; a final
// line without a terminator is still returned first.
func (r *Reader) Next() (string, error) {
	var (
		buf     []byte
		tooLong bool
		read    bool
	)
	for {
		chunk, err := r.br.ReadSlice('\n')
		read = read || len(chunk) > 0
		if !tooLong {
			buf = append(buf, chunk...)
			// Room for the terminator.
			if len(buf) > r.max+2 {
				tooLong = true
				buf = nil
			}
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if errors.Is(err, io.EOF) && !read {
			return "", io.EOF
		}
		break
	}

	if tooLong {
		return "", ErrTooLong
	}
	line := strings.TrimSuffix(strings.TrimSuffix(string(buf), "\n"), "\r")
	if len(line) > r.max {
		return "", ErrTooLong
	}
	return line, nil
}
