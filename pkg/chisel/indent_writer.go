package chisel

import (
	"bytes"
	"io"
)

// indentWriter prefixes every line written through it. Partial lines are
// held back until a newline arrives or Flush is called.
type indentWriter struct {
	prefix []byte
	writer io.Writer
	buffer bytes.Buffer
}

func newIndentWriter(prefix string, w io.Writer) *indentWriter {
	return &indentWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write implements io.Writer
func (iw *indentWriter) Write(p []byte) (int, error) {
	if _, err := iw.buffer.Write(p); err != nil {
		return 0, err
	}

	for {
		i := bytes.IndexByte(iw.buffer.Bytes(), '\n')
		if i < 0 {
			break
		}
		if err := iw.writeLine(iw.buffer.Next(i + 1)); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}

// Flush writes out any trailing partial line
func (iw *indentWriter) Flush() error {
	if iw.buffer.Len() == 0 {
		return nil
	}
	line := make([]byte, 0, iw.buffer.Len()+1)
	line = append(line, iw.buffer.Next(iw.buffer.Len())...)
	return iw.writeLine(append(line, '\n'))
}

func (iw *indentWriter) writeLine(line []byte) error {
	if _, err := iw.writer.Write(iw.prefix); err != nil {
		return err
	}
	_, err := iw.writer.Write(line)
	return err
}
