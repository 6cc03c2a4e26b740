package protocol

import (
	"bytes"
	"strings"
)

// Decoder turns a raw byte stream into discrete trimmed text lines. Each
// connection owns one Decoder; it holds whatever partial line the last read
// left behind and goes away with the connection.
type Decoder struct {
	buf bytes.Buffer
}

// Feed appends raw bytes and returns every complete line they produce.
// Lines end at '\n' with a trailing '\r' stripped, are trimmed of
// surrounding whitespace, and are dropped when nothing remains.
func (d *Decoder) Feed(p []byte) []string {
	d.buf.Write(p)

	var lines []string
	for {
		raw := d.buf.Bytes()
		i := bytes.IndexByte(raw, '\n')
		if i < 0 {
			return lines
		}
		line := string(raw[:i])
		d.buf.Next(i + 1)

		line = strings.TrimSuffix(line, "\r")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
}
