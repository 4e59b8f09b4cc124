package bodyparser

// ContentLength is the resumable Content-Length body parser: stateful only
// in a remaining-byte count. Grounded on
// fastparser.Parser.parseBody's Content-Length branch (see
// github.com/shapestone/shape-http's internal/fastparser/parser.go),
// generalized from "copy N bytes out of one complete buffer" to "drain N
// bytes across any number of resumed calls into the caller's own
// output buffer".
type ContentLength struct {
	remaining int64
}

// NewContentLength creates a parser that will deliver exactly n bytes.
func NewContentLength(n int64) *ContentLength {
	return &ContentLength{remaining: n}
}

// Remaining reports how many body bytes are still outstanding.
func (c *ContentLength) Remaining() int64 { return c.remaining }

// Read copies min(len(in), remaining, len(out)) bytes from in into out, decrements
// remaining, and reports Completed once remaining hits zero. It never reads
// past the body: if in holds more bytes than remain, only the body's share
// is consumed.
func (c *ContentLength) Read(in []byte, out []byte) (consumed int, o Outcome) {
	n := len(in)
	if int64(n) > c.remaining {
		n = int(c.remaining)
	}
	if n > len(out) {
		n = len(out)
	}
	copy(out, in[:n])
	c.remaining -= int64(n)
	if c.remaining == 0 {
		return n, Outcome{N: n, Done: true}
	}
	return n, Outcome{N: n, Done: false}
}
