package bodyparser

import (
	"github.com/flowmesh/http1/errs"
	"github.com/flowmesh/http1/wire"
)

// DefaultDataBufSize bounds how many chunk-data bytes a single Read call
// moves per chunk.
const DefaultDataBufSize = 512

// MaxChunkLen is the largest chunk size this parser accepts: four hex
// digits, 0xFFFF. Larger payloads must be split across multiple chunks.
const MaxChunkLen = 0xFFFF

type chunkState int

const (
	chunkWaitLength chunkState = iota
	chunkWaitData
	chunkWaitCRLFContinue
	chunkWaitCRLFBreak
)

// Chunked is the resumable chunked-transfer-coding body parser: a nested
// state machine over length lines, data runs, and terminator CRLFs.
// Grounded on fastparser.Dechunk (see
// github.com/shapestone/shape-http's internal/fastparser/chunked.go),
// reworked from "decode one complete buffer" into a state machine that
// retains its length/CRLF progress across resumed calls, following the
// stateful ChunkVal pattern in intuitivelabs-httpsp's parse_chunk.go.
type Chunked struct {
	state     chunkState
	digits    []byte // accumulated hex digits of the current length line
	sawCR     bool   // CR seen, waiting for the matching LF
	remaining int    // data bytes left in the chunk currently being read
	bufSize   int
}

// NewChunked creates a chunked-body parser with the default 512-byte
// internal data buffer.
func NewChunked() *Chunked {
	return &Chunked{bufSize: DefaultDataBufSize}
}

// Read drains as much of in as it can (respecting len(out) and the internal
// data-buffer cap) into out, returning the number of input bytes consumed,
// the number of output bytes produced, and an Outcome whose N is the total
// number of input bytes consumed across the call.
func (c *Chunked) Read(in []byte, out []byte) (consumedIn int, produced int, o Outcome, err error) {
	for {
		switch c.state {
		case chunkWaitLength:
			n, ok, e := c.stepLength(in[consumedIn:])
			consumedIn += n
			if e != nil {
				return consumedIn, produced, Outcome{N: consumedIn}, e
			}
			if !ok {
				return consumedIn, produced, Outcome{N: consumedIn}, nil
			}

		case chunkWaitData:
			avail := len(in) - consumedIn
			room := len(out) - produced
			n := minInt(minInt(avail, room), minInt(c.remaining, c.bufSize))
			if n > 0 {
				copy(out[produced:produced+n], in[consumedIn:consumedIn+n])
				consumedIn += n
				produced += n
				c.remaining -= n
			}
			if c.remaining > 0 {
				return consumedIn, produced, Outcome{N: consumedIn}, nil
			}
			c.state = chunkWaitCRLFContinue

		case chunkWaitCRLFContinue:
			n, ok, e := c.stepCRLF(in[consumedIn:])
			consumedIn += n
			if e != nil {
				return consumedIn, produced, Outcome{N: consumedIn}, e
			}
			if !ok {
				return consumedIn, produced, Outcome{N: consumedIn}, nil
			}
			c.state = chunkWaitLength

		case chunkWaitCRLFBreak:
			n, ok, e := c.stepCRLF(in[consumedIn:])
			consumedIn += n
			if e != nil {
				return consumedIn, produced, Outcome{N: consumedIn}, e
			}
			if !ok {
				return consumedIn, produced, Outcome{N: consumedIn}, nil
			}
			c.state = chunkWaitLength
			return consumedIn, produced, Outcome{N: consumedIn, Done: true}, nil
		}
	}
}

// stepLength reads up to 4 hex digits followed by CRLF: the chunk-size line.
func (c *Chunked) stepLength(in []byte) (n int, done bool, err error) {
	const maxDigits = 4
	if c.sawCR {
		if len(in) == 0 {
			return 0, false, nil
		}
		if in[0] != wire.LF {
			return 0, false, errs.InvalidCRLF()
		}
		c.sawCR = false
		ok, e := c.finishLengthLine()
		if e != nil {
			return 1, false, e
		}
		return 1, ok, nil
	}
	for i := 0; i < len(in); i++ {
		b := in[i]
		switch {
		case b == wire.CR:
			if len(c.digits)+i > maxDigits {
				return i, false, errs.TooLong("ChunksOfLength")
			}
			c.digits = append(c.digits, in[:i]...)
			if i+1 >= len(in) {
				c.sawCR = true
				return i + 1, false, nil
			}
			if in[i+1] != wire.LF {
				return i, false, errs.InvalidCRLF()
			}
			ok, e := c.finishLengthLine()
			if e != nil {
				return i + 2, false, e
			}
			return i + 2, ok, nil
		case b == wire.LF:
			return i, false, errs.InvalidCRLF()
		case !isHexDigit(b):
			return i, false, errs.Invalid("ChunksOfLength")
		default:
			if len(c.digits)+i+1 > maxDigits {
				return i, false, errs.TooLong("ChunksOfLength")
			}
		}
	}
	if len(c.digits)+len(in) > maxDigits {
		return 0, false, errs.TooLong("ChunksOfLength")
	}
	c.digits = append(c.digits, in...)
	return len(in), false, nil
}

// finishLengthLine parses the accumulated hex digits and transitions state:
// a zero length moves to the terminal CRLF wait, any other length moves to
// the data-reading state with remaining set.
func (c *Chunked) finishLengthLine() (bool, error) {
	n, ok := parseHexU16(c.digits)
	c.digits = c.digits[:0]
	if !ok {
		return false, errs.Invalid("ChunksOfLength")
	}
	if n == 0 {
		c.state = chunkWaitCRLFBreak
	} else {
		c.remaining = int(n)
		c.state = chunkWaitData
	}
	return true, nil
}

// stepCRLF reads exactly CR followed by LF (no other bytes permitted). A
// byte other than CR where CR is expected means the terminator spans more
// than the 2 bytes it's allowed to.
func (c *Chunked) stepCRLF(in []byte) (n int, done bool, err error) {
	if c.sawCR {
		if len(in) == 0 {
			return 0, false, nil
		}
		if in[0] != wire.LF {
			return 0, false, errs.InvalidCRLF()
		}
		c.sawCR = false
		return 1, true, nil
	}
	if len(in) == 0 {
		return 0, false, nil
	}
	if in[0] != wire.CR {
		return 0, false, errs.TooLong("ChunksOfCRLF")
	}
	if len(in) == 1 {
		c.sawCR = true
		return 1, false, nil
	}
	if in[1] != wire.LF {
		return 0, false, errs.InvalidCRLF()
	}
	return 2, true, nil
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// parseHexU16 parses 1-4 hex digits into a uint16. The caller bounds the
// digit count to 4, so overflow past uint16 never occurs here.
func parseHexU16(digits []byte) (uint16, bool) {
	if len(digits) == 0 {
		return 0, false
	}
	var n uint32
	for _, b := range digits {
		n <<= 4
		switch {
		case b >= '0' && b <= '9':
			n |= uint32(b - '0')
		case b >= 'a' && b <= 'f':
			n |= uint32(b-'a') + 10
		case b >= 'A' && b <= 'F':
			n |= uint32(b-'A') + 10
		}
	}
	return uint16(n), true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
