// Package codec sequences head parsing/rendering and body framing over an
// owned scratch buffer, one message at a time. It is the component that
// turns the field-at-a-time headparser/bodyparser/headrender primitives
// into a per-message read/write protocol a session adapter can drive.
//
// Grounded on fastparser.Parser's ParseRequest/ParseResponse pipeline (see
// github.com/shapestone/shape-http's internal/fastparser/parser.go):
// method/path/version, then headers, then body-by-framing, then (for
// chunked) header renormalization — reworked from "parse one complete
// buffer" into a state machine owning its own scratch and cursors so it can
// be driven by repeated bounded reads from a live stream.
package codec

import (
	"github.com/flowmesh/http1/bodyparser"
	"github.com/flowmesh/http1/errs"
	"github.com/flowmesh/http1/framing"
	"github.com/flowmesh/http1/headparser"
	"github.com/flowmesh/http1/headrender"
)

// DefaultScratchSize is the default capacity of a Decoder's scratch buffer.
const DefaultScratchSize = 8192

type decoderState int

const (
	decIdle decoderState = iota
	decReadingHead
	decReadBody
)

// Decoder owns a scratch buffer and the read-side state machine: Idle ->
// ReadingHead -> ReadBody(framing) -> Idle. It never itself performs I/O;
// callers fill the slice ReadSlice returns (typically from one bounded-time
// stream read), report it via Fed, and ask it to drain body bytes via
// ReadBody.
type Decoder struct {
	cfg          headparser.Config
	scratch      []byte
	offsetParsed int
	offsetRead   int

	state      decoderState
	isRequest  bool
	reqParser  *headparser.RequestParser
	respParser *headparser.ResponseParser

	framing framing.Framing
	cl      *bodyparser.ContentLength
	chunked *bodyparser.Chunked

	requireRead bool
}

// NewDecoder creates a Decoder with the default 8 KiB scratch capacity.
func NewDecoder(cfg headparser.Config) *Decoder {
	return NewDecoderSize(cfg, DefaultScratchSize)
}

// NewDecoderSize creates a Decoder with a caller-chosen scratch capacity.
func NewDecoderSize(cfg headparser.Config, scratchSize int) *Decoder {
	return &Decoder{
		cfg:         cfg,
		scratch:     make([]byte, scratchSize),
		state:       decIdle,
		requireRead: true,
	}
}

// HasUnparsedSuffix reports whether the scratch buffer still holds bytes
// the caller has never handed to the head or body parser.
func (d *Decoder) HasUnparsedSuffix() bool { return d.offsetRead > d.offsetParsed }

// RequireRead reports whether the caller must perform a fresh stream read
// before calling ParseHead or ReadBody again: set whenever the scratch suffix is empty at a
// decision point, so the decoder never spins parsing zero bytes.
func (d *Decoder) RequireRead() bool { return d.requireRead }

// ReadSlice returns the portion of the scratch buffer a stream read should
// fill, rotating any unparsed suffix to the front first if needed.
func (d *Decoder) ReadSlice() ([]byte, error) {
	if d.offsetParsed > 0 && d.offsetRead > d.offsetParsed {
		n := copy(d.scratch, d.scratch[d.offsetParsed:d.offsetRead])
		d.offsetRead = n
		d.offsetParsed = 0
	} else if d.offsetParsed == d.offsetRead {
		d.offsetParsed = 0
		d.offsetRead = 0
	}
	if d.offsetRead >= len(d.scratch) {
		return nil, errs.OverflowScratch()
	}
	return d.scratch[d.offsetRead:], nil
}

// Fed records that n bytes were written into the slice ReadSlice returned
// (via an external stream read). A zero n is UnexpectedEOF.
func (d *Decoder) Fed(n int) error {
	if n == 0 {
		return errs.UnexpectedEOF(n)
	}
	d.offsetRead += n
	d.requireRead = false
	return nil
}

// StartRequest arms the decoder to parse a request head next.
func (d *Decoder) StartRequest() {
	d.isRequest = true
	if d.reqParser == nil {
		d.reqParser = headparser.NewRequestParser(d.cfg)
	}
	d.state = decReadingHead
}

// StartResponse arms the decoder to parse a response head next.
func (d *Decoder) StartResponse() {
	d.isRequest = false
	if d.respParser == nil {
		d.respParser = headparser.NewResponseParser(d.cfg)
	}
	d.state = decReadingHead
}

// ParseHead feeds the unparsed scratch suffix to the armed head parser,
// advancing offsetParsed. On completion it runs the framing decider and
// transitions to ReadBody (or stays Idle for None/ContentLength(0)).
func (d *Decoder) ParseHead() (headDone bool, err error) {
	if d.state != decReadingHead {
		return false, errs.StateShouldBe("ReadingHead")
	}
	view := d.scratch[d.offsetParsed:d.offsetRead]
	var n int
	var done bool
	if d.isRequest {
		o, e := d.reqParser.Parse(view)
		n, done, err = o.N, o.Done, e
	} else {
		o, e := d.respParser.Parse(view)
		n, done, err = o.N, o.Done, e
	}
	d.offsetParsed += n
	if err != nil {
		return false, err
	}
	if !done {
		if d.offsetParsed == d.offsetRead {
			d.requireRead = true
		}
		return false, nil
	}
	fr, err := d.decideFraming()
	if err != nil {
		return false, err
	}
	d.framing = fr
	switch fr.Kind {
	case framing.None:
		d.state = decIdle
	case framing.ContentLength:
		if fr.Remaining == 0 {
			d.state = decIdle
		} else {
			d.cl = bodyparser.NewContentLength(fr.Remaining)
			d.state = decReadBody
		}
	case framing.Chunked:
		d.chunked = bodyparser.NewChunked()
		d.state = decReadBody
	}
	return true, nil
}

func (d *Decoder) decideFraming() (framing.Framing, error) {
	if d.isRequest {
		head := d.RequestHead()
		return framing.Decide(head.Headers, head.Version)
	}
	head := d.ResponseHead()
	return framing.Decide(head.Headers, head.Version)
}

// RequestHead returns the head assembled so far by the request parser.
// Meaningful only once ParseHead has returned headDone=true for a request.
func (d *Decoder) RequestHead() headparser.RequestHead { return d.reqParser.Head() }

// ResponseHead returns the head assembled so far by the response parser.
// Meaningful only once ParseHead has returned headDone=true for a response.
func (d *Decoder) ResponseHead() headparser.ResponseHead { return d.respParser.Head() }

// Framing reports the framing decided for the current message.
func (d *Decoder) Framing() framing.Framing { return d.framing }

// ReadBody drains as much of the unparsed scratch suffix as it can into
// out, per the active framing. Returns Completed(n) when the body (or, for
// chunked, the entire chunked stream) is fully read, transitioning back to
// Idle; Partial(n) otherwise.
func (d *Decoder) ReadBody(out []byte) (n int, done bool, err error) {
	if d.state != decReadBody {
		return 0, false, errs.StateShouldBe("ReadBody")
	}
	view := d.scratch[d.offsetParsed:d.offsetRead]
	switch d.framing.Kind {
	case framing.ContentLength:
		consumed, o := d.cl.Read(view, out)
		d.offsetParsed += consumed
		if o.Done {
			d.state = decIdle
		} else if d.offsetParsed == d.offsetRead {
			d.requireRead = true
		}
		return o.N, o.Done, nil
	case framing.Chunked:
		consumedIn, produced, o, e := d.chunked.Read(view, out)
		d.offsetParsed += consumedIn
		if e != nil {
			return produced, false, e
		}
		if o.Done {
			d.state = decIdle
		} else if d.offsetParsed == d.offsetRead {
			d.requireRead = true
		}
		return produced, o.Done, nil
	default:
		// None: no body bytes to read; the caller should not have
		// entered ReadBody state for this framing.
		d.state = decIdle
		return 0, true, nil
	}
}

type encoderState int

const (
	encIdle encoderState = iota
	encWriteBody
)

// Encoder renders a head into a byte buffer it returns for the caller's
// single bounded-time write, then (for ContentLength(n>0) or Chunked) sequences body writes,
// tracking a remaining count the same way the decoder's Content-Length
// reader does.
type Encoder struct {
	state   encoderState
	framing framing.Framing
	buf     []byte
}

// NewEncoder creates an idle Encoder.
func NewEncoder() *Encoder {
	return &Encoder{state: encIdle}
}

// rewriteHeaders makes the advertised framing consistent with fr before
// rendering: None or ContentLength(0) removes both Content-Length and
// Transfer-Encoding; ContentLength(n>0) sets Content-Length and removes every
// Transfer-Encoding header, whatever its value and version; Chunked sets
// Transfer-Encoding: chunked and removes Content-Length, and is an error on
// any non-1.1 version.
func rewriteHeaders(h *headparser.Headers, fr framing.Framing, version string) error {
	switch fr.Kind {
	case framing.None:
		h.Del("Content-Length")
		h.Del("Transfer-Encoding")
	case framing.ContentLength:
		if fr.Remaining == 0 {
			h.Del("Content-Length")
			h.Del("Transfer-Encoding")
			return nil
		}
		h.Del("Transfer-Encoding")
		h.Set("Content-Length", itoa(fr.Remaining))
	case framing.Chunked:
		if version != "HTTP/1.1" {
			return errs.Invalid("HttpVersion")
		}
		h.Del("Content-Length")
		h.Set("Transfer-Encoding", "chunked")
	}
	return nil
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// WriteRequest rewrites head's headers to match fr, renders the request
// head, and arms the encoder for body writes if fr carries one.
func (e *Encoder) WriteRequest(head headparser.RequestHead, fr framing.Framing) ([]byte, error) {
	head.Headers = head.Headers.Clone()
	if err := rewriteHeaders(&head.Headers, fr, head.Version); err != nil {
		return nil, err
	}
	buf, err := headrender.Request(nil, head)
	if err != nil {
		return nil, err
	}
	e.arm(fr)
	return buf, nil
}

// WriteResponse rewrites head's headers to match fr, renders the response
// head, and arms the encoder for body writes if fr carries one.
func (e *Encoder) WriteResponse(head headparser.ResponseHead, fr framing.Framing) ([]byte, error) {
	head.Headers = head.Headers.Clone()
	if err := rewriteHeaders(&head.Headers, fr, head.Version); err != nil {
		return nil, err
	}
	buf, err := headrender.Response(nil, head)
	if err != nil {
		return nil, err
	}
	e.arm(fr)
	return buf, nil
}

func (e *Encoder) arm(fr framing.Framing) {
	e.framing = fr
	if fr.Kind == framing.None || (fr.Kind == framing.ContentLength && fr.Remaining == 0) {
		e.state = encIdle
	} else {
		e.state = encWriteBody
	}
}

// WriteBody records one body-write call of length n. For ContentLength: on
// done=true, n must equal the remaining count (InvalidInput otherwise); on
// done=false it must be strictly less; the remaining count is decremented.
// Chunked framing is the caller's responsibility to encode (this codec does
// not itself chunk-encode outgoing bodies); WriteBody only tracks state.
func (e *Encoder) WriteBody(n int, done bool) error {
	if e.state != encWriteBody {
		return errs.StateShouldBe("WriteBody")
	}
	if e.framing.Kind == framing.ContentLength {
		if done {
			if int64(n) != e.framing.Remaining {
				return errs.New(errs.KindMisuse, "InvalidInput")
			}
			e.framing.Remaining = 0
			e.state = encIdle
			return nil
		}
		if int64(n) >= e.framing.Remaining {
			return errs.New(errs.KindMisuse, "InvalidInput")
		}
		e.framing.Remaining -= int64(n)
		return nil
	}
	if done {
		e.state = encIdle
	}
	return nil
}
