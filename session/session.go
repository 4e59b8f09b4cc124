// Package session pairs an external byte stream with a codec.Decoder and a
// codec.Encoder to expose one-request-at-a-time client and server session
// objects with bounded-time I/O, mirroring the teacher's top-level
// Decoder/Encoder convenience surface (see
// github.com/shapestone/shape-http's pkg/http/decoder.go and encoder.go)
// but over a streaming, resumable codec instead of a one-shot buffer.
package session

import (
	"io"
	"time"

	"github.com/flowmesh/http1/codec"
	"github.com/flowmesh/http1/errs"
	"github.com/flowmesh/http1/framing"
	"github.com/flowmesh/http1/headparser"
)

// Stream is the byte-stream capability a session adapts: any net.Conn,
// bufio.ReadWriter-backed pipe, or in-memory test double satisfies it
// without an adapter shim.
type Stream interface {
	io.Reader
	io.Writer
}

// Clock supplies deadlines for bounded-time I/O, kept independent of the
// Stream so callers whose stream type has no notion of a deadline (a plain
// in-memory pipe, for instance) can still get one from the clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock backed by the real wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// deadlineStream is implemented by streams that can be given a hard
// deadline (matching net.Conn.SetDeadline's shape). Streams that don't
// implement it simply get no enforced deadline beyond what the caller's
// own context provides.
type deadlineStream interface {
	SetDeadline(t time.Time) error
}

const defaultTimeout = 5 * time.Second

// Session is the shared plumbing beneath ClientSession and ServerSession:
// one stream, one decoder, one encoder, and independently configurable
// read/write timeouts.
type Session struct {
	stream  Stream
	clock   Clock
	dec     *codec.Decoder
	enc     *codec.Encoder
	readTO  time.Duration
	writeTO time.Duration
}

// New builds a Session over stream using cfg for head-parse bounds and
// clock for deadlines, with the default 5s read/write timeout.
func New(stream Stream, clock Clock, cfg headparser.Config) *Session {
	return &Session{
		stream:  stream,
		clock:   clock,
		dec:     codec.NewDecoder(cfg),
		enc:     codec.NewEncoder(),
		readTO:  defaultTimeout,
		writeTO: defaultTimeout,
	}
}

// NewImplicit builds a Session whose timer is implicit to stream itself:
// it skips the explicit Clock parameter and always computes deadlines from
// the real wall clock, for callers whose stream type (net.Conn and
// friends) already expects SetDeadline to be driven this way.
func NewImplicit(stream Stream, cfg headparser.Config) *Session {
	return New(stream, SystemClock{}, cfg)
}

// SetReadTimeout configures the bounded-time read used by every read
// operation.
func (s *Session) SetReadTimeout(d time.Duration) { s.readTO = d }

// SetWriteTimeout configures the bounded-time write used by every write
// operation.
func (s *Session) SetWriteTimeout(d time.Duration) { s.writeTO = d }

// IntoInner reclaims the underlying stream. It fails with HasUnparsedBytes
// if the decoder's scratch buffer still holds bytes the caller never
// consumed, since those bytes would otherwise be silently discarded.
func (s *Session) IntoInner() (Stream, error) {
	if s.dec.HasUnparsedSuffix() {
		return nil, errs.HasUnparsedBytes()
	}
	return s.stream, nil
}

func (s *Session) setDeadline(d time.Duration) {
	if ds, ok := s.stream.(deadlineStream); ok {
		_ = ds.SetDeadline(s.clock.Now().Add(d))
	}
}

func (s *Session) fill() error {
	s.setDeadline(s.readTO)
	slice, err := s.dec.ReadSlice()
	if err != nil {
		return err
	}
	n, err := s.stream.Read(slice)
	if err != nil {
		return errs.Wrap(errs.KindTransport, "stream read", err)
	}
	return s.dec.Fed(n)
}

func (s *Session) readHead() error {
	for {
		if s.dec.RequireRead() {
			if err := s.fill(); err != nil {
				return err
			}
		}
		done, err := s.dec.ParseHead()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (s *Session) readBody() ([]byte, error) {
	var body []byte
	out := make([]byte, 4096)
	for {
		if s.dec.RequireRead() {
			if err := s.fill(); err != nil {
				return nil, err
			}
		}
		n, done, err := s.dec.ReadBody(out)
		if err != nil {
			return nil, err
		}
		body = append(body, out[:n]...)
		if done {
			return body, nil
		}
	}
}

func (s *Session) writeAll(buf []byte) error {
	s.setDeadline(s.writeTO)
	for len(buf) > 0 {
		n, err := s.stream.Write(buf)
		if err != nil {
			return errs.Wrap(errs.KindTransport, "stream write", err)
		}
		buf = buf[n:]
	}
	return nil
}

func (s *Session) writeBody(body []byte) error {
	err := s.writeAll(body)
	if err != nil {
		return err
	}
	return s.enc.WriteBody(len(body), true)
}

// hasNoBody reports whether fr carries no body to drain: framing.None, or
// framing.ContentLength with a declared length of zero. ParseHead leaves
// the decoder in decIdle (not decReadBody) for both, so callers must skip
// readBody in both cases, not just framing.None.
func hasNoBody(fr framing.Framing) bool {
	return fr.Kind == framing.None || (fr.Kind == framing.ContentLength && fr.Remaining == 0)
}

// ClientSession is the client half of the adapter: it writes requests and
// reads responses.
type ClientSession struct{ *Session }

// NewClient wraps a Session as a ClientSession.
func NewClient(s *Session) ClientSession { return ClientSession{s} }

// WriteRequest computes ContentLength(len(body)) framing, renders the
// request head, and streams the body.
func (c ClientSession) WriteRequest(head headparser.RequestHead, body []byte) error {
	fr := framing.Framing{Kind: framing.ContentLength, Remaining: int64(len(body))}
	buf, err := c.enc.WriteRequest(head, fr)
	if err != nil {
		return err
	}
	if err := c.writeAll(buf); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return c.writeBody(body)
}

// ReadResponse reads one response head, then drains its body into a single
// contiguous buffer.
func (c ClientSession) ReadResponse() (headparser.ResponseHead, []byte, error) {
	c.dec.StartResponse()
	if err := c.readHead(); err != nil {
		return headparser.ResponseHead{}, nil, err
	}
	head := c.dec.ResponseHead()
	if hasNoBody(c.dec.Framing()) {
		return head, nil, nil
	}
	body, err := c.readBody()
	if err != nil {
		return headparser.ResponseHead{}, nil, err
	}
	return head, body, nil
}

// ServerSession is the server half of the adapter: it reads requests and
// writes responses.
type ServerSession struct{ *Session }

// NewServer wraps a Session as a ServerSession.
func NewServer(s *Session) ServerSession { return ServerSession{s} }

// ReadRequest reads one request head, then drains its body into a single
// contiguous buffer.
func (sv ServerSession) ReadRequest() (headparser.RequestHead, []byte, error) {
	sv.dec.StartRequest()
	if err := sv.readHead(); err != nil {
		return headparser.RequestHead{}, nil, err
	}
	head := sv.dec.RequestHead()
	if hasNoBody(sv.dec.Framing()) {
		return head, nil, nil
	}
	body, err := sv.readBody()
	if err != nil {
		return headparser.RequestHead{}, nil, err
	}
	return head, body, nil
}

// WriteResponse computes ContentLength(len(body)) framing, renders the
// response head (reason is used verbatim if non-empty; otherwise the
// canonical reason phrase is substituted by the renderer), and streams the
// body.
func (sv ServerSession) WriteResponse(head headparser.ResponseHead, body []byte) error {
	fr := framing.Framing{Kind: framing.ContentLength, Remaining: int64(len(body))}
	buf, err := sv.enc.WriteResponse(head, fr)
	if err != nil {
		return err
	}
	if err := sv.writeAll(buf); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return sv.writeBody(body)
}
