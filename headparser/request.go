package headparser

import (
	"bytes"

	"github.com/flowmesh/http1/errs"
	"github.com/flowmesh/http1/wire"
)

type requestState int

const (
	reqStateMethod requestState = iota
	reqStateURI
	reqStateVersion
	reqStateHeaders
)

// RequestParser is the resumable request-head state machine: Idle ->
// MethodParsed -> UriParsed -> HttpVersionParsed -> HeadersParsing -> Idle.
// Grounded on fastparser.Parser.parseRequestLine /
// parseHeaders (github.com/shapestone/shape-http's
// internal/fastparser/parser.go), reworked from "parse one complete buffer"
// into a state machine that can suspend and resume between any two bytes.
type RequestParser struct {
	cfg   Config
	state requestState
	fld   fieldScratch
	head  RequestHead

	headersLen   int  // aggregate header-section bytes consumed so far
	headersEnded bool // set by stepHeaderLine when the empty line is seen
}

// NewRequestParser creates a resumable parser using cfg for its bounds.
func NewRequestParser(cfg Config) *RequestParser {
	return &RequestParser{cfg: cfg, state: reqStateMethod}
}

// Head returns the head assembled so far. It is only complete and
// meaningful once Parse has returned a completed Outcome.
func (p *RequestParser) Head() RequestHead { return p.head }

// Parse feeds buf to the state machine and returns how many bytes of buf it
// consumed this call, and whether the head is now complete. Calling Parse
// again after a non-completed Outcome resumes at the same state with the
// same per-field scratch; the caller must not skip or duplicate bytes.
//
// A single call may advance through several fields (or several header
// lines) if buf holds enough bytes; it stops the moment a field scan can't
// complete from the bytes remaining, or the moment the head completes.
func (p *RequestParser) Parse(buf []byte) (Outcome, error) {
	total := 0
	for {
		consumed, fieldDone, err := p.step(buf[total:])
		total += consumed
		if err != nil {
			return Outcome{N: total}, err
		}
		if !fieldDone {
			return Outcome{N: total, Done: false}, nil
		}
		if p.headersEnded {
			p.state = reqStateMethod
			p.headersLen = 0
			p.headersEnded = false
			return Outcome{N: total, Done: true}, nil
		}
		if total >= len(buf) {
			return Outcome{N: total, Done: false}, nil
		}
	}
}

// step runs exactly one field-scan against buf and advances state on
// completion. fieldDone means this particular scan (one token, or one
// header line) finished; it says nothing about whether the whole head is
// complete — callers check p.headersEnded for that.
func (p *RequestParser) step(buf []byte) (n int, fieldDone bool, err error) {
	switch p.state {
	case reqStateMethod:
		v, n, done, err := scanSP(buf, &p.fld, int(p.cfg.MethodMaxLen), "Method")
		if err != nil || !done {
			return n, false, err
		}
		if len(v) == 0 {
			return n, false, errs.Invalid("Method")
		}
		p.head.Method = string(v)
		p.state = reqStateURI
		return n, true, nil

	case reqStateURI:
		v, n, done, err := scanSP(buf, &p.fld, int(p.cfg.URIMaxLen), "Uri")
		if err != nil || !done {
			return n, false, err
		}
		if len(v) == 0 {
			return n, false, errs.Invalid("Uri")
		}
		p.head.URI = string(v)
		p.state = reqStateVersion
		return n, true, nil

	case reqStateVersion:
		v, n, done, err := scanCRLF(buf, &p.fld, wire.MaxVersionLen, "HttpVersion")
		if err != nil || !done {
			return n, false, err
		}
		tok := string(v)
		if !wire.IsKnownVersion(tok) {
			return n, false, errs.Invalid("HttpVersion")
		}
		p.head.Version = tok
		p.head.Headers = Headers{}
		p.state = reqStateHeaders
		return n, true, nil

	case reqStateHeaders:
		return p.stepHeaderLine(buf)
	}
	panic("headparser: unreachable request state")
}

func (p *RequestParser) stepHeaderLine(buf []byte) (n int, fieldDone bool, err error) {
	v, n, done, err := scanCRLF(buf, &p.fld, int(p.cfg.HeaderMaxLen), "Header")
	if err != nil || !done {
		return n, false, err
	}
	if len(v) == 0 {
		p.headersEnded = true
		return n, true, nil
	}
	p.headersLen += len(v) + 2
	if p.headersLen > int(p.cfg.HeadersMaxLen) {
		return n, false, errs.TooLong("Headers")
	}
	name, value, ok := splitHeaderLine(v)
	if !ok {
		return n, false, errs.Invalid("Header")
	}
	p.head.Headers.Add(name, value)
	return n, true, nil
}

// splitHeaderLine splits a raw header line at its first colon, stripping
// exactly one leading space from the value. Any subsequent colons belong to
// the value.
func splitHeaderLine(line []byte) (name, value string, ok bool) {
	idx := bytes.IndexByte(line, wire.COLON)
	if idx < 0 {
		return "", "", false
	}
	name = string(line[:idx])
	rest := line[idx+1:]
	if len(rest) > 0 && rest[0] == wire.SP {
		rest = rest[1:]
	}
	return name, string(rest), true
}
