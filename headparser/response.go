package headparser

import (
	"strconv"

	"github.com/flowmesh/http1/errs"
	"github.com/flowmesh/http1/wire"
)

type responseState int

const (
	respStateVersion responseState = iota
	respStateStatusCode
	respStateReason
	respStateHeaders
)

// ResponseParser is the resumable response-head state machine: Idle ->
// HttpVersionParsed -> StatusCodeParsed -> ReasonPhraseParsed ->
// HeadersParsing -> Idle. Grounded the same way as
// RequestParser, on fastparser.Parser.parseStatusLine.
type ResponseParser struct {
	cfg   Config
	state responseState
	fld   fieldScratch
	head  ResponseHead

	headersLen   int
	headersEnded bool
}

// NewResponseParser creates a resumable parser using cfg for its bounds.
func NewResponseParser(cfg Config) *ResponseParser {
	return &ResponseParser{cfg: cfg, state: respStateVersion}
}

// Head returns the head assembled so far; only meaningful once Parse
// returns a completed Outcome.
func (p *ResponseParser) Head() ResponseHead { return p.head }

// Parse has the same resumability contract as RequestParser.Parse.
func (p *ResponseParser) Parse(buf []byte) (Outcome, error) {
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
			p.state = respStateVersion
			p.headersLen = 0
			p.headersEnded = false
			return Outcome{N: total, Done: true}, nil
		}
		if total >= len(buf) {
			return Outcome{N: total, Done: false}, nil
		}
	}
}

func (p *ResponseParser) step(buf []byte) (n int, fieldDone bool, err error) {
	switch p.state {
	case respStateVersion:
		v, n, done, err := scanSP(buf, &p.fld, wire.MaxVersionLen, "HttpVersion")
		if err != nil || !done {
			return n, false, err
		}
		tok := string(v)
		if !wire.IsKnownVersion(tok) {
			return n, false, errs.Invalid("HttpVersion")
		}
		p.head.Version = tok
		p.state = respStateStatusCode
		return n, true, nil

	case respStateStatusCode:
		return p.stepStatusCode(buf)

	case respStateReason:
		v, n, done, err := scanCRLF(buf, &p.fld, int(p.cfg.ReasonPhraseMaxLen), "ReasonPhrase")
		if err != nil || !done {
			return n, false, err
		}
		p.head.Reason = string(v)
		p.head.Headers = Headers{}
		p.state = respStateHeaders
		return n, true, nil

	case respStateHeaders:
		return p.stepHeaderLine(buf)
	}
	panic("headparser: unreachable response state")
}

// stepStatusCode scans the 3-digit status code, which is followed either by
// "SP reason CRLF" or directly by "CRLF" when the peer sent no reason
// phrase. Both a bare SP and a bare CR count as the field's terminator; the
// limit is the 3 digits plus a 1-byte terminator.
func (p *ResponseParser) stepStatusCode(buf []byte) (n int, fieldDone bool, err error) {
	const statusDigits = 3
	if p.fld.sawCR {
		if len(buf) == 0 {
			return 0, false, nil
		}
		if buf[0] != wire.LF {
			return 0, false, errs.InvalidCRLF()
		}
		code, ok := parseStatusCode(p.fld.data)
		p.fld.reset()
		if !ok {
			return 1, false, errs.Invalid("StatusCode")
		}
		p.head.StatusCode = code
		p.head.Reason = ""
		p.head.Headers = Headers{}
		p.state = respStateHeaders
		return 1, true, nil
	}
	for i, b := range buf {
		switch {
		case b == wire.SP:
			v := append(append([]byte(nil), p.fld.data...), buf[:i]...)
			p.fld.reset()
			code, ok := parseStatusCode(v)
			if !ok {
				return i + 1, false, errs.Invalid("StatusCode")
			}
			p.head.StatusCode = code
			p.state = respStateReason
			return i + 1, true, nil
		case b == wire.CR:
			v := append(append([]byte(nil), p.fld.data...), buf[:i]...)
			code, ok := parseStatusCode(v)
			if !ok {
				return i, false, errs.Invalid("StatusCode")
			}
			if i+1 >= len(buf) {
				// Need the LF to confirm; fold digits into scratch and
				// resume from sawCR at the top of this function next call.
				p.fld.data = v
				p.fld.sawCR = true
				return i + 1, false, nil
			}
			if buf[i+1] != wire.LF {
				return i, false, errs.InvalidCRLF()
			}
			p.fld.reset()
			p.head.StatusCode = code
			p.head.Reason = ""
			p.head.Headers = Headers{}
			p.state = respStateHeaders
			return i + 2, true, nil
		default:
			if p.fld.len()+i >= statusDigits {
				return 0, false, errs.TooLong("StatusCode")
			}
		}
	}
	if p.fld.len()+len(buf) > statusDigits {
		return 0, false, errs.TooLong("StatusCode")
	}
	p.fld.data = append(p.fld.data, buf...)
	return len(buf), false, nil
}

func parseStatusCode(v []byte) (int, bool) {
	if len(v) != 3 {
		return 0, false
	}
	n, err := strconv.Atoi(string(v))
	if err != nil || n < 0 || n > 999 {
		return 0, false
	}
	return n, true
}

func (p *ResponseParser) stepHeaderLine(buf []byte) (n int, fieldDone bool, err error) {
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
