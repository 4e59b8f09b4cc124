package headparser

import (
	"github.com/flowmesh/http1/errs"
	"github.com/flowmesh/http1/wire"
)

// fieldScratch is the small growable buffer reused across partial calls for
// whichever field is currently being assembled. sawCR records that the
// previous byte seen was a bare CR still awaiting its LF, since that CR is
// never itself appended to data.
type fieldScratch struct {
	data  []byte
	sawCR bool
}

func (s *fieldScratch) reset() {
	s.data = s.data[:0]
	s.sawCR = false
}

func (s *fieldScratch) len() int { return len(s.data) }

// scanSP scans buf for a single SP terminator (used by method, URI, and the
// response-line version token). limit bounds the lexeme length excluding
// the terminator itself. Returns the assembled value and bytes consumed
// from buf on a completed scan; returns done=false with no value on a
// partial scan (the bytes consumed this call are folded into scratch).
func scanSP(buf []byte, s *fieldScratch, limit int, field string) (value []byte, n int, done bool, err error) {
	for i, b := range buf {
		if b == wire.SP {
			value = append(append([]byte(nil), s.data...), buf[:i]...)
			s.reset()
			return value, i + 1, true, nil
		}
		if s.len()+i+1 > limit {
			return nil, 0, false, errs.TooLong(field)
		}
	}
	if s.len()+len(buf) > limit {
		return nil, 0, false, errs.TooLong(field)
	}
	s.data = append(s.data, buf...)
	return nil, len(buf), false, nil
}

// scanCRLF scans buf for a CRLF terminator (used by request-line version,
// reason phrase, and header lines). A bare LF with no preceding CR is
// InvalidCRLF. limit bounds the lexeme length excluding the two-byte
// terminator.
func scanCRLF(buf []byte, s *fieldScratch, limit int, field string) (value []byte, n int, done bool, err error) {
	i := 0
	if s.sawCR {
		if len(buf) == 0 {
			return nil, 0, false, nil
		}
		if buf[0] != wire.LF {
			return nil, 0, false, errs.InvalidCRLF()
		}
		value = append([]byte(nil), s.data...)
		s.reset()
		return value, 1, true, nil
	}
	for i = 0; i < len(buf); i++ {
		b := buf[i]
		if b == wire.CR {
			if s.len()+i > limit {
				return nil, 0, false, errs.TooLong(field)
			}
			if i+1 < len(buf) {
				if buf[i+1] != wire.LF {
					return nil, 0, false, errs.InvalidCRLF()
				}
				value = append(append([]byte(nil), s.data...), buf[:i]...)
				s.reset()
				return value, i + 2, true, nil
			}
			// CR is the last byte available this call: fold the
			// pre-CR bytes into scratch and remember we're waiting on LF.
			s.data = append(s.data, buf[:i]...)
			s.sawCR = true
			return nil, i + 1, false, nil
		}
		if b == wire.LF {
			return nil, 0, false, errs.InvalidCRLF()
		}
		if s.len()+i+1 > limit {
			return nil, 0, false, errs.TooLong(field)
		}
	}
	if s.len()+len(buf) > limit {
		return nil, 0, false, errs.TooLong(field)
	}
	s.data = append(s.data, buf...)
	return nil, len(buf), false, nil
}
