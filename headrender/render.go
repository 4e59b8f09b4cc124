// Package headrender serializes a parsed head back into wire bytes. It is
// the write-path counterpart to headparser: byte-buffer in, structured head
// in (for headparser); structured head in, byte buffer out (here).
package headrender

import (
	"strconv"

	"github.com/flowmesh/http1/errs"
	"github.com/flowmesh/http1/headparser"
	"github.com/flowmesh/http1/wire"
)

// appendCRLF appends CRLF to buf.
func appendCRLF(buf []byte) []byte {
	return append(buf, wire.CR, wire.LF)
}

func appendHeaders(buf []byte, h headparser.Headers) []byte {
	for _, e := range h.All() {
		buf = append(buf, e.Name...)
		buf = append(buf, wire.COLON)
		buf = append(buf, e.Value...)
		buf = appendCRLF(buf)
	}
	return appendCRLF(buf)
}

// Request renders head into buf, appending
// "METHOD SP request-target SP HTTP/X.Y CRLF (header-line)* CRLF". Header
// names are written as stored (already canonical lowercase); no whitespace
// follows the colon. Versions 2 and 3 are accepted and emitted verbatim,
// mirroring real-world curl output.
func Request(buf []byte, head headparser.RequestHead) ([]byte, error) {
	if !wire.IsKnownVersion(head.Version) {
		return buf, errs.Invalid("HttpVersion")
	}
	buf = append(buf, head.Method...)
	buf = append(buf, wire.SP)
	buf = append(buf, head.URI...)
	buf = append(buf, wire.SP)
	buf = append(buf, head.Version...)
	buf = appendCRLF(buf)
	buf = appendHeaders(buf, head.Headers)
	return buf, nil
}

// Response renders head into buf, appending
// "HTTP/X.Y SP status-code SP reason? CRLF (header-line)* CRLF". Only
// HTTP/1.0 and HTTP/1.1 round-trip; any other version is InvalidInput. If
// head.Reason is empty, the canonical reason phrase for the status code is
// substituted when one is known.
func Response(buf []byte, head headparser.ResponseHead) ([]byte, error) {
	if head.Version != wire.HTTP10 && head.Version != wire.HTTP11 {
		return buf, errs.Invalid("HttpVersion")
	}
	reason := head.Reason
	if reason == "" {
		reason = wire.ReasonPhrase(head.StatusCode)
	}
	buf = append(buf, head.Version...)
	buf = append(buf, wire.SP)
	buf = strconv.AppendInt(buf, int64(head.StatusCode), 10)
	buf = append(buf, wire.SP)
	buf = append(buf, reason...)
	buf = appendCRLF(buf)
	buf = appendHeaders(buf, head.Headers)
	return buf, nil
}
