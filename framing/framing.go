// Package framing implements the body-framing decision: given a message's
// final headers and protocol version, classify how (or whether) its body is
// delimited.
//
// Grounded on fastparser.isChunked/getContentLength (see
// github.com/shapestone/shape-http's internal/fastparser/parser.go), pulled
// out into its own package because the codec needs to run the same decision
// independently on the read path (after a head completes) and the write
// path (before a head renders).
package framing

import (
	"strconv"
	"strings"

	"github.com/flowmesh/http1/errs"
	"github.com/flowmesh/http1/wire"
)

// Kind tags which framing strategy a Framing value carries.
type Kind int

const (
	// None means the body has no declared length: absent entirely, or
	// (on read) delimited only by connection close, which this codec does
	// not track.
	None Kind = iota
	// ContentLength means the body is exactly N bytes, per the
	// Content-Length header.
	ContentLength
	// Chunked means the body is delimited by chunked transfer coding.
	Chunked
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case ContentLength:
		return "ContentLength"
	case Chunked:
		return "Chunked"
	default:
		return "Unknown"
	}
}

// Framing is the tagged variant {None, ContentLength(n), Chunked}. Remaining
// is mutated by body parsers/renderers as a ContentLength body's bytes flow;
// it is meaningless for None and Chunked.
type Framing struct {
	Kind      Kind
	Remaining int64
}

// HeaderLookup is the minimal header-source capability the decider needs:
// exactly what headparser.Headers and the codec's header-rewrite step can
// both provide without importing each other.
type HeaderLookup interface {
	Get(name string) (string, bool)
}

// Decide classifies the body framing for headers observed on a message of
// the given protocol version:
//
//  1. Content-Length present → parse as base-10 non-negative int; any
//     parse failure is InvalidInput.
//  2. Else, version HTTP/1.1 and Transfer-Encoding contains "chunked"
//     (case-sensitive literal match) → Chunked.
//  3. Else → None.
//
// Both headers present resolves in favor of Content-Length.
func Decide(h HeaderLookup, version string) (Framing, error) {
	if v, ok := h.Get("Content-Length"); ok {
		n, err := parseContentLength(v)
		if err != nil {
			return Framing{}, errs.Wrap(errs.KindMalformed, "invalid Content-Length", err)
		}
		return Framing{Kind: ContentLength, Remaining: n}, nil
	}
	if version == wire.HTTP11 {
		if te, ok := h.Get("Transfer-Encoding"); ok && containsChunked(te) {
			return Framing{Kind: Chunked}, nil
		}
	}
	return Framing{Kind: None}, nil
}

func parseContentLength(v string) (int64, error) {
	for i := 0; i < len(v); i++ {
		if v[i] > 0x7F {
			return 0, errs.New(errs.KindMalformed, "non-ASCII Content-Length")
		}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0, errs.Newf(errs.KindMalformed, "malformed Content-Length %q", v)
	}
	return n, nil
}

// containsChunked matches the lowercase "chunked" literal against the
// Transfer-Encoding value, case-sensitively.
func containsChunked(te string) bool {
	for _, part := range strings.Split(te, ",") {
		if strings.TrimSpace(part) == wire.Chunked {
			return true
		}
	}
	return false
}
