// Package wire holds the canonical byte sequences and lookup tables shared
// by every other package in this module: the HTTP/1.x framing bytes,
// recognized protocol version tokens, and the default reason-phrase table.
package wire

// Single-byte wire constants.
const (
	SP    byte = 0x20
	CR    byte = 0x0D
	LF    byte = 0x0A
	COLON byte = 0x3A
)

// CRLF is the line terminator used throughout HTTP/1.x head syntax.
var CRLF = []byte{CR, LF}

// Chunked is the lowercase transfer-coding literal the framing decider
// matches against Transfer-Encoding values.
const Chunked = "chunked"

// Recognized protocol version tokens. Only HTTP10 and HTTP11 round-trip
// through the response renderer; HTTP2 and HTTP3 are recognized on parse
// and accepted by the request renderer only (mirroring curl's own output).
const (
	HTTP10 = "HTTP/1.0"
	HTTP11 = "HTTP/1.1"
	HTTP2  = "HTTP/2"
	HTTP3  = "HTTP/3"
)

// MaxVersionLen bounds the version token lexeme (the longest recognized
// token, "HTTP/1.1", is 8 bytes).
const MaxVersionLen = 8

// IsKnownVersion reports whether tok is one of the four recognized version
// tokens.
func IsKnownVersion(tok string) bool {
	switch tok {
	case HTTP10, HTTP11, HTTP2, HTTP3:
		return true
	default:
		return false
	}
}

// ReasonPhrases maps well-known status codes to their canonical reason
// phrase, used by the response renderer when the caller supplies none.
var ReasonPhrases = map[int]string{
	100: "Continue",
	101: "Switching Protocols",
	200: "OK",
	201: "Created",
	202: "Accepted",
	203: "Non-Authoritative Information",
	204: "No Content",
	205: "Reset Content",
	206: "Partial Content",
	300: "Multiple Choices",
	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	307: "Temporary Redirect",
	308: "Permanent Redirect",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Payload Too Large",
	414: "URI Too Long",
	415: "Unsupported Media Type",
	416: "Range Not Satisfiable",
	417: "Expectation Failed",
	426: "Upgrade Required",
	429: "Too Many Requests",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	505: "HTTP Version Not Supported",
}

// ReasonPhrase returns the canonical reason phrase for code, or "" if none
// is known.
func ReasonPhrase(code int) string {
	return ReasonPhrases[code]
}
