// Package http1 is the one-shot convenience layer over this module's
// streaming codec: Marshal/Unmarshal a whole HTTP/1.x message from a single
// contiguous buffer, without driving a Stream or a session.Session.
//
// Mirrors the top-level surface of github.com/shapestone/shape-http's
// pkg/http (Marshal/Unmarshal/UnmarshalRequest/UnmarshalResponse), adapted
// to this module's headparser/headrender/framing/bodyparser types instead
// of that package's own Request/Response structs.
package http1

import (
	"bytes"
	"fmt"

	"github.com/flowmesh/http1/bodyparser"
	"github.com/flowmesh/http1/errs"
	"github.com/flowmesh/http1/framing"
	"github.com/flowmesh/http1/headparser"
	"github.com/flowmesh/http1/headrender"
)

// MessageType tags whether a buffer holds a request or a response head,
// per DetectMessageType.
type MessageType int

const (
	// Unknown means DetectMessageType couldn't classify the buffer (too
	// short to tell).
	Unknown MessageType = iota
	Request
	Response
)

// DetectMessageType classifies data by whether it opens with the literal
// "HTTP/" (a response status line) or not (a request line), the same
// heuristic the teacher's Unmarshal dispatch uses.
func DetectMessageType(data []byte) MessageType {
	if len(data) == 0 {
		return Unknown
	}
	if bytes.HasPrefix(data, []byte("HTTP/")) {
		return Response
	}
	return Request
}

// Message is the result of Unmarshal: exactly one of Request/Response is
// non-nil, matching the detected MessageType.
type Message struct {
	Type     MessageType
	Request  *headparser.RequestHead
	Response *headparser.ResponseHead
	Body     []byte
	// Consumed is the number of bytes of the input buffer this message
	// occupied (head plus body); bytes beyond it are a caller's problem
	// (pipelined messages, or trailing garbage).
	Consumed int
}

// Unmarshal parses one complete HTTP/1.x message (head plus body) out of
// data, auto-detecting request vs. response per DetectMessageType.
func Unmarshal(data []byte, cfg headparser.Config) (Message, error) {
	switch DetectMessageType(data) {
	case Response:
		head, body, n, err := UnmarshalResponse(data, cfg)
		if err != nil {
			return Message{}, err
		}
		return Message{Type: Response, Response: &head, Body: body, Consumed: n}, nil
	default:
		head, body, n, err := UnmarshalRequest(data, cfg)
		if err != nil {
			return Message{}, err
		}
		return Message{Type: Request, Request: &head, Body: body, Consumed: n}, nil
	}
}

// UnmarshalRequest parses data as a single request head plus body,
// returning the head, the body bytes, and the total bytes consumed.
func UnmarshalRequest(data []byte, cfg headparser.Config) (headparser.RequestHead, []byte, int, error) {
	p := headparser.NewRequestParser(cfg)
	o, err := p.Parse(data)
	if err != nil {
		return headparser.RequestHead{}, nil, o.N, err
	}
	if !o.Done {
		return headparser.RequestHead{}, nil, o.N, errs.New(errs.KindTransport, "incomplete request head")
	}
	head := p.Head()
	body, bodyN, err := readBody(data[o.N:], head.Headers, head.Version)
	if err != nil {
		return headparser.RequestHead{}, nil, o.N, err
	}
	return head, body, o.N + bodyN, nil
}

// UnmarshalResponse parses data as a single response head plus body,
// returning the head, the body bytes, and the total bytes consumed.
func UnmarshalResponse(data []byte, cfg headparser.Config) (headparser.ResponseHead, []byte, int, error) {
	p := headparser.NewResponseParser(cfg)
	o, err := p.Parse(data)
	if err != nil {
		return headparser.ResponseHead{}, nil, o.N, err
	}
	if !o.Done {
		return headparser.ResponseHead{}, nil, o.N, errs.New(errs.KindTransport, "incomplete response head")
	}
	head := p.Head()
	body, bodyN, err := readBody(data[o.N:], head.Headers, head.Version)
	if err != nil {
		return headparser.ResponseHead{}, nil, o.N, err
	}
	return head, body, o.N + bodyN, nil
}

// readBody drains exactly one framed body out of rest, per the framing
// decided from headers/version. It never consumes more than the framing
// says the body occupies: on Chunked it stops at the terminal chunk's CRLF;
// on ContentLength it stops at the declared length; on None it consumes
// nothing.
func readBody(rest []byte, headers headparser.Headers, version string) ([]byte, int, error) {
	fr, err := framing.Decide(headers, version)
	if err != nil {
		return nil, 0, err
	}
	switch fr.Kind {
	case framing.None:
		return nil, 0, nil
	case framing.ContentLength:
		if fr.Remaining == 0 {
			return nil, 0, nil
		}
		if int64(len(rest)) < fr.Remaining {
			return nil, 0, errs.New(errs.KindTransport, "incomplete body")
		}
		cl := bodyparser.NewContentLength(fr.Remaining)
		out := make([]byte, fr.Remaining)
		n, o := cl.Read(rest, out)
		if !o.Done {
			return nil, 0, errs.New(errs.KindTransport, "incomplete body")
		}
		return out, n, nil
	case framing.Chunked:
		ch := bodyparser.NewChunked()
		var body []byte
		buf := make([]byte, bodyparser.DefaultDataBufSize)
		consumedIn := 0
		for {
			n, produced, o, err := ch.Read(rest[consumedIn:], buf)
			consumedIn += n
			body = append(body, buf[:produced]...)
			if err != nil {
				return nil, 0, err
			}
			if o.Done {
				return body, consumedIn, nil
			}
			if n == 0 && produced == 0 {
				return nil, 0, errs.New(errs.KindTransport, "incomplete chunked body")
			}
		}
	default:
		return nil, 0, fmt.Errorf("http1: unknown framing kind %v", fr.Kind)
	}
}

// MarshalRequest renders head's request line and headers, rewritten to
// advertise ContentLength(len(body)) framing, followed by body.
func MarshalRequest(head headparser.RequestHead, body []byte) ([]byte, error) {
	head.Headers = head.Headers.Clone()
	rewriteForBody(&head.Headers, head.Version, len(body))
	buf, err := headrender.Request(nil, head)
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}

// MarshalResponse renders head's status line and headers, rewritten to
// advertise ContentLength(len(body)) framing, followed by body.
func MarshalResponse(head headparser.ResponseHead, body []byte) ([]byte, error) {
	head.Headers = head.Headers.Clone()
	rewriteForBody(&head.Headers, head.Version, len(body))
	buf, err := headrender.Response(nil, head)
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}

func rewriteForBody(h *headparser.Headers, version string, bodyLen int) {
	h.Del("Transfer-Encoding")
	if bodyLen == 0 {
		h.Del("Content-Length")
		return
	}
	h.Set("Content-Length", fmt.Sprintf("%d", bodyLen))
}
