package codec

import (
	"testing"

	"github.com/flowmesh/http1/errs"
	"github.com/flowmesh/http1/framing"
	"github.com/flowmesh/http1/headparser"
)

func feed(t *testing.T, d *Decoder, data []byte) {
	t.Helper()
	for len(data) > 0 {
		slice, err := d.ReadSlice()
		if err != nil {
			t.Fatalf("ReadSlice() error = %v", err)
		}
		n := copy(slice, data)
		if n == 0 {
			t.Fatalf("ReadSlice() returned zero-length slice with data remaining")
		}
		if err := d.Fed(n); err != nil {
			t.Fatalf("Fed() error = %v", err)
		}
		data = data[n:]
	}
}

func TestDecoderReadRequestWithContentLengthBody(t *testing.T) {
	d := NewDecoder(headparser.DefaultConfig())
	d.StartRequest()
	msg := "POST /x HTTP/1.1\r\nContent-Length: 3\r\n\r\nfoo"
	feed(t, d, []byte(msg))

	done, err := d.ParseHead()
	if err != nil {
		t.Fatalf("ParseHead() error = %v", err)
	}
	if !done {
		t.Fatalf("ParseHead() not done with full buffer fed")
	}
	if d.Framing().Kind != framing.ContentLength || d.Framing().Remaining != 3 {
		t.Fatalf("Framing() = %+v, want ContentLength(3)", d.Framing())
	}

	out := make([]byte, 16)
	n, bodyDone, err := d.ReadBody(out)
	if err != nil {
		t.Fatalf("ReadBody() error = %v", err)
	}
	if !bodyDone || string(out[:n]) != "foo" {
		t.Fatalf("ReadBody() = n=%d done=%v body=%q, want foo", n, bodyDone, out[:n])
	}
}

func TestDecoderContentLengthZeroStaysIdle(t *testing.T) {
	d := NewDecoder(headparser.DefaultConfig())
	d.StartRequest()
	feed(t, d, []byte("GET /x HTTP/1.1\r\nContent-Length: 0\r\n\r\n"))

	done, err := d.ParseHead()
	if err != nil {
		t.Fatalf("ParseHead() error = %v", err)
	}
	if !done {
		t.Fatalf("ParseHead() not done with full buffer fed")
	}
	if d.Framing().Kind != framing.ContentLength || d.Framing().Remaining != 0 {
		t.Fatalf("Framing() = %+v, want ContentLength(0)", d.Framing())
	}
	// ParseHead must leave the decoder idle for ContentLength(0), not
	// ReadBody: callers that skip straight to ReadBody here would hit
	// "state should is ReadBody".
	if _, _, err := d.ReadBody(make([]byte, 4)); !errs.Is(err, errs.KindMisuse) {
		t.Fatalf("ReadBody() on an idle ContentLength(0) decoder = %v, want KindMisuse", err)
	}
}

func TestDecoderScratchRotationAcrossMessages(t *testing.T) {
	d := NewDecoderSize(headparser.DefaultConfig(), 64)
	msg1 := "GET /a HTTP/1.1\r\n\r\n"
	msg2 := "GET /b HTTP/1.1\r\n\r\n"

	d.StartRequest()
	feed(t, d, []byte(msg1+msg2))
	done, err := d.ParseHead()
	if err != nil || !done {
		t.Fatalf("ParseHead() = %v, %v", done, err)
	}
	if d.RequestHead().URI != "/a" {
		t.Fatalf("URI = %q, want /a", d.RequestHead().URI)
	}
	if !d.HasUnparsedSuffix() {
		t.Fatalf("expected unparsed suffix holding second message")
	}

	// Asking for the next read slice rotates the unparsed second message to
	// the front of the scratch buffer.
	if _, err := d.ReadSlice(); err != nil {
		t.Fatalf("ReadSlice() error = %v", err)
	}
	d.StartRequest()
	done, err = d.ParseHead()
	if err != nil {
		t.Fatalf("second ParseHead() error = %v", err)
	}
	if !done {
		t.Fatalf("second ParseHead() not done from rotated suffix")
	}
	if d.RequestHead().URI != "/b" {
		t.Fatalf("URI = %q, want /b", d.RequestHead().URI)
	}
}

func TestDecoderOverflowScratch(t *testing.T) {
	// Filling the scratch buffer to capacity without ever handing the
	// bytes to ParseHead leaves offsetParsed behind offsetRead at
	// capacity: the next ReadSlice has no room left to rotate into and
	// must fail with the scratch-overflow error.
	d := NewDecoderSize(headparser.DefaultConfig(), 8)
	d.StartRequest()
	slice, err := d.ReadSlice()
	if err != nil {
		t.Fatalf("ReadSlice() error = %v", err)
	}
	n := copy(slice, "GET /aaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	if n != 8 {
		t.Fatalf("copy() = %d, want 8 (full scratch)", n)
	}
	if err := d.Fed(n); err != nil {
		t.Fatalf("Fed() error = %v", err)
	}
	_, err = d.ReadSlice()
	if !errs.Is(err, errs.KindOverflow) {
		t.Fatalf("ReadSlice() error = %v, want KindOverflow", err)
	}
}

func TestEncoderWriteRequestNoBody(t *testing.T) {
	e := NewEncoder()
	var h headparser.Headers
	h.Add("Host", "example.com")
	head := headparser.RequestHead{Method: "GET", URI: "/", Version: "HTTP/1.1", Headers: h}
	buf, err := e.WriteRequest(head, framing.Framing{Kind: framing.None})
	if err != nil {
		t.Fatalf("WriteRequest() error = %v", err)
	}
	want := "GET / HTTP/1.1\r\nhost:example.com\r\n\r\n"
	if string(buf) != want {
		t.Errorf("WriteRequest() = %q, want %q", buf, want)
	}
}

func TestEncoderWriteRequestDoesNotMutateCallersHeaders(t *testing.T) {
	// head.Headers shares a backing array with original: rewriteHeaders's
	// Del/Set must not be allowed to compact/overwrite that array in
	// place, or the caller's own Headers value (copied by value into
	// WriteRequest, but still pointing at the same backing array) would
	// observe the rewrite.
	var original headparser.Headers
	original.Add("Transfer-Encoding", "chunked")
	original.Add("Host", "example.com")
	head := headparser.RequestHead{Method: "POST", URI: "/", Version: "HTTP/1.1", Headers: original}

	e := NewEncoder()
	if _, err := e.WriteRequest(head, framing.Framing{Kind: framing.ContentLength, Remaining: 3}); err != nil {
		t.Fatalf("WriteRequest() error = %v", err)
	}

	if original.Len() != 2 {
		t.Fatalf("caller's original Headers mutated: Len() = %d, want 2", original.Len())
	}
	if v, ok := original.Get("Transfer-Encoding"); !ok || v != "chunked" {
		t.Errorf("caller's Transfer-Encoding = %q, %v, want chunked, true (unmutated)", v, ok)
	}
	if v, ok := original.Get("Host"); !ok || v != "example.com" {
		t.Errorf("caller's Host = %q, %v, want example.com, true (unmutated)", v, ok)
	}
}

func TestEncoderWriteBodyMismatchedCompletedLength(t *testing.T) {
	e := NewEncoder()
	head := headparser.RequestHead{Method: "POST", URI: "/", Version: "HTTP/1.1"}
	if _, err := e.WriteRequest(head, framing.Framing{Kind: framing.ContentLength, Remaining: 5}); err != nil {
		t.Fatalf("WriteRequest() error = %v", err)
	}
	if err := e.WriteBody(3, true); err == nil {
		t.Fatal("WriteBody() with mismatched length = nil error, want InvalidInput")
	}
}

func TestEncoderWriteBodyWrongState(t *testing.T) {
	e := NewEncoder()
	if err := e.WriteBody(1, true); !errs.Is(err, errs.KindMisuse) {
		t.Fatalf("WriteBody() on idle encoder error = %v, want KindMisuse", err)
	}
}

func TestEncoderChunkedRejectsNonHTTP11(t *testing.T) {
	e := NewEncoder()
	head := headparser.RequestHead{Method: "POST", URI: "/", Version: "HTTP/1.0"}
	_, err := e.WriteRequest(head, framing.Framing{Kind: framing.Chunked})
	if err == nil {
		t.Fatal("WriteRequest() with Chunked on HTTP/1.0 = nil error, want error")
	}
}

func TestRewriteHeadersRemovesConflictingFraming(t *testing.T) {
	var h headparser.Headers
	h.Add("Transfer-Encoding", "chunked")
	if err := rewriteHeaders(&h, framing.Framing{Kind: framing.ContentLength, Remaining: 4}, "HTTP/1.1"); err != nil {
		t.Fatalf("rewriteHeaders() error = %v", err)
	}
	if _, ok := h.Get("Transfer-Encoding"); ok {
		t.Errorf("Transfer-Encoding still present after ContentLength rewrite")
	}
	if v, ok := h.Get("Content-Length"); !ok || v != "4" {
		t.Errorf("Content-Length = %q, %v, want 4, true", v, ok)
	}
}
