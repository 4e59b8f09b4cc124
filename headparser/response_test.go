package headparser

import "testing"

func TestResponseParserOneShot(t *testing.T) {
	raw := "HTTP/1.1 202 Accepted\r\nFoo: bar\r\nX-V: 1\r\n\r\n"
	p := NewResponseParser(DefaultConfig())
	o, err := p.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !o.Done || o.N != len(raw) {
		t.Fatalf("Parse() = %+v, want Done with N=%d", o, len(raw))
	}
	head := p.Head()
	if head.Version != "HTTP/1.1" || head.StatusCode != 202 || head.Reason != "Accepted" {
		t.Errorf("head = %+v", head)
	}
	if head.Headers.Len() != 2 {
		t.Errorf("Headers.Len() = %d, want 2", head.Headers.Len())
	}
}

func TestResponseParserByteAtATime(t *testing.T) {
	raw := "HTTP/1.1 202 Accepted\r\nFoo: bar\r\nX-V: 1\r\n\r\n"
	p := NewResponseParser(DefaultConfig())
	var total int
	var last Outcome
	for i := 0; i < len(raw); i++ {
		o, err := p.Parse([]byte(raw)[i : i+1])
		if err != nil {
			t.Fatalf("Parse() byte %d error = %v", i, err)
		}
		total += o.N
		last = o
		if o.Done {
			break
		}
	}
	if !last.Done {
		t.Fatal("never completed")
	}
	if total != len(raw) {
		t.Fatalf("total = %d, want %d", total, len(raw))
	}
	head := p.Head()
	if head.Reason != "Accepted" || head.Headers.Len() != 2 {
		t.Errorf("head = %+v", head)
	}
}

func TestResponseParserNoReasonPhrase(t *testing.T) {
	raw := "HTTP/1.1 204\r\n\r\n"
	p := NewResponseParser(DefaultConfig())
	o, err := p.Parse([]byte(raw))
	if err != nil || !o.Done {
		t.Fatalf("Parse() = %+v, err = %v", o, err)
	}
	head := p.Head()
	if head.StatusCode != 204 || head.Reason != "" {
		t.Errorf("head = %+v, want status 204 with empty reason", head)
	}
}

func TestResponseParserInvalidStatusCode(t *testing.T) {
	raw := "HTTP/1.1 abc Accepted\r\n\r\n"
	p := NewResponseParser(DefaultConfig())
	_, err := p.Parse([]byte(raw))
	if err == nil {
		t.Fatal("expected InvalidStatusCode error")
	}
}

func TestResponseParserReusedAcrossMessages(t *testing.T) {
	first := "HTTP/1.1 200 OK\r\n\r\n"
	second := "HTTP/1.0 404 Not Found\r\n\r\n"
	p := NewResponseParser(DefaultConfig())
	o1, err := p.Parse([]byte(first))
	if err != nil || !o1.Done {
		t.Fatalf("first Parse() = %+v, err = %v", o1, err)
	}
	if p.Head().StatusCode != 200 {
		t.Fatalf("first status = %d, want 200", p.Head().StatusCode)
	}
	o2, err := p.Parse([]byte(second))
	if err != nil || !o2.Done {
		t.Fatalf("second Parse() = %+v, err = %v", o2, err)
	}
	if p.Head().StatusCode != 404 || p.Head().Reason != "Not Found" {
		t.Errorf("second head = %+v", p.Head())
	}
}
