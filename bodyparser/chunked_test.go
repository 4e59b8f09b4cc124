package bodyparser

import "testing"

const wikipediaChunked = "4\r\nWiki\r\n5\r\npedia\r\nE\r\n in\r\n\r\nchunks.\r\n0\r\n\r\nfoo"

func TestChunkedOneShot(t *testing.T) {
	c := NewChunked()
	in := []byte(wikipediaChunked)
	out := make([]byte, 256)
	consumedIn, produced, o, err := c.Read(in, out)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !o.Done {
		t.Fatalf("Read() = %+v, want Done", o)
	}
	want := "Wikipedia in\r\n\r\nchunks."
	if string(out[:produced]) != want {
		t.Errorf("body = %q, want %q", out[:produced], want)
	}
	if consumedIn != len(wikipediaChunked)-len("foo") {
		t.Errorf("consumedIn = %d, want %d (excluding trailing foo)", consumedIn, len(wikipediaChunked)-3)
	}
}

func TestChunkedByteAtATime(t *testing.T) {
	c := NewChunked()
	body := []byte(wikipediaChunked)[:len(wikipediaChunked)-3] // exclude trailing "foo"
	var decoded []byte
	var done bool
	for i := 0; i < len(body) && !done; i++ {
		out := make([]byte, 16)
		_, produced, o, err := c.Read(body[i:i+1], out)
		if err != nil {
			t.Fatalf("Read() byte %d error = %v", i, err)
		}
		decoded = append(decoded, out[:produced]...)
		done = o.Done
	}
	if !done {
		t.Fatal("never completed")
	}
	want := "Wikipedia in\r\n\r\nchunks."
	if string(decoded) != want {
		t.Errorf("decoded = %q, want %q", decoded, want)
	}
}

func TestChunkedArbitraryPartition(t *testing.T) {
	body := []byte(wikipediaChunked)[:len(wikipediaChunked)-3]
	stepSizes := []int{1, len(body), 3, 10}
	want := "Wikipedia in\r\n\r\nchunks."
	for _, step := range stepSizes {
		c := NewChunked()
		var decoded []byte
		var done bool
		pos := 0
		for pos < len(body) {
			end := pos + step
			if end > len(body) {
				end = len(body)
			}
			out := make([]byte, 256)
			_, produced, o, err := c.Read(body[pos:end], out)
			if err != nil {
				t.Fatalf("step %d: Read() error = %v", step, err)
			}
			decoded = append(decoded, out[:produced]...)
			pos = end
			if o.Done {
				done = true
				break
			}
		}
		if !done {
			t.Fatalf("step %d: never completed", step)
		}
		if string(decoded) != want {
			t.Errorf("step %d: decoded = %q, want %q", step, decoded, want)
		}
	}
}

func TestChunkedInvalidHexDigit(t *testing.T) {
	c := NewChunked()
	out := make([]byte, 16)
	_, _, _, err := c.Read([]byte("zz\r\n"), out)
	if err == nil {
		t.Fatal("expected InvalidChunksOfLength error")
	}
}

func TestChunkedLengthLineTooLong(t *testing.T) {
	c := NewChunked()
	out := make([]byte, 16)
	_, _, _, err := c.Read([]byte("fffff\r\n"), out)
	if err == nil {
		t.Fatal("expected TooLongChunksOfLength error")
	}
}

func TestChunkedBareLF(t *testing.T) {
	c := NewChunked()
	out := make([]byte, 16)
	_, _, _, err := c.Read([]byte("4\nWiki\r\n"), out)
	if err == nil {
		t.Fatal("expected InvalidCRLF error for bare LF in length line")
	}
}

func TestChunkedMissingCRLFAfterData(t *testing.T) {
	c := NewChunked()
	out := make([]byte, 16)
	_, _, _, err := c.Read([]byte("4\r\nWikiXX"), out)
	if err == nil {
		t.Fatal("expected error for malformed terminator after chunk data")
	}
}
