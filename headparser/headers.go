package headparser

import "strings"

// Header is a single name/value pair as parsed off the wire: name is
// normalized to lowercase at insertion (render is case-preserving of that
// canonical lowercase form, not of the wire's original case), value has had
// exactly one optional leading space (after the colon) stripped and
// nothing else normalized, deliberately: headers are not folded any
// further.
type Header struct {
	Name  string
	Value string
}

// Headers is the ordered, repeatable multimap produced by the head parser
// and consumed by the renderers and the framing decider. Lookup is
// case-insensitive; render order is insertion order.
type Headers struct {
	entries []Header
}

// Add appends a header, lowercasing name, preserving insertion order and
// allowing repeats.
func (h *Headers) Add(name, value string) {
	h.entries = append(h.entries, Header{Name: strings.ToLower(name), Value: value})
}

// Get returns the first value for name (case-insensitive), and whether it
// was present at all. This is the shape framing.HeaderLookup expects.
func (h Headers) Get(name string) (string, bool) {
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, name) {
			return e.Value, true
		}
	}
	return "", false
}

// Values returns every value for name, in insertion order.
func (h Headers) Values(name string) []string {
	var out []string
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, name) {
			out = append(out, e.Value)
		}
	}
	return out
}

// Del removes every header matching name (case-insensitive).
func (h *Headers) Del(name string) {
	out := h.entries[:0]
	for _, e := range h.entries {
		if !strings.EqualFold(e.Name, name) {
			out = append(out, e)
		}
	}
	h.entries = out
}

// Set replaces every existing value for name with a single entry, appending
// at the position of the first existing match (or at the end if absent).
func (h *Headers) Set(name, value string) {
	name = strings.ToLower(name)
	replaced := false
	out := h.entries[:0]
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, name) {
			if !replaced {
				out = append(out, Header{Name: name, Value: value})
				replaced = true
			}
			continue
		}
		out = append(out, e)
	}
	h.entries = out
	if !replaced {
		h.entries = append(h.entries, Header{Name: name, Value: value})
	}
}

// Len returns the number of header entries.
func (h Headers) Len() int { return len(h.entries) }

// All returns the entries in insertion order. Callers must not mutate the
// returned slice's backing array.
func (h Headers) All() []Header { return h.entries }

// Clone returns an independent copy of h.
func (h Headers) Clone() Headers {
	if h.entries == nil {
		return Headers{}
	}
	out := make([]Header, len(h.entries))
	copy(out, h.entries)
	return Headers{entries: out}
}
