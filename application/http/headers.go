package http

import "strings"

// Headers is an ordered field list. Duplicates are allowed and kept in order.
// Name lookups are ASCII case-insensitive.
type Headers []Field

// Get returns the value of the last field named name.
// The wire format permits duplicates, and the last one wins.
func (h Headers) Get(name string) (value string, ok bool) {
	for idx := len(h) - 1; idx >= 0; idx-- {
		if strings.EqualFold(h[idx].Name, name) {
			return h[idx].Value, true
		}
	}
	return "", false
}

func (h Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Values returns every value of the fields named name, in order.
func (h Headers) Values(name string) []string {
	var values []string
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			values = append(values, f.Value)
		}
	}
	return values
}

func (h *Headers) Add(name, value string) {
	*h = append(*h, Field{Name: name, Value: value})
}

// Set overwrites the value of the first field named name and removes the rest.
// The field is appended if it doesn't exist.
func (h *Headers) Set(name, value string) {
	out := (*h)[:0]
	set := false
	for _, f := range *h {
		if !strings.EqualFold(f.Name, name) {
			out = append(out, f)
			continue
		}
		if !set {
			f.Value = value
			out = append(out, f)
			set = true
		}
	}

	if !set {
		out = append(out, Field{Name: name, Value: value})
	}

	*h = out
}

func (h *Headers) Del(name string) {
	out := (*h)[:0]
	for _, f := range *h {
		if !strings.EqualFold(f.Name, name) {
			out = append(out, f)
		}
	}
	*h = out
}

func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	clone := make(Headers, len(h))
	copy(clone, h)
	return clone
}
