package vault

import (
	"fmt"
	"strings"
)

// Sentinel is the line delimiting the metadata header block.
const Sentinel = "---"

// Field is a single header entry. A field holds either a scalar string or a
// list of strings; deeper nesting is out of scope for vault notes.
type Field struct {
	Key    string
	Value  string
	List   []string
	IsList bool
}

// String returns the search/compare representation of the field value.
// List values render like their on-disk form joined for substring matching.
func (f Field) String() string {
	if f.IsList {
		return strings.Join(f.List, ", ")
	}
	return f.Value
}

// Header is an ordered set of metadata fields. Order is preserved across
// read-modify-write cycles; fields added during edits are appended.
type Header struct {
	fields []Field
}

// Len returns the number of fields.
func (h *Header) Len() int { return len(h.fields) }

// Fields returns the fields in order.
func (h *Header) Fields() []Field { return h.fields }

// Get returns the string form of a field value and whether the key exists.
func (h *Header) Get(key string) (string, bool) {
	for _, f := range h.fields {
		if f.Key == key {
			return f.String(), true
		}
	}
	return "", false
}

// GetList returns a list-valued field, converting a scalar to a single-item
// list for convenience.
func (h *Header) GetList(key string) ([]string, bool) {
	for _, f := range h.fields {
		if f.Key == key {
			if f.IsList {
				return f.List, true
			}
			if f.Value == "" {
				return nil, true
			}
			return []string{f.Value}, true
		}
	}
	return nil, false
}

// Set replaces an existing field in place or appends a new one at the end.
func (h *Header) Set(key, value string) {
	for i, f := range h.fields {
		if f.Key == key {
			h.fields[i] = Field{Key: key, Value: value}
			return
		}
	}
	h.fields = append(h.fields, Field{Key: key, Value: value})
}

// SetList replaces or appends a list-valued field.
func (h *Header) SetList(key string, items []string) {
	nf := Field{Key: key, List: items, IsList: true}
	for i, f := range h.fields {
		if f.Key == key {
			h.fields[i] = nf
			return
		}
	}
	h.fields = append(h.fields, nf)
}

// Delete removes a field, reporting whether it was present.
func (h *Header) Delete(key string) bool {
	for i, f := range h.fields {
		if f.Key == key {
			h.fields = append(h.fields[:i], h.fields[i+1:]...)
			return true
		}
	}
	return false
}

// Map returns the fields as a key → string-form map. Order is lost; use
// Fields when order matters.
func (h *Header) Map() map[string]string {
	out := make(map[string]string, len(h.fields))
	for _, f := range h.fields {
		out[f.Key] = f.String()
	}
	return out
}

// ParseHeader splits a note into its metadata header and body. It returns
// ok=false when the text does not begin with the sentinel line or the
// sentinel is never terminated; the caller decides whether that is an error.
func ParseHeader(text string) (hdr *Header, body string, ok bool) {
	rest, found := strings.CutPrefix(text, Sentinel+"\n")
	if !found {
		// A bare "---" with nothing after it is a valid empty header.
		if text == Sentinel {
			return &Header{}, "", true
		}
		return nil, "", false
	}

	end := strings.Index(rest, "\n"+Sentinel)
	if end < 0 {
		return nil, "", false
	}
	block := rest[:end]

	after := rest[end+1+len(Sentinel):]
	after = strings.TrimPrefix(after, "\n")
	// The closing sentinel is conventionally followed by one blank line.
	body = strings.TrimPrefix(after, "\n")

	hdr = &Header{}
	var listKey string
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "- ") && listKey != "" {
			item := strings.TrimSpace(trimmed[2:])
			for i := range hdr.fields {
				if hdr.fields[i].Key == listKey {
					hdr.fields[i].List = append(hdr.fields[i].List, unquote(item))
				}
			}
			continue
		}
		listKey = ""

		key, value, found := strings.Cut(trimmed, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		if value == "" {
			// Either an empty scalar or the start of a list block.
			hdr.fields = append(hdr.fields, Field{Key: key, IsList: true})
			listKey = key
			continue
		}
		hdr.fields = append(hdr.fields, Field{Key: key, Value: unquote(value)})
	}

	// A "key:" line with no following items is an empty scalar, not a list.
	for i := range hdr.fields {
		if hdr.fields[i].IsList && len(hdr.fields[i].List) == 0 {
			hdr.fields[i].IsList = false
		}
	}
	return hdr, body, true
}

// Serialize renders the header and body back to the on-disk form: sentinel,
// ordered fields, matching sentinel, one blank line, then the body verbatim.
func Serialize(hdr *Header, body string) string {
	var b strings.Builder
	b.WriteString(Sentinel + "\n")
	for _, f := range hdr.fields {
		if f.IsList {
			fmt.Fprintf(&b, "%s:\n", f.Key)
			for _, item := range f.List {
				fmt.Fprintf(&b, "  - %s\n", item)
			}
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Key, f.Value)
	}
	b.WriteString(Sentinel + "\n\n")
	b.WriteString(body)
	return b.String()
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
