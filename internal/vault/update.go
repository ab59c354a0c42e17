package vault

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rowanhart/curator/internal/apperr"
)

// Removed is the changed-set marker recorded when a field is deleted.
const Removed = "<removed>"

// UpdateFields applies a field → value map to a note's header, where a nil
// value deletes the field. The body is preserved byte-for-byte and the
// relative order of untouched fields is kept. Brand-new fields are appended
// in map iteration order, which Go randomises; callers that care where new
// fields land use UpdateFieldsOrdered. The return value is exactly the set
// of fields whose string representation actually changed; when that set is
// empty the file is not rewritten at all.
//
// Fails with apperr.ErrNotFound when the path does not exist and
// apperr.ErrMalformed when the note has no parseable header.
func (v *Vault) UpdateFields(rel string, updates map[string]any) (map[string]string, error) {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	return v.UpdateFieldsOrdered(rel, keys, updates)
}

// UpdateFieldsOrdered is UpdateFields with an explicit application order,
// so new fields are appended to the header in the order of keys.
func (v *Vault) UpdateFieldsOrdered(rel string, keys []string, updates map[string]any) (map[string]string, error) {
	data, err := v.Read(rel)
	if err != nil {
		return nil, err
	}
	hdr, body, ok := ParseHeader(string(data))
	if !ok {
		return nil, fmt.Errorf("vault: %s has no header: %w", rel, apperr.ErrMalformed)
	}

	changed := make(map[string]string)
	for _, key := range keys {
		raw, found := updates[key]
		if !found {
			continue
		}
		applyUpdate(hdr, key, raw, changed)
	}

	if len(changed) == 0 {
		return changed, nil
	}
	if err := v.store.Write(rel, []byte(Serialize(hdr, body))); err != nil {
		return nil, err
	}
	v.logger.Info("updated fields",
		slog.String("path", rel),
		slog.Int("changed", len(changed)))
	return changed, nil
}

func applyUpdate(hdr *Header, key string, raw any, changed map[string]string) {
	if raw == nil {
		if hdr.Delete(key) {
			changed[key] = Removed
		}
		return
	}

	if items, ok := toStringList(raw); ok {
		prev, existed := hdr.Get(key)
		next := strings.Join(items, ", ")
		if existed && prev == next {
			return
		}
		hdr.SetList(key, items)
		changed[key] = next
		return
	}

	value := stringify(raw)
	prev, existed := hdr.Get(key)
	if existed && prev == value {
		return
	}
	hdr.Set(key, value)
	changed[key] = value
}

// toStringList converts JSON-decoded list values ([]any, []string) into a
// string slice.
func toStringList(raw any) ([]string, bool) {
	switch val := raw.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, stringify(item))
		}
		return out, true
	}
	return nil, false
}

func stringify(raw any) string {
	switch val := raw.(type) {
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; render integers without the
		// trailing fraction.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
