package vault

import (
	"log/slog"
	"path/filepath"
	"strings"
)

// DirectivesFile is the system file holding standing instructions, one
// bulleted line per directive.
const DirectivesFile = "directives.md"

func directivesPath() string {
	return filepath.Join(SystemDir, DirectivesFile)
}

// Directives returns all standing directives in insertion order.
func (v *Vault) Directives() []string {
	data, err := v.store.Read(directivesPath())
	if err != nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "- "); ok {
			out = append(out, strings.TrimSpace(rest))
		}
	}
	return out
}

// AddDirective appends a directive and returns the updated list.
func (v *Vault) AddDirective(text string) ([]string, error) {
	directives := append(v.Directives(), text)
	if err := v.writeDirectives(directives); err != nil {
		return nil, err
	}
	v.logger.Info("added directive", slog.String("directive", clip(text, 60)))
	return directives, nil
}

// RemoveDirective removes a directive by 1-based index. Returns the removed
// text (empty when the index is out of range) and the updated list.
func (v *Vault) RemoveDirective(index int) (string, []string, error) {
	directives := v.Directives()
	if index < 1 || index > len(directives) {
		return "", directives, nil
	}
	removed := directives[index-1]
	directives = append(directives[:index-1], directives[index:]...)
	if err := v.writeDirectives(directives); err != nil {
		return "", nil, err
	}
	v.logger.Info("removed directive",
		slog.Int("index", index),
		slog.String("directive", clip(removed, 60)))
	return removed, directives, nil
}

// writeDirectives re-renders the whole file.
func (v *Vault) writeDirectives(directives []string) error {
	var b strings.Builder
	b.WriteString("# Directives\n\n")
	for _, d := range directives {
		b.WriteString("- " + d + "\n")
	}
	return v.store.Write(directivesPath(), []byte(b.String()))
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
