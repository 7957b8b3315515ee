package markdown

import (
	"strings"

	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	raw       string
	fields    map[string]any
	lineCount int
}

// splitFrontMatter strips a leading YAML front matter block and returns
// the remaining body. The block opens with "---" on the first line and
// closes with "---" or "...". A lone opening fence is not front matter.
// Malformed YAML still counts as front matter; its fields stay nil.
func splitFrontMatter(source string) (string, *frontMatter) {
	lines := strings.SplitAfter(source, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != "---" {
		return source, nil
	}
	for i := 1; i < len(lines); i++ {
		t := strings.TrimRight(lines[i], "\r\n")
		if t != "---" && t != "..." {
			continue
		}
		raw := strings.Join(lines[1:i], "")
		fm := &frontMatter{raw: raw, lineCount: i + 1}
		var fields map[string]any
		if err := yaml.Unmarshal([]byte(raw), &fields); err == nil {
			fm.fields = fields
		}
		return strings.Join(lines[i+1:], ""), fm
	}
	return source, nil
}
