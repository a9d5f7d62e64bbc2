package template

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

var fmDelim = []byte("---")

// splitFrontmatter separates a leading "---" YAML block from the body. A
// source without the block returns nil defaults and the source unchanged.
func splitFrontmatter(src []byte) (map[string]any, []byte, error) {
	src = bytes.TrimPrefix(src, []byte("\ufeff"))

	first, rest, ok := cutLine(src)
	if !ok || !bytes.Equal(bytes.TrimSpace(first), fmDelim) {
		return nil, src, nil
	}

	var head []byte
	for len(rest) > 0 {
		var line []byte
		line, rest, _ = cutLine(rest)
		if bytes.Equal(bytes.TrimSpace(line), fmDelim) {
			defaults := map[string]any{}
			if err := yaml.Unmarshal(head, &defaults); err != nil {
				return nil, nil, err
			}
			return defaults, rest, nil
		}
		head = append(head, line...)
		head = append(head, '\n')
	}

	// no closing delimiter, treat it all as body
	return nil, src, nil
}

func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, found
}
