package services

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"blogbuild/pkg/models"

	"github.com/pelletier/go-toml/v2"
)

const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatNone = "none"
)

var (
	yamlBlock = regexp.MustCompile(`(?s)^---[ \t]*\n(.*?)\n---[ \t]*(?:\n(.*))?$`)
	tomlBlock = regexp.MustCompile(`(?s)^\+\+\+[ \t]*\n(.*?)\n\+\+\+[ \t]*(?:\n(.*))?$`)
)

// ParseFrontMatter splits a draft into its metadata and Markdown body.
//
// The `---` block is the simple `key: value` convention, not full YAML: a
// value may contain further colons and is never typed. A `+++` block is TOML.
// Content without a block yields empty metadata, the whole text as body and
// FormatNone.
func ParseFrontMatter(content []byte) (models.Meta, string, string, error) {
	str := normalizeLineEndings(string(content))

	if m := yamlBlock.FindStringSubmatch(str); m != nil {
		return parseKeyValues(m[1]), strings.TrimSpace(m[2]), FormatYAML, nil
	}

	if m := tomlBlock.FindStringSubmatch(str); m != nil {
		var fm map[string]interface{}
		if err := toml.Unmarshal([]byte(m[1]), &fm); err != nil {
			return models.Meta{}, "", "", fmt.Errorf("%w: toml: %v", ErrUnknownFormat, err)
		}
		return metaFromMap(fm), strings.TrimSpace(m[2]), FormatTOML, nil
	}

	return models.Meta{}, str, FormatNone, nil
}

func parseKeyValues(block string) models.Meta {
	values := make(map[string]string)
	for _, line := range strings.Split(block, "\n") {
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		values[key] = strings.TrimSpace(val)
	}
	return metaFromStrings(values)
}

func metaFromMap(fm map[string]interface{}) models.Meta {
	values := make(map[string]string, len(fm))
	for k, v := range fm {
		values[strings.ToLower(strings.TrimSpace(k))] = stringifyValue(v)
	}
	return metaFromStrings(values)
}

func stringifyValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case time.Time:
		return val.Format("2006-01-02")
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, stringifyValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}

func metaFromStrings(values map[string]string) models.Meta {
	var meta models.Meta
	for k, v := range values {
		switch k {
		case "title":
			meta.Title = v
		case "subtitle":
			meta.Subtitle = v
		case "date":
			meta.Date = v
		case "tags":
			meta.Tags = v
		case "excerpt":
			meta.Excerpt = v
		default:
			if meta.Extra == nil {
				meta.Extra = make(map[string]string)
			}
			meta.Extra[k] = v
		}
	}
	return meta
}

// metaFields returns the non-empty fields in file order: the known keys
// first, then extras sorted by key.
func metaFields(meta models.Meta) [][2]string {
	fields := [][2]string{{"title", meta.Title}}
	for _, f := range [][2]string{
		{"subtitle", meta.Subtitle},
		{"date", meta.Date},
		{"tags", meta.Tags},
		{"excerpt", meta.Excerpt},
	} {
		if f[1] != "" {
			fields = append(fields, f)
		}
	}
	keys := make([]string, 0, len(meta.Extra))
	for k := range meta.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, [2]string{k, meta.Extra[k]})
	}
	return fields
}

// ConstructFileContent writes metadata and body back into draft form.
func ConstructFileContent(meta models.Meta, body string, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatYAML, "":
		buf.WriteString("---\n")
		for _, f := range metaFields(meta) {
			// Newlines would end the field early on the next parse.
			val := strings.ReplaceAll(f[1], "\n", " ")
			fmt.Fprintf(&buf, "%s: %s\n", f[0], val)
		}
		buf.WriteString("---\n")
	case FormatTOML:
		fm := make(map[string]interface{})
		for _, f := range metaFields(meta) {
			fm[f[0]] = f[1]
		}
		if tags := meta.TagList(); len(tags) > 0 {
			fm["tags"] = tags
		}
		buf.WriteString("+++\n")
		enc := toml.NewEncoder(&buf)
		if err := enc.Encode(fm); err != nil {
			return nil, err
		}
		buf.WriteString("+++\n")
	case FormatNone:
		return []byte(strings.TrimSpace(body) + "\n"), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	if body = strings.TrimSpace(body); body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func normalizeLineEndings(input string) string {
	return strings.ReplaceAll(input, "\r\n", "\n")
}
