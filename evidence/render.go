package evidence

import (
	"sort"
	"strings"
)

// Document is the in-memory representation for producing canonical evidence.
// Rendered bytes are always canonical (section order, key order, spacing,
// and blank lines).
type Document struct {
	Resolution map[string]string
	Record     map[string]string
	Signature  map[string]string
}

// Render produces canonical evidence bytes from a Document.
func Render(doc Document) ([]byte, error) {
	sections := []struct {
		name  string
		pairs map[string]string
	}{
		{name: "RESOLUTION", pairs: doc.Resolution},
		{name: "RECORD", pairs: doc.Record},
		{name: "SIGNATURE", pairs: doc.Signature},
	}

	var sb strings.Builder
	sb.WriteString(Preamble)
	sb.WriteString("\n")

	for i, sec := range sections {
		sb.WriteString(sec.name)
		sb.WriteString("\n")

		keys := make([]string, 0, len(sec.pairs))
		for k := range sec.pairs {
			if k == "" {
				return nil, newError(KindRender, "NG-EV-201", "empty key")
			}
			if !isASCII(k) {
				return nil, newError(KindRender, "NG-EV-201", "non-ASCII key")
			}
			if strings.ContainsAny(k, "\r\n") {
				return nil, newError(KindRender, "NG-EV-201", "key must not contain newlines")
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := sec.pairs[k]
			if v == "" {
				return nil, newError(KindRender, "NG-EV-202", "empty value")
			}
			if strings.HasPrefix(v, " ") {
				return nil, newError(KindRender, "NG-EV-202", "value must not start with a space")
			}
			if strings.ContainsAny(v, "\r\n") {
				return nil, newError(KindRender, "NG-EV-202", "value must not contain newlines")
			}
			if strings.HasSuffix(v, " ") || strings.HasSuffix(v, "\t") {
				return nil, newError(KindRender, "NG-EV-202", "trailing whitespace forbidden")
			}
			sb.WriteString(k)
			sb.WriteString(": ")
			sb.WriteString(v)
			sb.WriteString("\n")
		}

		if i != len(sections)-1 {
			sb.WriteString("\n")
		}
	}

	sb.WriteString(Postamble)
	return []byte(sb.String()), nil
}
