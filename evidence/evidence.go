// Package evidence implements the canonical Namegate resolution evidence
// format: an armored, signable text rendering of a resolution result.
//
// Evidence bytes are canonical by construction. Parse rejects any input that
// Render would not have produced, so a document's CID and signature always
// refer to exactly one byte sequence.
package evidence

import (
	"bufio"
	"bytes"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"namegate.io/namegate/content"
)

// SectionOrder defines the canonical order of evidence sections.
var SectionOrder = []string{"RESOLUTION", "RECORD", "SIGNATURE"}

const (
	Preamble  = "-----BEGIN NAMEGATE RESOLUTION-----"
	Postamble = "-----END NAMEGATE RESOLUTION-----"
)

const (
	// SpecID names the format carried in the Spec key of every document.
	SpecID = "namegate-evidence-1"
	// FormatVersion is the value of the Version key.
	FormatVersion = "1"
)

// Evidence is a parsed evidence document.
type Evidence struct {
	Sections map[string]Section
	Raw      []byte // canonical bytes
	Signed   []byte // bytes covered by the signature (BEGIN through end of RECORD)
}

type Section struct {
	Name  string
	Pairs map[string]string // key-value pairs, sorted lexicographically
}

// Field returns the value for key in the named section, or "" when absent.
func (e *Evidence) Field(section, key string) string {
	if e == nil {
		return ""
	}
	return e.Sections[section].Pairs[key]
}

// Domain returns the resolved domain the evidence is about.
func (e *Evidence) Domain() string { return e.Field("RESOLUTION", "Domain") }

// TokenID returns the 0x-prefixed token identifier, or "".
func (e *Evidence) TokenID() string { return e.Field("RESOLUTION", "Token-ID") }

// ContentCID returns the CID of the fetched metadata document, or "".
func (e *Evidence) ContentCID() string { return e.Field("RESOLUTION", "Content-CID") }

func (e *Evidence) SignatureAlg() string { return e.Field("SIGNATURE", "Signature-Alg") }
func (e *Evidence) HashAlg() string      { return e.Field("SIGNATURE", "Hash-Alg") }
func (e *Evidence) IssuerKey() string    { return e.Field("SIGNATURE", "Issuer-Key") }
func (e *Evidence) Signature() string    { return e.Field("SIGNATURE", "Signature") }

// CID returns a deterministic content identifier for the canonical bytes,
// an IPFS-compatible CIDv1 (raw + sha2-256).
func (e *Evidence) CID() string {
	return content.DigestString(e.Raw)
}

// CID parses data and returns the document CID. Non-canonical input fails.
func CID(data []byte) (string, error) {
	e, err := Parse(data)
	if err != nil {
		return "", err
	}
	return e.CID(), nil
}

// Parse parses an evidence document and enforces the canonical serialization
// rules. Non-canonical inputs are rejected.
func Parse(data []byte) (*Evidence, error) {
	if !utf8.Valid(data) {
		return nil, newError(KindParse, "NG-EV-101", "evidence must be valid UTF-8")
	}
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return nil, newError(KindParse, "NG-EV-101", "BOM not allowed")
	}
	if bytes.Contains(data, []byte("\r")) {
		return nil, newError(KindParse, "NG-EV-101", "CR line endings not allowed")
	}
	if len(data) > 0 && data[len(data)-1] == '\n' {
		return nil, newError(KindParse, "NG-EV-102", "trailing newline not allowed")
	}
	if !bytes.HasPrefix(data, []byte(Preamble)) {
		return nil, newError(KindParse, "NG-EV-102", "missing evidence preamble")
	}
	if !bytes.HasSuffix(data, []byte(Postamble)) {
		return nil, newError(KindParse, "NG-EV-102", "missing evidence postamble")
	}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
			return nil, newError(KindParse, "NG-EV-102", "trailing whitespace forbidden")
		}
	}
	if !bytes.HasPrefix(data, []byte(Preamble+"\n")) {
		return nil, newError(KindParse, "NG-EV-102", "preamble must be on its own line")
	}

	sections := make(map[string]Section)
	reader := bufio.NewReader(bytes.NewReader(data))
	readLine := func() (string, error) {
		l, err := reader.ReadString('\n')
		if err == io.EOF {
			return strings.TrimRight(l, "\n"), io.EOF
		}
		if err != nil {
			return "", err
		}
		return strings.TrimRight(l, "\n"), nil
	}

	first, err := readLine()
	if err != nil && err != io.EOF {
		return nil, wrapError(KindParse, "NG-EV-102", "read failed", err)
	}
	if first != Preamble {
		return nil, newError(KindParse, "NG-EV-102", "preamble must be exact")
	}

	sectionIndex := -1
	var currSection string
	var currPairs map[string]string
	var currKeyOrder []string
	seenSection := map[string]bool{}
	afterSeparator := false

	flushSection := func() error {
		if currSection == "" {
			return nil
		}
		sorted := append([]string(nil), currKeyOrder...)
		sort.Strings(sorted)
		for i := range sorted {
			if sorted[i] != currKeyOrder[i] {
				return newError(KindParse, "NG-EV-104", "keys not sorted lexicographically")
			}
		}
		sections[currSection] = Section{Name: currSection, Pairs: currPairs}
		currSection = ""
		currPairs = nil
		currKeyOrder = nil
		return nil
	}

	for {
		line, rerr := readLine()
		if rerr != nil && rerr != io.EOF {
			return nil, wrapError(KindParse, "NG-EV-102", "read failed", rerr)
		}

		if line == Postamble {
			if afterSeparator {
				return nil, newError(KindParse, "NG-EV-103", "unexpected blank line before postamble")
			}
			if err := flushSection(); err != nil {
				return nil, err
			}
			break
		}

		if isSectionHeader(line) {
			if currSection != "" {
				return nil, newError(KindParse, "NG-EV-103", "missing blank line between sections")
			}
			if seenSection[line] {
				return nil, newError(KindParse, "NG-EV-103", "duplicate section")
			}
			sectionIndex++
			if sectionIndex >= len(SectionOrder) || SectionOrder[sectionIndex] != line {
				return nil, newError(KindParse, "NG-EV-103", "sections missing or out of order")
			}
			if sectionIndex == 0 {
				if afterSeparator {
					return nil, newError(KindParse, "NG-EV-103", "blank line before first section not allowed")
				}
			} else if !afterSeparator {
				return nil, newError(KindParse, "NG-EV-103", "missing blank line between sections")
			}
			afterSeparator = false
			seenSection[line] = true
			currSection = line
			currPairs = make(map[string]string)
			continue
		}

		if sectionIndex < 0 {
			return nil, newError(KindParse, "NG-EV-103", "unexpected content before first section")
		}

		if line == "" {
			if currSection == "" {
				return nil, newError(KindParse, "NG-EV-103", "blank line outside section not allowed")
			}
			if currSection == "SIGNATURE" {
				return nil, newError(KindParse, "NG-EV-103", "blank line after SIGNATURE section not allowed")
			}
			if err := flushSection(); err != nil {
				return nil, err
			}
			afterSeparator = true
			continue
		}

		if currSection == "" || afterSeparator {
			return nil, newError(KindParse, "NG-EV-103", "content outside section")
		}
		key, val, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, newError(KindParse, "NG-EV-104", "invalid key-value formatting")
		}
		if key == "" {
			return nil, newError(KindParse, "NG-EV-104", "empty key")
		}
		if !isASCII(key) {
			return nil, newError(KindParse, "NG-EV-104", "non-ASCII key")
		}
		if strings.HasPrefix(val, " ") {
			return nil, newError(KindParse, "NG-EV-104", "value must not start with a space")
		}
		if _, exists := currPairs[key]; exists {
			return nil, newError(KindParse, "NG-EV-104", "duplicate key in section")
		}
		currPairs[key] = val
		currKeyOrder = append(currKeyOrder, key)

		if rerr == io.EOF {
			return nil, newError(KindParse, "NG-EV-102", "missing evidence postamble")
		}
	}

	for _, s := range SectionOrder {
		if !seenSection[s] {
			return nil, newError(KindParse, "NG-EV-103", "sections missing or out of order")
		}
	}

	// Re-render and compare so Parse accepts exactly the bytes Render emits.
	doc := Document{
		Resolution: sections["RESOLUTION"].Pairs,
		Record:     sections["RECORD"].Pairs,
		Signature:  sections["SIGNATURE"].Pairs,
	}
	canonical, rerr := Render(doc)
	if rerr != nil {
		return nil, rerr
	}
	if !bytes.Equal(data, canonical) {
		return nil, newError(KindParse, "NG-EV-105", "non-canonical evidence")
	}

	signed, err := signedScope(canonical)
	if err != nil {
		return nil, err
	}
	return &Evidence{Sections: sections, Raw: canonical, Signed: signed}, nil
}

// signedScope returns the bytes covered by the signature: the BEGIN line
// through the blank line after RECORD. The SIGNATURE section is excluded so
// signing can fill it in without changing the covered bytes.
func signedScope(canonical []byte) ([]byte, error) {
	marker := []byte("\nSIGNATURE\n")
	idx := bytes.Index(canonical, marker)
	if idx < 0 {
		return nil, newError(KindParse, "NG-EV-103", "cannot determine signature scope")
	}
	return canonical[:idx+1], nil
}

func isSectionHeader(line string) bool {
	for _, s := range SectionOrder {
		if line == s {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}
