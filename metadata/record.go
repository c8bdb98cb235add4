// Package metadata turns a raw domain string into a served, normalized
// metadata resolution: split the domain, look up the registry record,
// establish the token ID, fetch and verify the metadata document, and scrub
// it for clients.
package metadata

import (
	"encoding/json"
	"fmt"

	"namegate.io/namegate/gateway"
	"namegate.io/namegate/naming"
)

// Record is the ERC-721 style metadata document a domain's URI points at.
//
// Every string in it is untrusted input and goes through CleanString before
// it is served; image and external URLs additionally get gateway rewriting.
type Record struct {
	Name            string      `json:"name,omitempty"`
	Description     string      `json:"description,omitempty"`
	Image           string      `json:"image,omitempty"`
	ExternalURL     string      `json:"external_url,omitempty"`
	BackgroundColor string      `json:"background_color,omitempty"`
	Attributes      []Attribute `json:"attributes,omitempty"`
}

// Attribute is one trait entry. Value stays loosely typed because issuers
// emit strings, numbers, and booleans; only string values are scrubbed.
type Attribute struct {
	TraitType string `json:"trait_type,omitempty"`
	Value     any    `json:"value"`
}

// DecodeRecord parses a metadata document.
func DecodeRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("metadata: invalid document: %w", err)
	}
	return r, nil
}

// Normalized returns a copy of the record fit to serve: NUL runes removed
// from every string, and Image/ExternalURL rewritten through gatewayBase
// (empty selects the default gateway). The receiver is not modified.
func (r Record) Normalized(gatewayBase string) Record {
	rw := gateway.Rewriter{Base: gatewayBase}

	out := r
	out.Name = naming.CleanString(r.Name)
	out.Description = naming.CleanString(r.Description)
	out.BackgroundColor = naming.CleanString(r.BackgroundColor)
	out.Image = rw.Resolve(naming.CleanString(r.Image))
	out.ExternalURL = rw.Resolve(naming.CleanString(r.ExternalURL))

	if len(r.Attributes) > 0 {
		out.Attributes = make([]Attribute, len(r.Attributes))
		for i, a := range r.Attributes {
			a.TraitType = naming.CleanString(a.TraitType)
			if s, ok := a.Value.(string); ok {
				a.Value = naming.CleanString(s)
			}
			out.Attributes[i] = a
		}
	}
	return out
}
