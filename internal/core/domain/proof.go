package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// AttributeTag names an identity attribute (e.g. "nationality").
type AttributeTag string

const (
	AttributeNationality  AttributeTag = "nationality"
	AttributeNationalID   AttributeTag = "nationalIdNo"
	AttributeCountryOfRes AttributeTag = "countryOfResidence"
	AttributeDateOfBirth  AttributeTag = "dob"
)

// StatementKind is the kind of claim a statement item demands.
type StatementKind string

const (
	// StatementReveal demands that the attribute value is revealed.
	StatementReveal StatementKind = "RevealAttribute"
)

// StatementItem is a single claim the verifier demands a proof for.
type StatementItem struct {
	Kind StatementKind `json:"type"`
	Tag  AttributeTag  `json:"attributeTag"`
}

// Statement is the full set of claims the verifier demands.
type Statement []StatementItem

// RevealedAttribute is one attribute disclosed by an identity proof.
type RevealedAttribute struct {
	Tag   AttributeTag `json:"tag"`
	Value string       `json:"value"`
}

// IDProof is a proof of identity attributes bound to an account and a
// challenge. The signature covers the challenge and the canonical encoding
// of the revealed attributes, under the account's message-signing scheme.
type IDProof struct {
	Account   AccountAddress      `json:"account"`
	Challenge Challenge           `json:"challenge"`
	Revealed  []RevealedAttribute `json:"revealed"`
	Signature []byte              `json:"signature"`
}

// SignedPayload returns the byte string the proof signature covers:
// the raw challenge followed by the canonical attribute encoding.
func (p *IDProof) SignedPayload() ([]byte, error) {
	challenge, err := p.Challenge.Bytes()
	if err != nil {
		return nil, err
	}
	attrs, err := CanonicalAttributes(p.Revealed)
	if err != nil {
		return nil, err
	}
	return append(challenge, attrs...), nil
}

// CanonicalAttributes encodes revealed attributes deterministically:
// sorted by tag, JSON-encoded as an array. Map encodings are not used
// because their field order is not stable across implementations.
func CanonicalAttributes(attrs []RevealedAttribute) ([]byte, error) {
	sorted := make([]RevealedAttribute, len(attrs))
	copy(sorted, attrs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tag < sorted[j].Tag })

	data, err := json.Marshal(sorted)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	return data, nil
}

// Satisfies reports whether the proof reveals every attribute the
// statement demands. The failing tag is returned for error reporting.
// An item of unknown kind is unsatisfiable: no proof can establish a
// claim this code does not understand, so it must never pass by default.
func (p *IDProof) Satisfies(statement Statement) (AttributeTag, bool) {
	revealed := make(map[AttributeTag]bool, len(p.Revealed))
	for _, attr := range p.Revealed {
		revealed[attr.Tag] = true
	}
	for _, item := range statement {
		if item.Kind != StatementReveal {
			return item.Tag, false
		}
		if !revealed[item.Tag] {
			return item.Tag, false
		}
	}
	return "", true
}
