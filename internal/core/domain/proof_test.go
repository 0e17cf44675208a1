package domain

import "testing"

func TestSatisfies(t *testing.T) {
	proof := &IDProof{
		Revealed: []RevealedAttribute{
			{Tag: AttributeNationality, Value: "DE"},
		},
	}

	cases := []struct {
		name      string
		statement Statement
		wantTag   AttributeTag
		wantOK    bool
	}{
		{
			name:      "revealed attribute satisfies",
			statement: Statement{{Kind: StatementReveal, Tag: AttributeNationality}},
			wantOK:    true,
		},
		{
			name:      "missing attribute fails",
			statement: Statement{{Kind: StatementReveal, Tag: AttributeDateOfBirth}},
			wantTag:   AttributeDateOfBirth,
		},
		{
			name:      "empty statement is satisfied",
			statement: nil,
			wantOK:    true,
		},
		{
			name:      "unknown kind is never satisfied",
			statement: Statement{{Kind: "reveal", Tag: AttributeNationality}},
			wantTag:   AttributeNationality,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tag, ok := proof.Satisfies(tc.statement)
			if ok != tc.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tc.wantOK, ok)
			}
			if tag != tc.wantTag {
				t.Errorf("Expected tag %q, got %q", tc.wantTag, tag)
			}
		})
	}
}

func TestSatisfies_EmptyProofAgainstUnknownKind(t *testing.T) {
	// A statement item of a kind the verifier does not implement must not
	// degrade into a statement nothing has to prove.
	empty := &IDProof{}
	statement := Statement{{Kind: "reveal", Tag: AttributeCountryOfRes}}
	if _, ok := empty.Satisfies(statement); ok {
		t.Fatal("Expected empty proof to fail an unknown-kind statement")
	}
}
