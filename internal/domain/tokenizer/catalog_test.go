package tokenizer

import (
	"errors"
	"testing"

	domainErrors "github.com/jbctechsolutions/beancounter/internal/domain/errors"
)

func TestCatalog(t *testing.T) {
	specs := Catalog()
	if len(specs) != 8 {
		t.Fatalf("len(Catalog()) = %d, want 8", len(specs))
	}

	for i, s := range specs {
		if s.Number != i+1 {
			t.Errorf("entry %d has Number %d", i, s.Number)
		}
		wantKind := KindFastBPE
		if s.Number >= 5 {
			wantKind = KindModelVocabulary
		}
		if s.Kind != wantKind {
			t.Errorf("%s: Kind = %s, want %s", s.Identifier, s.Kind, wantKind)
		}
	}

	// Mutating the copy must not leak into the catalog.
	specs[0].Identifier = "mutated"
	if Default().Identifier != "cl100k_base" {
		t.Error("Catalog() returned a shared slice")
	}
}

func TestDefault(t *testing.T) {
	d := Default()
	if d.Identifier != "cl100k_base" || d.DisplayName != "GPT-4 (default)" || d.Kind != KindFastBPE {
		t.Errorf("Default() = %+v", d)
	}
}

func TestByNumber(t *testing.T) {
	tests := []struct {
		n      int
		wantID string
		wantOK bool
	}{
		{1, "cl100k_base", true},
		{4, "gpt2", true},
		{7, "meta-llama/Llama-2-7b-hf", true},
		{8, "bigscience/bloom", true},
		{0, "", false},
		{9, "", false},
		{-1, "", false},
	}

	for _, tt := range tests {
		s, ok := ByNumber(tt.n)
		if ok != tt.wantOK || s.Identifier != tt.wantID {
			t.Errorf("ByNumber(%d) = (%q, %v), want (%q, %v)", tt.n, s.Identifier, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		choice  string
		wantID  string
		wantErr bool
	}{
		{"empty is default", "", "cl100k_base", false},
		{"whitespace is default", "  ", "cl100k_base", false},
		{"number", "2", "p50k_base", false},
		{"number with spaces", " 6 ", "EleutherAI/gpt-neox-20b", false},
		{"identifier", "bigscience/bloom", "bigscience/bloom", false},
		{"out of range", "9", "", true},
		{"unknown identifier", "o200k_base", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Resolve(tt.choice)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.choice, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, domainErrors.ErrUnknownTokenizer) {
					t.Errorf("error %v should wrap ErrUnknownTokenizer", err)
				}
				return
			}
			if s.Identifier != tt.wantID {
				t.Errorf("Resolve(%q) = %q, want %q", tt.choice, s.Identifier, tt.wantID)
			}
		})
	}
}
