package traits

import (
	"strings"
	"testing"
)

func TestAllCoversEveryRegistry(t *testing.T) {
	if len(All) != 15 {
		t.Fatalf("All has %d types, want 15", len(All))
	}
	seen := make(map[Type]bool)
	for _, traitType := range All {
		if seen[traitType] {
			t.Errorf("duplicate trait type %s", traitType)
		}
		seen[traitType] = true
		if _, ok := Prompts[traitType]; !ok {
			t.Errorf("Prompts missing %s", traitType)
		}
		if _, ok := Queries[traitType]; !ok {
			t.Errorf("Queries missing %s", traitType)
		}
		if keywords, ok := Keywords[traitType]; !ok || len(keywords) == 0 {
			t.Errorf("Keywords missing or empty for %s", traitType)
		}
	}
}

func TestInstructionKnownType(t *testing.T) {
	if got := Instruction(Title); got != Prompts[Title] {
		t.Errorf("Instruction(Title) = %q", got)
	}
}

func TestInstructionUnknownTypeFallsBack(t *testing.T) {
	got := Instruction(Type("bond_amount"))
	if !strings.Contains(got, "bond_amount") {
		t.Errorf("fallback instruction should name the trait, got %q", got)
	}
}

func TestRetrievalQueryFallbackChain(t *testing.T) {
	if got := RetrievalQuery(DueDate); got != Queries[DueDate] {
		t.Errorf("RetrievalQuery(DueDate) = %q", got)
	}
	got := RetrievalQuery(Type("bond_amount"))
	if !strings.Contains(got, "bond_amount") {
		t.Errorf("fallback query should name the trait, got %q", got)
	}
}
