package traits

import "fmt"

// Type identifies one of the fixed traits extracted from every document.
type Type string

const (
	Title                Type = "title"
	DueDate              Type = "due_date"
	PointOfContact       Type = "point_of_contact"
	SubmittedTo          Type = "submitted_to"
	SubmissionMethod     Type = "submission_method"
	SubmissionChecklist  Type = "submission_checklist"
	QuestionsPOC         Type = "questions_poc"
	ReceiptOfAmendments  Type = "receipt_of_amendments"
	NotaryNeeded         Type = "notary_needed"
	ResumesNeeded        Type = "resumes_needed"
	ReferencesNeeded     Type = "references_needed"
	ScopeOfWork          Type = "scope_of_work"
	Categorization       Type = "categorization"
	InsuranceNeeded      Type = "insurance_needed"
	TechnicalRequirement Type = "technical_requirements"
)

// All lists every trait type processed per document run.
var All = []Type{
	Title,
	DueDate,
	PointOfContact,
	SubmittedTo,
	SubmissionMethod,
	SubmissionChecklist,
	QuestionsPOC,
	ReceiptOfAmendments,
	NotaryNeeded,
	ResumesNeeded,
	ReferencesNeeded,
	ScopeOfWork,
	Categorization,
	InsuranceNeeded,
	TechnicalRequirement,
}

func (t Type) String() string {
	return string(t)
}

// Instruction returns the extraction instruction for the trait, falling back
// to a generic prompt for an unknown type.
func Instruction(t Type) string {
	if instruction, ok := Prompts[t]; ok {
		return instruction
	}
	return fmt.Sprintf("Extract the trait: %s.", t)
}

// RetrievalQuery returns the query string used to rank chunks for the trait.
func RetrievalQuery(t Type) string {
	if query, ok := Queries[t]; ok {
		return query
	}
	if instruction, ok := Prompts[t]; ok {
		return instruction
	}
	return fmt.Sprintf("Extract the trait %s from the RFP document.", t)
}

func init() {
	// A trait missing from a registry would silently degrade to the generic
	// prompt at runtime, so check completeness up front.
	for _, registry := range []map[Type]string{Prompts, Queries} {
		if len(registry) != len(All) {
			panic(fmt.Sprintf("traits: registry has %d entries, want %d", len(registry), len(All)))
		}
		for _, t := range All {
			if _, ok := registry[t]; !ok {
				panic(fmt.Sprintf("traits: registry missing entry for %s", t))
			}
		}
	}
	for _, t := range All {
		if _, ok := Keywords[t]; !ok {
			panic(fmt.Sprintf("traits: keyword registry missing entry for %s", t))
		}
	}
}
