package traits

// Prompts holds the extraction instruction sent to the model for each trait.
var Prompts = map[Type]string{
	Title:                "FROM THE PROVIDED TEXT, EXTRACT ONLY the official, full title of the Request for Proposal (RFP) or Request for Quote (RFQ). DO NOT ADD ANY OTHER WORDS, PUNCTUATION, OR EXPLANATION.",
	DueDate:              "FROM THE PROVIDED TEXT, identify the final proposal submission deadline. OUTPUT ONLY the date in the strict YYYY-MM-DD format. If a specific time is mentioned, ignore it. If no date is found, output 'N/A'",
	PointOfContact:       "Identify the primary point of contact's name for the proposal. OUTPUT ONLY the name, and optionally include their email address or phone number immediately following the name on a single line. If no contact is specified, output 'N/A'.",
	SubmittedTo:          "FROM THE TEXT, identify the full, official name of the agency or organization that will receive and evaluate the proposal. OUTPUT ONLY the recipient's name.",
	SubmissionMethod:     "Determine the required method for proposal submission (e.g., Online Portal, Email, Hard Copy Mail). OUTPUT ONLY the method as a short, concise phrase (10-15 words max).",
	SubmissionChecklist:  "Answer 'Yes' or 'No' if a submission checklist is required. Respond with only Yes or No.",
	QuestionsPOC:         "Identify the deadline date for submitting vendor questions AND the contact name or email for those questions. OUTPUT ONLY this information in a single, short line (e.g., '2025-01-15 to John Doe').",
	ReceiptOfAmendments:  "Does the RFP/RFQ explicitly require the vendor to sign, acknowledge, or include a form confirming receipt of all issued amendments? OUTPUT ONLY 'Yes' or 'No'.",
	NotaryNeeded:         "Is notarization (official seal/stamp by a Notary Public) specifically required on any form, affidavit, or part of the submitted proposal? OUTPUT ONLY 'Yes' or 'No'.",
	ResumesNeeded:        "Are Resumes, CVs, or Key Personnel Biographical Data explicitly listed as a required submission component? OUTPUT ONLY 'Yes' or 'No'.",
	ReferencesNeeded:     "Are client references, past performance examples, or project case studies required? OUTPUT ONLY 'Yes' or 'No'.",
	ScopeOfWork:          "Summarize the essential scope of work and key deliverables. The summary must be accurate, highly condensed, and strictly 60 words or less. Prioritize services and final goals.",
	Categorization:       "Assign a single, descriptive category label (e.g., IT Services, Construction, Legal Consulting, Janitorial) that best classifies the primary purpose of this opportunity. OUTPUT ONLY the label.",
	InsuranceNeeded:      "Does the opportunity require mandated insurance coverage? If 'Yes', list the main required policy types (e.g., 'General Liability', 'Workers' Comp'). Format: 'Yes, [Policy A, Policy B]' or 'No'.",
	TechnicalRequirement: "Extract all mandatory minimum technical requirements for the vendor, such as specific professional licenses, certifications, years of experience, or required team roles, and consolidate them into one concise sentence.",
}

// Queries holds the retrieval query used to rank chunks for each trait.
var Queries = map[Type]string{
	Title:                "Official solicitation title, subject line, and document identifier (RFQ/RFP number) typically found on the cover page or first section.",
	DueDate:              "Proposal Submission Deadline, Final proposal or quote submission deadline date and time from the schedule of activities, including any timezone references.",
	PointOfContact:       "Primary procurement/contracting officer responsible for communications, including their name and email or phone number.",
	SubmittedTo:          "Issuing or receiving agency/organization that will accept the proposal (e.g., IRS, FDLE, Department of Transportation).",
	SubmissionMethod:     "Instructions describing exactly how vendors must submit proposals (e.g., via GSA eBuy, email to a specific address, physical mail).",
	SubmissionChecklist:  "Any list of mandatory documents, attachments, or forms that must accompany the submission (e.g., Attachments 1-5, checklists).",
	QuestionsPOC:         "Details about how and when vendors can submit questions, including deadlines and contact information.",
	ReceiptOfAmendments:  "Directions for acknowledging or signing solicitation amendments/addenda, often found in signature or forms sections.",
	NotaryNeeded:         "Language indicating that any form or affidavit must be notarized or sworn before a notary public.",
	ResumesNeeded:        "Requirements for submitting resumes/CVs/biographies for key personnel as part of the proposal.",
	ReferencesNeeded:     "Requirements for providing client references, past projects, or past performance questionnaires.",
	ScopeOfWork:          "Core description of the services, tasks, or deliverables expected from the contractor.",
	Categorization:       "Statements describing the overall nature of the project (e.g., information technology services, cybersecurity, consulting).",
	InsuranceNeeded:      "Sections that list insurance, bonding, or security compliance requirements.",
	TechnicalRequirement: "Specific technical qualifications, licenses, certifications, or experience levels required of the vendor or team.",
}

// Keywords holds the case-insensitive whole-word keyword lists used for the
// keyword half of the retrieval score.
var Keywords = map[Type][]string{
	Title:                {"request for proposal", "rfp", "rfq", "invitation"},
	DueDate:              {"due", "deadline", "submission"},
	PointOfContact:       {"contact", "poc", "questions"},
	SubmittedTo:          {"submit", "addressed", "agency", "department"},
	SubmissionMethod:     {"submit via", "portal", "email", "deliver"},
	SubmissionChecklist:  {"checklist", "include", "required documents"},
	QuestionsPOC:         {"questions", "clarifications", "contact"},
	ReceiptOfAmendments:  {"acknowledge", "addenda", "amendments"},
	NotaryNeeded:         {"notary", "notarized", "seal"},
	ResumesNeeded:        {"resume", "curriculum vitae", "cv"},
	ReferencesNeeded:     {"reference", "client reference"},
	ScopeOfWork:          {"scope of work", "services", "deliverables"},
	Categorization:       {"category", "classification", "industry"},
	InsuranceNeeded:      {"insurance", "coverage", "certificate"},
	TechnicalRequirement: {"requirements", "qualifications", "experience"},
}
