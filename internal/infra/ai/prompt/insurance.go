package prompt

import (
	"fmt"
	"strings"
)

// Builder renders the prompt for each assistant endpoint. Document text is
// capped at MaxDocumentChars runes; zero means no cap.
type Builder struct {
	MaxDocumentChars int
}

// AskInput holds the fields interpolated into a question prompt.
type AskInput struct {
	Question   string
	PolicyDate string
	UserInfo   string
	Document   string
}

type ClaimInput struct {
	ClaimType          string
	ExpenseDescription string
	HospitalPreference string
	BillAttached       bool
	Document           string
}

type RecommendationInput struct {
	Age              string
	Gender           string
	HealthConditions string
	DesiredCoverage  string
	Budget           string
}

type WellnessInput struct {
	Goal           string
	HealthDataFile string
}

// Ask builds the question-answering prompt.
func (b Builder) Ask(in AskInput) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful health insurance assistant. Answer the question using the policy document when one is provided, otherwise based on typical health insurance policies. Be concise, helpful, and professional.\n\n")
	writeField(&sb, "User Info", in.UserInfo)
	writeField(&sb, "Policy Date", in.PolicyDate)
	writeField(&sb, "Question", in.Question)
	if strings.TrimSpace(in.Document) != "" {
		sb.WriteString("\nRelevant Policy Document:\n")
		b.writeDocument(&sb, in.Document)
	}
	sb.WriteString("\nProvide a clear and direct answer.")
	return sb.String()
}

// Summary builds the prompt sent right after a document upload.
func (b Builder) Summary(document string) string {
	var sb strings.Builder
	sb.WriteString("Summarize the following health insurance policy document. Highlight key coverages, exclusions, waiting periods, and claim procedures. Keep it concise and easy to understand.\n\n")
	sb.WriteString("Document Text:\n")
	b.writeDocument(&sb, document)
	return sb.String()
}

// Claim builds the claim eligibility prompt.
func (b Builder) Claim(in ClaimInput) string {
	var sb strings.Builder
	sb.WriteString("You are a health insurance claim assistant. Evaluate the potential eligibility of the claim below under the policy terms. Provide a clear assessment and any necessary next steps or common considerations.\n\n")
	writeField(&sb, "Claim Type", in.ClaimType)
	writeField(&sb, "Expense Description", in.ExpenseDescription)
	writeField(&sb, "Preferred Hospital", orDefault(in.HospitalPreference, "N/A"))
	writeField(&sb, "Bill Attached", yesNo(in.BillAttached))
	sb.WriteString("\nPolicy Document:\n")
	if strings.TrimSpace(in.Document) == "" {
		sb.WriteString("No policy document has been uploaded; assess against typical health insurance terms.\n")
	} else {
		b.writeDocument(&sb, in.Document)
	}
	sb.WriteString("\nIs this claim likely eligible? What are the typical steps or documents needed?")
	return sb.String()
}

// Recommendation builds the policy recommendation prompt.
func (b Builder) Recommendation(in RecommendationInput) string {
	var sb strings.Builder
	sb.WriteString("You are a health insurance policy recommender. Suggest 2-3 suitable insurance policy types or plan features for the profile below, with a brief reason for each. Keep the suggestions realistic for the Indian market.\n\n")
	writeField(&sb, "Age", in.Age)
	writeField(&sb, "Gender", in.Gender)
	writeField(&sb, "Health Conditions", orDefault(in.HealthConditions, "None"))
	writeField(&sb, "Desired Coverage", in.DesiredCoverage)
	writeField(&sb, "Annual Budget", rupees(in.Budget))
	sb.WriteString("\nRecommend specific policy types (e.g., Individual Basic Plan, Family Floater, Senior Citizen Plan, Critical Illness Rider) and explain why they fit.")
	return sb.String()
}

// Wellness builds the wellness insight prompt. Uploaded health data is only
// acknowledged by name.
func (b Builder) Wellness(in WellnessInput) string {
	var sb strings.Builder
	sb.WriteString("As a health and wellness AI, provide insights and actionable advice based on the following. Assume general health principles if no specific data is provided.\n\n")
	writeField(&sb, "User's Wellness Goal", in.Goal)
	if in.HealthDataFile != "" {
		fmt.Fprintf(&sb, "Health data file uploaded (%s).\n", in.HealthDataFile)
		sb.WriteString("Based on general knowledge and the user's goal, provide actionable steps for wellness.")
	} else {
		sb.WriteString("No specific health data provided. Provide general wellness tips for achieving the goal.")
	}
	return sb.String()
}

func (b Builder) writeDocument(sb *strings.Builder, text string) {
	doc, truncated := Truncate(text, b.MaxDocumentChars)
	sb.WriteString(doc)
	if !strings.HasSuffix(doc, "\n") {
		sb.WriteString("\n")
	}
	if truncated {
		fmt.Fprintf(sb, "[Document truncated to the first %d characters.]\n", b.MaxDocumentChars)
	}
}

// Truncate cuts s to at most max runes. max <= 0 leaves s untouched.
func Truncate(s string, max int) (string, bool) {
	if max <= 0 || len(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}

func writeField(sb *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(sb, "%s: %s\n", label, value)
}

// rupees prefixes the budget with ₹ unless the user already wrote it.
func rupees(budget string) string {
	if strings.TrimSpace(budget) == "" || strings.HasPrefix(strings.TrimSpace(budget), "₹") {
		return budget
	}
	return "₹" + budget
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
