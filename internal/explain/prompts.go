// internal/explain/prompts.go
package explain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"yojanamitra/internal/models"
)

const (
	assessSystemPrompt  = "You are an expert eligibility analyzer. Always return valid JSON only, no markdown or extra text."
	explainSystemPrompt = "You are a helpful assistant that explains government schemes in simple terms. Always respond in clear, simple English to make it accessible to all users."
)

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func ageText(p models.Profile, def string) string {
	if p.Age == nil {
		return def
	}
	return strconv.Itoa(*p.Age)
}

func incomeText(p models.Profile, def string) string {
	if p.IncomeAnnual == nil {
		return def
	}
	return "₹" + models.FormatAmount(*p.IncomeAnnual)
}

func documentsText(p models.Profile, def string) string {
	if len(p.Documents) == 0 {
		return def
	}
	return strings.Join(p.Documents, ", ")
}

func rulesJSON(r models.EligibilityRules) string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func BuildAssessPrompt(req *AssessRequest) string {
	p, s := req.Profile, req.Scheme

	var b strings.Builder
	b.WriteString("You are an eligibility expert for Indian government schemes. Analyze this eligibility case:\n\n")
	fmt.Fprintf(&b, "Scheme: %s\n", s.Title)
	fmt.Fprintf(&b, "Description: %s\n", s.Description)
	fmt.Fprintf(&b, "Eligibility Rules: %s\n\n", rulesJSON(s.Eligibility))

	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Age: %s\n", ageText(p, "Not provided"))
	fmt.Fprintf(&b, "- State: %s\n", orDefault(p.State, "Not provided"))
	fmt.Fprintf(&b, "- Annual Income: %s\n", incomeText(p, "Not provided"))
	fmt.Fprintf(&b, "- Category: %s\n", orDefault(p.Caste, "Not provided"))
	fmt.Fprintf(&b, "- Education: %s\n", orDefault(p.Education, "Not provided"))
	fmt.Fprintf(&b, "- Documents: %s\n\n", documentsText(p, "None"))

	b.WriteString("Rule-Based Analysis:\n")
	fmt.Fprintf(&b, "- Passed: %d rules\n", req.Passed)
	fmt.Fprintf(&b, "- Failed: %d rules\n", req.Failed)
	fmt.Fprintf(&b, "- Missing: %d fields\n\n", req.Missing)

	b.WriteString(`Provide a JSON response with:
1. "eligible": boolean (true if likely eligible, false if not)
2. "explanation": string (2-3 line explanation in Hinglish explaining why they qualify/don't qualify with specific reasons)
3. "aiScore": number (0-30, additional score based on edge cases and context)
4. "nextActions": array of objects with:
   - "action": string (what user should do)
   - "priority": "high" | "medium" | "low"
   - "description": string (why this action is needed)

Focus on:
- Edge cases (e.g., income slightly above limit but other factors strong)
- Missing information that could change eligibility
- Actionable next steps

Return ONLY valid JSON, no other text.`)
	return b.String()
}

func BuildExplainPrompt(req *ExplainRequest) string {
	p, s := req.Profile, req.Scheme

	docs := "N/A"
	if len(s.RequiredDocs) > 0 {
		docs = strings.Join(s.RequiredDocs, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scheme: %s\n", orDefault(s.Title, "N/A"))
	fmt.Fprintf(&b, "Description: %s\n", orDefault(s.Description, "N/A"))
	fmt.Fprintf(&b, "State: %s\n", orDefault(s.State, "N/A"))
	fmt.Fprintf(&b, "Eligibility Requirements: %s\n", rulesJSON(s.Eligibility))
	fmt.Fprintf(&b, "Required Documents: %s\n\n", docs)

	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orDefault(p.Name, "Not provided"))
	fmt.Fprintf(&b, "- Age: %s\n", ageText(p, "Not provided"))
	fmt.Fprintf(&b, "- State: %s\n", orDefault(p.State, "Not provided"))
	fmt.Fprintf(&b, "- Annual Income: %s\n", incomeText(p, "Not provided"))
	fmt.Fprintf(&b, "- Caste: %s\n", orDefault(p.Caste, "Not provided"))
	fmt.Fprintf(&b, "- Education: %s\n", orDefault(p.Education, "Not provided"))
	fmt.Fprintf(&b, "- Documents Available: %s\n\n", documentsText(p, "None listed"))

	b.WriteString(`Please provide:
1. A clear explanation in simple English whether this user is eligible for this scheme
2. Why they are eligible or not eligible (be specific)
3. What information or documents are missing to confirm eligibility
4. Confidence level (High/Medium/Low) based on available information

Keep the response concise (150-200 words) and user-friendly.`)
	return b.String()
}
