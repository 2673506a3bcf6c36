package ai

import (
	"strings"

	"github.com/taxmint/statements/internal/domain"
)

// buildPrompt constructs the extraction instructions sent to every provider.
// The output contract is strict JSON so the same decoder serves the whole
// fallback chain.
func buildPrompt(account domain.AccountContext) string {
	basePrompt :=
		"You are a financial document parser for bank statements, invoices and receipts.\n\n" +
			"Task:\n" +
			"- Extract ALL transactions from the attached document.\n" +
			"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
			"- Output a JSON array of objects.\n\n" +
			"Each object must have these fields:\n" +
			"- \"date\": string, ISO format \"YYYY-MM-DD\"\n" +
			"- \"description\": string\n" +
			"- \"amount\": number (always positive)\n" +
			"- \"direction\": string, either \"income\" or \"expense\"\n" +
			"- \"category\": string (one of the categories below)\n\n"

	var cats strings.Builder
	cats.WriteString("Use ONLY the following categories:\n")
	for _, c := range domain.Taxonomy {
		cats.WriteString("  - " + string(c) + "\n")
	}
	cats.WriteString("\n")

	rulesPrompt :=
		"Rules:\n" +
			"- \"amount\" is the absolute value; direction carries the sign.\n" +
			"- If the document has separate debit / credit columns, map debit to \"expense\" and credit to \"income\".\n" +
			"- If you cannot determine a category, use \"other-income\" for income and \"business-expenses\" for expenses.\n" +
			"- Skip balance rows, totals and opening/closing balance lines.\n\n"

	ctxPrompt := accountPrompt(account)

	outPrompt :=
		"Return ONLY valid raw JSON.\n" +
			"Do NOT wrap the response in code fences.\n" +
			"Do NOT use ```json or any Markdown.\n" +
			"Output must begin with \"[\" and end with \"]\".\n"

	return basePrompt + cats.String() + rulesPrompt + ctxPrompt + outPrompt
}

// accountPrompt adds what is known about the uploading account so the model
// can disambiguate categories (e.g. freelance vs salary income).
func accountPrompt(account domain.AccountContext) string {
	var b strings.Builder
	if account.EmploymentType != "" {
		b.WriteString("The account holder's employment type is \"" + string(account.EmploymentType) + "\".\n")
	}
	if account.AccountType != "" {
		b.WriteString("The account is a \"" + string(account.AccountType) + "\" account.\n")
	}
	if len(account.ImportRules) > 0 {
		b.WriteString("The account holder has defined these keyword rules; when a description matches a keyword, prefer its category:\n")
		for _, r := range account.ImportRules {
			if !domain.ValidCategory(r.Category) {
				continue
			}
			b.WriteString("  - \"" + r.Keyword + "\" -> " + string(r.Category) + "\n")
		}
	}
	if b.Len() == 0 {
		return ""
	}
	b.WriteString("\n")
	return b.String()
}
