// Package categorize assigns tax categories to transaction descriptions with
// deterministic keyword rules. No ML here: every assignment is explainable
// by the first rule whose keyword appears in the description.
package categorize

import (
	"strings"

	"github.com/taxmint/statements/internal/domain"
)

// Rule pairs an ordered keyword group with the category it assigns.
//
// Rule order is load-bearing. Overlapping keywords across groups are resolved
// by position in the list, not by specificity, so reordering these entries
// changes classification behavior. Do not refactor into a map.
type Rule struct {
	Keywords []string
	Category domain.Category
}

var incomeRules = []Rule{
	{[]string{"salary", "payroll", "wages", "sal pay", "monthly pay"}, domain.CategorySalary},
	{[]string{"revenue", "sales", "invoice", "payment received", "pos settlement"}, domain.CategoryBusinessIncome},
	{[]string{"freelance", "upwork", "fiverr", "contract pay", "gig"}, domain.CategoryFreelanceIncome},
	{[]string{"dividend", "interest", "treasury bill", "t-bill", "investment", "mutual fund"}, domain.CategoryInvestmentIncome},
}

var expenseRules = []Rule{
	{[]string{"uber", "bolt", "taxi", "transport", "fuel", "petrol", "diesel", "brt", "okada", "flight", "airline"}, domain.CategoryTransport},
	{[]string{"restaurant", "eatery", "food", "shoprite", "supermarket", "groceries", "market", "kfc", "chicken republic"}, domain.CategoryFood},
	{[]string{"rent", "lease", "accommodation", "landlord"}, domain.CategoryRent},
	{[]string{"nepa", "phcn", "electricity", "dstv", "gotv", "internet", "airtime", "data bundle", "mtn", "glo ", "airtel", "9mobile", "water bill"}, domain.CategoryUtilities},
	{[]string{"bank charge", "charge", "commission", "levy", "stamp duty", "sms alert", "maintenance fee", "card fee", "vat"}, domain.CategoryBankFees},
	{[]string{"firs", "lirs", "paye", "wht", "tax remit", "tax payment"}, domain.CategoryTaxPayments},
	{[]string{"subscription", "netflix", "spotify", "apple.com", "prime video", "renewal"}, domain.CategorySubscriptions},
	{[]string{"pension", "rsa ", "nhf", "housing fund"}, domain.CategoryPension},
	{[]string{"legal", "audit", "consult", "professional fee", "accounting"}, domain.CategoryProfessionalFees},
	{[]string{"repair", "maintenance", "servicing", "spare part"}, domain.CategoryMaintenance},
	{[]string{"hospital", "pharmacy", "clinic", "medical", "drug", "hmo"}, domain.CategoryHealth},
	{[]string{"donation", "charity", "tithe", "offering", "church", "mosque"}, domain.CategoryDonations},
}

// Categorize maps a verbatim description and its direction to a category.
// Pure and deterministic: identical input always yields the same category.
// Income falls through to other-income; expenses fall through to
// business-expenses rather than miscellaneous, which keeps ambiguous spend
// eligible for deduction downstream.
func Categorize(description string, isIncome bool) domain.Category {
	desc := strings.ToLower(description)

	rules := expenseRules
	fallback := domain.CategoryBusinessExpenses
	if isIncome {
		rules = incomeRules
		fallback = domain.CategoryOtherIncome
	}

	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, kw) {
				return rule.Category
			}
		}
	}
	return fallback
}

// CategorizeWithRules first consults the user's import rules, in the order
// supplied, then falls back to the built-in lists.
func CategorizeWithRules(description string, isIncome bool, overrides []domain.ImportRule) domain.Category {
	desc := strings.ToLower(description)
	for _, r := range overrides {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		if kw == "" || !domain.ValidCategory(r.Category) {
			continue
		}
		if strings.Contains(desc, kw) {
			return r.Category
		}
	}
	return Categorize(description, isIncome)
}
