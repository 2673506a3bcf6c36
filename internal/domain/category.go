package domain

// Category is one entry of the fixed tax taxonomy. Parsers leave it empty
// when they cannot tell; the categorizer always fills it before a candidate
// leaves the pipeline.
type Category string

// Income categories.
const (
	CategorySalary           Category = "salary"
	CategoryBusinessIncome   Category = "business-income"
	CategoryFreelanceIncome  Category = "freelance-income"
	CategoryInvestmentIncome Category = "investment-income"
	CategoryOtherIncome      Category = "other-income"
)

// Expense categories.
const (
	CategoryTransport        Category = "transport"
	CategoryFood             Category = "food"
	CategoryRent             Category = "rent"
	CategoryUtilities        Category = "utilities"
	CategoryBankFees         Category = "bank-fees"
	CategoryTaxPayments      Category = "tax-payments"
	CategorySubscriptions    Category = "subscriptions"
	CategoryPension          Category = "pension-contributions"
	CategoryProfessionalFees Category = "professional-fees"
	CategoryMaintenance      Category = "maintenance"
	CategoryHealth           Category = "health"
	CategoryDonations        Category = "donations"
	CategoryBusinessExpenses Category = "business-expenses"
	CategoryMiscellaneous    Category = "miscellaneous"
)

// Taxonomy lists every valid category, used to validate AI output.
var Taxonomy = []Category{
	CategorySalary, CategoryBusinessIncome, CategoryFreelanceIncome,
	CategoryInvestmentIncome, CategoryOtherIncome,
	CategoryTransport, CategoryFood, CategoryRent, CategoryUtilities,
	CategoryBankFees, CategoryTaxPayments, CategorySubscriptions,
	CategoryPension, CategoryProfessionalFees, CategoryMaintenance,
	CategoryHealth, CategoryDonations, CategoryBusinessExpenses,
	CategoryMiscellaneous,
}

// ValidCategory reports whether c is part of the taxonomy.
func ValidCategory(c Category) bool {
	for _, known := range Taxonomy {
		if c == known {
			return true
		}
	}
	return false
}
