// Package patterns holds the static detection and extraction tables: scam
// category regexes, keyword lists, identifier patterns, and vocabulary sets.
// A Library is immutable after construction; build one with Default at
// startup and pass it into the components that need it.
package patterns

import "regexp"

// Scam categories in fixed evaluation order. The scorer reports the first
// matching category as primary, so this order is part of the contract.
const (
	CategoryFinancialFraud = "financial_fraud"
	CategoryPaymentScam    = "payment_scam"
	CategoryPhishing       = "phishing"
	CategoryImpersonation  = "impersonation"
	CategoryLotteryPrize   = "lottery_prize"
	CategoryJobScam        = "job_scam"
	CategoryUnknown        = "unknown"
)

// CategoryPatterns is the ordered pattern list for one scam category.
// The first pattern that matches counts the category; later ones are skipped.
type CategoryPatterns struct {
	Category string
	Patterns []*regexp.Regexp
}

type Library struct {
	// Scorer tables.
	Scam               []CategoryPatterns
	UrgencyKeywords    []string
	CredentialKeywords []string
	FinancialKeywords  []string
	ScamPhrases        []string
	URLSignal          *regexp.Regexp
	PhoneSignal        *regexp.Regexp

	// AmountCue flags any currency-prefixed figure. Broader than Amount:
	// it also accepts $ and the rupee sign and captures nothing.
	AmountCue *regexp.Regexp

	// Identifier patterns.
	BankAccount *regexp.Regexp
	IFSC        *regexp.Regexp
	UPIHandle   *regexp.Regexp
	Phone       *regexp.Regexp
	URL         *regexp.Regexp
	Email       *regexp.Regexp
	Amount      *regexp.Regexp
	PAN         *regexp.Regexp
	Aadhaar     *regexp.Regexp
	IPv4Literal *regexp.Regexp

	// Identifier vocabularies.
	UPIProviders  []string
	PaymentApps   []string
	LowTrustTLDs  []string
	URLShorteners []string
	PaymentBrands []string
}

// urlPattern is shared by the phishing category and the URL extractor.
const urlPattern = `http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`

// Default builds the standard library. Scorer patterns are case-insensitive;
// IFSC and PAN extraction runs against upper-cased input instead.
func Default() *Library {
	return &Library{
		Scam: []CategoryPatterns{
			{Category: CategoryFinancialFraud, Patterns: compile(
				`\b(?:bank|account|atm|credit card|debit card)\b.*\b(?:block|expire|suspend|verify|update|confirm)\b`,
				`\b(?:urgent|immediate|action required)\b.*\b(?:account|card|bank)\b`,
				`\bkyc\b.*\b(?:update|pending|expire|verify)\b`,
				`\b(?:refund|cashback|reward|prize)\b.*\b(?:claim|pending|won|congratulations)\b`,
			)},
			{Category: CategoryPaymentScam, Patterns: compile(
				`\b(?:paytm|phonepe|gpay|google pay|upi)\b.*\b(?:verify|update|expire|link|activate)\b`,
				`\bsend\b.*\b(?:otp|code|pin|password)\b`,
				`\b(?:transfer|payment)\b.*\b(?:failed|pending|reversed)\b`,
			)},
			{Category: CategoryPhishing, Patterns: compile(
				`(?:click|tap|visit)\b.*\b(?:link|url|website)\b`,
				`\blink\b.*\b(?:verify|update|activate|claim)\b`,
				urlPattern,
			)},
			{Category: CategoryImpersonation, Patterns: compile(
				`\b(?:dear customer|valued customer|account holder)\b`,
				`\bfrom\b.*\b(?:bank|government|tax department|it department)\b`,
				`\b(?:rbi|sebi|income tax|gst)\b`,
			)},
			{Category: CategoryLotteryPrize, Patterns: compile(
				`\b(?:won|winner|selected|lucky)\b.*\b(?:lottery|prize|reward|contest)\b`,
				`\bcongratulations\b.*\b(?:win|won|selected)\b`,
				`\b(?:lakhs?|crores?|million)\b.*\b(?:rupees?|rs\.?|inr)\b`,
			)},
			{Category: CategoryJobScam, Patterns: compile(
				`\b(?:job|work from home|part time|earn)\b.*\b(?:daily|monthly|weekly)\b`,
				`\b(?:register|registration)\b.*\b(?:fee|amount|payment)\b`,
				`\b(?:guaranteed|assured)\b.*\b(?:income|salary|earning)\b`,
			)},
		},

		UrgencyKeywords: []string{
			"urgent", "immediately", "asap", "now", "today",
			"expire", "expiring", "last chance", "limited time",
			"within 24 hours", "act now", "don't wait",
		},
		CredentialKeywords: []string{
			"otp", "pin", "password", "cvv", "card number",
			"account number", "aadhar", "pan", "date of birth",
			"mother's maiden name", "security code",
		},
		FinancialKeywords: []string{
			"bank account", "account number", "ifsc", "upi id",
			"upi", "paytm", "phonepe", "gpay", "payment link",
			"transfer money", "send money", "pay now",
		},
		ScamPhrases: []string{
			"verify your account", "account will be blocked", "suspended account",
			"claim your reward", "you have won", "confirm your identity",
			"update your kyc", "expired card", "failed transaction",
			"refund pending", "tax refund", "government grant",
		},
		URLSignal:   regexp.MustCompile(`http[s]?://`),
		PhoneSignal: regexp.MustCompile(`\b\d{10}\b|\+\d{1,3}[\s-]?\d{10}\b`),
		AmountCue:   regexp.MustCompile(`(?i)(?:rs\.?|rupees?|inr|\$|₹)\s*\d+`),

		BankAccount: regexp.MustCompile(`\b\d{9,18}\b`),
		IFSC:        regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`),
		// The UPI pattern keeps the full dotted domain so the provider check
		// can tell handles apart from ordinary email addresses.
		UPIHandle: regexp.MustCompile(`\b[a-zA-Z0-9._-]+@[a-zA-Z]+(?:\.[a-zA-Z]+)*\b`),
		Phone:     regexp.MustCompile(`\b(?:\+91[\s-]?)?[6-9]\d{9}\b`),
		URL:       regexp.MustCompile(urlPattern),
		Email:     regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Amount:    regexp.MustCompile(`(?i)(?:rs\.?|rupees?|inr)\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
		PAN:       regexp.MustCompile(`\b[A-Z]{5}[0-9]{4}[A-Z]\b`),
		Aadhaar:   regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`),
		// A raw IPv4 literal in a URL is a suspicion signal on its own.
		IPv4Literal: regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`),

		UPIProviders: []string{
			"paytm", "phonepe", "googlepay", "gpay", "bhim",
			"ybl", "okhdfcbank", "oksbi", "okicici", "okaxis",
		},
		PaymentApps: []string{
			"paytm", "phonepe", "gpay", "google pay", "bhim", "amazon pay",
		},
		LowTrustTLDs:  []string{".xyz", ".top", ".club", ".tk", ".ml", ".ga", ".cf", ".gq"},
		URLShorteners: []string{"bit.ly", "tinyurl", "goo.gl", "t.co", "ow.ly"},
		PaymentBrands: []string{"paytm", "phonepe", "googlepay", "sbi", "hdfc", "icici", "axis"},
	}
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return out
}
