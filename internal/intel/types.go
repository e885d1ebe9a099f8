package intel

import (
	"slices"
	"time"
)

// RoleScammer marks counterparty-authored messages. Extract scans only
// messages carrying this role; agent replies never contribute findings.
const RoleScammer = "scammer"

// Message is the transcript view the extractor consumes.
type Message struct {
	Role    string
	Content string
}

// BankAccount is a 9-18 digit account number candidate.
type BankAccount struct {
	AccountNumber string `json:"account_number"`
	Length        int    `json:"length"`
	ExtractedFrom string `json:"extracted_from"`
}

// IFSCCode is an Indian bank branch routing code.
type IFSCCode struct {
	IFSCCode      string `json:"ifsc_code"`
	BankCode      string `json:"bank_code"`
	BranchCode    string `json:"branch_code"`
	ExtractedFrom string `json:"extracted_from"`
}

// UPIHandle is a local@provider payment handle.
type UPIHandle struct {
	UPIID         string `json:"upi_id"`
	Provider      string `json:"provider"`
	ExtractedFrom string `json:"extracted_from"`
}

type PhoneNumber struct {
	PhoneNumber   string `json:"phone_number"`
	Formatted     string `json:"formatted"`
	ExtractedFrom string `json:"extracted_from"`
}

// PhishingURL is a link found in scammer text together with the phishing
// heuristics that fired on it.
type PhishingURL struct {
	URL              string   `json:"url"`
	Domain           string   `json:"domain"`
	IsSuspicious     bool     `json:"is_suspicious"`
	SuspicionReasons []string `json:"suspicion_reasons"`
	ExtractedFrom    string   `json:"extracted_from"`
}

type EmailAddress struct {
	Email         string `json:"email"`
	Domain        string `json:"domain"`
	ExtractedFrom string `json:"extracted_from"`
}

// Amount is a currency-prefixed figure with the surrounding context window.
type Amount struct {
	Amount    float64 `json:"amount"`
	Formatted string  `json:"formatted"`
	Context   string  `json:"context"`
}

type PANCard struct {
	PANNumber     string `json:"pan_number"`
	ExtractedFrom string `json:"extracted_from"`
}

// AadhaarNumber keeps only the masked form; the full number is never
// stored in any finding field.
type AadhaarNumber struct {
	AadhaarMasked string `json:"aadhaar_masked"`
	ExtractedFrom string `json:"extracted_from"`
}

// Metadata describes one extraction pass over a transcript.
type Metadata struct {
	TotalMessagesAnalyzed int       `json:"total_messages_analyzed"`
	ScammerMessageCount   int       `json:"scammer_messages_count"`
	ExtractionTimestamp   time.Time `json:"extraction_timestamp"`
}

// Summary is the per-kind tally plus the quality score.
type Summary struct {
	TotalBankAccounts   int     `json:"total_bank_accounts"`
	TotalIFSCCodes      int     `json:"total_ifsc_codes"`
	TotalUPIIDs         int     `json:"total_upi_ids"`
	TotalPhoneNumbers   int     `json:"total_phone_numbers"`
	TotalPhishingURLs   int     `json:"total_phishing_urls"`
	TotalSuspiciousURLs int     `json:"total_suspicious_urls"`
	TotalEmailAddresses int     `json:"total_email_addresses"`
	TotalAmounts        int     `json:"total_amounts_mentioned"`
	TotalPANCards       int     `json:"total_pan_cards"`
	TotalAadhaarNumbers int     `json:"total_aadhaar_numbers"`
	TotalPaymentApps    int     `json:"total_payment_apps"`
	QualityScore        float64 `json:"intelligence_quality_score"`
}

// Intelligence is everything mined from one conversation transcript.
// Findings are unique per kind; dedup identity is the normalized value.
type Intelligence struct {
	BankAccounts   []BankAccount   `json:"bank_accounts"`
	IFSCCodes      []IFSCCode      `json:"ifsc_codes"`
	UPIIDs         []UPIHandle     `json:"upi_ids"`
	PhoneNumbers   []PhoneNumber   `json:"phone_numbers"`
	PhishingURLs   []PhishingURL   `json:"phishing_urls"`
	EmailAddresses []EmailAddress  `json:"email_addresses"`
	Amounts        []Amount        `json:"amounts_mentioned"`
	PANCards       []PANCard       `json:"pan_cards"`
	AadhaarNumbers []AadhaarNumber `json:"aadhaar_numbers"`
	PaymentApps    []string        `json:"payment_apps"`
	Metadata       Metadata        `json:"extraction_metadata"`
	Summary        Summary         `json:"summary"`
}

// FindingCount returns the number of unique findings across all kinds.
func (in *Intelligence) FindingCount() int {
	return len(in.BankAccounts) + len(in.IFSCCodes) + len(in.UPIIDs) +
		len(in.PhoneNumbers) + len(in.PhishingURLs) + len(in.EmailAddresses) +
		len(in.Amounts) + len(in.PANCards) + len(in.AadhaarNumbers) +
		len(in.PaymentApps)
}

// HasFindings reports whether any identifier was extracted.
func (in *Intelligence) HasFindings() bool {
	return in.FindingCount() > 0
}

// Clone returns a deep copy.
func (in Intelligence) Clone() Intelligence {
	out := in
	out.BankAccounts = slices.Clone(in.BankAccounts)
	out.IFSCCodes = slices.Clone(in.IFSCCodes)
	out.UPIIDs = slices.Clone(in.UPIIDs)
	out.PhoneNumbers = slices.Clone(in.PhoneNumbers)
	out.PhishingURLs = slices.Clone(in.PhishingURLs)
	for i := range out.PhishingURLs {
		out.PhishingURLs[i].SuspicionReasons = slices.Clone(out.PhishingURLs[i].SuspicionReasons)
	}
	out.EmailAddresses = slices.Clone(in.EmailAddresses)
	out.Amounts = slices.Clone(in.Amounts)
	out.PANCards = slices.Clone(in.PANCards)
	out.AadhaarNumbers = slices.Clone(in.AadhaarNumbers)
	out.PaymentApps = slices.Clone(in.PaymentApps)
	return out
}
