// Package intel mines structured identifiers out of scam conversations:
// bank accounts, UPI handles, IFSC codes, phone numbers, phishing URLs,
// email addresses, amounts, PAN and Aadhaar-format numbers, and payment
// app mentions.
package intel

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/jaal/internal/patterns"
)

// Quality score weights per finding kind, clamped to 100 overall.
const (
	accountWeight = 20
	upiWeight     = 15
	ifscWeight    = 10
	phoneWeight   = 8
	urlWeight     = 12
	emailWeight   = 5
	amountWeight  = 3
	qualityCap    = 100
)

// Extractor mines identifier findings from scammer-authored messages
// using the shared pattern library.
type Extractor struct {
	lib    *patterns.Library
	logger *slog.Logger
}

func New(lib *patterns.Library, logger *slog.Logger) *Extractor {
	return &Extractor{lib: lib, logger: logger}
}

// Extract runs every identifier pattern over the scammer-authored messages
// of the transcript. Findings are deduplicated per kind; the first
// occurrence of a value wins and later repeats are dropped.
func (e *Extractor) Extract(messages []Message) Intelligence {
	intel := Intelligence{
		Metadata: Metadata{
			TotalMessagesAnalyzed: len(messages),
			ExtractionTimestamp:   time.Now().UTC(),
		},
	}

	seen := make(seenSet)

	for _, msg := range messages {
		if msg.Role != RoleScammer {
			continue
		}
		intel.Metadata.ScammerMessageCount++

		e.extractBankAccounts(msg.Content, &intel, seen)
		e.extractIFSCCodes(msg.Content, &intel, seen)
		e.extractUPIHandles(msg.Content, &intel, seen)
		e.extractPhoneNumbers(msg.Content, &intel, seen)
		e.extractURLs(msg.Content, &intel, seen)
		e.extractEmails(msg.Content, &intel, seen)
		e.extractAmounts(msg.Content, &intel, seen)
		e.extractPANCards(msg.Content, &intel, seen)
		e.extractAadhaar(msg.Content, &intel, seen)
		e.extractPaymentApps(msg.Content, &intel, seen)
	}

	intel.Summary = summarize(&intel)

	e.logger.Debug("extraction pass complete",
		"messages", len(messages),
		"scammer_messages", intel.Metadata.ScammerMessageCount,
		"findings", intel.FindingCount(),
		"quality_score", intel.Summary.QualityScore,
	)

	return intel
}

// Merge unions other into in. Findings already present are never dropped or
// overwritten; new values are appended in other's order. The metadata block
// adopts the newer pass and the summary is recomputed. Returns the number
// of findings added.
func (in *Intelligence) Merge(other Intelligence) int {
	seen := make(seenSet)
	for _, f := range in.BankAccounts {
		seen.add("account", f.AccountNumber)
	}
	for _, f := range in.IFSCCodes {
		seen.add("ifsc", f.IFSCCode)
	}
	for _, f := range in.UPIIDs {
		seen.add("upi", f.UPIID)
	}
	for _, f := range in.PhoneNumbers {
		seen.add("phone", f.PhoneNumber)
	}
	for _, f := range in.PhishingURLs {
		seen.add("url", f.URL)
	}
	for _, f := range in.EmailAddresses {
		seen.add("email", f.Email)
	}
	for _, f := range in.Amounts {
		seen.add("amount", f.Formatted)
	}
	for _, f := range in.PANCards {
		seen.add("pan", f.PANNumber)
	}
	for _, f := range in.AadhaarNumbers {
		seen.add("aadhaar", f.AadhaarMasked)
	}
	for _, app := range in.PaymentApps {
		seen.add("app", app)
	}

	added := 0
	for _, f := range other.BankAccounts {
		if seen.add("account", f.AccountNumber) {
			in.BankAccounts = append(in.BankAccounts, f)
			added++
		}
	}
	for _, f := range other.IFSCCodes {
		if seen.add("ifsc", f.IFSCCode) {
			in.IFSCCodes = append(in.IFSCCodes, f)
			added++
		}
	}
	for _, f := range other.UPIIDs {
		if seen.add("upi", f.UPIID) {
			in.UPIIDs = append(in.UPIIDs, f)
			added++
		}
	}
	for _, f := range other.PhoneNumbers {
		if seen.add("phone", f.PhoneNumber) {
			in.PhoneNumbers = append(in.PhoneNumbers, f)
			added++
		}
	}
	for _, f := range other.PhishingURLs {
		if seen.add("url", f.URL) {
			in.PhishingURLs = append(in.PhishingURLs, f)
			added++
		}
	}
	for _, f := range other.EmailAddresses {
		if seen.add("email", f.Email) {
			in.EmailAddresses = append(in.EmailAddresses, f)
			added++
		}
	}
	for _, f := range other.Amounts {
		if seen.add("amount", f.Formatted) {
			in.Amounts = append(in.Amounts, f)
			added++
		}
	}
	for _, f := range other.PANCards {
		if seen.add("pan", f.PANNumber) {
			in.PANCards = append(in.PANCards, f)
			added++
		}
	}
	for _, f := range other.AadhaarNumbers {
		if seen.add("aadhaar", f.AadhaarMasked) {
			in.AadhaarNumbers = append(in.AadhaarNumbers, f)
			added++
		}
	}
	for _, app := range other.PaymentApps {
		if seen.add("app", app) {
			in.PaymentApps = append(in.PaymentApps, app)
			added++
		}
	}

	if !other.Metadata.ExtractionTimestamp.IsZero() {
		in.Metadata = other.Metadata
	}
	in.Summary = summarize(in)

	return added
}

// seenSet tracks normalized finding values per kind so repeats across
// messages collapse to the first occurrence.
type seenSet map[string]struct{}

// add records kind:value and reports whether it was newly seen.
func (s seenSet) add(kind, value string) bool {
	key := kind + ":" + value
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}

func (e *Extractor) extractBankAccounts(message string, out *Intelligence, seen seenSet) {
	for _, m := range e.lib.BankAccount.FindAllString(message, -1) {
		if !seen.add("account", m) {
			continue
		}
		out.BankAccounts = append(out.BankAccounts, BankAccount{
			AccountNumber: m,
			Length:        len(m),
			ExtractedFrom: provenance(message),
		})
	}
}

func (e *Extractor) extractIFSCCodes(message string, out *Intelligence, seen seenSet) {
	for _, m := range e.lib.IFSC.FindAllString(strings.ToUpper(message), -1) {
		if !seen.add("ifsc", m) {
			continue
		}
		out.IFSCCodes = append(out.IFSCCodes, IFSCCode{
			IFSCCode:      m,
			BankCode:      m[:4],
			BranchCode:    m[5:],
			ExtractedFrom: provenance(message),
		})
	}
}

// extractUPIHandles pulls local@domain tokens and keeps the ones that look
// like payment handles rather than email addresses: a known provider in the
// domain, or a short local part with an undotted domain.
func (e *Extractor) extractUPIHandles(message string, out *Intelligence, seen seenSet) {
	for _, m := range e.lib.UPIHandle.FindAllString(message, -1) {
		local, domain, ok := strings.Cut(m, "@")
		if !ok {
			continue
		}
		if !e.isUPIProvider(domain) && (len(local) > 20 || strings.Contains(domain, ".")) {
			continue
		}
		if !seen.add("upi", m) {
			continue
		}
		out.UPIIDs = append(out.UPIIDs, UPIHandle{
			UPIID:         m,
			Provider:      domain,
			ExtractedFrom: provenance(message),
		})
	}
}

func (e *Extractor) isUPIProvider(domain string) bool {
	lower := strings.ToLower(domain)
	for _, provider := range e.lib.UPIProviders {
		if strings.Contains(lower, provider) {
			return true
		}
	}
	return false
}

func (e *Extractor) extractPhoneNumbers(message string, out *Intelligence, seen seenSet) {
	for _, m := range e.lib.Phone.FindAllString(message, -1) {
		cleaned := stripSeparators(m)
		if !seen.add("phone", cleaned) {
			continue
		}
		out.PhoneNumbers = append(out.PhoneNumbers, PhoneNumber{
			PhoneNumber:   cleaned,
			Formatted:     m,
			ExtractedFrom: provenance(message),
		})
	}
}

func (e *Extractor) extractURLs(message string, out *Intelligence, seen seenSet) {
	for _, m := range e.lib.URL.FindAllString(message, -1) {
		if !seen.add("url", m) {
			continue
		}
		suspicious, reasons := e.urlSuspicion(m)
		out.PhishingURLs = append(out.PhishingURLs, PhishingURL{
			URL:              m,
			Domain:           domainOf(m),
			IsSuspicious:     suspicious,
			SuspicionReasons: reasons,
			ExtractedFrom:    provenance(message),
		})
	}
}

// extractEmails skips addresses whose text mentions a UPI provider; those
// are handled as payment handles instead.
func (e *Extractor) extractEmails(message string, out *Intelligence, seen seenSet) {
	for _, m := range e.lib.Email.FindAllString(message, -1) {
		if e.isUPIProvider(m) {
			continue
		}
		if !seen.add("email", m) {
			continue
		}
		_, domain, _ := strings.Cut(m, "@")
		out.EmailAddresses = append(out.EmailAddresses, EmailAddress{
			Email:         m,
			Domain:        domain,
			ExtractedFrom: provenance(message),
		})
	}
}

// extractAmounts parses currency-prefixed figures. Candidates that fail
// numeric parsing are dropped individually.
func (e *Extractor) extractAmounts(message string, out *Intelligence, seen seenSet) {
	for _, groups := range e.lib.Amount.FindAllStringSubmatch(message, -1) {
		formatted := groups[1]
		value, err := strconv.ParseFloat(strings.ReplaceAll(formatted, ",", ""), 64)
		if err != nil {
			continue
		}
		if !seen.add("amount", formatted) {
			continue
		}
		out.Amounts = append(out.Amounts, Amount{
			Amount:    value,
			Formatted: formatted,
			Context:   amountContext(message, formatted),
		})
	}
}

func (e *Extractor) extractPANCards(message string, out *Intelligence, seen seenSet) {
	for _, m := range e.lib.PAN.FindAllString(strings.ToUpper(message), -1) {
		if !seen.add("pan", m) {
			continue
		}
		out.PANCards = append(out.PANCards, PANCard{
			PANNumber:     m,
			ExtractedFrom: provenance(message),
		})
	}
}

// extractAadhaar stores Aadhaar-format numbers masked to the last four
// digits. The provenance snippet is masked too so the full number never
// leaves the source message.
func (e *Extractor) extractAadhaar(message string, out *Intelligence, seen seenSet) {
	matches := e.lib.Aadhaar.FindAllString(message, -1)
	if len(matches) == 0 {
		return
	}
	snippet := provenance(e.lib.Aadhaar.ReplaceAllStringFunc(message, maskAadhaar))
	for _, m := range matches {
		masked := maskAadhaar(m)
		if !seen.add("aadhaar", masked) {
			continue
		}
		out.AadhaarNumbers = append(out.AadhaarNumbers, AadhaarNumber{
			AadhaarMasked: masked,
			ExtractedFrom: snippet,
		})
	}
}

func maskAadhaar(number string) string {
	return "XXXX XXXX " + number[len(number)-4:]
}

func (e *Extractor) extractPaymentApps(message string, out *Intelligence, seen seenSet) {
	lower := strings.ToLower(message)
	for _, app := range e.lib.PaymentApps {
		if !strings.Contains(lower, app) {
			continue
		}
		if !seen.add("app", app) {
			continue
		}
		out.PaymentApps = append(out.PaymentApps, app)
	}
}

// urlSuspicion applies the phishing heuristics. Any reason marks the URL
// suspicious; brand checks can contribute one reason per brand.
func (e *Extractor) urlSuspicion(url string) (bool, []string) {
	lower := strings.ToLower(url)
	var reasons []string

	for _, tld := range e.lib.LowTrustTLDs {
		if strings.Contains(lower, tld) {
			reasons = append(reasons, "Suspicious TLD")
			break
		}
	}

	if e.lib.IPv4Literal.MatchString(url) {
		reasons = append(reasons, "Uses IP address")
	}

	for _, shortener := range e.lib.URLShorteners {
		if strings.Contains(lower, shortener) {
			reasons = append(reasons, "URL shortener")
			break
		}
	}

	for _, brand := range e.lib.PaymentBrands {
		if strings.Contains(lower, brand) &&
			!strings.Contains(lower, brand+".com") &&
			!strings.Contains(lower, brand+".in") {
			reasons = append(reasons, fmt.Sprintf("Potential %s phishing", brand))
		}
	}

	return len(reasons) > 0, reasons
}

// domainOf returns the host portion of a URL.
func domainOf(url string) string {
	_, rest, ok := strings.Cut(url, "://")
	if !ok {
		return "unknown"
	}
	host, _, _ := strings.Cut(rest, "/")
	if host == "" {
		return "unknown"
	}
	return host
}

// amountContext returns up to 30 characters either side of the matched
// figure, with ellipses marking truncation.
func amountContext(message, formatted string) string {
	pos := strings.Index(strings.ToLower(message), strings.ToLower(formatted))
	if pos == -1 {
		return ""
	}

	start := pos - 30
	if start < 0 {
		start = 0
	}
	end := pos + len(formatted) + 30
	if end > len(message) {
		end = len(message)
	}

	context := message[start:end]
	if start > 0 {
		context = "..." + context
	}
	if end < len(message) {
		context += "..."
	}
	return context
}

// stripSeparators normalizes a phone match by dropping spaces and dashes.
func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '\t' {
			return -1
		}
		return r
	}, s)
}

// provenance is the audit snippet attached to findings: the first 50
// characters of the source message.
func provenance(message string) string {
	runes := []rune(message)
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return message
}

func summarize(in *Intelligence) Summary {
	suspicious := 0
	for _, u := range in.PhishingURLs {
		if u.IsSuspicious {
			suspicious++
		}
	}
	return Summary{
		TotalBankAccounts:   len(in.BankAccounts),
		TotalIFSCCodes:      len(in.IFSCCodes),
		TotalUPIIDs:         len(in.UPIIDs),
		TotalPhoneNumbers:   len(in.PhoneNumbers),
		TotalPhishingURLs:   len(in.PhishingURLs),
		TotalSuspiciousURLs: suspicious,
		TotalEmailAddresses: len(in.EmailAddresses),
		TotalAmounts:        len(in.Amounts),
		TotalPANCards:       len(in.PANCards),
		TotalAadhaarNumbers: len(in.AadhaarNumbers),
		TotalPaymentApps:    len(in.PaymentApps),
		QualityScore:        qualityScore(in),
	}
}

// qualityScore weighs findings by operational value: account handles and
// payment rails score highest, contextual signals lowest.
func qualityScore(in *Intelligence) float64 {
	score := float64(len(in.BankAccounts) * accountWeight)
	score += float64(len(in.UPIIDs) * upiWeight)
	score += float64(len(in.IFSCCodes) * ifscWeight)
	score += float64(len(in.PhoneNumbers) * phoneWeight)
	score += float64(len(in.PhishingURLs) * urlWeight)
	score += float64(len(in.EmailAddresses) * emailWeight)
	score += float64(len(in.Amounts) * amountWeight)
	return math.Min(score, qualityCap)
}
