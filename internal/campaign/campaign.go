// Package campaign clusters conversations that share extracted
// infrastructure. The same mule account, payment handle, callback number or
// phishing domain showing up in separate conversations is the strongest
// signal that one operator runs them all.
package campaign

import (
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/jaal/internal/conversation"
)

// Identifier kinds campaigns cluster on.
const (
	KindBankAccount = "bank_account"
	KindUPIHandle   = "upi_id"
	KindPhoneNumber = "phone_number"
	KindURLDomain   = "url_domain"
)

// Campaign is one cluster: a shared identifier and every conversation it
// appeared in. Also the wire payload for the campaign.detected subject.
type Campaign struct {
	IdentifierKind  string    `json:"identifier_kind"`
	Identifier      string    `json:"identifier"`
	ConversationIDs []string  `json:"conversation_ids"`
	Count           int       `json:"count"`
	ScamTypes       []string  `json:"scam_types"`
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
}

// identifier is one (kind, value) pair mined from a record.
type identifier struct {
	kind  string
	value string
}

// Find clusters records by shared identifiers. An identifier seen in at
// least minSize distinct conversations forms a campaign; minSize below 2 is
// raised to 2. Results are ordered largest cluster first, then by kind and
// value so repeated scans over the same data agree.
func Find(records []*conversation.Record, minSize int) []Campaign {
	if minSize < 2 {
		minSize = 2
	}

	members := make(map[identifier][]*conversation.Record)
	for _, rec := range records {
		// Normalization can collapse distinct findings of one record
		// into the same identifier; count the record once.
		seen := make(map[identifier]struct{})
		for _, id := range identifiersOf(rec) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			members[id] = append(members[id], rec)
		}
	}

	var campaigns []Campaign
	for id, recs := range members {
		if len(recs) < minSize {
			continue
		}
		campaigns = append(campaigns, build(id, recs))
	}

	sort.Slice(campaigns, func(i, j int) bool {
		if campaigns[i].Count != campaigns[j].Count {
			return campaigns[i].Count > campaigns[j].Count
		}
		if campaigns[i].IdentifierKind != campaigns[j].IdentifierKind {
			return campaigns[i].IdentifierKind < campaigns[j].IdentifierKind
		}
		return campaigns[i].Identifier < campaigns[j].Identifier
	})
	return campaigns
}

func build(id identifier, recs []*conversation.Record) Campaign {
	ids := make([]string, 0, len(recs))
	types := make(map[string]struct{})
	first, last := recs[0].StartTime, recs[0].UpdatedAt
	for _, rec := range recs {
		ids = append(ids, rec.ID)
		if rec.ScamType != "" {
			types[rec.ScamType] = struct{}{}
		}
		if rec.StartTime.Before(first) {
			first = rec.StartTime
		}
		if rec.UpdatedAt.After(last) {
			last = rec.UpdatedAt
		}
	}
	sort.Strings(ids)

	scamTypes := make([]string, 0, len(types))
	for t := range types {
		scamTypes = append(scamTypes, t)
	}
	sort.Strings(scamTypes)

	return Campaign{
		IdentifierKind:  id.kind,
		Identifier:      id.value,
		ConversationIDs: ids,
		Count:           len(recs),
		ScamTypes:       scamTypes,
		FirstSeen:       first,
		LastSeen:        last,
	}
}

func identifiersOf(rec *conversation.Record) []identifier {
	var out []identifier
	for _, f := range rec.Intelligence.BankAccounts {
		out = append(out, identifier{KindBankAccount, f.AccountNumber})
	}
	for _, f := range rec.Intelligence.UPIIDs {
		out = append(out, identifier{KindUPIHandle, strings.ToLower(f.UPIID)})
	}
	for _, f := range rec.Intelligence.PhoneNumbers {
		out = append(out, identifier{KindPhoneNumber, normalizePhone(f.PhoneNumber)})
	}
	for _, f := range rec.Intelligence.PhishingURLs {
		domain := strings.ToLower(f.Domain)
		if domain == "" || domain == "unknown" {
			continue
		}
		out = append(out, identifier{KindURLDomain, domain})
	}
	return out
}

// normalizePhone drops the country prefix so the same line clusters whether
// or not the scammer included +91.
func normalizePhone(phone string) string {
	return strings.TrimPrefix(phone, "+91")
}
