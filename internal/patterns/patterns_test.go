package patterns

import "testing"

func TestDefaultCategoryOrder(t *testing.T) {
	lib := Default()

	want := []string{
		CategoryFinancialFraud,
		CategoryPaymentScam,
		CategoryPhishing,
		CategoryImpersonation,
		CategoryLotteryPrize,
		CategoryJobScam,
	}

	if len(lib.Scam) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(lib.Scam))
	}
	for i, cp := range lib.Scam {
		if cp.Category != want[i] {
			t.Errorf("category %d: expected %q, got %q", i, want[i], cp.Category)
		}
		if len(cp.Patterns) == 0 {
			t.Errorf("category %q has no patterns", cp.Category)
		}
	}
}

func TestScamPatternsMatch(t *testing.T) {
	lib := Default()

	tests := []struct {
		name     string
		category string
		message  string
	}{
		{"bank blocking", CategoryFinancialFraud, "urgent: your bank account will be blocked today"},
		{"kyc case insensitive", CategoryFinancialFraud, "KYC update pending for your account"},
		{"otp request", CategoryPaymentScam, "please send the OTP to complete verification"},
		{"click link", CategoryPhishing, "click this link to verify"},
		{"dear customer", CategoryImpersonation, "Dear customer, your attention is required"},
		{"lottery win", CategoryLotteryPrize, "you have won a lottery"},
		{"job earnings", CategoryJobScam, "work from home and earn daily"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var matched bool
			for _, cp := range lib.Scam {
				if cp.Category != tt.category {
					continue
				}
				for _, re := range cp.Patterns {
					if re.MatchString(tt.message) {
						matched = true
						break
					}
				}
			}
			if !matched {
				t.Errorf("no %s pattern matched %q", tt.category, tt.message)
			}
		})
	}
}

func TestIdentifierPatterns(t *testing.T) {
	lib := Default()

	tests := []struct {
		name    string
		matched bool
		check   func() bool
	}{
		{"ifsc", true, func() bool { return lib.IFSC.MatchString("HDFC0001234") }},
		{"ifsc lowercase rejected", false, func() bool { return lib.IFSC.MatchString("hdfc0001234") }},
		{"upi handle", true, func() bool { return lib.UPIHandle.MatchString("victim123@paytm") }},
		{"phone with code", true, func() bool { return lib.Phone.MatchString("+91 9876543210") }},
		{"phone bad prefix", false, func() bool { return lib.Phone.MatchString("1234567890") }},
		{"pan", true, func() bool { return lib.PAN.MatchString("ABCDE1234F") }},
		{"aadhaar spaced", true, func() bool { return lib.Aadhaar.MatchString("1234 5678 9012") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(); got != tt.matched {
				t.Errorf("expected match=%v, got %v", tt.matched, got)
			}
		})
	}
}
