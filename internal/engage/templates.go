package engage

import "github.com/MikeSquared-Agency/jaal/internal/patterns"

// initialReplies are the neutral acknowledgments used before a conversation
// is confirmed. Mild confusion, no category flavor, invites the counterparty
// to explain.
var initialReplies = []string{
	"Hello, I received your message. Could you tell me more about this?",
	"Hi, I'm not sure what this is regarding. Can you explain?",
	"Hello, I saw your message. What is this about?",
	"Hi there, could you provide more information about this?",
	"I got your message but I'm not sure what it's about. Can you clarify?",
	"Hello, what is this in reference to? I don't recall anything.",
}

// Generic phrasing sets, one per strategy. Renderers fall back to these
// when no message cue or category branch applies.
var (
	initialConfusionReplies = []string{
		"I'm not sure I understand. Can you explain what this is about?",
		"Sorry, I didn't quite get that. What do you need from me?",
		"I'm a bit confused. Could you clarify?",
		"What is this regarding? I don't recall anything about this.",
		"I don't understand. Can you tell me more?",
		"Could you explain this in simpler terms? I'm not following.",
	}

	showInterestReplies = []string{
		"Oh, that sounds important. What should I do?",
		"I see. How do I proceed with this?",
		"Okay, I want to make sure I don't miss this. What are the next steps?",
		"This seems urgent. Please guide me on what to do.",
		"Alright, I'm listening. What do you need from me?",
		"I understand. Please tell me how to handle this.",
	}

	detailRequests = []string{
		"Could you provide more details about this?",
		"What exactly do you need from me?",
		"Can you explain the process step by step?",
		"I need more information before I can proceed.",
		"What specific details are required?",
		"Can you clarify what I need to do exactly?",
	}

	technicalDifficultyReplies = []string{
		"I'm trying to open the link but it's not working. Can you send it again?",
		"My phone is acting up. Could you tell me what to do step by step?",
		"I'm not very good with technology. Can you help me understand?",
		"The link won't open. Is there another way to do this?",
		"I'm having trouble with this. Can you explain it differently?",
		"My internet is slow. Can you just tell me what information you need?",
	}

	gradualComplianceReplies = []string{
		"Okay, I think I understand now. What's the next step?",
		"Alright, I'm ready to proceed. What do you need?",
		"I trust this is legitimate. Please guide me.",
		"I don't want any problems. Tell me what to do.",
		"Fine, I'll do what you're asking. What exactly do I need to provide?",
		"Okay okay, I'll cooperate. Just tell me clearly what you need.",
	}

	credentialQuestions = []string{
		"Do you need my account number? Where should I send it?",
		"Should I share my bank details with you?",
		"What information exactly do you need to verify?",
		"I have my details ready. What do you need?",
		"Should I provide my UPI ID? Let me know.",
		"What account information is required?",
	}

	humanConfusionReplies = []string{
		"Wait, I'm confused again. Can you repeat that?",
		"Sorry, I got distracted. What were you saying?",
		"Hold on, my {excuse} is here. Can you give me a moment?",
		"I need to find my {item}. Just a second.",
		"Sorry, what was the {detail} again?",
		"I'm trying to understand but I'm a bit slow with these things.",
	}

	irrelevantQuestions = []string{
		"By the way, what time does your office close?",
		"Is this a toll-free number?",
		"Do you work on weekends too?",
		"How long have you been working there?",
		"What department are you from?",
		"Can I call back later if I have questions?",
	}
)

// Cue-specific phrasing sets. Renderers prefer these when the inbound
// message carries the matching sub-signal.
var (
	confusionLinkReplies = []string{
		"I got a link from you. What is this for? Is this safe to click?",
		"There's a link in your message. What website is this? Should I open it?",
		"I see a link but I'm not sure what it's for. Can you explain first?",
	}

	confusionAmountReplies = []string{
		"I see you mentioned some amount. Can you explain what this is about?",
		"There's a number mentioned. What is this money for? I'm confused.",
		"You mentioned some rupees. What is this regarding?",
	}

	urgencyInterestReplies = []string{
		"Oh no, I don't want any problems. What do I need to do to fix this?",
		"This sounds urgent! Please tell me what to do right away.",
		"I don't want my account blocked! What should I do?",
	}

	otpDetailReplies = []string{
		"You're asking for an OTP. Where will I receive it? What should I do with it?",
		"An OTP code? Can you tell me what app or message I should check?",
		"I need to find the OTP. Where exactly should I look for it?",
	}

	accountDetailReplies = []string{
		"I see an account number. Is this where I should send money? Whose account is this?",
		"There's an account number here. Can you confirm this is the official account?",
		"Is this account number correct? I want to make sure before I transfer anything.",
	}

	linkDetailReplies = []string{
		"You sent a link. What website is this? Is this the official site?",
		"Before I click, can you tell me what this link is for?",
		"I'm cautious about links. Can you confirm this is safe?",
	}

	phoneDetailReplies = []string{
		"I see a phone number. Should I call this number? Or send a message?",
		"Is this phone number the official contact? I want to verify first.",
		"You've given me a number. What should I do with it?",
	}

	linkTroubleReplies = []string{
		"I tried clicking the link but it's not opening. Can you send it again?",
		"The link isn't working on my phone. Can you tell me what to do without the link?",
		"I'm having trouble opening this. Is there another way?",
		"My browser says it can't open this page. What should I do?",
		"The link won't load. Can you just tell me the website name?",
	}

	otpComplianceReplies = []string{
		"Okay, I'll share the OTP. Should I send it here or somewhere else?",
		"I'm ready to give you the code. Where should I send it?",
		"I received the OTP. What should I do with it? Type it here?",
	}

	accountComplianceReplies = []string{
		"I have my account details ready. What exactly do you need?",
		"I can provide my bank information. Should I share account number and IFSC?",
		"Okay, I'm ready to share my details. What do you need first?",
	}

	paymentComplianceReplies = []string{
		"I'm ready to make the payment. Can you confirm the amount and account?",
		"I'll transfer the money. Please give me the exact details.",
		"Okay, I'll send it. What's the UPI ID or account number?",
	}

	otpCredentialReplies = []string{
		"I have the OTP code. Should I share all 6 digits here?",
		"The code just arrived. Do you need me to send it to you?",
		"I got the verification code. What should I do with it exactly?",
	}

	cardCredentialReplies = []string{
		"Do you need my card number? What about the CVV?",
		"I have my debit card. What information do you need from it?",
		"Should I share my card details? Which numbers do you need?",
	}

	bankCredentialReplies = []string{
		"I have my bank passbook. What details should I give you?",
		"My account number is ready. Do you also need IFSC code?",
		"I can provide my banking details. What exactly do you need?",
	}
)

// Category-flavored phrasing sets.
var (
	lotteryConfusionReplies = []string{
		"I didn't enter any lottery. Are you sure you have the right person?",
		"A prize? I don't remember participating in anything. Can you explain?",
		"This sounds interesting but I'm confused. How did I win?",
	}

	bankingConfusionReplies = []string{
		"Is this really from my bank? I don't recall any notification.",
		"My account needs updating? I didn't get any email about this.",
		"I'm not sure if this is legitimate. Can you verify you're from the bank?",
	}

	lotteryInterestReplies = []string{
		"Really? I won something? That's amazing! How do I claim it?",
		"This is wonderful news! What do I need to do to get my prize?",
		"I'm so excited! Please tell me the steps to claim this.",
	}

	jobInterestReplies = []string{
		"A job opportunity sounds great! What's the position?",
		"I'm very interested! Can you tell me more about the work?",
		"This could be perfect for me. What are the details?",
	}

	paymentInterestReplies = []string{
		"I received money by mistake? I should return it. How do I do that?",
		"A wrong payment? I want to do the right thing. What should I do?",
		"I don't want someone else's money. Please guide me on returning it.",
	}

	lotteryComplianceReplies = []string{
		"I'll pay the processing fee. How much and where should I send it?",
		"Okay, I understand I need to pay first. What's the amount?",
		"I'm ready to claim my prize. What payment do you need?",
	}
)

// Placeholder vocabularies for human-confusion phrasings.
var (
	excuses     = []string{"husband", "wife", "son", "daughter", "neighbor", "phone", "doorbell"}
	itemsToFind = []string{"glasses", "phone", "pen", "papers", "wallet", "purse"}
	detailTypes = []string{"account number", "amount", "website name", "your name", "company name"}
)

// Emotional registers per scam category. Only the first three registers
// carry tone prefixes; the others read neutral.
const (
	registerExcitedButConfused = "excited_but_confused"
	registerWorriedUrgent      = "worried_urgent"
	registerCautiousHesitant   = "cautious_hesitant"
	registerConfusedHelpless   = "confused_helpless"
	registerCuriousSkeptical   = "curious_skeptical"
)

var emotionalRegisters = map[string]string{
	patterns.CategoryLotteryPrize:   registerExcitedButConfused,
	patterns.CategoryFinancialFraud: registerWorriedUrgent,
	patterns.CategoryImpersonation:  registerWorriedUrgent,
	patterns.CategoryPaymentScam:    registerCautiousHesitant,
	patterns.CategoryPhishing:       registerConfusedHelpless,
	patterns.CategoryJobScam:        registerCuriousSkeptical,
}

var tonePrefixes = map[string][]string{
	registerExcitedButConfused: {"Wow! ", "Oh my goodness! ", "Really? "},
	registerWorriedUrgent:      {"Oh no! ", "Please help - ", "I'm worried - "},
	registerCautiousHesitant:   {"I'm not sure but... ", "Hmm, ", "Let me think... "},
}

// Keyword cues the state machine and renderers branch on.
var (
	// stageJumpKeywords force the extraction stage once the conversation
	// is deep enough, regardless of the turn clock.
	stageJumpKeywords = []string{"otp", "cvv", "pin", "password", "account number", "card number"}

	// otpAskKeywords flag an explicit credential ask in the inbound message.
	otpAskKeywords = []string{"otp", "code", "verification code", "pin"}

	// urgencyCueKeywords flag pressure tactics.
	urgencyCueKeywords = []string{"urgent", "immediately", "expire", "block", "suspend"}

	// Override-rule vocabularies.
	linkCueKeywords        = []string{"http", "link", "click"}
	credentialCueKeywords  = []string{"otp", "code", "pin", "cvv", "password"}
	scammerDetailKeywords  = []string{"account number", "ifsc", "upi id", "paytm"}
	pressureCueKeywords    = []string{"urgent", "immediately", "now", "expire", "last chance"}
	complianceCueTransfers = []string{"transfer", "payment", "send"}
)
