// Package engage drives the multi-turn engagement state machine: stage
// derivation from the scammer turn clock, strategy selection through an
// ordered override-rule list, occasional human-behavior perturbation, and
// template rendering with category-specific emotional tone.
package engage

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"

	"github.com/MikeSquared-Agency/jaal/internal/patterns"
)

// RoleAgent marks replies the engine itself authored in the transcript view.
const RoleAgent = "agent"

// Stage is the coarse phase label for conversation progress.
type Stage string

const (
	StageInitialContact Stage = "initial_contact"
	StageConfusion      Stage = "confusion"
	StageInterest       Stage = "interest"
	StageVerification   Stage = "verification"
	StageCompliance     Stage = "compliance"
	StageExtraction     Stage = "extraction"
)

// Strategy labels recorded on agent replies.
const (
	StrategyInitialEngagement        = "initial_engagement"
	StrategyInitialConfusion         = "initial_confusion"
	StrategyShowInterest             = "show_interest"
	StrategyRequestDetails           = "request_details"
	StrategyFeignTechnicalDifficulty = "feign_technical_difficulty"
	StrategyGradualCompliance        = "gradual_compliance"
	StrategyAskForCredentials        = "ask_for_credentials"
	StrategyHumanConfusion           = "human_confusion"
	StrategyIrrelevantQuestions      = "irrelevant_questions"
)

// minHumanBehaviorTurn is the first turn distraction can be injected on.
const minHumanBehaviorTurn = 3

// Message is the transcript view the engine consumes.
type Message struct {
	Role    string
	Content string
}

// Response is one rendered turn.
type Response struct {
	Text      string
	Strategy  string
	Stage     Stage
	Reasoning string
}

// Engine renders agent replies for confirmed scam conversations. One engine
// serves concurrent conversations; the random source is guarded internally.
type Engine struct {
	lib               *patterns.Library
	logger            *slog.Logger
	humanBehaviorProb float64
	tonePrefixProb    float64

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds an engine around the shared pattern library. rng is the sole
// source of randomness so tests can seed it; the two probabilities control
// human-behavior injection and emotional tone prefixing.
func New(lib *patterns.Library, rng *rand.Rand, humanBehaviorProb, tonePrefixProb float64, logger *slog.Logger) *Engine {
	return &Engine{
		lib:               lib,
		logger:            logger,
		humanBehaviorProb: humanBehaviorProb,
		tonePrefixProb:    tonePrefixProb,
		rng:               rng,
	}
}

// StageFor derives the stage from the turn clock. One override beats the
// clock: from turn 4 on, an explicit request for a code, PIN, CVV, password
// or card/account number forces the extraction stage.
func StageFor(turnCount int, message string) Stage {
	if turnCount >= 4 && containsAny(strings.ToLower(message), stageJumpKeywords) {
		return StageExtraction
	}
	switch {
	case turnCount <= 1:
		return StageInitialContact
	case turnCount == 2:
		return StageConfusion
	case turnCount == 3:
		return StageInterest
	case turnCount == 4:
		return StageVerification
	case turnCount <= 6:
		return StageCompliance
	default:
		return StageExtraction
	}
}

// baseStrategies is the stage→strategy table the override rules layer on.
var baseStrategies = map[Stage]string{
	StageInitialContact: StrategyInitialConfusion,
	StageConfusion:      StrategyInitialConfusion,
	StageInterest:       StrategyShowInterest,
	StageVerification:   StrategyRequestDetails,
	StageCompliance:     StrategyGradualCompliance,
	StageExtraction:     StrategyAskForCredentials,
}

// overrideRule replaces the base strategy when its predicate claims the
// inbound message. Rules are evaluated top to bottom; the first match wins.
type overrideRule struct {
	name  string
	apply func(lower string, stage Stage, turnCount int) (string, bool)
}

var overrideRules = []overrideRule{
	{
		name: "link cue",
		apply: func(lower string, _ Stage, turnCount int) (string, bool) {
			if turnCount >= 3 && containsAny(lower, linkCueKeywords) {
				return StrategyFeignTechnicalDifficulty, true
			}
			return "", false
		},
	},
	{
		name: "credential ask",
		apply: func(lower string, stage Stage, _ int) (string, bool) {
			if !containsAny(lower, credentialCueKeywords) {
				return "", false
			}
			if stage == StageCompliance || stage == StageExtraction {
				return StrategyAskForCredentials, true
			}
			return StrategyRequestDetails, true
		},
	},
	{
		name: "scammer-supplied identifiers",
		apply: func(lower string, _ Stage, _ int) (string, bool) {
			if containsAny(lower, scammerDetailKeywords) {
				return StrategyRequestDetails, true
			}
			return "", false
		},
	},
	{
		name: "urgency pressure",
		apply: func(lower string, stage Stage, _ int) (string, bool) {
			if !containsAny(lower, pressureCueKeywords) {
				return "", false
			}
			switch stage {
			case StageInterest:
				return StrategyShowInterest, true
			case StageCompliance, StageExtraction:
				return StrategyGradualCompliance, true
			}
			return "", false
		},
	},
}

// SelectStrategy picks the strategy for one turn: the stage-table default
// unless an override rule claims the message first. Deterministic; the
// human-behavior perturbation happens in Respond, not here.
func SelectStrategy(stage Stage, message string, turnCount int) string {
	lower := strings.ToLower(message)
	for _, rule := range overrideRules {
		if strategy, ok := rule.apply(lower, stage, turnCount); ok {
			return strategy
		}
	}
	if s, ok := baseStrategies[stage]; ok {
		return s
	}
	// Unknown stages read as a plain detail request.
	return StrategyRequestDetails
}

// InitialReply is the neutral acknowledgment used on every turn before a
// conversation is confirmed. Content-blind: it invites the counterparty to
// explain without committing to any category.
func (e *Engine) InitialReply(string) string {
	return e.pick(initialReplies, "")
}

// Respond renders the agent reply for one confirmed-scam turn.
func (e *Engine) Respond(message string, turnCount int, category string, transcript []Message) Response {
	stage := StageFor(turnCount, message)
	strategy := SelectStrategy(stage, message, turnCount)

	// Operator-style distraction. Replaces only the strategy actually
	// rendered; the stage is already fixed.
	if turnCount >= minHumanBehaviorTurn && e.chance(e.humanBehaviorProb) {
		strategy = humanBehaviors[e.intn(len(humanBehaviors))]
	}

	text := e.render(strategy, message, category, lastAgentText(transcript))
	text = e.applyTone(text, category, stage)

	if opp := e.ExtractionOpportunity(message); len(opp) > 0 {
		e.logger.Debug("inbound message carries identifier candidates",
			"kinds", len(opp),
			"turn", turnCount,
			"strategy", strategy,
		)
	}

	return Response{
		Text:      text,
		Strategy:  strategy,
		Stage:     stage,
		Reasoning: fmt.Sprintf("Stage: %s, Turn: %d, Strategy: %s", stage, turnCount, strategy),
	}
}

var humanBehaviors = []string{StrategyHumanConfusion, StrategyIrrelevantQuestions}

// render inspects the message for sub-signals and dispatches to the
// strategy's generator. avoid is the previous agent reply; generators skip
// it when an alternative phrasing exists.
func (e *Engine) render(strategy, message, category, avoid string) string {
	lower := strings.ToLower(message)

	containsLink := e.lib.URLSignal.MatchString(message)
	containsAmount := e.lib.AmountCue.MatchString(message)
	containsAccount := e.lib.BankAccount.MatchString(message)
	containsPhone := e.lib.PhoneSignal.MatchString(message)
	asksOTP := containsAny(lower, otpAskKeywords)
	hasUrgency := containsAny(lower, urgencyCueKeywords)

	switch strategy {
	case StrategyInitialConfusion:
		return e.confusionReply(containsLink, containsAmount, category, avoid)
	case StrategyShowInterest:
		return e.interestReply(hasUrgency, category, avoid)
	case StrategyRequestDetails:
		return e.detailsReply(asksOTP, containsAccount, containsLink, containsPhone, avoid)
	case StrategyFeignTechnicalDifficulty:
		return e.technicalDifficultyReply(containsLink, avoid)
	case StrategyGradualCompliance:
		return e.complianceReply(lower, asksOTP, category, avoid)
	case StrategyAskForCredentials:
		return e.credentialReply(lower, asksOTP, avoid)
	case StrategyHumanConfusion:
		return e.humanConfusionReply()
	case StrategyIrrelevantQuestions:
		return e.pick(irrelevantQuestions, avoid)
	}
	// A strategy with no generator falls back to the detail-request set.
	return e.pick(detailRequests, avoid)
}

func (e *Engine) confusionReply(link, amount bool, category, avoid string) string {
	switch {
	case link:
		return e.pick(confusionLinkReplies, avoid)
	case amount:
		return e.pick(confusionAmountReplies, avoid)
	}
	switch category {
	case patterns.CategoryLotteryPrize:
		return e.pick(lotteryConfusionReplies, avoid)
	case patterns.CategoryFinancialFraud:
		return e.pick(bankingConfusionReplies, avoid)
	}
	return e.pick(initialConfusionReplies, avoid)
}

func (e *Engine) interestReply(urgency bool, category, avoid string) string {
	if urgency {
		return e.pick(urgencyInterestReplies, avoid)
	}
	switch category {
	case patterns.CategoryLotteryPrize:
		return e.pick(lotteryInterestReplies, avoid)
	case patterns.CategoryJobScam:
		return e.pick(jobInterestReplies, avoid)
	case patterns.CategoryPaymentScam:
		return e.pick(paymentInterestReplies, avoid)
	}
	return e.pick(showInterestReplies, avoid)
}

func (e *Engine) detailsReply(otp, account, link, phone bool, avoid string) string {
	switch {
	case otp:
		return e.pick(otpDetailReplies, avoid)
	case account:
		return e.pick(accountDetailReplies, avoid)
	case link:
		return e.pick(linkDetailReplies, avoid)
	case phone:
		return e.pick(phoneDetailReplies, avoid)
	}
	return e.pick(detailRequests, avoid)
}

func (e *Engine) technicalDifficultyReply(link bool, avoid string) string {
	if link {
		return e.pick(linkTroubleReplies, avoid)
	}
	return e.pick(technicalDifficultyReplies, avoid)
}

func (e *Engine) complianceReply(lower string, otp bool, category, avoid string) string {
	switch {
	case otp:
		return e.pick(otpComplianceReplies, avoid)
	case strings.Contains(lower, "account") || strings.Contains(lower, "upi"):
		return e.pick(accountComplianceReplies, avoid)
	case containsAny(lower, complianceCueTransfers):
		return e.pick(paymentComplianceReplies, avoid)
	case category == patterns.CategoryLotteryPrize:
		return e.pick(lotteryComplianceReplies, avoid)
	}
	return e.pick(gradualComplianceReplies, avoid)
}

func (e *Engine) credentialReply(lower string, otp bool, avoid string) string {
	switch {
	case otp:
		return e.pick(otpCredentialReplies, avoid)
	case strings.Contains(lower, "card") || strings.Contains(lower, "cvv"):
		return e.pick(cardCredentialReplies, avoid)
	case strings.Contains(lower, "bank") || strings.Contains(lower, "account"):
		return e.pick(bankCredentialReplies, avoid)
	}
	return e.pick(credentialQuestions, avoid)
}

// humanConfusionReply fills the distraction placeholders from their fixed
// vocabularies.
func (e *Engine) humanConfusionReply() string {
	text := humanConfusionReplies[e.intn(len(humanConfusionReplies))]
	text = strings.ReplaceAll(text, "{excuse}", excuses[e.intn(len(excuses))])
	text = strings.ReplaceAll(text, "{item}", itemsToFind[e.intn(len(itemsToFind))])
	text = strings.ReplaceAll(text, "{detail}", detailTypes[e.intn(len(detailTypes))])
	return text
}

// applyTone prepends an emotional prefix from the category's register at the
// interest and compliance stages. Cosmetic only: strategy and stage stay
// untouched, and categories without a prefixed register read neutral.
func (e *Engine) applyTone(text, category string, stage Stage) string {
	if stage != StageInterest && stage != StageCompliance {
		return text
	}
	prefixes, ok := tonePrefixes[emotionalRegisters[category]]
	if !ok {
		return text
	}
	if !e.chance(e.tonePrefixProb) {
		return text
	}
	return prefixes[e.intn(len(prefixes))] + text
}

// ExtractionOpportunity reports identifier candidates in one inbound
// message, keyed by kind. Monitoring aid for reply logging; the real
// extraction pass runs over the whole transcript in the intel package.
func (e *Engine) ExtractionOpportunity(message string) map[string][]string {
	candidates := map[string][]string{
		"account_number": e.lib.BankAccount.FindAllString(message, -1),
		"ifsc":           e.lib.IFSC.FindAllString(strings.ToUpper(message), -1),
		"upi":            e.lib.UPIHandle.FindAllString(message, -1),
		"phone":          e.lib.Phone.FindAllString(message, -1),
		"link":           e.lib.URL.FindAllString(message, -1),
	}
	out := make(map[string][]string)
	for kind, matches := range candidates {
		if len(matches) > 0 {
			out[kind] = matches
		}
	}
	return out
}

// pick returns a uniform choice from options, avoiding an exact repeat of
// the previous reply when another phrasing exists.
func (e *Engine) pick(options []string, avoid string) string {
	candidates := options
	if avoid != "" && len(options) > 1 {
		filtered := make([]string, 0, len(options))
		for _, o := range options {
			if o != avoid {
				filtered = append(filtered, o)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}
	return candidates[e.intn(len(candidates))]
}

func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(n)
}

func (e *Engine) chance(p float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64() < p
}

func lastAgentText(transcript []Message) string {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == RoleAgent {
			return transcript[i].Content
		}
	}
	return ""
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
