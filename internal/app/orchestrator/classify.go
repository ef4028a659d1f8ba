package orchestrator

import "strings"

// FailureKind labels a remote-call failure for logging and tests. The
// user-facing text is what ends up in the message content.
type FailureKind string

const (
	FailureRateLimited        FailureKind = "rate_limited"
	FailureServiceUnavailable FailureKind = "service_unavailable"
	FailureCredentialInvalid  FailureKind = "credential_invalid"
	FailureContentBlocked     FailureKind = "content_blocked"
	FailureUnclassified       FailureKind = "unclassified"
)

const genericFailureMessage = "Something went wrong while generating a response. Please try again."

// classificationRules map substrings of the failure text to user-facing
// messages. Substring matching over provider error strings is brittle on
// purpose: the provider does not expose a stable error type taxonomy, so the
// policy stays an ordered, testable list. First match wins.
var classificationRules = []struct {
	substr string
	kind   FailureKind
	msg    string
}{
	{"429", FailureRateLimited, "You have sent too many requests in a short time. Please wait a moment before trying again."},
	{"503", FailureServiceUnavailable, "The model is overloaded right now. Please try again in a few moments."},
	{"API key", FailureCredentialInvalid, "There is a problem with the API key configuration. Please check the server credentials."},
	{"SAFETY", FailureContentBlocked, "The response was blocked by the safety policy. Try rephrasing your request."},
}

// ClassifyFailure maps a remote-call failure onto the closed taxonomy of
// user-facing messages. Unmatched failures pass their own text through, with
// a generic fallback when there is none.
func ClassifyFailure(err error) (FailureKind, string) {
	if err == nil {
		return FailureUnclassified, genericFailureMessage
	}

	text := err.Error()
	for _, rule := range classificationRules {
		if strings.Contains(text, rule.substr) {
			return rule.kind, rule.msg
		}
	}

	if text == "" {
		return FailureUnclassified, genericFailureMessage
	}
	return FailureUnclassified, text
}
