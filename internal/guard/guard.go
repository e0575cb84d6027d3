// Package guard implements the self-harm safety override. Any message that
// trips the indicator check must receive exactly SafetyMessage, with no
// persona styling, regardless of the caller's stored preferences. The prompt
// contract carries the same rule as a second layer for phrasings the
// indicator list misses.
package guard

import "strings"

// SafetyMessage is the fixed break-character response. It must be returned
// byte-for-byte; callers never append to or reformat it.
const SafetyMessage = "This is beyond my function. I'm breaking character because this is serious. Your well-being is important, and you deserve to talk to someone who can help. Please connect with a trained professional. You can call the 24/7 Tele MANAS helpline at **14416** or **1-800-891-4416**. They are free, confidential, and there to listen."

// indicators are matched case-insensitively as substrings of the user message.
var indicators = []string{
	"kill myself",
	"killing myself",
	"suicide",
	"suicidal",
	"want to die",
	"wanna die",
	"end my life",
	"ending my life",
	"end it all",
	"want to end it",
	"life isn't worth living",
	"life is not worth living",
	"self-harm",
	"self harm",
	"hurt myself",
	"harm myself",
	"better off dead",
	"no reason to live",
}

// Triggered reports whether message contains a self-harm indicator.
func Triggered(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range indicators {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
