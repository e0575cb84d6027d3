// Package prompt renders the coaching prompt from the versioned prompt
// contract, the caller's goal, and recent conversation history.
//
// Persona selection (tough coach / stoic mentor / big bro) is deliberately
// delegated to the generative model through the contract text, not computed
// here. The contract is a data asset: edit a new contracts/coach_vN.md to
// change coaching behavior, never the rendering code.
package prompt

import (
	_ "embed"
	"strings"

	"github.com/ironcoachapp/ironcoach/internal/storage"
)

//go:embed contracts/coach_v1.md
var contractV1 string

// ContractVersion identifies the active prompt contract.
const ContractVersion = "coach_v1"

// DefaultGoal is substituted when the caller has no stored goal.
const DefaultGoal = "No goals set."

// Contract returns the active prompt contract text.
func Contract() string {
	return contractV1
}

// Chronological returns a copy of turns in oldest-first order. Storage hands
// back history newest-first; the transcript must read top to bottom.
func Chronological(turns []storage.Turn) []storage.Turn {
	out := make([]storage.Turn, len(turns))
	for i, t := range turns {
		out[len(turns)-1-i] = t
	}
	return out
}

// Transcript formats turns as "User:"/"AI:" lines. Turns must already be in
// chronological order.
func Transcript(turns []storage.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := "AI"
		if t.Sender == storage.SenderUser {
			speaker = "User"
		}
		lines = append(lines, speaker+": "+t.Message)
	}
	return strings.Join(lines, "\n")
}

// Render assembles the full generation prompt: contract, goal, transcript,
// the new user line, and the cue for the assistant's turn.
func Render(goal string, history []storage.Turn, message string) string {
	if goal == "" {
		goal = DefaultGoal
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(contractV1, "\n"))
	sb.WriteString("\nUser's Goal: ")
	sb.WriteString(goal)
	sb.WriteString("\n---\nConversation History:\n")
	sb.WriteString(Transcript(Chronological(history)))
	sb.WriteString("\nUser: ")
	sb.WriteString(message)
	sb.WriteString("\nAI:")
	return sb.String()
}
