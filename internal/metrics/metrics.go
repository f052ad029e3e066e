// Package metrics records service metrics for chat events, turns and AI calls.
package metrics

import "time"

// Recorder receives metric observations from the bot and the AI boundary.
type Recorder interface {
	// ObserveEvent counts one inbound event by command ("text" for free text).
	ObserveEvent(command string)
	// ObserveTurn counts one chat turn by outcome ("success" or "error").
	ObserveTurn(outcome string)
	// ObserveAIRequest records one AI boundary call.
	ObserveAIRequest(provider, operation, outcome string, duration time.Duration)
	// ObserveTransition counts a creation flow move into state.
	ObserveTransition(state string)
	// IncBacklogRejected counts events refused because a conversation backlog was full.
	IncBacklogRejected()
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveEvent(string)                                    {}
func (Nop) ObserveTurn(string)                                     {}
func (Nop) ObserveAIRequest(string, string, string, time.Duration) {}
func (Nop) ObserveTransition(string)                               {}
func (Nop) IncBacklogRejected()                                    {}

// Outcome maps an error to the outcome label used by the recorders.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
