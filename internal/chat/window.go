package chat

import "github.com/fscarponi/characterai/internal/domain"

// perMessageOverhead approximates the role/framing tokens chat APIs add per message.
const perMessageOverhead = 4

// Window bounds conversation history growth.
//
// MaxTurns caps the number of complete turns kept in the stored history.
// TokenBudget caps the size of each request sent to the model; the system
// message and the newest user message are always sent. Zero disables a limit.
type Window struct {
	MaxTurns    int
	TokenBudget int
	Counter     TokenCounter
}

// Trim drops the oldest complete turns until at most MaxTurns remain.
func (w *Window) Trim(msgs []domain.Message) []domain.Message {
	if w == nil || w.MaxTurns <= 0 {
		return msgs
	}

	head := 0
	if len(msgs) > 0 && msgs[0].Role == domain.RoleSystem {
		head = 1
	}

	turns := 0
	for _, m := range msgs[head:] {
		if m.Role == domain.RoleUser {
			turns++
		}
	}

	cut := head
	for turns > w.MaxTurns && cut < len(msgs) {
		// Skip one user message and everything up to and including its reply.
		cut++
		for cut < len(msgs) && msgs[cut].Role != domain.RoleUser {
			cut++
		}
		turns--
	}
	if cut == head {
		return msgs
	}

	out := make([]domain.Message, 0, len(msgs)-(cut-head))
	out = append(out, msgs[:head]...)
	out = append(out, msgs[cut:]...)
	return out
}

// Select returns the messages to send for the next completion.
func (w *Window) Select(msgs []domain.Message) []domain.Message {
	if w == nil || w.TokenBudget <= 0 || len(msgs) == 0 {
		return msgs
	}
	counter := w.Counter
	if counter == nil {
		counter = approxCounter{}
	}
	cost := func(m domain.Message) int {
		return counter.Count(m.Content) + perMessageOverhead
	}

	var system []domain.Message
	body := msgs
	if body[0].Role == domain.RoleSystem {
		system = body[:1]
		body = body[1:]
	}
	if len(body) == 0 {
		return msgs
	}

	last := body[len(body)-1]
	used := cost(last)
	for _, m := range system {
		used += cost(m)
	}

	// Walk complete turns backwards; a turn is kept only as a whole.
	start := len(body) - 1
	i := start
	for i > 0 {
		j := i - 1
		for j > 0 && body[j].Role != domain.RoleUser {
			j--
		}
		turnCost := 0
		for _, m := range body[j:i] {
			turnCost += cost(m)
		}
		if used+turnCost > w.TokenBudget {
			break
		}
		used += turnCost
		start = j
		i = j
	}

	out := make([]domain.Message, 0, len(system)+len(body)-start)
	out = append(out, system...)
	out = append(out, body[start:]...)
	return out
}
