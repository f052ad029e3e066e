package bot

import "strings"

// Command names recognized by the orchestrator.
const (
	CmdStart    = "start"
	CmdHelp     = "help"
	CmdCreate   = "create"
	CmdSelect   = "select"
	CmdChat     = "chat"
	CmdStopChat = "stopchat"
	CmdCancel   = "cancel"
	CmdClear    = "clear"
	CmdStatus   = "status"
)

var knownCommands = map[string]bool{
	CmdStart:    true,
	CmdHelp:     true,
	CmdCreate:   true,
	CmdSelect:   true,
	CmdChat:     true,
	CmdStopChat: true,
	CmdCancel:   true,
	CmdClear:    true,
	CmdStatus:   true,
}

// Command is a parsed slash command.
type Command struct {
	Name  string
	Args  string
	Known bool
}

// ParseCommand parses "/name[@bot] args". It reports false for text that is
// not a command.
func ParseCommand(text string) (Command, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{}, false
	}
	head, args, _ := strings.Cut(trimmed[1:], " ")
	if i := strings.IndexAny(head, "\n\t"); i >= 0 {
		args = head[i+1:] + " " + args
		head = head[:i]
	}
	name, _, _ := strings.Cut(head, "@")
	name = strings.ToLower(name)
	if name == "" {
		return Command{}, false
	}
	return Command{
		Name:  name,
		Args:  strings.TrimSpace(args),
		Known: knownCommands[name],
	}, true
}
