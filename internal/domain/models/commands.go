package models

import "strings"

// CommandType enumerates supported text command categories.
type CommandType string

const (
	CommandSummary   CommandType = "summary"
	CommandPay       CommandType = "pay"
	CommandStatement CommandType = "statement"
	CommandSuppliers CommandType = "suppliers"
	CommandHelp      CommandType = "help"
	CommandUnknown   CommandType = "unknown"
)

// Command represents a parsed instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages. The
// command word is matched case-insensitively; arguments keep their case so
// supplier names survive.
func ParseCommand(message string) Command {
	tokens := strings.Fields(strings.TrimSpace(message))
	cmd := Command{Raw: message}

	if len(tokens) == 0 {
		cmd.Type = CommandUnknown
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch head {
	case string(CommandSummary), "report":
		cmd.Type = CommandSummary
	case string(CommandPay), "payment":
		cmd.Type = CommandPay
	case string(CommandStatement), "balance":
		cmd.Type = CommandStatement
	case string(CommandSuppliers):
		cmd.Type = CommandSuppliers
	case string(CommandHelp), "start":
		cmd.Type = CommandHelp
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
