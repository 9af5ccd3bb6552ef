package command

import (
	"strconv"
	"strings"
)

type Kind int

const (
	// Ignored is unrelated chat traffic. It never gets a reply.
	Ignored Kind = iota
	Invalid
	SwitchToTech
)

const (
	Prefix     = "teh"
	BangPrefix = "!" + Prefix
)

const ReasonBadFormat = "bad command format"

// Command is the parsed form of a chat message. Workstation is set for SwitchToTech,
// Reason for Invalid.
type Command struct {
	Kind        Kind
	Workstation int
	Reason      string
}

type Parser struct {
	allowBang bool
}

func NewParser(allowBang bool) *Parser {
	return &Parser{allowBang: allowBang}
}

// Parse accepts "teh<N>" and, when enabled, "!teh<N>" where N is a run of ASCII digits.
func (p *Parser) Parse(text string) Command {
	text = strings.TrimSpace(text)

	var rest string
	switch {
	case p.allowBang && strings.HasPrefix(text, BangPrefix):
		rest = strings.TrimPrefix(text, BangPrefix)
	case strings.HasPrefix(text, Prefix):
		rest = strings.TrimPrefix(text, Prefix)
	default:
		return Command{Kind: Ignored}
	}

	if !isDigits(rest) {
		return Command{Kind: Invalid, Reason: ReasonBadFormat}
	}

	n, err := strconv.ParseUint(rest, 10, 31)
	if err != nil {
		return Command{Kind: Invalid, Reason: ReasonBadFormat}
	}

	return Command{Kind: SwitchToTech, Workstation: int(n)}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
