package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultKeyword is the leading word of every command.
const DefaultKeyword = "homeassistant"

// ChainSeparator joins several commands in one line.
const ChainSeparator = "&&"

// Command is one parsed instruction of the form "<keyword> <target...> <action>".
type Command struct {
	Keyword string
	Target  string
	Action  string
	Raw     string
}

// ParseCommand splits text into target phrase and action token. The action is the
// last word, except that an "rgb(" word or a trailing "set <name> <value...>" keep
// the rest of the line so embedded spaces survive.
func ParseCommand(text, keyword string) (Command, error) {
	return ParseCommandFunc(text, keyword, nil)
}

// ParseCommandFunc is ParseCommand with a custom test for complete single-word
// actions. A "set" only starts the action when the last word is not one, so
// "tv set top box on" targets "tv set top box". Nil uses IsKeywordAction.
func ParseCommandFunc(text, keyword string, isAction func(token string) bool) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return Command{}, &ParseError{Input: text, Reason: "expected <keyword> <target> <action>"}
	}
	if !strings.EqualFold(fields[0], keyword) {
		return Command{}, &ParseError{Input: text, Reason: fmt.Sprintf("missing keyword %q", keyword)}
	}
	if isAction == nil {
		isAction = IsKeywordAction
	}

	split := actionStart(fields, isAction)
	return Command{
		Keyword: fields[0],
		Target:  strings.Join(fields[1:split], " "),
		Action:  strings.Join(fields[split:], " "),
		Raw:     text,
	}, nil
}

// IsKeywordAction reports whether token is a power, query or percentage action.
func IsKeywordAction(token string) bool {
	switch t := strings.ToLower(token); {
	case t == "on", t == "off", t == "toggle", t == "get", t == "query":
		return true
	case strings.HasSuffix(t, "%"):
		_, err := strconv.Atoi(strings.TrimSuffix(t, "%"))
		return err == nil
	}
	return false
}

// SplitChain breaks "a && b" into trimmed non-empty commands.
func SplitChain(text string) []string {
	parts := strings.Split(text, ChainSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func actionStart(fields []string, isAction func(string) bool) int {
	for i := 2; i < len(fields); i++ {
		if strings.HasPrefix(strings.ToLower(fields[i]), "rgb(") {
			return i
		}
	}
	last := len(fields) - 1
	if isAction(fields[last]) {
		return last
	}
	for i := len(fields) - 3; i >= 2; i-- {
		if strings.EqualFold(fields[i], "set") {
			return i
		}
	}
	return last
}
