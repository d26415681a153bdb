package command

import (
	"errors"
	"fmt"
	"strings"

	"tetris/internal/game"
)

var (
	ErrEmpty       = errors.New("empty command")
	ErrUnknown     = errors.New("unknown command")
	ErrMissingName = errors.New("name command needs a name")
)

// Parse reads one command. Words are case-insensitive and may carry a leading
// '!' or '/' the way chat commands do. "name" takes the rest of the line as
// its argument.
func Parse(text string) (game.Command, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "!/")
	if text == "" {
		return game.Command{}, ErrEmpty
	}

	word, rest, _ := strings.Cut(text, " ")
	t := Lookup(strings.ToLower(word))
	switch t {
	case game.CommandUnknown:
		return game.Command{}, fmt.Errorf("%w: %q", ErrUnknown, word)
	case game.CommandSetName:
		name := strings.TrimSpace(rest)
		if name == "" {
			return game.Command{}, ErrMissingName
		}
		return game.Command{Type: t, Name: name}, nil
	default:
		return game.Command{Type: t}, nil
	}
}

// ParseAll splits text on newlines and semicolons and parses every part.
// Parsing stops at the first invalid part.
func ParseAll(text string) ([]game.Command, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ';'
	})

	cmds := make([]game.Command, 0, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		cmd, err := Parse(f)
		if err != nil {
			return cmds, err
		}
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil, ErrEmpty
	}
	return cmds, nil
}
