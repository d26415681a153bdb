// Package command turns free-form text (WebSocket frames, API bodies,
// terminal input) into game commands.
package command

import "tetris/internal/game"

// Aliases maps lowercase command words to command types
var Aliases = map[string]game.CommandType{
	// Move left
	"left": game.CommandLeft,
	"l":    game.CommandLeft,
	"a":    game.CommandLeft,

	// Move right
	"right": game.CommandRight,
	"d":     game.CommandRight,

	// Soft drop
	"down": game.CommandSoftDrop,
	"s":    game.CommandSoftDrop,
	"soft": game.CommandSoftDrop,

	// Rotate
	"rotate": game.CommandRotate,
	"r":      game.CommandRotate,
	"up":     game.CommandRotate,
	"x":      game.CommandRotate,
	"w":      game.CommandRotate,

	// Hard drop
	"drop":  game.CommandHardDrop,
	"space": game.CommandHardDrop,
	"hard":  game.CommandHardDrop,

	// Reset
	"reset":   game.CommandReset,
	"restart": game.CommandReset,
	"new":     game.CommandReset,

	// Player name
	"name":   game.CommandSetName,
	"player": game.CommandSetName,
}

// Lookup returns the command type for a lowercase word
func Lookup(word string) game.CommandType {
	if t, ok := Aliases[word]; ok {
		return t
	}
	return game.CommandUnknown
}
