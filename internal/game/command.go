package game

// CommandType enumerates player inputs an engine understands.
type CommandType uint8

const (
	CommandUnknown CommandType = iota
	CommandLeft
	CommandRight
	CommandSoftDrop
	CommandRotate
	CommandHardDrop
	CommandReset
	CommandSetName
)

// String returns the canonical command name.
func (t CommandType) String() string {
	switch t {
	case CommandLeft:
		return "left"
	case CommandRight:
		return "right"
	case CommandSoftDrop:
		return "down"
	case CommandRotate:
		return "rotate"
	case CommandHardDrop:
		return "drop"
	case CommandReset:
		return "reset"
	case CommandSetName:
		return "name"
	default:
		return "unknown"
	}
}

// Command is one player input. Name is only read by CommandSetName.
type Command struct {
	Type CommandType
	Name string
}

// Apply dispatches a command and reports whether it changed anything the
// presentation shows.
func (e *Engine) Apply(cmd Command) bool {
	switch cmd.Type {
	case CommandLeft:
		return e.TryMove(-1, 0)
	case CommandRight:
		return e.TryMove(1, 0)
	case CommandSoftDrop:
		return e.TryMove(0, 1)
	case CommandRotate:
		return e.TryRotate()
	case CommandHardDrop:
		return e.HardDrop()
	case CommandReset:
		e.Reset()
		return true
	case CommandSetName:
		e.SetPlayerName(cmd.Name)
		return true
	default:
		return false
	}
}
