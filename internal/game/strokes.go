package game

import "github.com/drawblin/drawblin/internal/model"

// checkpointInterval is the number of commands between undo checkpoints
const checkpointInterval = 50

// StrokeLog is the per-round ordered log of drawing commands. It
// buffers outgoing commands so broadcasts go out in coalesced batches
// rather than per stroke, and records checkpoints for undo.
// Owned by the room goroutine; not safe for concurrent use.
type StrokeLog struct {
	commands    []model.StrokeCommand
	checkpoints []int // command counts at batch boundaries
	flushed     int   // commands already broadcast
}

// NewStrokeLog creates an empty stroke log
func NewStrokeLog() *StrokeLog {
	return &StrokeLog{}
}

// Append validates and records a command. Out-of-bounds commands are
// dropped without error: drawing is advisory, not a security boundary.
func (l *StrokeLog) Append(cmd model.StrokeCommand) bool {
	if !cmd.InBounds() {
		return false
	}
	l.commands = append(l.commands, cmd)
	if len(l.commands)-l.lastCheckpoint() >= checkpointInterval {
		l.checkpoints = append(l.checkpoints, len(l.commands))
	}
	return true
}

// Flush returns the commands not yet broadcast and marks them sent
func (l *StrokeLog) Flush() []model.StrokeCommand {
	if l.flushed >= len(l.commands) {
		return nil
	}
	batch := l.commands[l.flushed:]
	l.flushed = len(l.commands)
	return batch
}

// Undo truncates the log to the previous checkpoint. When no
// checkpoint remains it clears the whole log. Returns the commands
// that survive, for rebroadcast as a full redraw.
func (l *StrokeLog) Undo() []model.StrokeCommand {
	if len(l.checkpoints) == 0 {
		l.Clear()
		return nil
	}
	last := len(l.checkpoints) - 1
	mark := l.checkpoints[last]
	l.checkpoints = l.checkpoints[:last]

	// If nothing was drawn past the checkpoint, drop that segment too
	if mark >= len(l.commands) {
		return l.Undo()
	}
	l.commands = l.commands[:mark]
	if l.flushed > mark {
		l.flushed = mark
	}
	return l.Snapshot()
}

// Clear empties the log
func (l *StrokeLog) Clear() {
	l.commands = nil
	l.checkpoints = nil
	l.flushed = 0
}

// Snapshot returns a copy of the full log for late-joiner replay
func (l *StrokeLog) Snapshot() []model.StrokeCommand {
	if len(l.commands) == 0 {
		return nil
	}
	out := make([]model.StrokeCommand, len(l.commands))
	copy(out, l.commands)
	return out
}

// Len returns the number of accepted commands
func (l *StrokeLog) Len() int {
	return len(l.commands)
}

func (l *StrokeLog) lastCheckpoint() int {
	if len(l.checkpoints) == 0 {
		return 0
	}
	return l.checkpoints[len(l.checkpoints)-1]
}
