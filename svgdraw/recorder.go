package svgdraw

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/okrender/svgpath"
)

var _ Backend = (*Recorder)(nil) // assert interface conformance

// CommandType identifies the type of a recorded command.
type CommandType uint8

const (
	CmdSave CommandType = iota
	CmdRestore
	CmdClip
	CmdFill
	CmdStroke
)

var commandTypeNames = [...]string{
	CmdSave:    "Save",
	CmdRestore: "Restore",
	CmdClip:    "Clip",
	CmdFill:    "Fill",
	CmdStroke:  "Stroke",
}

func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return fmt.Sprintf("CommandType(%d)", c)
}

// Command is one operation received by a Recorder.
// Only the fields relevant for its type are set.
type Command struct {
	Type    CommandType
	Path    svgpath.Path // device space
	Count   int          // target of Restore
	Pattern Pattern
	Opacity float64
	Stroke  StrokeOptions
	NonZero bool // winding rule of Clip and Fill
}

func (c Command) String() string {
	switch c.Type {
	case CmdRestore:
		return fmt.Sprintf("Restore(%d)", c.Count)
	case CmdClip, CmdFill, CmdStroke:
		return fmt.Sprintf("%s(%s)", c.Type, c.Path)
	default:
		return c.Type.String()
	}
}

// Recorder is a Backend storing the commands it receives,
// without drawing anything. It is useful to inspect
// the output of a Surface, for instance in tests.
type Recorder struct {
	Commands []Command

	saveCount int
}

// SaveCount returns the number of pending saves.
func (r *Recorder) SaveCount() int { return r.saveCount }

func (r *Recorder) Save() {
	r.saveCount++
	r.Commands = append(r.Commands, Command{Type: CmdSave})
}

func (r *Recorder) RestoreToCount(count int) {
	if count < 0 || count > r.saveCount {
		panic(fmt.Sprintf("svgdraw: invalid restore count %d (pending saves: %d)", count, r.saveCount))
	}
	r.saveCount = count
	r.Commands = append(r.Commands, Command{Type: CmdRestore, Count: count})
}

func (r *Recorder) Clip(p svgpath.Path, useNonZeroWinding bool) {
	r.Commands = append(r.Commands, Command{Type: CmdClip, Path: p, NonZero: useNonZeroWinding})
}

func (r *Recorder) Fill(p svgpath.Path, pattern Pattern, opacity float64, useNonZeroWinding bool) {
	r.Commands = append(r.Commands, Command{Type: CmdFill, Path: p, Pattern: pattern, Opacity: opacity, NonZero: useNonZeroWinding})
}

func (r *Recorder) Stroke(p svgpath.Path, options StrokeOptions, pattern Pattern, opacity float64) {
	r.Commands = append(r.Commands, Command{Type: CmdStroke, Path: p, Pattern: pattern, Opacity: opacity, Stroke: options})
}

// Count returns the number of recorded commands of type `t`.
func (r *Recorder) Count(t CommandType) int {
	n := 0
	for _, c := range r.Commands {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Reset clears the recorded commands, but not the save count.
func (r *Recorder) Reset() { r.Commands = r.Commands[:0] }

// String returns one command per line.
func (r *Recorder) String() string {
	chunks := make([]string, len(r.Commands))
	for i, c := range r.Commands {
		chunks[i] = c.String()
	}
	return strings.Join(chunks, "\n")
}
