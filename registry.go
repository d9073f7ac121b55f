package feather

import "fmt"

// nativeCommand is a command implemented in Go, receiving the interpreter
// and the fully-evaluated argument vector (args[0] is the command name).
type nativeCommand func(i *Interp, args []*Obj) Result

// procedure is a user-defined command created by `proc`.
type procedure struct {
	name     string
	formals  []formalParam
	hasArgs  bool // last formal is the literal "args": binds remaining actuals as a list
	body     *Obj
	arityMin int
	arityMax int // -1 = unbounded
}

type formalParam struct {
	name    string
	hasDflt bool
	dflt    *Obj
}

// command is a registry entry: either a native handler or a user procedure.
type command struct {
	native nativeCommand
	proc   *procedure
}

// registry is the interpreter's single name -> command map. procEpoch is
// bumped on every delete/rename so that cached CommandRefType resolutions
// elsewhere re-resolve instead of calling through a stale entry.
type registry struct {
	commands  map[string]*command
	procEpoch uint64
}

func newRegistry() *registry {
	return &registry{commands: make(map[string]*command)}
}

// define creates or replaces the command named name. Replacing preserves
// any *Obj values already captured by live callers (the old command record
// stays reachable for whoever still holds it; nothing invalidates it).
func (r *registry) define(name string, cmd *command) {
	r.commands[name] = cmd
	r.procEpoch++
}

// rename moves the command at oldName to newName; an empty newName deletes
// it instead (matching the `rename foo {}` idiom).
func (r *registry) rename(oldName, newName string) error {
	cmd, ok := r.commands[oldName]
	if !ok {
		return fmt.Errorf("invalid command name %q", oldName)
	}
	delete(r.commands, oldName)
	if newName != "" {
		r.commands[newName] = cmd
	}
	r.procEpoch++
	return nil
}

// lookup returns the command named name, or nil if absent.
func (r *registry) lookup(name string) *command {
	return r.commands[name]
}

// CommandRefType caches the resolution of a command name to its registry
// entry at a particular procEpoch, so the evaluator's hot dispatch path
// can skip the map lookup when nothing has been renamed or deleted since.
type CommandRefType struct {
	cmd   *command
	epoch uint64
	name  string
}

func (t *CommandRefType) Name() string         { return "command" }
func (t *CommandRefType) UpdateString() string { return t.name }
func (t *CommandRefType) Dup() ObjType         { return &CommandRefType{cmd: t.cmd, epoch: t.epoch, name: t.name} }

// resolveCachedCommand looks up nameObj's command via the registry,
// shimmering nameObj into a CommandRefType so a repeat dispatch of the same
// object (e.g. re-evaluating a procedure body) skips the map lookup.
func resolveCachedCommand(r *registry, nameObj *Obj) *command {
	if ct, ok := nameObj.intrep.(*CommandRefType); ok && ct.epoch == r.procEpoch {
		return ct.cmd
	}
	name := nameObj.String()
	cmd := r.lookup(name)
	nameObj.SetInternalRep(&CommandRefType{cmd: cmd, epoch: r.procEpoch, name: name})
	return cmd
}
