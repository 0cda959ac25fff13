package cmd

import (
	"sort"
	"sync"
)

// Aliased is implemented by commands reachable under more than one name.
type Aliased interface {
	Aliases() []string
}

// Registry stores commands by name. It does not perform dispatch; each adapter
// looks up commands and invokes them with its own context.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	aliases  map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command and the aliases of its root command.
func (r *Registry) Register(c Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands[c.Name()] = c
	if a, ok := Root(c).(Aliased); ok {
		for _, alias := range a.Aliases() {
			r.aliases[alias] = c.Name()
		}
	}
}

// Get returns the command registered under name or one of its aliases, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.commands[name]; ok {
		return c
	}
	if target, ok := r.aliases[name]; ok {
		return r.commands[target]
	}
	return nil
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
