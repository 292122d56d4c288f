// Copyright 2026 The gscore Authors
// This file is part of the gscore library.
//
// The gscore library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gscore library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gscore library. If not, see <http://www.gnu.org/licenses/>.

package score

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tos-network/gscore/params"
)

// Loader instantiates a score from deployment content.
type Loader interface {
	Load(contentType string, content []byte) (Score, error)
}

// Constructor builds a builtin score.
type Constructor func() Score

// BuiltinLoader resolves content of type params.ContentTypeBuiltin: the
// content is the name a constructor was registered under.
type BuiltinLoader struct {
	lock  sync.RWMutex
	ctors map[string]Constructor
}

// NewBuiltinLoader returns an empty loader.
func NewBuiltinLoader() *BuiltinLoader {
	return &BuiltinLoader{ctors: make(map[string]Constructor)}
}

// Register adds a constructor, replacing any under the same name.
func (l *BuiltinLoader) Register(name string, ctor Constructor) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.ctors[name] = ctor
}

// Load implements Loader.
func (l *BuiltinLoader) Load(contentType string, content []byte) (Score, error) {
	if contentType != params.ContentTypeBuiltin {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrInvalidContent, contentType)
	}
	l.lock.RLock()
	ctor, ok := l.ctors[string(content)]
	l.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v %q", ErrInvalidContent, errUnknownBuiltin, content)
	}
	return ctor(), nil
}

// Names lists the registered builtins in lexical order.
func (l *BuiltinLoader) Names() []string {
	l.lock.RLock()
	defer l.lock.RUnlock()
	names := make([]string, 0, len(l.ctors))
	for name := range l.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MuxLoader dispatches to the loader registered for a content type.
type MuxLoader struct {
	lock    sync.RWMutex
	loaders map[string]Loader
}

// NewMuxLoader returns a loader without any content type.
func NewMuxLoader() *MuxLoader {
	return &MuxLoader{loaders: make(map[string]Loader)}
}

// Handle routes contentType to l.
func (m *MuxLoader) Handle(contentType string, l Loader) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.loaders[contentType] = l
}

// Load implements Loader.
func (m *MuxLoader) Load(contentType string, content []byte) (Score, error) {
	m.lock.RLock()
	l, ok := m.loaders[contentType]
	m.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrInvalidContent, contentType)
	}
	return l.Load(contentType, content)
}
