// Package parser decodes TOPIN frame payloads into typed values. Each
// opcode with a payload worth decoding registers a Parser; opcodes that
// carry no meaningful payload (heartbeat, supervision, reset, …) are
// dispatched directly by the engine without a registered parser.
package parser

import (
	"fmt"
	"sync"

	"github.com/intelcon-group/topin-server/pkg/jimi/protocol"
)

// Decoded is the result of successfully parsing one opcode's payload.
type Decoded interface {
	// Opcode returns the opcode this value was decoded from.
	Opcode() protocol.Opcode
}

// Parser decodes the payload bytes of one opcode.
type Parser interface {
	// Opcode returns the opcode this parser handles.
	Opcode() protocol.Opcode
	// Parse decodes payload (opcode and frame markers already stripped).
	Parse(payload []byte) (Decoded, error)
	// Name returns a human-readable parser name, for logging.
	Name() string
}

// Registry maps opcodes to their parser.
type Registry struct {
	mu      sync.RWMutex
	parsers map[protocol.Opcode]Parser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[protocol.Opcode]Parser)}
}

// Register adds a parser, failing if one is already registered for its opcode.
func (r *Registry) Register(p Parser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	op := p.Opcode()
	if _, exists := r.parsers[op]; exists {
		return fmt.Errorf("parser for opcode 0x%02X already registered", op)
	}
	r.parsers[op] = p
	return nil
}

// MustRegister adds a parser and panics if registration fails.
func (r *Registry) MustRegister(p Parser) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Get returns the parser registered for op, if any.
func (r *Registry) Get(op protocol.Opcode) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parsers[op]
	return p, ok
}

// Parse dispatches to the parser registered for op.
func (r *Registry) Parse(op protocol.Opcode, payload []byte) (Decoded, error) {
	p, ok := r.Get(op)
	if !ok {
		return nil, fmt.Errorf("no parser registered for opcode 0x%02X", op)
	}
	return p.Parse(payload)
}

// Has reports whether a parser is registered for op.
func (r *Registry) Has(op protocol.Opcode) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.parsers[op]
	return ok
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the package-wide registry that parsers self-register
// into via init().
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// MustRegister adds p to the default registry, panicking on a duplicate opcode.
func MustRegister(p Parser) {
	defaultRegistry.MustRegister(p)
}

// Parse dispatches to the default registry.
func Parse(op protocol.Opcode, payload []byte) (Decoded, error) {
	return defaultRegistry.Parse(op, payload)
}

// Has reports whether the default registry has a parser for op.
func Has(op protocol.Opcode) bool {
	return defaultRegistry.Has(op)
}

// baseParser holds the opcode/name pair common to every concrete parser.
type baseParser struct {
	op   protocol.Opcode
	name string
}

func newBaseParser(op protocol.Opcode, name string) baseParser {
	return baseParser{op: op, name: name}
}

func (p baseParser) Opcode() protocol.Opcode { return p.op }
func (p baseParser) Name() string            { return p.name }
