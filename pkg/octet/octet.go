// Package octet is the public facade over the engine, re-exporting the
// three external interfaces spec.md §6 names: Format construction (the
// value/expr/format packages' exported types, used directly as they
// are already the construction API), Compile, and Parse.
package octet

import (
	"github.com/funvibe/octet/internal/config"
	"github.com/funvibe/octet/internal/decoder"
	"github.com/funvibe/octet/internal/expr"
	"github.com/funvibe/octet/internal/format"
	"github.com/funvibe/octet/internal/value"
)

// Re-exported so a caller only needs to import pkg/octet to build
// Formats, Expressions, Funcs, Patterns and Values, and to hold an
// Arena for recursive formats — the Format construction API of
// spec.md §6 item 1.
type (
	Format = format.Format
	Arena  = format.Arena
	Handle = format.Handle
	Expr   = expr.Expression
	Fn     = expr.Func
	Value  = value.Value
	Pattern = value.Pattern
	Stack  = value.Stack
	Decoder = decoder.Decoder

	EngineConfig = config.EngineConfig
)

// NewArena returns an empty Arena for building mutually or
// self-recursive Format definitions (spec.md §9).
func NewArena() *Arena { return format.NewArena() }

// NewStack returns an empty evaluation Stack.
func NewStack() *Stack { return value.NewStack() }

// DefaultConfig returns the EngineConfig a caller gets without
// supplying any configuration of their own (lookahead depth 32).
func DefaultConfig() EngineConfig { return config.Default() }

// LoadConfig parses an EngineConfig from YAML bytes.
func LoadConfig(data []byte) (EngineConfig, error) { return config.Load(data) }

// Compile is the Compilation API of spec.md §6 item 2: it turns f into
// a Decoder, or returns a CompileError (one of
// *decoder.NullableRepeatError, *matchtree.AmbiguousUnionError,
// *matchtree.ConflictingAcceptError, *format.UndefinedHandleError,
// *format.CyclicFormatError).
// arena resolves any Indirect formats reachable from f; pass
// NewArena() if f contains none.
func Compile(f Format, arena *Arena, cfg EngineConfig) (Decoder, error) {
	maxDepth := cfg.MaxLookahead
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxLookahead
	}
	return decoder.Compile(f, arena, maxDepth)
}

// Parse is the Parse API of spec.md §6 item 3: it runs d against input
// with stack s, returning the decoded value and the remainder on
// success, or (nil, input, false) on rejection. s is restored to its
// entry size in both cases.
func Parse(d Decoder, s *Stack, input []byte) (Value, []byte, bool) {
	return decoder.Parse(d, s, input)
}
