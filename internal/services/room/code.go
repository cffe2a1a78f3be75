package room

import (
	"github.com/partyroom/partyroom/internal/dependencies/random"
	"github.com/partyroom/partyroom/internal/model"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6
	// CodeAlphabet is the characters used in room codes
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// MaxCodeAttempts bounds how many codes are tried before giving up
	MaxCodeAttempts = 10
)

// CodeGenerator produces candidate room codes
type CodeGenerator struct {
	random random.Random
}

// NewCodeGenerator creates a CodeGenerator drawing from the given source
func NewCodeGenerator(random random.Random) *CodeGenerator {
	return &CodeGenerator{random: random}
}

// Generate returns a candidate code. Uniqueness is checked by the registry.
func (g *CodeGenerator) Generate() model.RoomCode {
	return model.RoomCode(g.random.String(CodeLength, CodeAlphabet))
}
