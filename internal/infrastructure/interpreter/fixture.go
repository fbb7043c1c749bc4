package interpreter

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/astrotarothub/backend/internal/domain/interpreter"
)

// Fixture is the canned interpreter used when no LLM key is configured.
// The output is deterministic so tests can assert on it.
type Fixture struct{}

func NewFixture() *Fixture { return &Fixture{} }

func (f *Fixture) Name() string { return "fixture" }

func (f *Fixture) InterpretReading(ctx context.Context, spreadType string, cards []domain.Card) (string, error) {
	names := make([]string, 0, len(cards))
	for _, card := range cards {
		names = append(names, card.Name)
	}
	return fmt.Sprintf("Leitura %s: as cartas %s indicam um momento de transformação e autoconhecimento.",
		spreadType, strings.Join(names, ", ")), nil
}
