package interpreter

import "context"

// Card is one drawn card handed to the interpretation collaborator.
type Card struct {
	Name     string   `json:"name"`
	Position string   `json:"position"`
	Upright  bool     `json:"upright"`
	Keywords []string `json:"keywords,omitempty"`
}

// Interpreter generates the premium tarot interpretation. The LLM is an
// opaque collaborator: prompt content and model choice live behind this
// interface.
type Interpreter interface {
	InterpretReading(ctx context.Context, spreadType string, cards []Card) (string, error)
	Name() string
}
