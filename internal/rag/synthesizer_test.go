package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureGenerator records the last system/prompt pair and returns a canned
// answer.
type captureGenerator struct {
	system string
	prompt string
	answer string
	err    error
}

func (g *captureGenerator) Complete(_ context.Context, system, prompt string) (string, error) {
	g.system = system
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func TestAnswerPromptShape(t *testing.T) {
	gen := &captureGenerator{answer: "Paris is the capital."}
	synth := NewSynthesizer(gen)

	passages := []Passage{
		{Text: "Paris is the capital of France.", Source: "geo.pdf", Page: 2},
	}
	history := []Exchange{{Question: "hi", Answer: "hello"}}

	answer, sources, err := synth.Answer(context.Background(), "What is the capital of France?", passages, history)
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital.", answer)
	assert.Equal(t, []string{"geo.pdf (page 2)"}, sources)

	assert.Contains(t, gen.system, "say you don't know")
	assert.Contains(t, gen.prompt, "Chat History:\nUser: hi\nAssistant: hello\n")
	assert.Contains(t, gen.prompt, "Content: Paris is the capital of France.\nSource: geo.pdf (page 2)\n")
	assert.Contains(t, gen.prompt, "Question: What is the capital of France?")
	assert.True(t, strings.HasSuffix(gen.prompt, "Helpful Answer:"))
}

func TestAnswerSourceDeduplication(t *testing.T) {
	gen := &captureGenerator{answer: "ok"}
	synth := NewSynthesizer(gen)

	passages := []Passage{
		{Text: "a", Source: "r.pdf", Page: 1},
		{Text: "b", Source: "r.pdf", Page: 2},
		{Text: "c", Source: "r.pdf", Page: 1},
		{Text: "d", Source: "other.pdf"},
	}
	_, sources, err := synth.Answer(context.Background(), "q", passages, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"r.pdf (page 1)", "r.pdf (page 2)", "other.pdf"}, sources)
}

func TestAnswerHistoryWindow(t *testing.T) {
	gen := &captureGenerator{answer: "ok"}
	synth := NewSynthesizer(gen)

	history := make([]Exchange, 8)
	for i := range history {
		history[i] = Exchange{
			Question: fmt.Sprintf("q%d", i),
			Answer:   fmt.Sprintf("a%d", i),
		}
	}

	_, _, err := synth.Answer(context.Background(), "q", []Passage{{Text: "t", Source: "s.pdf"}}, history)
	require.NoError(t, err)

	assert.Equal(t, HistoryWindow, strings.Count(gen.prompt, "User: "))
	assert.NotContains(t, gen.prompt, "User: q2\n")
	assert.Contains(t, gen.prompt, "User: q3\n")
	assert.Contains(t, gen.prompt, "User: q7\n")
}

func TestAnswerGeneratorFailure(t *testing.T) {
	synth := NewSynthesizer(&captureGenerator{err: errors.New("model unavailable")})

	_, _, err := synth.Answer(context.Background(), "q", []Passage{{Text: "t", Source: "s.pdf"}}, nil)
	assert.ErrorIs(t, err, ErrSynthesis)
}

func TestAnswerEmptyResponse(t *testing.T) {
	synth := NewSynthesizer(&captureGenerator{answer: "   \n"})

	_, _, err := synth.Answer(context.Background(), "q", []Passage{{Text: "t", Source: "s.pdf"}}, nil)
	assert.ErrorIs(t, err, ErrSynthesis)
}

func TestPassageLabel(t *testing.T) {
	assert.Equal(t, "doc.pdf (page 7)", Passage{Source: "doc.pdf", Page: 7}.Label())
	assert.Equal(t, "doc.pdf", Passage{Source: "doc.pdf"}.Label())
}
