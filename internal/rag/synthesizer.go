package rag

import (
	"context"
	"fmt"
	"strings"
)

// HistoryWindow is the maximum number of prior exchanges included in the
// prompt, oldest first.
const HistoryWindow = 5

const synthesisInstruction = "Use the following pieces of context to answer the question at the end. " +
	"If you don't know the answer, say you don't know, but don't make up an answer. " +
	"Be concise but thorough."

// Exchange is one prior (question, answer) pair of the conversation.
type Exchange struct {
	Question string
	Answer   string
}

// Synthesizer produces a grounded natural-language answer from retrieved
// passages via the underlying language model. One attempt per call; the
// caller may retry the whole chat turn.
type Synthesizer struct {
	generator Generator
}

func NewSynthesizer(generator Generator) *Synthesizer {
	return &Synthesizer{generator: generator}
}

// Answer builds the grounded prompt and returns the model's answer together
// with the deduplicated source labels of the supplied passages, in
// first-seen order.
func (s *Synthesizer) Answer(ctx context.Context, question string, passages []Passage, history []Exchange) (string, []string, error) {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	var historyBlock strings.Builder
	for _, ex := range history {
		fmt.Fprintf(&historyBlock, "User: %s\nAssistant: %s\n", ex.Question, ex.Answer)
	}

	var contextBlock strings.Builder
	for _, p := range passages {
		fmt.Fprintf(&contextBlock, "Content: %s\nSource: %s\n\n", p.Text, p.Label())
	}

	prompt := fmt.Sprintf(
		"Chat History:\n%s\nContext:\n%s\nQuestion: %s\n\nHelpful Answer:",
		historyBlock.String(),
		contextBlock.String(),
		question,
	)

	answer, err := s.generator.Complete(ctx, synthesisInstruction, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", nil, fmt.Errorf("%w: empty model response", ErrSynthesis)
	}

	return answer, sourceLabels(passages), nil
}

func sourceLabels(passages []Passage) []string {
	seen := make(map[string]struct{}, len(passages))
	var labels []string
	for _, p := range passages {
		label := p.Label()
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}
