package summarize

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/shortlist-group/jobscout/pkg/anthropic"
)

type fakeAI struct {
	resp *anthropic.MessageResponse
	err  error
}

func (f *fakeAI) CreateMessage(context.Context, anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	return f.resp, f.err
}

func TestExtractive_CapsSentences(t *testing.T) {
	text := "First sentence. Second one! Third here? Fourth extra. Fifth extra."

	got := Extractive{MaxSentences: 3}.Summarize(context.Background(), text)
	assert.Equal(t, "First sentence. Second one! Third here?", got)
}

func TestExtractive_DefaultsToThree(t *testing.T) {
	got := Extractive{}.Summarize(context.Background(), "One. Two. Three. Four.")
	assert.Equal(t, "One. Two. Three.", got)
}

func TestExtractive_CollapsesWhitespaceAndKeepsTail(t *testing.T) {
	got := Extractive{MaxSentences: 2}.Summarize(context.Background(), "Only   one sentence\n\twith no terminator")
	assert.Equal(t, "Only one sentence with no terminator", got)

	assert.Equal(t, "", Extractive{}.Summarize(context.Background(), "   "))
}

func TestHosted_UsesModelResponse(t *testing.T) {
	h := Hosted{
		AI: &fakeAI{resp: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: "  A crisp summary.  "}},
		}},
	}

	got := h.Summarize(context.Background(), "Long description. With details.")
	assert.Equal(t, "A crisp summary.", got)
}

func TestHosted_FallsBackOnError(t *testing.T) {
	h := Hosted{
		AI:       &fakeAI{err: eris.New("rate limited")},
		Fallback: Extractive{MaxSentences: 1},
	}

	got := h.Summarize(context.Background(), "Fallback sentence. Ignored tail.")
	assert.Equal(t, "Fallback sentence.", got)
}

func TestHosted_FallsBackOnEmptyResponse(t *testing.T) {
	h := Hosted{
		AI:       &fakeAI{resp: &anthropic.MessageResponse{}},
		Fallback: Extractive{MaxSentences: 1},
	}

	got := h.Summarize(context.Background(), "Fallback sentence. Ignored tail.")
	assert.Equal(t, "Fallback sentence.", got)
}

func TestHosted_NilClientFallsBack(t *testing.T) {
	h := Hosted{Fallback: Extractive{MaxSentences: 1}}

	got := h.Summarize(context.Background(), "Fallback sentence. Ignored tail.")
	assert.Equal(t, "Fallback sentence.", got)
}
