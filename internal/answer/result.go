package answer

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/kendra"
)

// Kendra result item types.
const (
	TypeQuestionAnswer = "QUESTION_ANSWER"
	TypeAnswer         = "ANSWER"
	TypeDocument       = "DOCUMENT"
)

// QueryResult is the subset of a Kendra query response used for answers.
// Its JSON form matches the kendraResponse field Lex passes to fulfillment.
type QueryResult struct {
	QueryID     string       `json:"queryId,omitempty"`
	ResultItems []ResultItem `json:"resultItems"`
}

// ResultItem is one Kendra result.
type ResultItem struct {
	ID                   string                `json:"id,omitempty"`
	Type                 string                `json:"type"`
	DocumentID           string                `json:"documentId,omitempty"`
	DocumentURI          string                `json:"documentURI,omitempty"`
	DocumentTitle        *TextWithHighlights   `json:"documentTitle,omitempty"`
	DocumentExcerpt      *TextWithHighlights   `json:"documentExcerpt,omitempty"`
	AdditionalAttributes []AdditionalAttribute `json:"additionalAttributes,omitempty"`
}

// TextWithHighlights is text with highlighted spans.
type TextWithHighlights struct {
	Text       string      `json:"text"`
	Highlights []Highlight `json:"highlights,omitempty"`
}

// Highlight marks a span of a TextWithHighlights by byte offsets.
type Highlight struct {
	BeginOffset int  `json:"beginOffset"`
	EndOffset   int  `json:"endOffset"`
	TopAnswer   bool `json:"topAnswer"`
}

// AdditionalAttribute carries extra result content such as the answer text.
type AdditionalAttribute struct {
	Key       string         `json:"key"`
	ValueType string         `json:"valueType,omitempty"`
	Value     AttributeValue `json:"value"`
}

// AttributeValue holds the value of an AdditionalAttribute.
type AttributeValue struct {
	TextWithHighlightsValue *TextWithHighlights `json:"textWithHighlightsValue,omitempty"`
}

// FromQueryOutput converts an SDK query response. Field names of the SDK
// types match the Lex payload case-insensitively.
func FromQueryOutput(out *kendra.QueryOutput) (*QueryResult, error) {
	if out == nil {
		return nil, nil
	}
	raw, err := json.Marshal(struct {
		QueryID     *string
		ResultItems any
	}{out.QueryId, out.ResultItems})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query response: %w", err)
	}
	var result QueryResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}
	return &result, nil
}

// answerText returns the text of the first text-with-highlights attribute.
func (r ResultItem) answerText() *TextWithHighlights {
	for _, attr := range r.AdditionalAttributes {
		if attr.Value.TextWithHighlightsValue != nil {
			return attr.Value.TextWithHighlightsValue
		}
	}
	return nil
}

// topAnswer returns the span of the first highlight when Kendra marked it as
// the top answer.
func (t *TextWithHighlights) topAnswer() (string, bool) {
	if t == nil || len(t.Highlights) == 0 || !t.Highlights[0].TopAnswer {
		return "", false
	}
	h := t.Highlights[0]
	if h.BeginOffset < 0 || h.EndOffset > len(t.Text) || h.BeginOffset > h.EndOffset {
		return "", false
	}
	return t.Text[h.BeginOffset:h.EndOffset], true
}

func (t *TextWithHighlights) text() string {
	if t == nil {
		return ""
	}
	return t.Text
}
