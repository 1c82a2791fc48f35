package answer

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kendra"
	"github.com/go-logr/logr"

	"github.com/lexkendra/lexkendra/internal/statestore"
)

// Intent names dispatched by the default handler table.
const (
	SearchIntent   = "Kendra_Search_Intent"
	FallbackIntent = "Fallback"
)

// FallbackCountAttribute counts consecutive fallback turns in the session.
const FallbackCountAttribute = "fallbackCount"

const (
	dialogClose       = "Close"
	fulfilled         = "Fulfilled"
	customPayloadType = "CustomPayload"
)

// FulfillmentRequest is a Lex V1 code hook event. KendraResponse is set
// when the intent is built on AMAZON.KendraSearchIntent.
type FulfillmentRequest struct {
	events.LexEvent
	KendraResponse *QueryResult `json:"kendraResponse,omitempty"`
}

// Searcher runs Kendra queries.
type Searcher interface {
	Query(ctx context.Context, params *kendra.QueryInput, optFns ...func(*kendra.Options)) (*kendra.QueryOutput, error)
}

// IndexSource resolves the index the fallback intent searches.
type IndexSource func(ctx context.Context) (string, error)

// StaticIndex always resolves to id.
func StaticIndex(id string) IndexSource {
	return func(context.Context) (string, error) {
		return id, nil
	}
}

// StoredIndex reads the index id the provisioner recorded under key.
func StoredIndex(store statestore.Store, key string) IndexSource {
	return func(ctx context.Context) (string, error) {
		return store.Get(ctx, key)
	}
}

// IntentHandler produces the message for one intent. Session attributes may
// be modified in place.
type IntentHandler func(ctx context.Context, req *FulfillmentRequest, session events.SessionAttributes) string

// Handler answers fulfillment requests by intent name.
type Handler struct {
	formatter *Formatter
	searcher  Searcher
	index     IndexSource
	intents   map[string]IntentHandler
}

// NewHandler returns a Handler serving the search and fallback intents.
func NewHandler(formatter *Formatter, searcher Searcher, index IndexSource) *Handler {
	h := &Handler{formatter: formatter, searcher: searcher, index: index}
	h.intents = map[string]IntentHandler{
		SearchIntent:   h.search,
		FallbackIntent: h.fallback,
	}
	return h
}

// Register routes intent to fn, replacing any existing route.
func (h *Handler) Register(intent string, fn IntentHandler) {
	h.intents[intent] = fn
}

// Handle dispatches req to the handler registered for its intent. The
// dialog is always closed as fulfilled.
func (h *Handler) Handle(ctx context.Context, req *FulfillmentRequest) (*events.LexResponse, error) {
	session := req.SessionAttributes
	if session == nil {
		session = events.SessionAttributes{}
	}

	if req.CurrentIntent == nil || req.CurrentIntent.Name == "" {
		return closeDialog(session, msgNoIntent), nil
	}
	intent := req.CurrentIntent.Name
	logger := logr.FromContextOrDiscard(ctx).WithValues("intent", intent, "userId", req.UserID)
	ctx = logr.NewContext(ctx, logger)

	fn, ok := h.intents[intent]
	if !ok {
		logger.Info("No handler for intent")
		return closeDialog(session, notSupported(intent)), nil
	}
	return closeDialog(session, fn(ctx, req, session)), nil
}

// search renders the response Lex obtained from the index for the intent.
func (h *Handler) search(ctx context.Context, req *FulfillmentRequest, session events.SessionAttributes) string {
	session[FallbackCountAttribute] = "0"
	text, ok := h.formatter.Format(ctx, req.KendraResponse)
	if !ok {
		return msgUnderstand
	}
	return text
}

// fallback queries the index with the raw user input.
func (h *Handler) fallback(ctx context.Context, req *FulfillmentRequest, session events.SessionAttributes) string {
	logger := logr.FromContextOrDiscard(ctx)
	count := incrementCounter(session, FallbackCountAttribute)
	logger.V(1).Info("Fallback turn", "count", count)

	if req.InputTranscript == "" {
		return msgUnderstand
	}
	result, err := h.query(ctx, req.InputTranscript)
	if err != nil {
		if errors.Is(err, errNoIndex) {
			return msgNoIndex
		}
		logger.Error(err, "Kendra query failed")
		return msgNoResults
	}
	text, ok := h.formatter.Format(ctx, result)
	if !ok {
		return msgUnderstand
	}
	return text
}

var errNoIndex = errors.New("no Kendra index configured")

// Query searches the configured index for question.
func (h *Handler) Query(ctx context.Context, question string) (*QueryResult, error) {
	return h.query(ctx, question)
}

func (h *Handler) query(ctx context.Context, question string) (*QueryResult, error) {
	if h.index == nil {
		return nil, errNoIndex
	}
	indexID, err := h.index(ctx)
	if errors.Is(err, statestore.ErrNotFound) || (err == nil && indexID == "") {
		return nil, errNoIndex
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve index id: %w", err)
	}

	out, err := h.searcher.Query(ctx, &kendra.QueryInput{
		IndexId:   aws.String(indexID),
		QueryText: aws.String(question),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query index %s: %w", indexID, err)
	}
	return FromQueryOutput(out)
}

// Formatter returns the formatter used to render answers.
func (h *Handler) Formatter() *Formatter {
	return h.formatter
}

func incrementCounter(session events.SessionAttributes, key string) int {
	n, err := strconv.Atoi(session[key])
	if err != nil {
		n = 0
	}
	n++
	session[key] = strconv.Itoa(n)
	return n
}

func closeDialog(session events.SessionAttributes, content string) *events.LexResponse {
	return &events.LexResponse{
		SessionAttributes: session,
		DialogAction: events.LexDialogAction{
			Type:             dialogClose,
			FulfillmentState: fulfilled,
			Message: map[string]string{
				"contentType": customPayloadType,
				"content":     content,
			},
		},
	}
}
