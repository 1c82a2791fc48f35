package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// DefaultLinkExpiry is how long presigned document links stay valid.
const DefaultLinkExpiry = 7 * 24 * time.Hour

const (
	foundPrefix     = "On searching the Enterprise repository, I have found"
	msgNoFAQ        = "Sorry, I could not find an answer in our FAQs."
	msgNoDocument   = `"Sorry, I could not find the answer in our documents."`
	msgNoResults    = `"Sorry, we do not have the answer currently. Please try again later!"`
	msgUnderstand   = "Sorry, I was not able to understand your question. Could you please repeat?"
	msgNoIntent     = "Sorry, I didn't understand. Could you please repeat?"
	msgNotSupported = "The intent %s is not yet supported."
	msgNoIndex      = "Configuration error - the Kendra index to search is not configured."
)

// Presigner issues time-limited download links.
type Presigner interface {
	PresignGetObject(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}

// Formatter renders Kendra results as chat messages.
type Formatter struct {
	presigner Presigner
	bucket    string
	expiry    time.Duration
}

// NewFormatter returns a Formatter linking documents stored in bucket.
// A zero expiry selects DefaultLinkExpiry.
func NewFormatter(presigner Presigner, bucket string, expiry time.Duration) *Formatter {
	if expiry <= 0 {
		expiry = DefaultLinkExpiry
	}
	return &Formatter{presigner: presigner, bucket: bucket, expiry: expiry}
}

// Format renders the first result item. ok is false when there is nothing
// to answer with: no result at all or a result type that is not rendered.
func (f *Formatter) Format(ctx context.Context, result *QueryResult) (text string, ok bool) {
	if result == nil {
		return "", false
	}
	if len(result.ResultItems) == 0 {
		logr.FromContextOrDiscard(ctx).Info("Kendra returned no results")
		return msgNoResults, true
	}

	item := result.ResultItems[0]
	switch item.Type {
	case TypeQuestionAnswer:
		return f.questionAnswer(item), true
	case TypeAnswer:
		return f.answer(ctx, item), true
	case TypeDocument:
		return f.document(ctx, item), true
	default:
		return "", false
	}
}

func (f *Formatter) questionAnswer(item ResultItem) string {
	if item.DocumentExcerpt == nil {
		return msgNoFAQ
	}
	return foundPrefix + ` the following answer in the FAQs--"` + item.DocumentExcerpt.Text + `"`
}

func (f *Formatter) answer(ctx context.Context, item ResultItem) string {
	answer := item.answerText()
	if item.DocumentTitle == nil || answer == nil {
		return msgNoDocument
	}
	link := f.link(ctx, item.DocumentID)

	var b strings.Builder
	if top, ok := answer.topAnswer(); ok {
		b.WriteString(foundPrefix + " the following answer as a top answer--")
		b.WriteString("\nDocument Title: " + item.DocumentTitle.Text)
		b.WriteString(`-- "` + top + `"`)
		b.WriteString("\nHere is a document you could review- " + link + "\n")
		return b.String()
	}
	b.WriteString(foundPrefix + " the following answer in the suggested answers section")
	b.WriteString(" -- " + item.DocumentTitle.Text + ` --- "` + answer.Text + `"`)
	b.WriteString("\n\n Here is a document you could review-" + link + "\n")
	return b.String()
}

func (f *Formatter) document(ctx context.Context, item ResultItem) string {
	link := f.link(ctx, item.DocumentID)

	var b strings.Builder
	b.WriteString(foundPrefix + " the answer in the following document")
	b.WriteString(" -- " + item.DocumentTitle.text())
	b.WriteString("\n--\"" + item.DocumentExcerpt.text() + "\"")
	b.WriteString("--- \n Here is a document you could review-" + link + "\n")
	return b.String()
}

// link presigns the object named by the last path segment of documentID.
// Failures are logged and render as an empty link.
func (f *Formatter) link(ctx context.Context, documentID string) string {
	key := documentKey(documentID)
	if f.presigner == nil || f.bucket == "" || key == "" {
		return ""
	}
	url, err := f.presigner.PresignGetObject(ctx, f.bucket, key, f.expiry)
	if err != nil {
		logr.FromContextOrDiscard(ctx).Error(err, "Failed to presign document link", "bucket", f.bucket, "key", key)
		return ""
	}
	return url
}

func documentKey(documentID string) string {
	return documentID[strings.LastIndex(documentID, "/")+1:]
}

func notSupported(intent string) string {
	return fmt.Sprintf(msgNotSupported, intent)
}
