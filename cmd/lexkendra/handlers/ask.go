package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
)

var (
	askColorBlue  = lipgloss.Color("#3b82f6")
	askColorDim   = lipgloss.Color("#6b7280")
	askColorWhite = lipgloss.Color("#f9fafb")
)

var (
	askQuestionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(askColorWhite)

	askLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(askColorBlue)

	askDimStyle = lipgloss.NewStyle().
			Foreground(askColorDim)

	askAnswerStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Width(88)
)

// isInteractiveTTY reports whether stdout is a terminal - can be replaced in tests.
var isInteractiveTTY = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Ask queries the index with question and prints the rendered answer.
// An empty indexID falls back to the configured index.
func Ask(ctx context.Context, configPath, question, indexID string, out io.Writer) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("question must not be empty")
	}

	rt, err := newRuntime(ctx, configPath)
	if err != nil {
		return err
	}
	ctx = logr.NewContext(ctx, rt.logger)

	h := rt.answerHandler(rt.store(), indexID)
	result, err := h.Query(ctx, question)
	if err != nil {
		return err
	}
	text, ok := h.Formatter().Format(ctx, result)
	if !ok {
		text = "No answer found."
	}

	if isInteractiveTTY() {
		_, err = fmt.Fprint(out, renderAnswer(question, text))
		return err
	}
	_, err = fmt.Fprintln(out, text)
	return err
}

func renderAnswer(question, text string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(askLabelStyle.Render("  Q: "))
	b.WriteString(askQuestionStyle.Render(question))
	b.WriteString("\n")
	b.WriteString(askDimStyle.Render("  " + strings.Repeat("─", 30)))
	b.WriteString("\n")
	b.WriteString(askAnswerStyle.Render(strings.TrimSpace(text)))
	b.WriteString("\n\n")
	return b.String()
}
