package command

import (
	"fmt"
	"strings"

	"github.com/sandevgo/searchbot/internal/service/session"
	"github.com/sandevgo/searchbot/pkg/conv"
)

// ResponseFormatter renders command replies as markdown; transports convert
// it to their own markup.
type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

func (f *ResponseFormatter) Info(title string) string {
	return fmt.Sprintf("⚙️ **%s**\n", title)
}

func (f *ResponseFormatter) Success(message string) string {
	return fmt.Sprintf("✅ **%s**\n", message)
}

func (f *ResponseFormatter) Label(label, value string) string {
	return fmt.Sprintf("**%s**  ›  `%s`\n", label, value)
}

func (f *ResponseFormatter) List(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("› ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (f *ResponseFormatter) Tip(text string) string {
	return fmt.Sprintf("**Tip**: %s\n", text)
}

// Turn renders one conversation turn, shortened to maxChars.
func (f *ResponseFormatter) Turn(t session.Turn, maxChars int) string {
	text := strings.Join(strings.Fields(t.Text), " ")
	return fmt.Sprintf("**%s**: %s", t.Role, conv.Truncate(text, maxChars))
}

func (f *ResponseFormatter) Combine(sections ...string) string {
	return strings.Join(sections, "\n")
}

// oneLine collapses whitespace and caps a description for listings.
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) > max {
		return conv.Truncate(s, max-3) + "..."
	}
	return s
}
