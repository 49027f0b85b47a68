/*
Package notify delivers matched disclosures to Discord channels, email and
the console.
*/
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/CRaLFa/nikkei-bot/internal/attachment"
	"github.com/CRaLFa/nikkei-bot/internal/types"

	"go.uber.org/zap"
)

// Message is one notification for a single entry.
type Message struct {
	Entry      types.Entry
	Text       string
	Summary    []string
	Attachment *attachment.File
}

// Content returns the text with any summary bullets appended.
func (m *Message) Content() string {
	if len(m.Summary) == 0 {
		return m.Text
	}
	var sb strings.Builder
	sb.WriteString(m.Text)
	sb.WriteString("\n")
	for _, s := range m.Summary {
		sb.WriteString(fmt.Sprintf("\n• %s", s))
	}
	return sb.String()
}

// Destination sends a message somewhere. Implementations must not retain
// the message after Send returns.
type Destination interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
}

type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (*attachment.File, error)
}

type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, entry types.Entry, text string) ([]string, error)
}

// FormatEntry renders the one-line headline followed by the best link.
func FormatEntry(e types.Entry) string {
	link := e.FileURL
	if link == "" {
		link = e.PageURL
	}
	return fmt.Sprintf("【%s (%s)】%s (%s)\n%s", e.CompanyName, e.StockCode, e.Title, e.Time, link)
}

// Pipeline fans each entry out to every destination.
type Pipeline struct {
	destinations []Destination
	docs         DocumentFetcher
	extractor    TextExtractor
	summarizer   Summarizer
	logger       *zap.Logger
}

func NewPipeline(destinations []Destination, docs DocumentFetcher, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		destinations: destinations,
		docs:         docs,
		logger:       logger,
	}
}

// WithSummarizer enables summaries of PDF attachments.
func (p *Pipeline) WithSummarizer(s Summarizer, x TextExtractor) *Pipeline {
	p.summarizer = s
	p.extractor = x
	return p
}

// Stats counts what one Deliver call did.
type Stats struct {
	Entries  int
	Sent     int
	Failures int
}

// Deliver sends every entry in order. Failures are logged and never stop
// the remaining destinations or entries.
func (p *Pipeline) Deliver(ctx context.Context, d types.Disclosure) Stats {
	var stats Stats
	for _, entry := range d.Entries {
		stats.Entries++
		msg := p.buildMessage(ctx, entry)

		for _, dest := range p.destinations {
			if err := dest.Send(ctx, msg); err != nil {
				stats.Failures++
				p.logger.Warn("delivery failed",
					zap.String("destination", dest.Name()),
					zap.String("title", entry.Title),
					zap.Error(err))
				continue
			}
			stats.Sent++
		}
	}
	return stats
}

func (p *Pipeline) buildMessage(ctx context.Context, entry types.Entry) *Message {
	msg := &Message{Entry: entry, Text: FormatEntry(entry)}

	if entry.FileURL != "" && p.docs != nil {
		file, err := p.docs.Fetch(ctx, entry.FileURL)
		if err != nil {
			p.logger.Warn("failed to fetch attachment", zap.String("url", entry.FileURL), zap.Error(err))
		}
		msg.Attachment = file
	}

	if p.summarizer != nil && msg.Attachment != nil && msg.Attachment.IsPDF() {
		msg.Summary = p.summarize(ctx, entry, msg.Attachment)
	}
	return msg
}

func (p *Pipeline) summarize(ctx context.Context, entry types.Entry, file *attachment.File) []string {
	text, err := p.extractor.ExtractText(ctx, file.Source)
	if err != nil {
		p.logger.Warn("failed to extract document text", zap.String("url", entry.FileURL), zap.Error(err))
		return nil
	}
	summary, err := p.summarizer.Summarize(ctx, entry, text)
	if err != nil {
		p.logger.Warn("AI summary failed", zap.String("url", entry.FileURL), zap.Error(err))
		return nil
	}
	return summary
}
