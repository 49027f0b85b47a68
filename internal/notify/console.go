package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ConsoleDestination prints each message as a report block.
type ConsoleDestination struct {
	mu    sync.Mutex
	w     io.Writer
	count int
}

func NewConsoleDestination(w io.Writer) *ConsoleDestination {
	return &ConsoleDestination{w: w}
}

func (c *ConsoleDestination) Name() string { return "console" }

func (c *ConsoleDestination) Send(_ context.Context, msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count++
	e := msg.Entry

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n--- MATCH #%d ---\n", c.count))
	sb.WriteString(fmt.Sprintf("Company: %s (%s)\n", e.CompanyName, e.StockCode))
	sb.WriteString(fmt.Sprintf("Title:   %s\n", e.Title))
	sb.WriteString(fmt.Sprintf("Time:    %s\n", e.Time))
	sb.WriteString(fmt.Sprintf("Page:    %s\n", e.PageURL))
	if e.FileURL != "" {
		sb.WriteString(fmt.Sprintf("File:    %s\n", e.FileURL))
	}
	if msg.Attachment != nil {
		sb.WriteString(fmt.Sprintf("Attachment: %s (%d bytes)\n", msg.Attachment.Name, len(msg.Attachment.Data)))
	}
	if len(msg.Summary) > 0 {
		sb.WriteString("Summary:\n")
		for _, s := range msg.Summary {
			sb.WriteString(fmt.Sprintf("\t- %s\n", s))
		}
	}

	_, err := io.WriteString(c.w, sb.String())
	return err
}
