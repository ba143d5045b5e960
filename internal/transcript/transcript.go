// Package transcript renders ticket channel history as plain text and
// archives it on disk.
package transcript

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
)

const (
	lineTimeLayout = "2006-01-02 15:04:05"
	fileTimeLayout = "20060102_150405"
)

// Attachment is a file attached to a message.
type Attachment struct {
	Filename string
	URL      string
}

// Message is one channel message as the transcript sees it.
type Message struct {
	ID          domain.Snowflake
	AuthorName  string
	AuthorID    domain.Snowflake
	Content     string
	Timestamp   time.Time
	Attachments []Attachment
}

// Render formats messages oldest first under a header naming the channel.
func Render(channelName string, channelID domain.Snowflake, messages []Message) string {
	sorted := append([]Message(nil), messages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].ID < sorted[j].ID
	})

	lines := make([]string, 0, len(sorted)+1)
	lines = append(lines, fmt.Sprintf("Ticket transcript for #%s (%s)", channelName, channelID))
	for _, m := range sorted {
		stamp := m.Timestamp.UTC().Format(lineTimeLayout)
		lines = append(lines, fmt.Sprintf("[%s] %s (%s): %s", stamp, m.AuthorName, m.AuthorID, m.Content))
		for _, a := range m.Attachments {
			lines = append(lines, fmt.Sprintf("[%s] Attachment: %s (%s)", stamp, a.Filename, a.URL))
		}
	}
	return strings.Join(lines, "\n")
}

// FileName returns the archive name for a transcript taken at.
func FileName(channelID domain.Snowflake, at time.Time) string {
	return fmt.Sprintf("transcript_%s_%s.txt", channelID, at.UTC().Format(fileTimeLayout))
}

// Archive stores transcripts in a directory.
type Archive struct {
	dir string
}

// NewArchive returns an archive rooted at dir.
func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// Dir returns the archive directory.
func (a *Archive) Dir() string {
	return a.dir
}

// Save writes content atomically and returns the file path.
func (a *Archive) Save(channelID domain.Snowflake, content string, at time.Time) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcripts dir: %w", err)
	}
	path := filepath.Join(a.dir, FileName(channelID, at))
	if err := atomic.WriteFile(path, bytes.NewReader([]byte(content))); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}
