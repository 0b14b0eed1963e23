// package formatter renders submission records for export
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/msx/internal/authors"
	"github.com/desertthunder/msx/internal/models"
	"github.com/desertthunder/msx/internal/shared"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatYAML     = "yaml"
)

// Formats lists every accepted format name.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText, FormatYAML}

// SubmissionView is the exported shape of a [models.Submission].
type SubmissionView struct {
	ID          string          `json:"id" yaml:"id"`
	Sequence    int             `json:"sequence" yaml:"sequence"`
	Filename    string          `json:"filename" yaml:"filename"`
	StoredPath  string          `json:"stored_path" yaml:"stored_path"`
	ContentType string          `json:"content_type" yaml:"content_type"`
	Size        int64           `json:"size" yaml:"size"`
	Status      string          `json:"status" yaml:"status"`
	Authors     []authors.Pair  `json:"authors" yaml:"authors"`
	Metadata    models.Metadata `json:"metadata" yaml:"metadata"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
}

// View converts a submission to its exported shape.
func View(s *models.Submission) SubmissionView {
	pairs := s.Authors
	if pairs == nil {
		pairs = []authors.Pair{}
	}
	return SubmissionView{
		ID:          s.ID(),
		Sequence:    s.Sequence(),
		Filename:    s.Filename,
		StoredPath:  s.StoredPath,
		ContentType: s.ContentType,
		Size:        s.Size,
		Status:      string(s.Status),
		Authors:     pairs,
		Metadata:    s.Metadata,
		CreatedAt:   s.CreatedAt(),
	}
}

// ExportToJSON renders submissions as an indented JSON array
func ExportToJSON(subs []*models.Submission) ([]byte, error) {
	views := make([]SubmissionView, 0, len(subs))
	for _, s := range subs {
		views = append(views, View(s))
	}

	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submissions: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV renders submissions with columns: ID, Filename, Size, Status, Authors, Affiliations, Title, Created
func ExportToCSV(subs []*models.Submission) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Filename", "Size", "Status", "Authors", "Affiliations", "Title", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range subs {
		record := []string{
			s.ID(),
			s.Filename,
			strconv.FormatInt(s.Size, 10),
			string(s.Status),
			authors.JoinNames(s.Authors),
			authors.JoinAffiliations(s.Authors),
			s.Metadata.Title,
			s.CreatedAt().UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders one section per submission
func ExportToMarkdown(subs []*models.Submission) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Submissions\n\n")
	buf.WriteString(fmt.Sprintf("**Total**: %d\n\n", len(subs)))

	for _, s := range subs {
		title := s.Metadata.Title
		if title == "" {
			title = s.Filename
		}
		buf.WriteString(fmt.Sprintf("## %d. %s\n\n", s.Sequence(), title))
		buf.WriteString(fmt.Sprintf("- **ID**: `%s`\n", s.ID()))
		buf.WriteString(fmt.Sprintf("- **File**: %s (%s)\n", s.Filename, FormatSize(s.Size)))
		buf.WriteString(fmt.Sprintf("- **Status**: %s\n", s.Status))
		if s.Metadata.ArticleType != "" {
			buf.WriteString(fmt.Sprintf("- **Type**: %s\n", s.Metadata.ArticleType))
		}
		if s.Metadata.Keywords != "" {
			buf.WriteString(fmt.Sprintf("- **Keywords**: %s\n", s.Metadata.Keywords))
		}

		if len(s.Authors) > 0 {
			buf.WriteString("\n| # | Author | Affiliation |\n|---|---|---|\n")
			for i, p := range s.Authors {
				buf.WriteString(fmt.Sprintf("| %d | %s | %s |\n", i+1, escapeCell(p.Name), escapeCell(p.Affiliation)))
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders one line per submission
func ExportToText(subs []*models.Submission) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Submissions: %d\n\n", len(subs)))
	for _, s := range subs {
		line := fmt.Sprintf("%d. %s  %s  %s  %s", s.Sequence(), s.ID(), s.Filename, FormatSize(s.Size), s.Status)
		if names := authors.JoinNames(s.Authors); names != "" {
			line += "  " + names
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToYAML renders submissions as a YAML sequence
func ExportToYAML(subs []*models.Submission) ([]byte, error) {
	views := make([]SubmissionView, 0, len(subs))
	for _, s := range subs {
		views = append(views, View(s))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(views); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// Export dispatches to the exporter for format.
func Export(format string, subs []*models.Submission) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return ExportToJSON(subs)
	case FormatCSV:
		return ExportToCSV(subs)
	case FormatMarkdown, "md":
		return ExportToMarkdown(subs)
	case FormatYAML, "yml":
		return ExportToYAML(subs)
	case FormatText, "txt", "":
		return ExportToText(subs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidFlag, format, strings.Join(Formats, ", "))
	}
}

// Write renders subs in format to w.
func Write(w io.Writer, format string, subs []*models.Submission) error {
	data, err := Export(format, subs)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile renders subs in format to the file at path.
func WriteFile(path, format string, subs []*models.Submission) error {
	data, err := Export(format, subs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// FormatSize renders a byte count with a binary unit.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
