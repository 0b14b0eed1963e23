package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/msx/internal/authors"
	"github.com/desertthunder/msx/internal/display"
	"github.com/desertthunder/msx/internal/server"
	"github.com/desertthunder/msx/internal/shared"
	"github.com/desertthunder/msx/internal/upload"
	"github.com/urfave/cli/v3"
)

// Submit uploads one manuscript, printing a line per progress event.
func (r *Runner) Submit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: manuscript file path is required", shared.ErrMissingArgument)
	}

	pairs, err := authors.Normalize(cmd.StringSlice("author"), cmd.StringSlice("affiliation"))
	if err != nil {
		return err
	}

	surface := display.NewWriter(r.output, map[string]string{upload.FilenameTarget: "File"})

	file, err := upload.OpenFile(path)
	if err != nil {
		upload.ShowSelection(surface, nil)
		return err
	}
	upload.ShowSelection(surface, file)

	r.writePlain("Authors: %s\n", authors.JoinNames(pairs))
	r.writePlain("Affiliations: %s\n", authors.JoinAffiliations(pairs))

	session, err := upload.New(file, upload.Options{
		Client:     r.client(cmd.String("endpoint")),
		Path:       r.config.Upload.Path,
		Timeout:    r.config.Upload.Timeout(),
		Surface:    surface,
		Logger:     r.logger,
		ProgressHz: r.config.Upload.ProgressHz,
		Fields:     submissionFields(cmd, pairs),
	})
	if err != nil {
		return err
	}

	if err := session.Run(ctx); err != nil {
		if resp := session.Response(); resp != nil && len(resp.Body) > 0 {
			r.logger.Error("server rejected upload", "status", resp.StatusCode, "body", strings.TrimSpace(string(resp.Body)))
		}
		return err
	}

	resp := session.Response()
	if cmd.Bool("json") {
		if resp.IsJSON {
			return r.writeJSON(resp.JSONData, true)
		}
		return r.writeJSON(map[string]any{"status": resp.StatusCode}, true)
	}

	var result server.UploadResult
	if resp.IsJSON && json.Unmarshal(resp.Body, &result) == nil && result.ID != "" {
		return r.writePlainln("✓ Uploaded %s as submission %s", result.Filename, result.ID)
	}
	return r.writePlainln("✓ Uploaded %s (HTTP %d)", file.Name, resp.StatusCode)
}

// submissionFields collects the optional form fields sent after the file part.
func submissionFields(cmd *cli.Command, pairs []authors.Pair) map[string][]string {
	fields := map[string][]string{}
	for _, p := range pairs {
		fields[server.AuthorsField] = append(fields[server.AuthorsField], p.Name)
		fields[server.AffiliationsField] = append(fields[server.AffiliationsField], p.Affiliation)
	}

	for flag, field := range map[string]string{
		"title":        server.TitleField,
		"article-type": server.ArticleTypeField,
		"keywords":     server.KeywordsField,
		"email":        server.EmailField,
		"date":         server.SubmittedDateField,
	} {
		if v := strings.TrimSpace(cmd.String(flag)); v != "" {
			fields[field] = []string{v}
		}
	}
	return fields
}
