package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
)

// Multipart form field names.
const (
	FieldFile     = "file"
	FieldRubric   = "rubric"
	FieldRubricID = "rubric_id"
)

// StructurePDF splits an uploaded essay into sections.
func (c *Client) StructurePDF(ctx context.Context, essay Upload) ([]Section, error) {
	var sections []Section
	if err := c.postMultipart(ctx, PathStructurePDF, essay, nil, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// AnalyzePDF scores an uploaded essay against a list of criteria.
func (c *Client) AnalyzePDF(ctx context.Context, essay Upload, criteria []string) ([]Match, error) {
	if criteria == nil {
		criteria = []string{}
	}
	rubric, err := json.Marshal(criteria)
	if err != nil {
		return nil, fmt.Errorf("%s: encode rubric: %w", PathAnalyzePDF, err)
	}
	var wire []wireMatch
	if err := c.postMultipart(ctx, PathAnalyzePDF, essay, map[string]string{FieldRubric: string(rubric)}, &wire); err != nil {
		return nil, err
	}
	return normalizeMatches(wire), nil
}

// RegisterRubricPDF stores an uploaded rubric on the service and returns its id.
func (c *Client) RegisterRubricPDF(ctx context.Context, rubricFile Upload) (string, error) {
	var resp parseRubricResponse
	if err := c.postMultipart(ctx, PathParseRubricPDF, rubricFile, nil, &resp); err != nil {
		return "", err
	}
	return rubricIDFrom(PathParseRubricPDF, resp)
}

// ScoreEssayPDF scores an uploaded essay against a registered rubric.
func (c *Client) ScoreEssayPDF(ctx context.Context, essay Upload, rubricID string) ([]Match, error) {
	var wire []wireMatch
	if err := c.postMultipart(ctx, PathScoreEssayPDF, essay, map[string]string{FieldRubricID: rubricID}, &wire); err != nil {
		return nil, err
	}
	return normalizeMatches(wire), nil
}

func (c *Client) postMultipart(ctx context.Context, path string, upload Upload, fields map[string]string, out any) error {
	payload, contentType, err := encodeMultipart(upload, fields)
	if err != nil {
		return fmt.Errorf("%s: encode form: %w", path, err)
	}
	return c.send(ctx, path, contentType, payload, out)
}

func encodeMultipart(upload Upload, fields map[string]string) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	name := upload.Name
	if name == "" {
		name = "upload.pdf"
	}
	part, err := writer.CreateFormFile(FieldFile, name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", err
	}
	for _, key := range []string{FieldRubric, FieldRubricID} {
		value, ok := fields[key]
		if !ok {
			continue
		}
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
