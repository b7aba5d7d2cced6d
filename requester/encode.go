package requester

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"github.com/goliatone/go-cattr/core"
)

// encodeBody serializes a request body as JSON, or as multipart/form-data
// when the body carries binary attachments (screenshots).
func encodeBody(body map[string]any) ([]byte, string, error) {
	if body == nil {
		return nil, "", nil
	}
	if !hasAttachment(body) {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encode json body: %w", err)
		}
		return encoded, "application/json", nil
	}
	return encodeMultipart(body)
}

func hasAttachment(body map[string]any) bool {
	for _, value := range body {
		switch value.(type) {
		case core.Attachment, *core.Attachment:
			return true
		}
	}
	return false
}

func encodeMultipart(body map[string]any) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := body[key]
		switch typed := value.(type) {
		case core.Attachment:
			if err := writeAttachment(writer, key, typed); err != nil {
				return nil, "", err
			}
		case *core.Attachment:
			if typed == nil {
				continue
			}
			if err := writeAttachment(writer, key, *typed); err != nil {
				return nil, "", err
			}
		case string:
			if err := writer.WriteField(key, typed); err != nil {
				return nil, "", fmt.Errorf("write form field %q: %w", key, err)
			}
		case nil:
			continue
		default:
			encoded, err := json.Marshal(typed)
			if err != nil {
				return nil, "", fmt.Errorf("encode form field %q: %w", key, err)
			}
			fieldValue := string(encoded)
			// Scalars go over the wire bare, not JSON-quoted.
			fieldValue = strings.TrimPrefix(strings.TrimSuffix(fieldValue, `"`), `"`)
			if err := writer.WriteField(key, fieldValue); err != nil {
				return nil, "", fmt.Errorf("write form field %q: %w", key, err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func writeAttachment(writer *multipart.Writer, field string, attachment core.Attachment) error {
	filename := strings.TrimSpace(attachment.Filename)
	if filename == "" {
		filename = field
	}
	contentType := strings.TrimSpace(attachment.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create attachment part %q: %w", field, err)
	}
	if _, err := part.Write(attachment.Data); err != nil {
		return fmt.Errorf("write attachment %q: %w", field, err)
	}
	return nil
}
