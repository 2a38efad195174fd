package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
)

// FilePayload is sent as multipart/form-data under the "file" field.
type FilePayload struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// encodePayload turns a caller payload into the queueable form.
func encodePayload(payload any) (json.RawMessage, string, error) {
	switch p := payload.(type) {
	case nil:
		return nil, models.EncodingJSON, nil
	case json.RawMessage:
		return p, models.EncodingJSON, nil
	case FilePayload:
		raw, err := json.Marshal(p)
		return raw, models.EncodingMultipart, err
	case *FilePayload:
		raw, err := json.Marshal(p)
		return raw, models.EncodingMultipart, err
	default:
		raw, err := json.Marshal(p)
		return raw, models.EncodingJSON, err
	}
}

// requestBody builds the wire body and its content type.
func requestBody(data json.RawMessage, encoding string) (io.Reader, string, error) {
	if encoding == models.EncodingMultipart {
		var fp FilePayload
		if err := json.Unmarshal(data, &fp); err != nil {
			return nil, "", fmt.Errorf("decode file payload: %w", err)
		}
		return multipartBody(fp)
	}
	if len(data) == 0 {
		return nil, "", nil
	}
	return bytes.NewReader(data), "application/json", nil
}

func multipartBody(fp FilePayload) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fp.FileName))
	ct := fp.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(fp.Data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// placeholder builds the body returned for a queued mutation: the payload
// fields plus the pending markers.
func placeholder(m *models.QueuedMutation) (json.RawMessage, error) {
	fields := map[string]any{}
	if m.Encoding == models.EncodingMultipart {
		var fp FilePayload
		if err := json.Unmarshal(m.Data, &fp); err == nil {
			fields["fileName"] = fp.FileName
			fields["contentType"] = fp.ContentType
		}
	} else if len(m.Data) > 0 {
		// non-object payloads simply contribute no fields
		_ = json.Unmarshal(m.Data, &fields)
	}

	ts := m.EnqueuedAt().UTC().Format("2006-01-02T15:04:05.000Z07:00")
	fields["id"] = -m.Timestamp
	fields["pendingId"] = m.ID
	fields["status"] = "pending"
	fields["message"] = "Queued for sync"
	fields["isOffline"] = true
	fields["createdAt"] = ts
	fields["updatedAt"] = ts
	return json.Marshal(fields)
}
