package api

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// maxAttachmentSize caps a group message attachment at 10 MiB.
const maxAttachmentSize = 10 << 20

type groupMessageForm struct {
	Content string `json:"content" validate:"required"`
}

// parseGroupMessageBody accepts either a JSON body with a content
// field or a multipart form with content plus an optional attachment
// file. The attachment is stored under the upload directory and
// referenced by URL in the persisted message.
func (s *App) parseGroupMessageBody(r *http.Request) (content string, fileUrl, contentType *string, apiErr *ApiError) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
			return "", nil, nil, NewBadRequestError()
		}

		content = r.FormValue("content")
		if strings.TrimSpace(content) == "" {
			return "", nil, nil, NewBadRequestError()
		}

		file, header, err := r.FormFile("attachment")
		if err != nil {
			if err == http.ErrMissingFile {
				return content, nil, nil, nil
			}
			return "", nil, nil, NewBadRequestError()
		}
		defer file.Close()

		url, mime, err := s.saveAttachment(file, header)
		if err != nil {
			return "", nil, nil, NewInternalServerError(err)
		}

		return content, &url, &mime, nil
	}

	var form groupMessageForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		return "", nil, nil, NewBadRequestError()
	}
	if err := s.validate.Struct(form); err != nil {
		return "", nil, nil, NewBadRequestError()
	}

	return form.Content, nil, nil, nil
}

// saveAttachment writes the uploaded file under the upload directory
// with a generated name and returns its public URL and detected
// content type.
func (s *App) saveAttachment(file multipart.File, header *multipart.FileHeader) (string, string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", "", err
	}

	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentSize))
	if err != nil {
		return "", "", err
	}

	name := uuid.NewString() + filepath.Ext(header.Filename)
	path := filepath.Join(s.uploadDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", err
	}

	return "/uploads/" + name, mimetype.Detect(data).String(), nil
}
