package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func multipartBody(t *testing.T, content string, filename string, fileData []byte) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if err := w.WriteField("content", content); err != nil {
		t.Fatalf("failed to write content field: %v", err)
	}
	if filename != "" {
		fw, err := w.CreateFormFile("attachment", filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := fw.Write(fileData); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	return buf, w.FormDataContentType()
}

func TestParseGroupMessageBody_Json(t *testing.T) {
	ta := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/groups/5/messages",
		strings.NewReader(`{"content":"hello"}`))
	req.Header.Set("Content-Type", "application/json")

	content, fileUrl, contentType, apiErr := ta.app.parseGroupMessageBody(req)
	assert.Nil(t, apiErr)
	assert.Equal(t, "hello", content)
	assert.Nil(t, fileUrl)
	assert.Nil(t, contentType)
}

func TestParseGroupMessageBody_JsonMissingContent(t *testing.T) {
	ta := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/groups/5/messages",
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	_, _, _, apiErr := ta.app.parseGroupMessageBody(req)
	if assert.NotNil(t, apiErr) {
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	}
}

func TestParseGroupMessageBody_MultipartWithAttachment(t *testing.T) {
	ta := newTestApp(t)
	ta.app.uploadDir = t.TempDir()

	pngHeader := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	body, formContentType := multipartBody(t, "look at this", "pic.png", pngHeader)

	req := httptest.NewRequest(http.MethodPost, "/api/groups/5/messages", body)
	req.Header.Set("Content-Type", formContentType)

	content, fileUrl, contentType, apiErr := ta.app.parseGroupMessageBody(req)
	assert.Nil(t, apiErr)
	assert.Equal(t, "look at this", content)

	if !assert.NotNil(t, fileUrl) || !assert.NotNil(t, contentType) {
		return
	}
	assert.True(t, strings.HasPrefix(*fileUrl, "/uploads/"), "expected a public upload url, got %q", *fileUrl)
	assert.Equal(t, ".png", filepath.Ext(*fileUrl))
	assert.Equal(t, "image/png", *contentType)

	// the attachment was written under the upload dir
	stored := filepath.Join(ta.app.uploadDir, filepath.Base(*fileUrl))
	data, err := os.ReadFile(stored)
	assert.NoError(t, err, "expected attachment on disk")
	assert.Equal(t, pngHeader, data)
}

func TestParseGroupMessageBody_MultipartWithoutAttachment(t *testing.T) {
	ta := newTestApp(t)

	body, formContentType := multipartBody(t, "no file here", "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/groups/5/messages", body)
	req.Header.Set("Content-Type", formContentType)

	content, fileUrl, contentType, apiErr := ta.app.parseGroupMessageBody(req)
	assert.Nil(t, apiErr)
	assert.Equal(t, "no file here", content)
	assert.Nil(t, fileUrl)
	assert.Nil(t, contentType)
}

func TestParseGroupMessageBody_MultipartEmptyContent(t *testing.T) {
	ta := newTestApp(t)

	body, formContentType := multipartBody(t, "  ", "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/groups/5/messages", body)
	req.Header.Set("Content-Type", formContentType)

	_, _, _, apiErr := ta.app.parseGroupMessageBody(req)
	if assert.NotNil(t, apiErr) {
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	}
}
