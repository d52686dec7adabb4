package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"casedesk/internal/model"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

type UploadResult struct {
	Message  string `json:"message"`
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
}

type FileText struct {
	FileName string `json:"fileName"`
	Text     string `json:"text"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) ListMessages(ctx context.Context) ([]model.ChatMessage, error) {
	var out struct {
		Messages []model.ChatMessage `json:"messages"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat", nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, sender, content string) (*model.ChatMessage, error) {
	req := map[string]string{"sender": sender, "content": content}
	var out struct {
		Data model.ChatMessage `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/chat/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListFiles(ctx context.Context) ([]model.UploadedFile, error) {
	var out struct {
		Files []model.UploadedFile `json:"files"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/files", nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// UploadFile streams content as the multipart field "file".
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader) (*UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err == nil {
			_, err = io.Copy(part, content)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files/upload", pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResult
	if err := c.do(req, &out); err != nil {
		_ = pr.CloseWithError(err)
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteFile(ctx context.Context, name string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(name), nil, nil)
}

func (c *Client) FileText(ctx context.Context, name string) (*FileText, error) {
	var out FileText
	if err := c.doJSON(ctx, http.MethodGet, "/api/files/"+url.PathEscape(name)+"/text", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request failed: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(raw, &body) == nil && body.Message != "" {
			apiErr.Message = body.Message
			apiErr.Detail = body.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}
