package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	apierrors "github.com/paperless/paperless-go/client/internal/errors"
	"github.com/paperless/paperless-go/client/internal/job"
	"github.com/paperless/paperless-go/client/internal/types"
)

// ListFiles retrieves file metadata, optionally narrowed by filters.
func ListFiles(ctx context.Context, httpClient *http.Client, baseURL string, params types.SearchParams) ([]types.FileMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := url.Values{}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.Author != "" {
		q.Set("author", params.Author)
	}
	if params.FileType != "" {
		q.Set("fileType", params.FileType)
	}
	if params.SearchField != "" {
		q.Set("searchField", params.SearchField)
	}
	u := baseURL + "/v1/files"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, netErr("list files", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classify("list files", resp)
	}

	var files []types.FileMetadata
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, err
	}
	return files, nil
}

// GetFile retrieves one document record by id. A missing document surfaces
// as a not-found error.
func GetFile(ctx context.Context, httpClient *http.Client, baseURL string, id int64) (*types.FileMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateFileID(id); err != nil {
		return nil, apierrors.NewValidationError(err)
	}
	u := fmt.Sprintf("%s/v1/files/%d", baseURL, id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, netErr("get file", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classify("get file", resp)
	}

	var meta types.FileMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// UploadFile creates a new document from a multipart (file, author) payload.
// A duplicate (filename, author) pair surfaces as a conflict error.
func UploadFile(ctx context.Context, httpClient *http.Client, baseURL string, req types.UploadRequest) (*types.FileMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateFilename(req.Filename); err != nil {
		return nil, apierrors.NewValidationError(err)
	}
	if err := types.ValidateAuthor(req.Author); err != nil {
		return nil, apierrors.NewValidationError(err)
	}

	body, contentType, err := multipartBody(req.Filename, req.Content, req.Author)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/files", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, netErr("upload file", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, classify("upload file", resp)
	}

	var meta types.FileMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// UpdateFile patches an existing document with a new file, a new author, or
// both. The server response is authoritative for every derived field.
func UpdateFile(ctx context.Context, httpClient *http.Client, baseURL string, id int64, req types.UpdateRequest) (*types.FileMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateFileID(id); err != nil {
		return nil, apierrors.NewValidationError(err)
	}
	if !req.HasFile() && req.Author == "" {
		return nil, apierrors.NewValidationError(fmt.Errorf("update requires a file or an author"))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if req.HasFile() {
		part, err := mw.CreateFormFile("file", filepath.Base(req.Filename))
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, req.Content); err != nil {
			return nil, err
		}
	}
	if req.Author != "" {
		if err := mw.WriteField("author", req.Author); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v1/files/%d", baseURL, id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, netErr("update file", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classify("update file", resp)
	}

	var meta types.FileMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// DeleteFile removes a document synchronously. Backend returns 204.
func DeleteFile(ctx context.Context, httpClient *http.Client, baseURL string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateFileID(id); err != nil {
		return apierrors.NewValidationError(err)
	}
	u := fmt.Sprintf("%s/v1/files/%d", baseURL, id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return netErr("delete file", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return classify("delete file", resp)
	}
	return nil
}

// DeleteFileAsync submits the delete through the sharded executor so writes
// touching one document stay in submission order. Fire-and-forget: failures
// are reported through the executor's error handler, not to the caller.
func DeleteFileAsync(ctx context.Context, exec types.Executor, httpClient *http.Client, baseURL string, id int64) (*types.EnqueueAck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateFileID(id); err != nil {
		return nil, apierrors.NewValidationError(err)
	}

	key := job.DocumentKey(id)
	deleteJob := job.New(func(jobCtx context.Context) error {
		return DeleteFile(jobCtx, httpClient, baseURL, id)
	})
	if err := exec.Submit(ctx, key, deleteJob); err != nil {
		return nil, err
	}
	return &types.EnqueueAck{Key: key, Status: "enqueued"}, nil
}

// DownloadFile streams a document's stored content. The caller must close
// the returned reader. The second return value is the filename suggested by
// the backend, when present.
func DownloadFile(ctx context.Context, httpClient *http.Client, baseURL string, id int64) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if err := types.ValidateFileID(id); err != nil {
		return nil, "", apierrors.NewValidationError(err)
	}
	u := fmt.Sprintf("%s/v1/files/%d/download", baseURL, id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, "", netErr("download file", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, "", classify("download file", resp)
	}
	filename := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			filename = params["filename"]
		}
	}
	return resp.Body, filename, nil
}

// multipartBody builds the (file, author) form used by upload.
func multipartBody(filename string, content io.Reader, author string) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, "", err
	}
	if content != nil {
		if _, err := io.Copy(part, content); err != nil {
			return nil, "", err
		}
	}
	if err := mw.WriteField("author", author); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
