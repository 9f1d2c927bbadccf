// Package delegate submits a whole batch of images to the remote
// conversion endpoint as one multipart request and returns the archive
// it produces.
package delegate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/pixelbatch/convert-pipeline/pkg/convert"
)

// File is one image in a batch payload. Batch conversion always sends
// the original source bytes: local edits such as rotation are not
// reflected in the remote output.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Archive is the opaque blob returned by a successful batch call.
type Archive struct {
	Data        []byte
	ContentType string
}

// Client talks to the remote batch-conversion endpoint.
type Client struct {
	endpoint   string
	authToken  string
	httpClient *http.Client
}

// New creates a client for the given endpoint URL. authToken, when
// non-empty, is sent as a bearer token.
func New(endpoint, authToken string) *Client {
	return &Client{
		endpoint:   endpoint,
		authToken:  authToken,
		httpClient: &http.Client{},
	}
}

// ConvertBatch packages every file plus the shared quality and format
// into a single multipart request. On a non-success status it returns
// convert.ErrBatchConversion without assuming anything about the
// response body; on success the body is returned as an opaque archive.
// No local state is touched, so a failed call is always safe to retry.
func (c *Client) ConvertBatch(ctx context.Context, files []File, opts convert.Options) (*Archive, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files in batch", convert.ErrValidation)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		hdr.Set("Content-Type", f.MIME)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			return nil, fmt.Errorf("failed to build payload: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to build payload: %w", err)
		}
	}
	if err := mw.WriteField("quality", strconv.Itoa(opts.Quality)); err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}
	if err := mw.WriteField("format", string(opts.Format)); err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", convert.ErrBatchConversion, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: remote returned status %d", convert.ErrBatchConversion, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading archive: %v", convert.ErrBatchConversion, err)
	}

	return &Archive{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}
