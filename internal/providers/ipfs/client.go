package ipfs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"

	"minter/internal/domain"
	"minter/internal/infra"
)

// Options configures the IPFS HTTP API client.
type Options struct {
	// APIURL is the protocol://host:port of the IPFS HTTP API.
	APIURL        string
	ProjectID     string
	ProjectSecret string
	HTTPClient    *http.Client
	Logger        *infra.Logger
}

// Client publishes content through the IPFS HTTP API.
type Client struct {
	sh     *shell.Shell
	logger *infra.Logger
}

type addEntry struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// NewClient builds a client. When a project id and secret are supplied every
// request carries them as a Basic authorization header.
func NewClient(opts Options) *Client {
	httpClient := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		httpClient = &copied
	}
	if opts.ProjectID != "" || opts.ProjectSecret != "" {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		httpClient.Transport = &authTransport{
			header: BasicAuthorization(opts.ProjectID, opts.ProjectSecret),
			base:   base,
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		sh:     shell.NewShellWithClient(strings.TrimRight(opts.APIURL, "/"), httpClient),
		logger: logger,
	}
}

// Add publishes data and returns the content path of the root object. With
// WrapWithDirectory the root is the wrapping directory and the data is
// reachable at <path>/<Filename>.
func (c *Client) Add(ctx context.Context, data []byte, opts domain.AddOptions) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrEmptyPayload
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	filename := strings.TrimSpace(opts.Filename)
	if filename == "" {
		filename = "file"
	}
	body, contentType, err := multipartBody(filename, data)
	if err != nil {
		return "", fmt.Errorf("ipfs: encode body: %w", err)
	}

	start := time.Now()
	resp, err := c.sh.Request("add").
		Option("wrap-with-directory", opts.WrapWithDirectory).
		Option("pin", opts.Pin).
		Option("progress", false).
		Header("Content-Type", contentType).
		Body(body).
		Send(ctx)
	if err != nil {
		return "", fmt.Errorf("ipfs: add: %w", err)
	}
	defer resp.Close()
	if resp.Error != nil {
		return "", fmt.Errorf("ipfs: add: %w", resp.Error)
	}

	var root addEntry
	dec := json.NewDecoder(resp.Output)
	for {
		var entry addEntry
		if err := dec.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("ipfs: decode add response: %w", err)
		}
		if entry.Hash != "" {
			root = entry
		}
	}
	if root.Hash == "" {
		return "", errors.New("ipfs: add returned no content hash")
	}

	c.logger.Debug().
		Str("cid", root.Hash).
		Str("filename", filename).
		Bool("wrapped", opts.WrapWithDirectory).
		Int("bytes", len(data)).
		Dur("took", time.Since(start)).
		Msg("ipfs: added content")
	return root.Hash, nil
}

// Locator builds the public retrieval URI for a content path.
func Locator(gateway, path string) string {
	return strings.TrimRight(gateway, "/") + "/ipfs/" + strings.TrimLeft(path, "/")
}

// BasicAuthorization returns the Authorization header value for a project id/secret pair.
func BasicAuthorization(projectID, projectSecret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(projectID+":"+projectSecret))
}

func multipartBody(filename string, data []byte) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", "application/octet-stream")
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

type authTransport struct {
	header string
	base   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", t.header)
	return t.base.RoundTrip(clone)
}

var _ domain.ContentStore = (*Client)(nil)
