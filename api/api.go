package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Dan0xE/api/analysis"
	"github.com/Dan0xE/api/config"
)

// DefaultBaseURL is the production CodeDefender API.
const DefaultBaseURL = "https://app.codedefender.io/api"

const (
	uploadPath   = "/upload"
	analyzePath  = "/analyze"
	defendPath   = "/defend"
	downloadPath = "/download"
)

// Client talks to the CodeDefender service. All calls are synchronous and
// are never retried here; only the download poll loop retries, and only the
// still-processing case.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func New(apiKey string) (*Client, error) {
	return NewWithBaseURL(apiKey, DefaultBaseURL)
}

func NewWithBaseURL(apiKey string, baseURL string) (*Client, error) {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}, nil
}

func (c *Client) do(method string, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, e := http.NewRequest(method, c.baseURL+path, body)
	if e != nil {
		return nil, e
	}
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.httpClient.Do(req)
}

// readError turns a non-2xx response into an error carrying the server's
// explanation.
func readError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return errors.Errorf("%s: server returned %s: %s", op, resp.Status, strings.TrimSpace(string(body)))
}

// Upload sends raw file bytes and returns the file UUID used by all later
// calls.
func (c *Client) Upload(data []byte) (string, error) {
	resp, e := c.do(http.MethodPut, uploadPath, bytes.NewReader(data), "application/octet-stream")
	if e != nil {
		return "", errors.Wrap(e, "upload")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readError("upload", resp)
	}
	id, e := io.ReadAll(resp.Body)
	if e != nil {
		return "", errors.Wrap(e, "upload")
	}
	return strings.TrimSpace(string(id)), nil
}

type analyzeRequest struct {
	File string `json:"file"`
	// PDB is the optional companion symbol file UUID.
	PDB string `json:"pdb,omitempty"`
}

// Analyze asks the backend to analyze an uploaded binary, optionally with
// an uploaded PDB, and returns the analysis snapshot.
func (c *Client) Analyze(fileID string, pdbID string) (*analysis.Result, error) {
	body, e := json.Marshal(analyzeRequest{File: fileID, PDB: pdbID})
	if e != nil {
		return nil, e
	}
	resp, e := c.do(http.MethodPut, analyzePath, bytes.NewReader(body), "application/json")
	if e != nil {
		return nil, errors.Wrap(e, "analyze")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError("analyze", resp)
	}
	var result analysis.Result
	if e := json.NewDecoder(resp.Body).Decode(&result); e != nil {
		return nil, errors.Wrap(e, "analyze: decoding result")
	}
	return &result, nil
}

type defendRequest struct {
	File   string           `json:"file"`
	Config *config.Compiled `json:"config"`
}

// Defend submits the compiled config for an uploaded binary and returns the
// execution UUID used to poll for the result.
func (c *Client) Defend(fileID string, compiled *config.Compiled) (string, error) {
	body, e := json.Marshal(defendRequest{File: fileID, Config: compiled})
	if e != nil {
		return "", e
	}
	resp, e := c.do(http.MethodPut, defendPath, bytes.NewReader(body), "application/json")
	if e != nil {
		return "", errors.Wrap(e, "defend")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readError("defend", resp)
	}
	id, e := io.ReadAll(resp.Body)
	if e != nil {
		return "", errors.Wrap(e, "defend")
	}
	return strings.TrimSpace(string(id)), nil
}

// Download fetches the state of a submitted job: the obfuscated bytes when
// ready, still-processing, or failed with the server's cause. A transport
// error is returned as an error; a failed job is not.
func (c *Client) Download(executionID string) (*DownloadStatus, error) {
	resp, e := c.do(http.MethodGet, downloadPath+"?id="+executionID, nil, "")
	if e != nil {
		return nil, errors.Wrap(e, "download")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, e := io.ReadAll(resp.Body)
		if e != nil {
			return nil, errors.Wrap(e, "download")
		}
		return &DownloadStatus{State: StateReady, Bytes: data}, nil
	case http.StatusAccepted:
		return &DownloadStatus{State: StateProcessing}, nil
	default:
		cause, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &DownloadStatus{State: StateFailed, Cause: strings.TrimSpace(string(cause))}, nil
	}
}
