package job

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	jobsPath       = "/api/v1/jobs"
	searchJobsPath = "/api/v1/jobs/search"
	deleteJobPath  = "/api/v1/jobs/delete/"

	maxResponseBytes = 4 << 20
)

var (
	// ErrUnavailable wraps transport failures: the API could not be reached.
	ErrUnavailable = errors.New("jobs api unavailable")
	// ErrBadResponse wraps bodies that could not be decoded.
	ErrBadResponse = errors.New("jobs api returned an unreadable response")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status code %d", e.Method, e.Path, e.StatusCode)
}

// Repository reads and writes jobs through the remote jobs REST API.
type Repository struct {
	client  *http.Client
	baseURL string
}

func NewRepository(baseURL string, timeout time.Duration) *Repository {
	return NewRepositoryWithClient(baseURL, &http.Client{Timeout: timeout})
}

func NewRepositoryWithClient(baseURL string, client *http.Client) *Repository {
	return &Repository{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (r *Repository) BaseURL() string {
	return r.baseURL
}

func (r *Repository) Jobs(ctx context.Context) ([]Job, error) {
	jobs := []Job{}
	if err := r.do(ctx, http.MethodGet, jobsPath, nil, &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []Job{}
	}
	return jobs, nil
}

func (r *Repository) JobsByKeyword(ctx context.Context, keyword string) ([]Job, error) {
	jobs := []Job{}
	path := searchJobsPath + "?" + url.Values{"keyword": {keyword}}.Encode()
	if err := r.do(ctx, http.MethodGet, path, nil, &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []Job{}
	}
	return jobs, nil
}

// SaveJob creates a job. The returned Job is nil when the API answered 2xx
// without a decodable job body.
func (r *Repository) SaveJob(ctx context.Context, rq JobRq) (*Job, error) {
	if rq.Skills == nil {
		rq.Skills = []string{}
	}
	body, err := json.Marshal(rq)
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal job request")
	}
	var created Job
	err = r.do(ctx, http.MethodPost, jobsPath, body, &created)
	if errors.Is(err, ErrBadResponse) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, nil
	}
	return &created, nil
}

func (r *Repository) DeleteJobByID(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, deleteJobPath+url.PathEscape(id), nil, nil)
}

func (r *Repository) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrapf(err, "unable to create request %s %s", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := r.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrapf(ctxErr, "%s %s", method, path)
		}
		return errors.Wrapf(ErrUnavailable, "%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(res.Body, maxResponseBytes))
		return &StatusError{Method: method, Path: path, StatusCode: res.StatusCode}
	}
	if out == nil {
		io.Copy(io.Discard, io.LimitReader(res.Body, maxResponseBytes))
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrapf(ErrUnavailable, "%s %s: reading body: %v", method, path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.Wrapf(ErrBadResponse, "%s %s: empty body", method, path)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(ErrBadResponse, "%s %s: %v", method, path, err)
	}
	return nil
}
