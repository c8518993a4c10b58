package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"subgate/internal/auth"
	"subgate/internal/downstream"
)

// Scopes the caller's token must carry per operation.
const (
	ScopeRead  = "submission-api"
	ScopeWrite = "submission-api-write"
)

// knownStatuses are the status filter values the downstream API accepts.
var knownStatuses = map[string]bool{
	"pending":  true,
	"approved": true,
	"rejected": true,
}

// Service implements the gateway's tool operations against the downstream
// Submission API. Every operation validates its arguments before any
// credential or network work, then runs through the invoker pipeline.
type Service struct {
	invoker *Invoker
}

// NewService creates the tool operation service.
func NewService(invoker *Invoker) *Service {
	return &Service{invoker: invoker}
}

// GetSubmission fetches a single submission by ID.
func (s *Service) GetSubmission(ctx context.Context, id int64) (*downstream.Submission, error) {
	if id <= 0 {
		return nil, &auth.ValidationError{Parameter: "id", Reason: "must be a positive integer"}
	}

	body, err := s.invoker.Invoke(ctx, Operation{
		Name:          "get_submission",
		RequiredScope: ScopeRead,
		Request: &downstream.Request{
			Method: http.MethodGet,
			Path:   "submissions/" + strconv.FormatInt(id, 10),
		},
	})
	if err != nil {
		return nil, err
	}

	var submission downstream.Submission
	if err := decode(body, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListSubmissions lists submissions, optionally filtered by status and
// capped at limit. A zero limit means the downstream default page size.
func (s *Service) ListSubmissions(ctx context.Context, status string, limit int) (*downstream.SubmissionList, error) {
	if status != "" && !knownStatuses[status] {
		return nil, &auth.ValidationError{Parameter: "status", Reason: "must be one of pending, approved, rejected"}
	}
	if limit < 0 {
		return nil, &auth.ValidationError{Parameter: "limit", Reason: "must be a positive integer"}
	}

	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	body, err := s.invoker.Invoke(ctx, Operation{
		Name:          "list_submissions",
		RequiredScope: ScopeRead,
		Request: &downstream.Request{
			Method: http.MethodGet,
			Path:   "submissions",
			Query:  query,
		},
	})
	if err != nil {
		return nil, err
	}

	var list downstream.SubmissionList
	if err := decode(body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateSubmission creates a new submission and returns the created
// resource.
func (s *Service) CreateSubmission(ctx context.Context, title, content string) (*downstream.Submission, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &auth.ValidationError{Parameter: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(content) == "" {
		return nil, &auth.ValidationError{Parameter: "content", Reason: "must not be empty"}
	}

	body, err := s.invoker.Invoke(ctx, Operation{
		Name:          "create_submission",
		RequiredScope: ScopeWrite,
		Request: &downstream.Request{
			Method: http.MethodPost,
			Path:   "submissions",
			Body:   &downstream.CreateSubmissionRequest{Title: title, Content: content},
		},
	})
	if err != nil {
		return nil, err
	}

	var submission downstream.Submission
	if err := decode(body, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

// decode unmarshals a 2xx downstream body into the operation's expected
// shape, mapping any failure (empty body included) to *ParseError with the
// decoding error preserved.
func decode(body []byte, target interface{}) error {
	if err := json.Unmarshal(body, target); err != nil {
		return &downstream.ParseError{Err: err}
	}
	return nil
}
