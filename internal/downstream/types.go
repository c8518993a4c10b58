package downstream

// Submission is the downstream API's submission resource.
type Submission struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Title  string `json:"title,omitempty"`
}

// SubmissionList is the downstream API's paged list shape.
type SubmissionList struct {
	Items []Submission `json:"items"`
	Total int          `json:"total"`
}

// CreateSubmissionRequest is the body for creating a submission.
type CreateSubmissionRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
