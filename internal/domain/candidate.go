package domain

import "time"

// CandidateStatus is the hiring pipeline stage.
type CandidateStatus string

const (
	CandidateNew       CandidateStatus = "new"
	CandidateScreening CandidateStatus = "screening"
	CandidateInterview CandidateStatus = "interview"
	CandidateHired     CandidateStatus = "hired"
	CandidateRejected  CandidateStatus = "rejected"
)

// Candidate is an applicant ranked by score.
type Candidate struct {
	ID        string
	Name      string
	Position  string
	Score     float64
	Status    CandidateStatus
	CreatedAt time.Time
}
