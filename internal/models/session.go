package models

// Stage is the lifecycle stage of a quiz session. Transitions only move
// forward through taking and back to list; review is reached exclusively
// through submission.
type Stage string

const (
	StageList   Stage = "list"
	StageTaking Stage = "taking"
	StageReview Stage = "review"
)

// SubmittedResult is the scored outcome returned by the upstream API.
// Score is a percentage in [0, 100]; rounding is the server's concern.
type SubmittedResult struct {
	Score        int `json:"score"`
	CorrectCount int `json:"correct"`
	Total        int `json:"total"`
}

// ReviewSet is the question set shown during review. Annotated indicates
// whether the options carry correctness flags; when the post-submission
// review fetch fails the session falls back to the unannotated taking-stage
// set and Annotated stays false.
type ReviewSet struct {
	Questions []Question `json:"questions"`
	Annotated bool       `json:"annotated"`
}
