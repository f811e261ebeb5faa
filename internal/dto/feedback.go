package dto

// CreateFeedbackSessionRequest opens a review session against a generated
// timetable version.
type CreateFeedbackSessionRequest struct {
	TimetableVersionID string `json:"timetableVersionId" validate:"required"`
	CreatedBy          string `json:"createdBy" validate:"required"`
}

// SlotAssignmentPayload is one side of a correction.
type SlotAssignmentPayload struct {
	TeacherID string `json:"teacherId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	Day       string `json:"day" validate:"required"`
	Period    int    `json:"period" validate:"required,min=1"`
}

// CorrectionRequest records one human edit to a generated timetable.
type CorrectionRequest struct {
	Before      SlotAssignmentPayload `json:"before" validate:"required"`
	After       SlotAssignmentPayload `json:"after" validate:"required"`
	Reason      string                `json:"reason"`
	CorrectedBy string                `json:"correctedBy" validate:"required"`
}

// CorrectionBatchRequest applies several corrections from one review pass.
type CorrectionBatchRequest struct {
	Corrections []CorrectionRequest `json:"corrections" validate:"required,min=1,dive"`
}
