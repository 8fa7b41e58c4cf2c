package dto

type UploadResumePayload struct {
	ResumePdf string `json:"resumePdf"`
}
