package dto

type CreateDraftRequest struct {
	Lang string `json:"lang"`
}

type SetFieldRequest struct {
	Value string `json:"value"`
}

type SetFieldsRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
}

type AffidavitRequest struct {
	Accepted bool `json:"accepted"`
}

type SubmitRequest struct {
	CaptchaToken string `json:"captchaToken"`
}

type DuplicateCheckRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

type UpdateStatusRequest struct {
	Status        string `json:"status" binding:"required,oneof=accepted rejected banned"`
	CustomMessage string `json:"customMessage"`
}

// DraftResponse is the client view of a registration draft.
type DraftResponse struct {
	ID           string            `json:"id"`
	Lang         string            `json:"lang"`
	Step         int               `json:"step"`
	StepName     string            `json:"stepName"`
	Values       map[string]string `json:"values"`
	Errors       map[string]string `json:"errors"`
	Affidavit    bool              `json:"affidavit"`
	HasPhoto     bool              `json:"hasPhoto"`
	HasSignature bool              `json:"hasSignature"`
	MemberID     string            `json:"memberId,omitempty"`
}
