package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"kalavedi/model"
)

type FormStep int

const (
	StepPersonal FormStep = iota + 1
	StepContact
	StepDocuments
	StepSubmitted
)

func (s FormStep) String() string {
	switch s {
	case StepPersonal:
		return "personal"
	case StepContact:
		return "contact"
	case StepDocuments:
		return "documents"
	case StepSubmitted:
		return "submitted"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	ErrUnknownField      = errors.New("unknown form field")
	ErrAffidavitRequired = errors.New("affidavit not accepted")
	ErrNotOnFinalStep    = errors.New("form can only be submitted from the documents step")
	ErrAlreadySubmitted  = errors.New("form already submitted")
)

// ValidationError blocks a step change. Message is applicant-facing; Fields
// maps each offending field to its own message, empty when the field is
// merely missing.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(names, ", "))
}

// DuplicateChecker is consulted when leaving the contact step.
type DuplicateChecker interface {
	CheckDuplicate(ctx context.Context, email, phone string) (DuplicateResult, error)
}

// Registrar stores a completed form.
type Registrar interface {
	Register(ctx context.Context, app Application) (*model.Member, error)
}

// RegistrationForm is the server side of the three-step registration
// wizard. It is not safe for concurrent use; DraftStore.Do serialises access.
type RegistrationForm struct {
	ID        string            `json:"id"`
	Lang      string            `json:"lang"`
	Step      FormStep          `json:"step"`
	Values    map[string]string `json:"values"`
	Errors    map[string]string `json:"errors"`
	Affidavit bool              `json:"affidavit"`
	MemberID  string            `json:"memberId,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt"`

	Photo     *Attachment `json:"-"`
	Signature *Attachment `json:"-"`

	mu sync.Mutex
	// removed is set under mu once the draft is deleted from its store.
	removed bool
}

func NewRegistrationForm(id, lang string) *RegistrationForm {
	return &RegistrationForm{
		ID:        id,
		Lang:      NormalizeLang(lang),
		Step:      StepPersonal,
		Values:    make(map[string]string),
		Errors:    make(map[string]string),
		UpdatedAt: time.Now(),
	}
}

// Set validates and stores one text field. A rule violation is recorded in
// Errors and does not fail the call.
func (f *RegistrationForm) Set(field, raw string) error {
	if f.Step == StepSubmitted {
		return ErrAlreadySubmitted
	}
	if !IsFormField(field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	value, msg := ValidateField(f.Lang, field, raw)
	f.Values[field] = value
	if msg != "" {
		f.Errors[field] = msg
	} else {
		delete(f.Errors, field)
	}
	f.UpdatedAt = time.Now()
	return nil
}

// Attach stores the photo or the signature. Files over MaxAttachmentSize are
// rejected and the previous attachment is kept.
func (f *RegistrationForm) Attach(field string, a *Attachment) error {
	if f.Step == StepSubmitted {
		return ErrAlreadySubmitted
	}
	if field != FieldPhoto && field != FieldSignature {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if len(a.Data) > MaxAttachmentSize {
		msg := Translate(f.Lang, MsgFileSizeLimit)
		f.Errors[field] = msg
		return &ValidationError{Message: msg, Fields: map[string]string{field: msg}}
	}
	delete(f.Errors, field)
	if field == FieldPhoto {
		f.Photo = a
	} else {
		f.Signature = a
	}
	f.UpdatedAt = time.Now()
	return nil
}

func (f *RegistrationForm) Detach(field string) {
	switch field {
	case FieldPhoto:
		f.Photo = nil
	case FieldSignature:
		f.Signature = nil
	}
	delete(f.Errors, field)
	f.UpdatedAt = time.Now()
}

func (f *RegistrationForm) SetAffidavit(accepted bool) {
	f.Affidavit = accepted
	f.UpdatedAt = time.Now()
}

func (f *RegistrationForm) has(field string) bool {
	switch field {
	case FieldPhoto:
		return f.Photo != nil
	case FieldSignature:
		return f.Signature != nil
	}
	return strings.TrimSpace(f.Values[field]) != ""
}

// check reports missing fields first, then fields carrying a rule error.
func (f *RegistrationForm) check(fields []string, missingMsg, invalidMsg string) error {
	missing := map[string]string{}
	for _, field := range fields {
		if !f.has(field) {
			missing[field] = ""
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Message: Translate(f.Lang, missingMsg), Fields: missing}
	}

	invalid := map[string]string{}
	for _, field := range fields {
		if msg := f.Errors[field]; msg != "" {
			invalid[field] = msg
		}
	}
	if len(invalid) > 0 {
		return &ValidationError{Message: Translate(f.Lang, invalidMsg), Fields: invalid}
	}
	return nil
}

// Next validates the current step and advances one step. Leaving the
// contact step runs the duplicate check; a match blocks with a
// *DuplicateError. The documents step is last, so it only validates.
func (f *RegistrationForm) Next(ctx context.Context, checker DuplicateChecker) error {
	if f.Step == StepSubmitted {
		return ErrAlreadySubmitted
	}
	if err := f.check(StepFields(int(f.Step)), MsgFillRequired, MsgCorrectErrors); err != nil {
		return err
	}
	if f.Step == StepDocuments {
		return nil
	}

	if f.Step == StepContact {
		res, err := checker.CheckDuplicate(ctx, f.Values[FieldEmail], f.Values[FieldPhoneNumber])
		if err != nil {
			return err
		}
		if res.Exists {
			return &DuplicateError{Field: res.Field, MemberID: res.MemberID}
		}
	}
	f.Step++
	f.UpdatedAt = time.Now()
	return nil
}

// Prev goes back one step without validation.
func (f *RegistrationForm) Prev() {
	if f.Step > StepPersonal && f.Step < StepSubmitted {
		f.Step--
		f.UpdatedAt = time.Now()
	}
}

// Submit re-validates every required field and hands the form to registrar.
func (f *RegistrationForm) Submit(ctx context.Context, registrar Registrar) (*model.Member, error) {
	switch f.Step {
	case StepSubmitted:
		return nil, ErrAlreadySubmitted
	case StepDocuments:
	default:
		return nil, ErrNotOnFinalStep
	}
	if !f.Affidavit {
		return nil, ErrAffidavitRequired
	}
	if err := f.check(submitFields, MsgCompleteAllFields, MsgCompleteAllFields); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(f.Values))
	for k, v := range f.Values {
		values[k] = strings.TrimSpace(v)
	}
	m, err := registrar.Register(ctx, Application{
		Fields:    values,
		Photo:     f.Photo,
		Signature: f.Signature,
	})
	if err != nil {
		return nil, err
	}
	f.Step = StepSubmitted
	f.MemberID = m.MemberID
	f.UpdatedAt = time.Now()
	return m, nil
}

// Apply runs the whole wizard over a complete submission. It is the path
// for clients that post the form in one request.
func (f *RegistrationForm) Apply(ctx context.Context, values map[string]string, photo, signature *Attachment, affidavit bool, checker DuplicateChecker, registrar Registrar) (*model.Member, error) {
	for field, raw := range values {
		if IsFormField(field) {
			if err := f.Set(field, raw); err != nil {
				return nil, err
			}
		}
	}
	if photo != nil {
		if err := f.Attach(FieldPhoto, photo); err != nil {
			return nil, err
		}
	}
	if signature != nil {
		if err := f.Attach(FieldSignature, signature); err != nil {
			return nil, err
		}
	}
	f.SetAffidavit(affidavit)

	for f.Step < StepDocuments {
		if err := f.Next(ctx, checker); err != nil {
			return nil, err
		}
	}
	return f.Submit(ctx, registrar)
}
