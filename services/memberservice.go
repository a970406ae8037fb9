package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"kalavedi/metrics"
	"kalavedi/model"
	"kalavedi/repository"
)

var (
	ErrMemberNotFound    = errors.New("Registration ID not found")
	ErrInvalidTransition = errors.New("status change not allowed")
)

var defaultStatusMessages = map[model.MemberStatus]string{
	model.StatusAccepted: "Your registration has been approved. Welcome aboard!",
	model.StatusPending:  "Your registration is currently being reviewed.",
	model.StatusRejected: "Your registration has been rejected. Please contact support for more information.",
	model.StatusBanned:   "Your registration has been cancelled. Please contact the committee.",
}

// StatusMessage is the admin's custom message, or the default text for the
// member's status.
func StatusMessage(m *model.Member) string {
	if msg := strings.TrimSpace(m.CustomMessage); msg != "" {
		return msg
	}
	return defaultStatusMessages[m.Status]
}

// allowedFrom lists, per target status, the statuses an admin may move from.
var allowedFrom = map[model.MemberStatus][]model.MemberStatus{
	model.StatusAccepted: {model.StatusPending, model.StatusRejected},
	model.StatusRejected: {model.StatusPending, model.StatusAccepted},
	model.StatusBanned:   {model.StatusAccepted},
}

func canTransition(from, to model.MemberStatus) bool {
	for _, s := range allowedFrom[to] {
		if s == from {
			return true
		}
	}
	return false
}

// Attachment is an uploaded file held in memory.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Application is a complete registration ready to be stored.
type Application struct {
	Fields    map[string]string
	Photo     *Attachment
	Signature *Attachment
	CreatedBy string
	// Progress, when set, is called as each attachment finishes compressing.
	Progress func(CompressProgress)
}

type StatusView struct {
	ID       string `json:"id"`
	MemberID string `json:"memberId"`
	Status   string `json:"status"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Date     string `json:"date"`
	Message  string `json:"message"`
}

type StatusCounts struct {
	All      int `json:"all"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Banned   int `json:"banned"`
}

// StatusChange is the outcome of an admin action.
type StatusChange struct {
	Member *model.Member `json:"member"`
	Notice string        `json:"notice"`
}

type MemberService struct {
	members    repository.MemberRepository
	compressor *ImageCompressor
	notifier   StatusNotifier
	logger     *zap.Logger
	now        func() time.Time
}

// NewMemberService wires the member workflow. notifier may be nil.
func NewMemberService(members repository.MemberRepository, compressor *ImageCompressor, notifier StatusNotifier, logger *zap.Logger) *MemberService {
	return &MemberService{
		members:    members,
		compressor: compressor,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *MemberService) CheckDuplicate(ctx context.Context, email, phone string) (DuplicateResult, error) {
	res, err := CheckDuplicate(ctx, s.members, email, phone)
	if err != nil {
		s.logger.Error("duplicate check failed", zap.Error(err))
	}
	return res, err
}

func (s *MemberService) NextMemberID(ctx context.Context) (string, error) {
	latest, err := s.members.LatestMemberID(ctx)
	if err != nil {
		return "", fmt.Errorf("read latest member id: %w", err)
	}
	return NextMemberID(latest)
}

// Register compresses the attachments and stores a pending member under the
// next sequential id. The duplicate check is repeated inside the write.
func (s *MemberService) Register(ctx context.Context, app Application) (*model.Member, error) {
	photo, signature, err := s.compressAttachments(ctx, app)
	if err != nil {
		metrics.ObserveRegistration(metrics.OutcomeInvalid)
		return nil, err
	}

	f := app.Fields
	m := &model.Member{
		FullName:         f[FieldFullName],
		FatherName:       f[FieldFatherName],
		Age:              f[FieldAge],
		Gender:           f[FieldGender],
		BloodGroup:       f[FieldBloodGroup],
		Address:          f[FieldAddress],
		Hobbies:          f[FieldHobbies],
		Education:        f[FieldEducation],
		Job:              f[FieldJob],
		NomineeName:      f[FieldNomineeName],
		PhoneNumber:      strings.TrimSpace(f[FieldPhoneNumber]),
		Email:            strings.TrimSpace(f[FieldEmail]),
		IsClubMember:     f[FieldIsClubMember],
		HasCriminalCase:  f[FieldHasCriminalCase],
		PhotoURL:         photo,
		SignatureURL:     signature,
		RegistrationDate: s.now().UTC().Format(time.RFC3339),
		Status:           model.StatusPending,
		CreatedBy:        app.CreatedBy,
	}

	guard := func(ctx context.Context, lookup repository.MemberLookup) error {
		res, err := CheckDuplicate(ctx, lookup, m.Email, m.PhoneNumber)
		if err != nil {
			return err
		}
		if res.Exists {
			return &DuplicateError{Field: res.Field, MemberID: res.MemberID}
		}
		return nil
	}

	created, err := s.members.CreateWithNextID(ctx, m, NextMemberID, guard)
	if err != nil {
		var dup *DuplicateError
		switch {
		case errors.As(err, &dup):
			metrics.ObserveRegistration(metrics.OutcomeDuplicate)
			return nil, err
		case errors.Is(err, ErrDuplicateCheck):
			metrics.ObserveRegistration(metrics.OutcomeError)
			s.logger.Error("duplicate check failed", zap.Error(err))
			return nil, err
		}
		metrics.ObserveRegistration(metrics.OutcomeError)
		s.logger.Error("failed to store registration", zap.Error(err))
		return nil, fmt.Errorf("store registration: %w", err)
	}

	metrics.ObserveRegistration(metrics.OutcomeCreated)
	s.logger.Info("member registered",
		zap.String("memberId", created.MemberID),
		zap.String("docId", created.DocID),
	)
	return created, nil
}

func (s *MemberService) compressAttachments(ctx context.Context, app Application) (string, string, error) {
	var jobs []CompressJob
	if app.Photo != nil {
		jobs = append(jobs, CompressJob{Name: FieldPhoto, Data: app.Photo.Data, Opts: PhotoPreset})
	}
	if app.Signature != nil {
		jobs = append(jobs, CompressJob{Name: FieldSignature, Data: app.Signature.Data, Opts: SignaturePreset})
	}
	if len(jobs) == 0 {
		return "", "", nil
	}

	task := s.compressor.Start(ctx, jobs)
	for p := range task.Progress() {
		if app.Progress != nil {
			app.Progress(p)
		}
	}
	urls, err := task.Wait()
	if err != nil {
		return "", "", err
	}

	var photo, signature string
	for i, job := range jobs {
		switch job.Name {
		case FieldPhoto:
			photo = urls[i]
		case FieldSignature:
			signature = urls[i]
		}
	}
	return photo, signature, nil
}

// LookupStatus finds a registration by its public member id.
func (s *MemberService) LookupStatus(ctx context.Context, memberID string) (*StatusView, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, ErrMemberNotFound
	}
	m, err := s.members.FindByField(ctx, repository.FieldMemberID, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup member %s: %w", memberID, err)
	}
	return &StatusView{
		ID:       m.DocID,
		MemberID: m.MemberID,
		Status:   string(m.Status),
		Name:     m.FullName,
		Email:    m.Email,
		Date:     m.RegisteredOn(),
		Message:  StatusMessage(m),
	}, nil
}

func (s *MemberService) List(ctx context.Context, status model.MemberStatus) ([]model.Member, error) {
	return s.members.List(ctx, status)
}

func (s *MemberService) Counts(ctx context.Context) (StatusCounts, error) {
	all, err := s.members.List(ctx, "")
	if err != nil {
		return StatusCounts{}, err
	}
	counts := StatusCounts{All: len(all)}
	for _, m := range all {
		switch m.Status {
		case model.StatusPending:
			counts.Pending++
		case model.StatusAccepted:
			counts.Accepted++
		case model.StatusRejected:
			counts.Rejected++
		case model.StatusBanned:
			counts.Banned++
		}
	}
	return counts, nil
}

func (s *MemberService) Get(ctx context.Context, docID string) (*model.Member, error) {
	return s.members.Get(ctx, docID)
}

// GetByMemberID resolves the public member id, e.g. "047".
func (s *MemberService) GetByMemberID(ctx context.Context, memberID string) (*model.Member, error) {
	return s.members.FindByField(ctx, repository.FieldMemberID, strings.TrimSpace(memberID))
}

// UpdateStatus applies an admin action and notifies the member. A failed
// notification is logged only.
func (s *MemberService) UpdateStatus(ctx context.Context, docID string, to model.MemberStatus, customMessage string) (*StatusChange, error) {
	m, err := s.members.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !canTransition(m.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, m.Status, to)
	}

	customMessage = strings.TrimSpace(customMessage)
	if err := s.members.UpdateStatus(ctx, docID, to, customMessage); err != nil {
		return nil, fmt.Errorf("update status of %s: %w", docID, err)
	}
	m.Status = to
	m.CustomMessage = customMessage
	metrics.ObserveStatusChange(string(to))

	s.logger.Info("member status updated",
		zap.String("memberId", m.MemberID),
		zap.String("status", string(to)),
	)

	if s.notifier != nil {
		if err := s.notifier.NotifyStatus(ctx, m); err != nil {
			s.logger.Warn("status notification failed", zap.String("memberId", m.MemberID), zap.Error(err))
		}
	}
	return &StatusChange{Member: m, Notice: statusNotice(m.FullName, to)}, nil
}

func statusNotice(name string, to model.MemberStatus) string {
	switch to {
	case model.StatusAccepted:
		return name + " has been accepted successfully"
	case model.StatusRejected:
		return name + " has been rejected"
	case model.StatusBanned:
		return name + "'s registration has been canceled"
	}
	return name + " updated"
}
