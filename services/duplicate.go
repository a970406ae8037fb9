package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kalavedi/metrics"
	"kalavedi/repository"
)

// ErrDuplicateCheck is returned when the store could not be queried. The
// cause is wrapped for logging; callers show a generic message.
var ErrDuplicateCheck = errors.New("error occurred while checking registration status")

type DuplicateResult struct {
	Exists   bool   `json:"exists"`
	Field    string `json:"field,omitempty"`
	MemberID string `json:"memberId,omitempty"`
}

// DuplicateError blocks a registration whose email or phone is already on file.
type DuplicateError struct {
	Field    string
	MemberID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("already registered with this %s (member id %s)", e.Field, e.MemberID)
}

// Message renders the applicant-facing text, e.g. "You are already
// registered with this Email. Check Status With Your member ID is 047".
func (e *DuplicateError) Message(lang string) string {
	label := Translate(lang, MsgEmail)
	if e.Field == repository.FieldPhone {
		label = Translate(lang, MsgPhoneNumber)
	}
	return fmt.Sprintf("%s %s. %s %s", Translate(lang, MsgAlreadyMember), label, Translate(lang, MsgCheckStatus), e.MemberID)
}

// CheckDuplicate looks for a member with the same email, then the same phone.
// Empty inputs are not looked up.
func CheckDuplicate(ctx context.Context, lookup repository.MemberLookup, email, phone string) (DuplicateResult, error) {
	checks := []struct{ field, value string }{
		{repository.FieldEmail, strings.TrimSpace(email)},
		{repository.FieldPhone, strings.TrimSpace(phone)},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		m, err := lookup.FindByField(ctx, c.field, c.value)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			metrics.ObserveDuplicateCheck("error")
			return DuplicateResult{}, fmt.Errorf("%w: %w", ErrDuplicateCheck, err)
		}
		metrics.ObserveDuplicateCheck(c.field)
		return DuplicateResult{Exists: true, Field: c.field, MemberID: m.MemberID}, nil
	}
	metrics.ObserveDuplicateCheck("clear")
	return DuplicateResult{}, nil
}

// NextMemberID increments the highest stored member id, keeping at least
// three digits. An empty collection starts at "001".
func NextMemberID(latest string) (string, error) {
	latest = strings.TrimSpace(latest)
	if latest == "" {
		return "001", nil
	}
	n, err := strconv.Atoi(latest)
	if err != nil || n < 0 {
		return "", fmt.Errorf("latest member id %q is not a number", latest)
	}
	return fmt.Sprintf("%03d", n+1), nil
}
