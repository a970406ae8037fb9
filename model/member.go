package model

import (
	"fmt"
	"strings"
	"time"
)

type MemberStatus string

const (
	StatusPending  MemberStatus = "pending"
	StatusAccepted MemberStatus = "accepted"
	StatusRejected MemberStatus = "rejected"
	StatusBanned   MemberStatus = "banned"
)

var AllStatuses = []MemberStatus{StatusPending, StatusAccepted, StatusRejected, StatusBanned}

func ParseMemberStatus(s string) (MemberStatus, error) {
	switch st := MemberStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusAccepted, StatusRejected, StatusBanned:
		return st, nil
	}
	return "", fmt.Errorf("unknown member status %q", s)
}

// Member is a club applicant as stored in the members collection.
// Field names match the documents written by the web front-end.
type Member struct {
	DocID            string       `firestore:"-" json:"id"`
	MemberID         string       `firestore:"memberId" json:"memberId" validate:"required,numeric,min=3"`
	FullName         string       `firestore:"fullName" json:"fullName" validate:"required"`
	FatherName       string       `firestore:"fatherName" json:"fatherName" validate:"required"`
	Age              string       `firestore:"age" json:"age" validate:"required,numeric"`
	Gender           string       `firestore:"gender" json:"gender" validate:"required"`
	BloodGroup       string       `firestore:"bloodGroup" json:"bloodGroup" validate:"required"`
	Address          string       `firestore:"address" json:"address" validate:"required"`
	Hobbies          string       `firestore:"hobbies" json:"hobbies"`
	Education        string       `firestore:"education" json:"education" validate:"required"`
	Job              string       `firestore:"job" json:"job"`
	NomineeName      string       `firestore:"nomineeName" json:"nomineeName"`
	PhoneNumber      string       `firestore:"phoneNumber" json:"phoneNumber" validate:"required,len=10,numeric"`
	Email            string       `firestore:"email" json:"email" validate:"required"`
	IsClubMember     string       `firestore:"isClubMember" json:"isClubMember" validate:"required"`
	HasCriminalCase  string       `firestore:"hasCriminalCase" json:"hasCriminalCase" validate:"required"`
	PhotoURL         string       `firestore:"photoUrl" json:"photoUrl,omitempty"`
	SignatureURL     string       `firestore:"signatureUrl" json:"signatureUrl,omitempty"`
	RegistrationDate string       `firestore:"registrationDate" json:"registrationDate" validate:"required"`
	Status           MemberStatus `firestore:"status" json:"status" validate:"required,oneof=pending accepted rejected banned"`
	Message          string       `firestore:"message,omitempty" json:"message,omitempty"`
	CustomMessage    string       `firestore:"customMessage,omitempty" json:"customMessage,omitempty"`
	CreatedBy        string       `firestore:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedAt        time.Time    `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

func (m *Member) Validate() error {
	return validateRecord(m)
}

// Normalize fixes up documents written by older clients: a missing status
// reads as pending.
func (m *Member) Normalize() {
	if m.Status == "" {
		m.Status = StatusPending
	}
	m.Email = strings.TrimSpace(m.Email)
	m.PhoneNumber = strings.TrimSpace(m.PhoneNumber)
}

// RegisteredOn returns the registration date as YYYY-MM-DD, or "" if the
// stored timestamp cannot be parsed.
func (m *Member) RegisteredOn() string {
	t, err := time.Parse(time.RFC3339, m.RegistrationDate)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}
