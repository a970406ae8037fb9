package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kalavedi/model"
	"kalavedi/repository/memory"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func validFields() map[string]string {
	return map[string]string{
		FieldFullName:        "anu joseph",
		FieldFatherName:      "joseph k",
		FieldAge:             "24",
		FieldGender:          "Female",
		FieldAddress:         "vazhakkad, thottakam p.o.",
		FieldBloodGroup:      "B+",
		FieldHobbies:         "drama",
		FieldPhoneNumber:     "9876543210",
		FieldEmail:           "anu@example.com",
		FieldEducation:       "bsc",
		FieldJob:             "musician",
		FieldNomineeName:     "mary",
		FieldHasCriminalCase: "no",
		FieldIsClubMember:    "yes",
	}
}

func seededMember(memberID, email, phone string, status model.MemberStatus) model.Member {
	return model.Member{
		MemberID:         memberID,
		FullName:         "EXISTING " + memberID,
		FatherName:       "FATHER",
		Age:              "30",
		Gender:           "Male",
		BloodGroup:       "O+",
		Address:          "ADDRESS",
		Education:        "BA",
		PhoneNumber:      phone,
		Email:            email,
		IsClubMember:     "no",
		HasCriminalCase:  "no",
		RegistrationDate: "2024-05-01T10:00:00Z",
		Status:           status,
	}
}

type recordingNotifier struct {
	notified []model.Member
	err      error
}

func (n *recordingNotifier) NotifyStatus(_ context.Context, m *model.Member) error {
	n.notified = append(n.notified, *m)
	return n.err
}

func newTestMemberService(t *testing.T, seed ...model.Member) (*MemberService, *memory.MemberRepository, *recordingNotifier) {
	t.Helper()
	repo := memory.NewMemberRepository()
	repo.Seed(seed...)
	notifier := &recordingNotifier{}
	logger := zap.NewNop()
	return NewMemberService(repo, NewImageCompressor(logger), notifier, logger), repo, notifier
}
