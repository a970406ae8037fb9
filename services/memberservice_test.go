package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalavedi/model"
	"kalavedi/repository"
)

func testApplication(t *testing.T, email, phone string) Application {
	fields := validFields()
	fields[FieldEmail] = email
	fields[FieldPhoneNumber] = phone
	return Application{
		Fields:    fields,
		Photo:     &Attachment{Name: "photo.png", Data: testPNG(t, 900, 600)},
		Signature: &Attachment{Name: "sign.png", Data: testPNG(t, 300, 100)},
	}
}

func TestMemberService_RegisterFirstMember(t *testing.T) {
	svc, repo, _ := newTestMemberService(t)
	svc.now = func() time.Time { return time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC) }

	var progress []CompressProgress
	app := testApplication(t, "anu@example.com", "9876543210")
	app.Progress = func(p CompressProgress) { progress = append(progress, p) }

	m, err := svc.Register(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, "001", m.MemberID)
	assert.Equal(t, model.StatusPending, m.Status)
	assert.Equal(t, "2024-06-02T09:30:00Z", m.RegistrationDate)
	assert.True(t, strings.HasPrefix(m.PhotoURL, "data:image/jpeg;base64,"))
	assert.True(t, strings.HasPrefix(m.SignatureURL, "data:image/jpeg;base64,"))
	assert.Len(t, progress, 2)
	assert.Equal(t, 2, progress[1].Done)

	stored, err := repo.Get(context.Background(), m.DocID)
	require.NoError(t, err)
	assert.Equal(t, "001", stored.MemberID)
}

func TestMemberService_RegisterIncrementsLatestID(t *testing.T) {
	svc, _, _ := newTestMemberService(t,
		seededMember("047", "a@example.com", "9000000001", model.StatusAccepted),
		seededMember("048", "b@example.com", "9000000002", model.StatusPending),
	)
	m, err := svc.Register(context.Background(), testApplication(t, "new@example.com", "9111111111"))
	require.NoError(t, err)
	assert.Equal(t, "049", m.MemberID)
}

func TestMemberService_RegisterRechecksDuplicates(t *testing.T) {
	svc, _, _ := newTestMemberService(t, seededMember("010", "taken@example.com", "9000000001", model.StatusPending))

	_, err := svc.Register(context.Background(), testApplication(t, "taken@example.com", "9111111111"))
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "010", dup.MemberID)
	assert.Equal(t, repository.FieldEmail, dup.Field)
}

func TestMemberService_RegisterBadImage(t *testing.T) {
	svc, repo, _ := newTestMemberService(t)
	app := testApplication(t, "anu@example.com", "9876543210")
	app.Photo.Data = []byte("not an image")

	_, err := svc.Register(context.Background(), app)
	require.Error(t, err)
	all, _ := repo.List(context.Background(), "")
	assert.Empty(t, all)
}

func TestMemberService_ConcurrentRegistrationsGetUniqueIDs(t *testing.T) {
	svc, repo, _ := newTestMemberService(t)
	const n = 20

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			app := Application{Fields: validFields()}
			app.Fields[FieldEmail] = fmt.Sprintf("user%d@example.com", i)
			app.Fields[FieldPhoneNumber] = fmt.Sprintf("90000000%02d", i)
			_, err := svc.Register(context.Background(), app)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, n)
	seen := map[string]bool{}
	for _, m := range all {
		assert.False(t, seen[m.MemberID], "duplicate id %s", m.MemberID)
		seen[m.MemberID] = true
	}
	assert.True(t, seen["001"])
	assert.True(t, seen["020"])
}

func TestMemberService_LookupStatusRoundTrip(t *testing.T) {
	svc, _, notifier := newTestMemberService(t)
	ctx := context.Background()

	m, err := svc.Register(ctx, testApplication(t, "anu@example.com", "9876543210"))
	require.NoError(t, err)

	view, err := svc.LookupStatus(ctx, m.MemberID)
	require.NoError(t, err)
	assert.Equal(t, "pending", view.Status)
	assert.Equal(t, "Your registration is currently being reviewed.", view.Message)

	change, err := svc.UpdateStatus(ctx, m.DocID, model.StatusAccepted, "")
	require.NoError(t, err)
	assert.Equal(t, "anu joseph has been accepted successfully", change.Notice)
	require.Len(t, notifier.notified, 1)
	assert.Equal(t, model.StatusAccepted, notifier.notified[0].Status)

	view, err = svc.LookupStatus(ctx, " "+m.MemberID+" ")
	require.NoError(t, err)
	assert.Equal(t, "accepted", view.Status)
	assert.Equal(t, "Your registration has been approved. Welcome aboard!", view.Message)
	assert.Equal(t, m.MemberID, view.MemberID)
	assert.Equal(t, m.RegisteredOn(), view.Date)
}

func TestMemberService_LookupStatus(t *testing.T) {
	custom := seededMember("005", "c@example.com", "9000000005", model.StatusRejected)
	custom.CustomMessage = "Please visit the office with your ID."
	svc, _, _ := newTestMemberService(t,
		seededMember("004", "b@example.com", "9000000004", model.StatusBanned),
		custom,
	)
	ctx := context.Background()

	view, err := svc.LookupStatus(ctx, "004")
	require.NoError(t, err)
	assert.Equal(t, "Your registration has been cancelled. Please contact the committee.", view.Message)
	assert.Equal(t, "2024-05-01", view.Date)

	view, err = svc.LookupStatus(ctx, "005")
	require.NoError(t, err)
	assert.Equal(t, "Please visit the office with your ID.", view.Message)

	_, err = svc.LookupStatus(ctx, "999")
	assert.ErrorIs(t, err, ErrMemberNotFound)
	_, err = svc.LookupStatus(ctx, "  ")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberService_UpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to model.MemberStatus
		ok       bool
		notice   string
	}{
		{model.StatusPending, model.StatusAccepted, true, "EXISTING 001 has been accepted successfully"},
		{model.StatusRejected, model.StatusAccepted, true, "EXISTING 001 has been accepted successfully"},
		{model.StatusPending, model.StatusRejected, true, "EXISTING 001 has been rejected"},
		{model.StatusAccepted, model.StatusRejected, true, "EXISTING 001 has been rejected"},
		{model.StatusAccepted, model.StatusBanned, true, "EXISTING 001's registration has been canceled"},
		{model.StatusPending, model.StatusBanned, false, ""},
		{model.StatusBanned, model.StatusAccepted, false, ""},
		{model.StatusAccepted, model.StatusPending, false, ""},
		{model.StatusAccepted, model.StatusAccepted, false, ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			seed := seededMember("001", "a@example.com", "9000000001", tt.from)
			seed.DocID = "doc-1"
			svc, repo, notifier := newTestMemberService(t, seed)

			change, err := svc.UpdateStatus(context.Background(), "doc-1", tt.to, "  ")
			if !tt.ok {
				require.ErrorIs(t, err, ErrInvalidTransition)
				assert.Empty(t, notifier.notified)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.notice, change.Notice)
			stored, err := repo.Get(context.Background(), "doc-1")
			require.NoError(t, err)
			assert.Equal(t, tt.to, stored.Status)
			assert.Empty(t, stored.CustomMessage)
		})
	}
}

func TestMemberService_UpdateStatusNotifierFailureIsNotFatal(t *testing.T) {
	seed := seededMember("001", "a@example.com", "9000000001", model.StatusPending)
	seed.DocID = "doc-1"
	svc, _, notifier := newTestMemberService(t, seed)
	notifier.err = errors.New("smtp down")

	change, err := svc.UpdateStatus(context.Background(), "doc-1", model.StatusRejected, "Incomplete documents")
	require.NoError(t, err)
	assert.Equal(t, "Incomplete documents", change.Member.CustomMessage)
}

func TestMemberService_UpdateStatusUnknownMember(t *testing.T) {
	svc, _, _ := newTestMemberService(t)
	_, err := svc.UpdateStatus(context.Background(), "missing", model.StatusAccepted, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemberService_ListAndCounts(t *testing.T) {
	svc, _, _ := newTestMemberService(t,
		seededMember("001", "a@example.com", "9000000001", model.StatusPending),
		seededMember("002", "b@example.com", "9000000002", model.StatusAccepted),
		seededMember("003", "c@example.com", "9000000003", model.StatusAccepted),
		seededMember("004", "d@example.com", "9000000004", model.StatusBanned),
	)
	ctx := context.Background()

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusCounts{All: 4, Pending: 1, Accepted: 2, Banned: 1}, counts)

	accepted, err := svc.List(ctx, model.StatusAccepted)
	require.NoError(t, err)
	assert.Len(t, accepted, 2)

	m, err := svc.GetByMemberID(ctx, "003")
	require.NoError(t, err)
	assert.Equal(t, "c@example.com", m.Email)
}
