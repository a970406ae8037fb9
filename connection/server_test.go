package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kalavedi/config"
	"kalavedi/repository/memory"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	app    *App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		ServerConfig: config.ServerConfig{
			Store:         "memory",
			DraftTTL:      time.Minute,
			StatusPageURL: "/registration-status",
		},
		AuthConfig: config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
	}
	logger := zap.NewNop()
	app, err := NewApp(context.Background(), cfg, memory.NewStore(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	_, err = app.Auth.CreateAdmin(context.Background(), "Secretary@bkv.org", "Secretary", "correct horse")
	require.NoError(t, err)

	return &testServer{t: t, router: NewRouter(cfg, app, logger), app: app}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

func (s *testServer) login() string {
	s.t.Helper()
	w := s.json(http.MethodPost, "/api/admin/login", "", gin.H{"email": "secretary@bkv.org", "password": "correct horse"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token.AccessToken)
	return resp.Token.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 5), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

var personal = map[string]string{
	"fullName":   "anu joseph",
	"fatherName": "joseph k",
	"age":        "24",
	"gender":     "Female",
	"address":    "vazhakkad",
	"bloodGroup": "B+",
	"hobbies":    "drama",
}

var contact = map[string]string{
	"phoneNumber": "9876543210",
	"email":       "anu@example.com",
	"education":   "bsc",
	"job":         "musician",
	"nomineeName": "mary",
}

var documents = map[string]string{
	"hasCriminalCase": "no",
	"isClubMember":    "yes",
}

func (s *testServer) wizard(personal, contact map[string]string) (string, *httptest.ResponseRecorder) {
	t := s.t
	t.Helper()
	w := s.json(http.MethodPost, "/api/registrations", "", gin.H{"lang": "en"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)
	base := "/api/registrations/" + id

	w = s.json(http.MethodPatch, base+"/fields", "", gin.H{"fields": personal})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.json(http.MethodPost, base+"/next", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.json(http.MethodPatch, base+"/fields", "", gin.H{"fields": contact})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return id, s.json(http.MethodPost, base+"/next", "", nil)
}

func TestServer_RegistrationToCertificate(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	id, w := s.wizard(personal, contact)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "documents", decode(t, w)["stepName"])
	base := "/api/registrations/" + id

	w = s.json(http.MethodPatch, base+"/fields", "", gin.H{"fields": documents})
	require.Equal(t, http.StatusOK, w.Code)

	img := pngBytes(t)
	for _, field := range []string{"photo", "signature"} {
		body, ct := multipartBody(t, nil, map[string][]byte{"file": img})
		req := httptest.NewRequest(http.MethodPut, base+"/attachments/"+field, body)
		req.Header.Set("Content-Type", ct)
		w = s.do(req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = s.json(http.MethodPost, base+"/submit", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "affidavit must be accepted first")

	w = s.json(http.MethodPut, base+"/affidavit", "", gin.H{"accepted": true})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.json(http.MethodPost, base+"/submit", "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	submitted := decode(t, w)
	assert.Equal(t, "001", submitted["memberId"])
	assert.Equal(t, "pending", submitted["status"])

	w = s.json(http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "draft is dropped after submit")

	w = s.json(http.MethodGet, "/api/members/status/001", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode(t, w)
	assert.Equal(t, "pending", status["status"])
	assert.Equal(t, "ANU JOSEPH", status["name"])
	assert.Equal(t, "Your registration is currently being reviewed.", status["message"])

	w = s.json(http.MethodGet, "/api/members/status/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Registration ID not found", decode(t, w)["error"])

	w = s.json(http.MethodGet, "/api/admin/members", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := s.login()
	w = s.json(http.MethodGet, "/api/admin/members?status=pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)
	require.EqualValues(t, 1, list["count"])
	docID := list["members"].([]interface{})[0].(map[string]interface{})["id"].(string)

	w = s.json(http.MethodPut, "/api/admin/members/"+docID+"/status", token, gin.H{"status": "banned"})
	assert.Equal(t, http.StatusConflict, w.Code, "a pending member cannot be banned")

	w = s.json(http.MethodPut, "/api/admin/members/"+docID+"/status", token, gin.H{"status": "accepted", "customMessage": "See you on Friday"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ANU JOSEPH has been accepted successfully", decode(t, w)["message"])

	w = s.json(http.MethodGet, "/api/members/status/001", "", nil)
	assert.Equal(t, "See you on Friday", decode(t, w)["message"])

	w = s.json(http.MethodGet, "/api/admin/members/counts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	counts := decode(t, w)
	assert.EqualValues(t, 1, counts["all"])
	assert.EqualValues(t, 1, counts["accepted"])

	w = s.json(http.MethodGet, "/api/admin/members/"+docID+"/certificate", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ANU JOSEPH_BKV_Member_Certificate.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestServer_DuplicateBlocksContactStep(t *testing.T) {
	s := newTestServer(t)

	body, ct := multipartBody(t, merge(personal, contact, documents, map[string]string{"affidavit": "true"}),
		map[string][]byte{"photo": pngBytes(t), "signature": pngBytes(t)})
	req := httptest.NewRequest(http.MethodPost, "/api/members/register", body)
	req.Header.Set("Content-Type", ct)
	w := s.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "001", decode(t, w)["memberId"])

	otherPhone := merge(contact, map[string]string{"phoneNumber": "9000000000"})
	_, w = s.wizard(personal, otherPhone)
	require.Equal(t, http.StatusConflict, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "email", resp["field"])
	assert.Equal(t, "001", resp["memberId"])
	assert.Equal(t, "You are already registered with this Email. Check Status With Your member ID is 001", resp["error"])
	assert.Equal(t, "/registration-status?id=001", resp["checkStatusUrl"])

	w = s.json(http.MethodPost, "/api/members/check-duplicate", "", gin.H{"phoneNumber": "9876543210"})
	require.Equal(t, http.StatusOK, w.Code)
	check := decode(t, w)
	assert.Equal(t, true, check["exists"])
	assert.Equal(t, "phoneNumber", check["field"])

	w = s.json(http.MethodPost, "/api/members/check-duplicate", "", gin.H{"email": "new@example.com"})
	assert.Equal(t, false, decode(t, w)["exists"])
}

func TestServer_WizardRejectsIncompleteStep(t *testing.T) {
	s := newTestServer(t)
	w := s.json(http.MethodPost, "/api/registrations", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = s.json(http.MethodPut, "/api/registrations/"+id+"/fields/age", "", gin.H{"value": "16"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Age must be 18 or above", decode(t, w)["errors"].(map[string]interface{})["age"])

	w = s.json(http.MethodPost, "/api/registrations/"+id+"/next", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Please fill all required fields before proceeding.", decode(t, w)["error"])

	w = s.json(http.MethodPut, "/api/registrations/"+id+"/fields/nickname", "", gin.H{"value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodGet, "/api/registrations/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_AdminContent(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	w := s.json(http.MethodGet, "/api/notification", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", decode(t, w)["alert"])

	w = s.json(http.MethodPut, "/api/admin/notification", "", gin.H{"alert": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.json(http.MethodPut, "/api/admin/notification", token, gin.H{"title": "Onam", "alert": "Registrations close Friday"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.json(http.MethodGet, "/api/notification", "", nil)
	assert.Equal(t, "Registrations close Friday", decode(t, w)["alert"])

	w = s.json(http.MethodPost, "/api/admin/activities", token, gin.H{"title": "Drama night", "description": "Annual play", "date": "2024-09-14"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.json(http.MethodGet, "/api/activities", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["activities"], 1)

	body, ct := multipartBody(t, map[string]string{"title": "Camp", "description": "Art camp"}, map[string][]byte{"photos": pngBytes(t)})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/activities", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	w = s.do(req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "uploads need Cloudinary")

	for _, tx := range []gin.H{
		{"description": "Membership fees", "amount": 1500, "type": "income", "date": "2024-03-10"},
		{"description": "Stage rent", "amount": 400, "type": "expense", "date": "2024-03-12"},
	} {
		w = s.json(http.MethodPost, "/api/admin/transactions", token, tx)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w = s.json(http.MethodPost, "/api/admin/transactions", token, gin.H{"description": "x", "amount": -1, "type": "income", "date": "2024-03-10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodGet, "/api/admin/transactions?view=monthly&year=2024&month=3", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	period := decode(t, w)["period"].(map[string]interface{})
	assert.EqualValues(t, 1500, period["income"])
	assert.EqualValues(t, 400, period["expense"])
	assert.EqualValues(t, 1100, period["balance"])

	w = s.json(http.MethodGet, "/api/admin/transactions?view=weekly", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "kalavedi_http_requests_total"))
}

func TestServer_LoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t)
	w := s.json(http.MethodPost, "/api/admin/login", "", gin.H{"email": "secretary@bkv.org", "password": "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.json(http.MethodPost, "/api/admin/login", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func merge(maps ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
