package registration

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kalavedi/controller"
	"kalavedi/dto"
	"kalavedi/services"
)

// Deps are the collaborators of the public registration routes. Captcha may
// be nil when reCAPTCHA is not configured.
type Deps struct {
	Drafts        *services.DraftStore
	Members       *services.MemberService
	Captcha       services.CaptchaVerifier
	StatusPageURL string
	Logger        *zap.Logger
}

const (
	captchaHeader = "X-Recaptcha-Token"
	captchaField  = "captchaToken"
)

func RegistrationController(router *gin.Engine, deps Deps) {
	drafts := router.Group("/api/registrations")
	{
		drafts.POST("", func(c *gin.Context) {
			CreateDraft(c, deps)
		})
		drafts.GET("/:id", func(c *gin.Context) {
			GetDraft(c, deps)
		})
		drafts.DELETE("/:id", func(c *gin.Context) {
			DeleteDraft(c, deps)
		})
		drafts.PUT("/:id/fields/:field", func(c *gin.Context) {
			SetField(c, deps)
		})
		drafts.PATCH("/:id/fields", func(c *gin.Context) {
			SetFields(c, deps)
		})
		drafts.PUT("/:id/attachments/:field", func(c *gin.Context) {
			AttachFile(c, deps)
		})
		drafts.DELETE("/:id/attachments/:field", func(c *gin.Context) {
			DetachFile(c, deps)
		})
		drafts.PUT("/:id/affidavit", func(c *gin.Context) {
			SetAffidavit(c, deps)
		})
		drafts.POST("/:id/next", func(c *gin.Context) {
			NextStep(c, deps)
		})
		drafts.POST("/:id/prev", func(c *gin.Context) {
			PrevStep(c, deps)
		})
		drafts.POST("/:id/submit", func(c *gin.Context) {
			SubmitDraft(c, deps)
		})
	}

	members := router.Group("/api/members")
	{
		members.POST("/check-duplicate", func(c *gin.Context) {
			CheckDuplicate(c, deps)
		})
		members.POST("/register", func(c *gin.Context) {
			Register(c, deps)
		})
		members.GET("/status/:memberId", func(c *gin.Context) {
			LookupStatus(c, deps)
		})
	}
}

func draftResponse(f *services.RegistrationForm) dto.DraftResponse {
	values := make(map[string]string, len(f.Values))
	for k, v := range f.Values {
		values[k] = v
	}
	errs := make(map[string]string, len(f.Errors))
	for k, v := range f.Errors {
		errs[k] = v
	}
	return dto.DraftResponse{
		ID:           f.ID,
		Lang:         f.Lang,
		Step:         int(f.Step),
		StepName:     f.Step.String(),
		Values:       values,
		Errors:       errs,
		Affidavit:    f.Affidavit,
		HasPhoto:     f.Photo != nil,
		HasSignature: f.Signature != nil,
		MemberID:     f.MemberID,
	}
}

// writeError adds the status page link to a duplicate response.
func writeError(c *gin.Context, deps Deps, lang string, err error) {
	var dup *services.DuplicateError
	if errors.As(err, &dup) {
		c.JSON(http.StatusConflict, gin.H{
			"error":          dup.Message(lang),
			"field":          dup.Field,
			"memberId":       dup.MemberID,
			"checkStatusUrl": statusURL(deps.StatusPageURL, dup.MemberID),
		})
		return
	}
	controller.WriteError(c, deps.Logger, err)
}

func statusURL(base, memberID string) string {
	return base + "?" + url.Values{"id": {memberID}}.Encode()
}

func verifyCaptcha(c *gin.Context, deps Deps, token, action string) error {
	if deps.Captcha == nil {
		return nil
	}
	if token == "" {
		token = c.GetHeader(captchaHeader)
	}
	_, err := deps.Captcha.Verify(c.Request.Context(), token, action, c.ClientIP(), c.Request.UserAgent())
	if err != nil && !errors.Is(err, services.ErrCaptchaFailed) {
		deps.Logger.Error("reCAPTCHA assessment failed", zap.Error(err))
	}
	return err
}

func CreateDraft(c *gin.Context, deps Deps) {
	var req dto.CreateDraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}
	lang := req.Lang
	if lang == "" {
		lang = controller.Lang(c)
	}
	form := deps.Drafts.Create(lang)
	c.JSON(http.StatusCreated, draftResponse(form))
}

func GetDraft(c *gin.Context, deps Deps) {
	var resp dto.DraftResponse
	err := deps.Drafts.Do(c.Param("id"), func(f *services.RegistrationForm) error {
		resp = draftResponse(f)
		return nil
	})
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func DeleteDraft(c *gin.Context, deps Deps) {
	deps.Drafts.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// update runs fn on the draft and answers with the draft state, or with the
// error fn returned.
func update(c *gin.Context, deps Deps, fn func(f *services.RegistrationForm) error) {
	var resp dto.DraftResponse
	lang := controller.Lang(c)
	err := deps.Drafts.Do(c.Param("id"), func(f *services.RegistrationForm) error {
		lang = f.Lang
		err := fn(f)
		resp = draftResponse(f)
		return err
	})
	if err != nil {
		writeError(c, deps, lang, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func SetField(c *gin.Context, deps Deps) {
	var req dto.SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	update(c, deps, func(f *services.RegistrationForm) error {
		return f.Set(c.Param("field"), req.Value)
	})
}

func SetFields(c *gin.Context, deps Deps) {
	var req dto.SetFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	update(c, deps, func(f *services.RegistrationForm) error {
		for field, value := range req.Fields {
			if err := f.Set(field, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func AttachFile(c *gin.Context, deps Deps) {
	a, err := controller.ReadAttachment(c, "file", services.MaxAttachmentSize)
	if errors.Is(err, controller.ErrNoFile) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	update(c, deps, func(f *services.RegistrationForm) error {
		return f.Attach(c.Param("field"), a)
	})
}

func DetachFile(c *gin.Context, deps Deps) {
	update(c, deps, func(f *services.RegistrationForm) error {
		f.Detach(c.Param("field"))
		return nil
	})
}

func SetAffidavit(c *gin.Context, deps Deps) {
	var req dto.AffidavitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	update(c, deps, func(f *services.RegistrationForm) error {
		f.SetAffidavit(req.Accepted)
		return nil
	})
}

func NextStep(c *gin.Context, deps Deps) {
	update(c, deps, func(f *services.RegistrationForm) error {
		return f.Next(c.Request.Context(), deps.Members)
	})
}

func PrevStep(c *gin.Context, deps Deps) {
	update(c, deps, func(f *services.RegistrationForm) error {
		f.Prev()
		return nil
	})
}

func SubmitDraft(c *gin.Context, deps Deps) {
	var req dto.SubmitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}
	if err := verifyCaptcha(c, deps, req.CaptchaToken, "submit"); err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}

	var (
		lang   = controller.Lang(c)
		resp   dto.DraftResponse
		status string
	)
	err := deps.Drafts.Do(c.Param("id"), func(f *services.RegistrationForm) error {
		lang = f.Lang
		m, err := f.Submit(c.Request.Context(), deps.Members)
		resp = draftResponse(f)
		if m != nil {
			status = string(m.Status)
		}
		return err
	})
	if err != nil {
		writeError(c, deps, lang, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Registration submitted successfully",
		"memberId": resp.MemberID,
		"status":   status,
		"draft":    resp,
	})
}

func CheckDuplicate(c *gin.Context, deps Deps) {
	var req dto.DuplicateCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	res, err := deps.Members.CheckDuplicate(c.Request.Context(), req.Email, req.PhoneNumber)
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	if res.Exists {
		dup := &services.DuplicateError{Field: res.Field, MemberID: res.MemberID}
		c.JSON(http.StatusOK, gin.H{
			"exists":         true,
			"field":          res.Field,
			"memberId":       res.MemberID,
			"message":        dup.Message(controller.Lang(c)),
			"checkStatusUrl": statusURL(deps.StatusPageURL, res.MemberID),
		})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Register accepts the complete form as multipart data and runs every
// wizard step in one request.
func Register(c *gin.Context, deps Deps) {
	if err := c.Request.ParseMultipartForm(2 * services.MaxAttachmentSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := verifyCaptcha(c, deps, c.PostForm(captchaField), "register"); err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}

	values := map[string]string{}
	for field, vs := range c.Request.PostForm {
		if services.IsFormField(field) && len(vs) > 0 {
			values[field] = vs[0]
		}
	}

	var attachments [2]*services.Attachment
	for i, field := range []string{services.FieldPhoto, services.FieldSignature} {
		a, err := controller.ReadAttachment(c, field, services.MaxAttachmentSize)
		if errors.Is(err, controller.ErrNoFile) {
			continue
		}
		if err != nil {
			controller.WriteError(c, deps.Logger, err)
			return
		}
		attachments[i] = a
	}

	lang := controller.Lang(c)
	form := services.NewRegistrationForm("", lang)
	affidavit := c.PostForm("affidavit") == "true" || c.PostForm("affidavit") == "on"
	m, err := form.Apply(c.Request.Context(), values, attachments[0], attachments[1], affidavit, deps.Members, deps.Members)
	if err != nil {
		writeError(c, deps, lang, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Registration submitted successfully",
		"id":       m.DocID,
		"memberId": m.MemberID,
		"status":   m.Status,
	})
}

func LookupStatus(c *gin.Context, deps Deps) {
	view, err := deps.Members.LookupStatus(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
