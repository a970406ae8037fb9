package member

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kalavedi/controller"
	"kalavedi/dto"
	"kalavedi/middleware"
	"kalavedi/model"
	"kalavedi/services"
)

type Deps struct {
	Members      *services.MemberService
	Certificates *services.CertificateRenderer
	Tokens       middleware.TokenParser
	Logger       *zap.Logger
}

func MemberController(router *gin.Engine, deps Deps) {
	routes := router.Group("/api/admin/members",
		middleware.AccessTokenMiddleware(deps.Tokens),
		middleware.RoleMiddleware(services.RoleAdmin),
	)
	{
		routes.GET("", func(c *gin.Context) {
			ListMembers(c, deps)
		})
		routes.GET("/counts", func(c *gin.Context) {
			CountMembers(c, deps)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetMember(c, deps)
		})
		routes.PUT("/:id/status", func(c *gin.Context) {
			UpdateStatus(c, deps)
		})
		routes.GET("/:id/certificate", func(c *gin.Context) {
			DownloadCertificate(c, deps)
		})
	}
}

func ListMembers(c *gin.Context, deps Deps) {
	var status model.MemberStatus
	if s := c.Query("status"); s != "" && s != "all" {
		parsed, err := model.ParseMemberStatus(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = parsed
	}

	members, err := deps.Members.List(c.Request.Context(), status)
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "count": len(members)})
}

func CountMembers(c *gin.Context, deps Deps) {
	counts, err := deps.Members.Counts(c.Request.Context())
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func GetMember(c *gin.Context, deps Deps) {
	m, err := deps.Members.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func UpdateStatus(c *gin.Context, deps Deps) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := model.ParseMemberStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	change, err := deps.Members.UpdateStatus(c.Request.Context(), c.Param("id"), status, req.CustomMessage)
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": change.Notice,
		"member":  change.Member,
	})
}

// DownloadCertificate renders into a buffer first so a failed render still
// gets a JSON error instead of a truncated PDF.
func DownloadCertificate(c *gin.Context, deps Deps) {
	m, err := deps.Members.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}

	var buf bytes.Buffer
	if err := deps.Certificates.Render(c.Request.Context(), m, &buf); err != nil {
		controller.WriteError(c, deps.Logger, fmt.Errorf("render certificate for %s: %w", m.MemberID, err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.CertificateFileName(m)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
