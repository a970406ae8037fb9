package activity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kalavedi/controller"
	"kalavedi/dto"
	"kalavedi/middleware"
	"kalavedi/model"
	"kalavedi/services"
)

const maxPhotoSize = 10 << 20

type Deps struct {
	Activities *services.ActivityService
	Tokens     middleware.TokenParser
	Logger     *zap.Logger
}

func ActivityController(router *gin.Engine, deps Deps) {
	public := router.Group("/api/activities")
	{
		public.GET("", func(c *gin.Context) {
			ListActivities(c, deps)
		})
		public.GET("/:id", func(c *gin.Context) {
			GetActivity(c, deps)
		})
	}

	admin := router.Group("/api/admin/activities",
		middleware.AccessTokenMiddleware(deps.Tokens),
		middleware.RoleMiddleware(services.RoleAdmin),
	)
	{
		admin.POST("", func(c *gin.Context) {
			CreateActivity(c, deps)
		})
		admin.PUT("/:id", func(c *gin.Context) {
			UpdateActivity(c, deps)
		})
		admin.DELETE("/:id", func(c *gin.Context) {
			DeleteActivity(c, deps)
		})
	}
}

func ListActivities(c *gin.Context, deps Deps) {
	activities, err := deps.Activities.List(c.Request.Context())
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

func GetActivity(c *gin.Context, deps Deps) {
	a, err := deps.Activities.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func bindActivity(c *gin.Context) (dto.ActivityForm, []services.Attachment, bool) {
	var form dto.ActivityForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return form, nil, false
	}
	files, err := controller.ReadAttachments(c, "photos", maxPhotoSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return form, nil, false
	}
	return form, files, true
}

func CreateActivity(c *gin.Context, deps Deps) {
	form, files, ok := bindActivity(c)
	if !ok {
		return
	}
	a, err := deps.Activities.Create(c.Request.Context(), services.ActivityInput{
		Title:       form.Title,
		Description: form.Description,
		Date:        form.Date,
	}, files)
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Activity created successfully", "activity": a})
}

func UpdateActivity(c *gin.Context, deps Deps) {
	form, files, ok := bindActivity(c)
	if !ok {
		return
	}
	a, err := deps.Activities.Update(c.Request.Context(), c.Param("id"), services.ActivityInput{
		Title:       form.Title,
		Description: form.Description,
		Date:        form.Date,
	}, files, form.RemovePhotos)
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Activity updated successfully", "activity": a})
}

func DeleteActivity(c *gin.Context, deps Deps) {
	if err := deps.Activities.Delete(c.Request.Context(), c.Param("id")); err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Activity deleted successfully"})
}
