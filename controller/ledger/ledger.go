package ledger

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

type Deps struct {
	Ledger *services.LedgerService
	Tokens middleware.TokenParser
	Logger *zap.Logger
}

func LedgerController(router *gin.Engine, deps Deps) {
	routes := router.Group("/api/admin/transactions",
		middleware.AccessTokenMiddleware(deps.Tokens),
		middleware.RoleMiddleware(services.RoleAdmin),
	)
	{
		routes.GET("", func(c *gin.Context) {
			Report(c, deps)
		})
		routes.POST("", func(c *gin.Context) {
			CreateTransaction(c, deps)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			UpdateTransaction(c, deps)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteTransaction(c, deps)
		})
	}
}

func input(req dto.TransactionRequest) services.TransactionInput {
	return services.TransactionInput{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        model.TransactionType(req.Type),
		Date:        req.Date,
	}
}

func Report(c *gin.Context, deps Deps) {
	var q dto.LedgerReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}
	if q.View == "" {
		q.View = services.ViewOverview
	}
	report, err := deps.Ledger.Report(c.Request.Context(), services.LedgerFilter{View: q.View, Year: q.Year, Month: q.Month})
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func CreateTransaction(c *gin.Context, deps Deps) {
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidTransaction.Error()})
		return
	}
	tx, err := deps.Ledger.Create(c.Request.Context(), input(req))
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Transaction added successfully", "transaction": tx})
}

func UpdateTransaction(c *gin.Context, deps Deps) {
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidTransaction.Error()})
		return
	}
	tx, err := deps.Ledger.Update(c.Request.Context(), c.Param("id"), input(req))
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction updated successfully", "transaction": tx})
}

func DeleteTransaction(c *gin.Context, deps Deps) {
	if err := deps.Ledger.Delete(c.Request.Context(), c.Param("id")); err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
