package dto

type NotificationRequest struct {
	Title string `json:"title"`
	Alert string `json:"alert" binding:"required"`
}

type TransactionRequest struct {
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Type        string  `json:"type" binding:"required,oneof=income expense"`
	Date        string  `json:"date" binding:"required"`
}

type LedgerReportQuery struct {
	View  string `form:"view"`
	Year  int    `form:"year"`
	Month int    `form:"month"`
}

// ActivityForm binds from multipart forms (with photos) and from JSON.
type ActivityForm struct {
	Title        string   `form:"title" json:"title"`
	Description  string   `form:"description" json:"description"`
	Date         string   `form:"date" json:"date"`
	RemovePhotos []string `form:"removePhotos" json:"removePhotos"`
}
