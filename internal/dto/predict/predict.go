package predictdto

// PredictRequest POST /predict 请求体
type PredictRequest struct {
	Query string `json:"query" binding:"required"`
}

// PredictResponse POST /predict 成功响应
type PredictResponse struct {
	Output Output `json:"output"`
}

type Output struct {
	Raw string `json:"raw"`
}

// HealthResponse GET /health 响应
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

const StatusHealthy = "healthy"
