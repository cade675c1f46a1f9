package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	predictdto "github.com/agenticrag/backend/internal/dto/predict"
	"github.com/agenticrag/backend/internal/service/crew"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// Runner 执行一次研究 -> 写作链路
type Runner interface {
	Run(ctx context.Context, query string) (*crew.Result, error)
}

type PredictHandler struct {
	runner Runner
}

func NewPredictHandler(runner Runner) *PredictHandler {
	return &PredictHandler{
		runner: runner,
	}
}

// Predict 同步执行链路，请求会阻塞到两次模型调用全部完成
func (h *PredictHandler) Predict(c *gin.Context) {
	var req predictdto.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, predictdto.ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, predictdto.ErrorResponse{Error: crew.ErrEmptyQuery.Error()})
		return
	}

	result, err := h.runner.Run(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, crew.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, predictdto.ErrorResponse{Error: err.Error()})
			return
		}
		klog.Errorf("[PredictHandler] 执行失败: error=%v", err)
		c.JSON(http.StatusInternalServerError, predictdto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, predictdto.PredictResponse{
		Output: predictdto.Output{Raw: result.Raw},
	})
}

// Health 存活探针，不检查模型后端
func (h *PredictHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, predictdto.HealthResponse{Status: predictdto.StatusHealthy})
}
