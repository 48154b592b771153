// Package interfaces 树定价服务接口层
package interfaces

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"

	"github.com/wyfcoding/treepricing/internal/treepricing/application"
)

// HTTPHandler HTTP 接口处理器
type HTTPHandler struct {
	commandService *application.PricingCommandService
	queryService   *application.PricingQueryService
}

// NewHTTPHandler 创建 HTTP 处理器
func NewHTTPHandler(
	commandService *application.PricingCommandService,
	queryService *application.PricingQueryService,
) *HTTPHandler {
	return &HTTPHandler{
		commandService: commandService,
		queryService:   queryService,
	}
}

// RegisterRoutes 注册路由
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	pricing := r.Group("/treepricing")
	{
		pricing.POST("/barrier/price", h.PriceBarrierOption)
		pricing.POST("/barrier/price/batch", h.BatchPriceBarrierOptions)
		pricing.GET("/results/:symbol/latest", h.GetLatestResult)
		pricing.GET("/results/:symbol/history", h.GetResultHistory)
		pricing.POST("/vanilla/reference", h.GetVanillaReference)
	}
}

// BarrierPricingRequest 障碍期权定价请求
type BarrierPricingRequest struct {
	Symbol          string    `json:"symbol" binding:"required"`
	PutCall         string    `json:"put_call" binding:"required"`
	BarrierType     string    `json:"barrier_type" binding:"required"`
	StrikePrice     float64   `json:"strike_price" binding:"required"`
	BarrierLevel    float64   `json:"barrier_level"`
	BarrierLevels   []float64 `json:"barrier_levels"`
	Rebate          []float64 `json:"rebate"`
	ExpiryDate      int64     `json:"expiry_date" binding:"required"`
	UnderlyingPrice float64   `json:"underlying_price"`
	Volatility      float64   `json:"volatility" binding:"required"`
	RiskFreeRate    float64   `json:"risk_free_rate"`
	DividendYield   float64   `json:"dividend_yield"`
	NumberOfSteps   int       `json:"number_of_steps"`
}

func (req *BarrierPricingRequest) toCommand() application.PriceBarrierOptionCommand {
	return application.PriceBarrierOptionCommand{
		Symbol:          req.Symbol,
		PutCall:         req.PutCall,
		BarrierType:     req.BarrierType,
		StrikePrice:     req.StrikePrice,
		BarrierLevel:    req.BarrierLevel,
		BarrierLevels:   req.BarrierLevels,
		Rebate:          req.Rebate,
		ExpiryDate:      req.ExpiryDate,
		UnderlyingPrice: req.UnderlyingPrice,
		Volatility:      req.Volatility,
		RiskFreeRate:    req.RiskFreeRate,
		DividendYield:   req.DividendYield,
		NumberOfSteps:   req.NumberOfSteps,
	}
}

// PriceBarrierOption 障碍期权定价
func (h *HTTPHandler) PriceBarrierOption(c *gin.Context) {
	var req BarrierPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.commandService.PriceBarrierOption(c.Request.Context(), req.toCommand())
	if err != nil {
		logging.Error(c.Request.Context(), "failed to price barrier option", "symbol", req.Symbol, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, result)
}

// BatchPricingRequest 批量定价请求
type BatchPricingRequest struct {
	BatchID   string                  `json:"batch_id" binding:"required"`
	Contracts []BarrierPricingRequest `json:"contracts" binding:"required"`
}

// BatchPriceBarrierOptions 批量定价
func (h *HTTPHandler) BatchPriceBarrierOptions(c *gin.Context) {
	var req BatchPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	cmd := application.BatchPriceBarrierOptionsCommand{BatchID: req.BatchID}
	for _, contract := range req.Contracts {
		cmd.Contracts = append(cmd.Contracts, contract.toCommand())
	}

	result, err := h.commandService.BatchPriceBarrierOptions(c.Request.Context(), cmd)
	if err != nil {
		logging.Error(c.Request.Context(), "failed to batch price", "batch_id", req.BatchID, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, result)
}

// GetLatestResult 获取最新定价结果
func (h *HTTPHandler) GetLatestResult(c *gin.Context) {
	symbol := c.Param("symbol")

	result, err := h.queryService.GetLatestResult(c.Request.Context(), symbol)
	if err != nil {
		logging.Error(c.Request.Context(), "failed to query latest result", "symbol", symbol, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if result == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "no pricing result", "")
		return
	}

	response.Success(c, result)
}

// GetResultHistory 获取定价历史
func (h *HTTPHandler) GetResultHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	results, err := h.queryService.GetResultHistory(c.Request.Context(), symbol, limit)
	if err != nil {
		logging.Error(c.Request.Context(), "failed to query result history", "symbol", symbol, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, results)
}

// VanillaReferenceRequest 解析参考价请求
type VanillaReferenceRequest struct {
	Symbol          string  `json:"symbol" binding:"required"`
	PutCall         string  `json:"put_call" binding:"required"`
	StrikePrice     float64 `json:"strike_price" binding:"required"`
	ExpiryDate      int64   `json:"expiry_date" binding:"required"`
	UnderlyingPrice float64 `json:"underlying_price"`
	Volatility      float64 `json:"volatility" binding:"required"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
	DividendYield   float64 `json:"dividend_yield"`
}

// GetVanillaReference 计算 Black-Scholes 参考价
func (h *HTTPHandler) GetVanillaReference(c *gin.Context) {
	var req VanillaReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.queryService.GetVanillaReference(c.Request.Context(), application.VanillaReferenceQuery{
		Symbol:          req.Symbol,
		PutCall:         req.PutCall,
		StrikePrice:     req.StrikePrice,
		ExpiryDate:      req.ExpiryDate,
		UnderlyingPrice: req.UnderlyingPrice,
		Volatility:      req.Volatility,
		RiskFreeRate:    req.RiskFreeRate,
		DividendYield:   req.DividendYield,
	})
	if err != nil {
		logging.Error(c.Request.Context(), "failed to compute vanilla reference", "symbol", req.Symbol, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, result)
}
