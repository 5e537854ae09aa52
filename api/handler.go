package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/zhengfang04211x-png/PTA/backtest"
	"github.com/zhengfang04211x-png/PTA/ingest"
)

var validate = validator.New()

type Handler struct {
	log             zerolog.Logger
	defaultDataFile string
}

func NewHandler(log zerolog.Logger, defaultDataFile string) *Handler {
	return &Handler{log: log, defaultDataFile: defaultDataFile}
}

// BarPayload 行情数据行（内联提交时使用）
type BarPayload struct {
	Date       string   `json:"date" validate:"required"`
	Price      float64  `json:"futures_price" validate:"gt=0"`
	LeadSpread float64  `json:"lead_spread"`
	Margin     *float64 `json:"processing_margin"`
	Basis      *float64 `json:"basis"`
}

// BacktestRequest 回测请求：数据来源二选一（CSV路径或内联bars），
// config 为部分覆盖，未给出的参数取默认值
type BacktestRequest struct {
	DataPath string          `json:"data_path" validate:"required_without=Bars"`
	Bars     []BarPayload    `json:"bars" validate:"omitempty,min=2,dive"`
	Config   json.RawMessage `json:"config"`
}

type SweepRequest struct {
	DataPath string             `json:"data_path" validate:"required_without=Bars"`
	Bars     []BarPayload       `json:"bars" validate:"omitempty,min=2,dive"`
	Config   json.RawMessage    `json:"config"`
	Sweep    backtest.SweepSpec `json:"sweep"`
}

// RunBacktest 执行单次回测
func (h *Handler) RunBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	bars, cfg, err := h.prepare(req.DataPath, req.Bars, req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	res, err := backtest.Run(bars, cfg)
	if err != nil {
		observeRun("error", time.Since(start), 0)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	observeRun("ok", time.Since(start), len(res.Trades))

	h.log.Info().
		Str("run_id", res.RunID).
		Int("bars", len(bars)).
		Int("trades", len(res.Trades)).
		Msg("回测完成")
	c.JSON(http.StatusOK, res)
}

// RunSweep 执行参数扫描（每个配置独立引擎实例并发运行）
func (h *Handler) RunSweep(c *gin.Context) {
	var req SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	bars, cfg, err := h.prepare(req.DataPath, req.Bars, req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	configs := req.Sweep.Expand(cfg)
	start := time.Now()
	results := backtest.RunSweep(bars, configs)
	observeRun("sweep", time.Since(start), 0)

	h.log.Info().
		Int("bars", len(bars)).
		Int("configs", len(configs)).
		Msg("参数扫描完成")
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handler) prepare(dataPath string, payload []BarPayload, overrides json.RawMessage) ([]backtest.Bar, backtest.Config, error) {
	cfg := backtest.DefaultConfig()
	if len(overrides) > 0 {
		if err := json.Unmarshal(overrides, &cfg); err != nil {
			return nil, cfg, fmt.Errorf("invalid config overrides: %w", err)
		}
	}

	if len(payload) > 0 {
		bars, err := convertBars(payload)
		return bars, cfg, err
	}

	path := dataPath
	if path == "" {
		path = h.defaultDataFile
	}
	if path == "" {
		return nil, cfg, fmt.Errorf("no data source: provide data_path or bars, or configure data.file")
	}
	bars, err := ingest.LoadCSV(path)
	return bars, cfg, err
}

func convertBars(payload []BarPayload) ([]backtest.Bar, error) {
	bars := make([]backtest.Bar, 0, len(payload))
	for i, p := range payload {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, fmt.Errorf("bars[%d]: unparseable date %q", i, p.Date)
		}
		b := backtest.Bar{Date: date, Price: p.Price, LeadSpread: p.LeadSpread}
		if p.Margin != nil {
			b.Margin, b.HasMargin = *p.Margin, true
		}
		if p.Basis != nil {
			b.Basis, b.HasBasis = *p.Basis, true
		}
		bars = append(bars, b)
	}
	return bars, nil
}
