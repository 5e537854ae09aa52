package ptactl

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/zhengfang04211x-png/PTA/backtest"
	"github.com/zhengfang04211x-png/PTA/ingest"
	"github.com/zhengfang04211x-png/PTA/internal/logging"
)

func Run(args []string) int {
	fs := flag.NewFlagSet("pta", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		configPath string
		dataPath   string
		outPath    string
		jsonOut    bool
		chartPath  string
		sweepMode  bool
	)

	fs.StringVar(&configPath, "config", "backtest.yaml", "回测/扫描配置文件路径(YAML格式)，不存在时使用默认参数")
	fs.StringVar(&dataPath, "data", "", "行情CSV文件路径(必填；支持中文/英文列名，GBK/UTF-8编码)")
	fs.StringVar(&outPath, "out", "", "输出文件路径(默认stdout)")
	fs.BoolVar(&jsonOut, "json", false, "输出使用JSON格式(默认文本报告)")
	fs.StringVar(&chartPath, "chart", "", "资金曲线图(SVG)输出路径")
	fs.BoolVar(&sweepMode, "sweep", false, "按配置文件 sweep 段做参数扫描并退出")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := logging.New("info", "console")

	if dataPath == "" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  pta -data pta.csv [-config backtest.yaml] [-out report.json] [-json] [-chart equity.svg]")
		fmt.Fprintln(os.Stderr, "  pta -sweep -data pta.csv -config backtest.yaml [-out sweep.json]")
		fmt.Fprintln(os.Stderr, "  pta -serve [-config config.yaml]")
		return 2
	}

	fileCfg, err := loadFileConfig(configPath)
	if err != nil {
		log.Error().Err(err).Str("path", configPath).Msg("加载回测配置失败")
		return 1
	}

	bars, err := ingest.LoadCSV(dataPath)
	if err != nil {
		log.Error().Err(err).Str("path", dataPath).Msg("加载行情数据失败")
		return 1
	}
	log.Info().Int("bars", len(bars)).
		Str("from", bars[0].Date.Format("2006-01-02")).
		Str("to", bars[len(bars)-1].Date.Format("2006-01-02")).
		Msg("行情数据加载完成")

	if sweepMode {
		if err := runSweep(bars, fileCfg, outPath, jsonOut); err != nil {
			log.Error().Err(err).Msg("参数扫描失败")
			return 1
		}
		return 0
	}

	if err := runBacktest(bars, fileCfg.Backtest, outPath, jsonOut, chartPath); err != nil {
		log.Error().Err(err).Msg("回测失败")
		return 1
	}
	return 0
}

// 配置文件缺失时退回默认参数，显式给错路径仍然报错
func loadFileConfig(path string) (backtest.FileConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && path == "backtest.yaml" {
		return backtest.FileConfig{Backtest: backtest.DefaultConfig()}, nil
	}
	return backtest.LoadFileConfig(path)
}

func runBacktest(bars []backtest.Bar, cfg backtest.Config, outPath string, jsonOut bool, chartPath string) error {
	res, err := backtest.Run(bars, cfg)
	if err != nil {
		return err
	}

	if chartPath != "" {
		svg, err := backtest.RenderEquitySVG("PTA 策略资金曲线", bars, res, backtest.SVGChartOptions{})
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		if err := os.WriteFile(chartPath, svg, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
	}

	return withOutput(outPath, func(w io.Writer) error {
		if jsonOut {
			return backtest.WriteResultJSON(w, res)
		}
		return writeTextReport(w, bars, cfg, res)
	})
}

func runSweep(bars []backtest.Bar, fileCfg backtest.FileConfig, outPath string, jsonOut bool) error {
	configs := fileCfg.Sweep.Expand(fileCfg.Backtest)
	results := backtest.RunSweep(bars, configs)

	return withOutput(outPath, func(w io.Writer) error {
		if jsonOut {
			return backtest.WriteSweepJSON(w, results)
		}
		return writeSweepText(w, results)
	})
}

func withOutput(outPath string, fn func(io.Writer) error) error {
	if outPath == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	return fn(f)
}
