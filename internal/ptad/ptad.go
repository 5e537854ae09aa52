package ptad

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/zhengfang04211x-png/PTA/api"
	"github.com/zhengfang04211x-png/PTA/config"
	"github.com/zhengfang04211x-png/PTA/internal/logging"
)

func Run(args []string) int {
	flags := flag.NewFlagSet("ptad", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var configPath string
	flags.StringVar(&configPath, "config", "", "配置文件路径(YAML格式)，默认优先使用 ./config.yaml")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if configPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			configPath = "config.yaml"
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fallbackLog := logging.New("info", "console")
		fallbackLog.Error().Err(err).Msg("加载配置失败")
		return 1
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info().Int("port", cfg.Server.Port).Msg("=== PTA 策略回测服务 (ptad) ===")

	server := api.NewServer(cfg, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP服务启动失败")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("正在关闭服务...")
	if err := server.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("关闭服务出错")
	}
	log.Info().Msg("服务已关闭")
	return 0
}
