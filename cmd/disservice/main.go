// Package main 提供 disservice 命令行入口
//
// 命令行入口使用日志实现的传输服务与发送器驱动节点：
// 带宽限制与出站消息只写日志，不接入真实网络。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dep2p/go-disservice"
	"github.com/dep2p/go-disservice/internal/app"
	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/pkg/lib/log"
)

var logger = log.Logger("disservice/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile = flag.String("config", "", "配置文件路径（yaml/json/toml）")
	nodeID     = flag.String("node-id", "", "节点 ID（默认随机生成）")
	stateType  = flag.String("peer-state", "", "节点状态实现 (worldstate/topology)")
	ifaces     = flag.String("interfaces", "eth0", "活动网络接口，逗号分隔")
	capacity   = flag.Uint("capacity", 1_000_000, "每个接口的链路容量（bytes/sec）")

	logLevel = flag.String("log-level", "info", "日志级别 (debug/info/warn/error)")
	logJSON  = flag.Bool("log-json", false, "以 JSON 格式输出日志")

	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(disservice.VersionInfo())
		return nil
	}

	if err := setupLogging(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("启动 disservice 节点", "version", disservice.Version, "commit", disservice.GitCommit, "buildDate", disservice.BuildDate)
	a, err := app.RunApp(ctx, app.NewBootstrap(cfg,
		app.WithTransmission(newLogTransmission(splitInterfaces(*ifaces), uint32(*capacity))),
		app.WithSender(logSender{}),
	))
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	fmt.Printf("📦 %s\n", disservice.VersionInfo())
	fmt.Printf("节点 %s 已启动，按 Ctrl+C 退出\n", a.Runtime().PeerState.NodeID())
	a.Wait()

	fmt.Println("\n节点已关闭")
	return nil
}

// loadConfig 加载配置文件并应用命令行覆盖
func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if *nodeID != "" {
		cfg.Node.NodeID = *nodeID
	}
	if *stateType != "" {
		cfg.Node.PeerStateType = *stateType
	}
	return cfg, cfg.Validate()
}

// setupLogging 设置日志级别与格式
func setupLogging() error {
	lvl, err := log.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	if *logJSON {
		log.SetJSONOutput(os.Stderr)
	}
	log.SetLevel(lvl)
	return nil
}

func splitInterfaces(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
