// Package log 提供 disservice 统一日志接口
//
// 基于 log/slog。各包声明自己的组件 logger：
//
//	var logger = log.Logger("core/worldstate")
//	logger.Debug("neighbor activated", "peer", nodeID, "iface", iface)
//
// LazyLogger 在每次调用时读取当前默认 handler，
// 因此 SetOutput/SetLevel 对已声明的 logger 立即生效。
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu    sync.RWMutex
	level = new(slog.LevelVar)
	base  *slog.Logger
)

func init() {
	level.Set(slog.LevelInfo)
	base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// SetOutput 设置日志输出目标，保留当前级别
func SetOutput(w io.Writer) {
	mu.Lock()
	base = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	mu.Unlock()
}

// SetJSONOutput 使用 JSON 格式输出
func SetJSONOutput(w io.Writer) {
	mu.Lock()
	base = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	mu.Unlock()
}

// SetLevel 动态调整全局日志级别
func SetLevel(l slog.Level) {
	level.Set(l)
}

// ParseLevel 解析 debug/info/warn/error
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Discard 丢弃所有输出，测试使用
func Discard() {
	SetOutput(io.Discard)
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 带组件名的懒加载 logger
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) logger() *slog.Logger {
	return current().With("component", l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) { l.logger().Debug(msg, args...) }

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) { l.logger().Info(msg, args...) }

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) { l.logger().Warn(msg, args...) }

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) { l.logger().Error(msg, args...) }

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger().DebugContext(ctx, msg, args...)
}

// ErrorContext 带 context 的 Error 日志
func (l *LazyLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger().ErrorContext(ctx, msg, args...)
}

// Enabled 指定级别是否会输出，用于跳过昂贵的参数构造
func (l *LazyLogger) Enabled(lvl slog.Level) bool {
	return level.Level() <= lvl
}

// With 添加额外属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.logger().With(args...)
}

// TruncateID 截取 ID 用于日志显示
func TruncateID(id string, maxLen int) string {
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen]
}
