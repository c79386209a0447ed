// Package lib 包含基础设施工具库
//
// 本目录包含与架构组件无关的通用工具库：
//
//   - log: 基于 slog 的按组件延迟日志器
//   - timeset: 带过期时间与容量上限的字符串集合（转发去重历史）
//
// # 使用示例
//
//	import (
//	    "github.com/dep2p/go-disservice/pkg/lib/log"
//	    "github.com/dep2p/go-disservice/pkg/lib/timeset"
//	)
package lib
