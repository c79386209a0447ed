// Package timeset 实现带时间窗口的字符串集合（TimeBoundedStringHashset）
//
// 元素只在 ttl 内有效，过期后视为不存在并在 Prune 或下次访问时移除。
// 容量受限，超出时按最早插入淘汰（golang-lru）。
package timeset

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity 默认容量
const DefaultCapacity = 4096

// ErrInvalidTTL ttl 必须为正
var ErrInvalidTTL = errors.New("timeset: ttl must be positive")

// Set 时间窗口字符串集合，并发安全
type Set struct {
	mu    sync.Mutex
	ttl   time.Duration
	clock clock.Clock
	items *lru.Cache[string, time.Time]
}

// New 创建集合；capacity<=0 使用 DefaultCapacity，clk 为 nil 使用系统时钟
func New(ttl time.Duration, capacity int, clk clock.Clock) (*Set, error) {
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if clk == nil {
		clk = clock.New()
	}
	items, err := lru.New[string, time.Time](capacity)
	if err != nil {
		return nil, err
	}
	return &Set{ttl: ttl, clock: clk, items: items}, nil
}

// Put 记录 id，返回 true 表示之前不存在（或已过期）
//
// 已存在的未过期 id 不刷新时间戳，窗口从第一次出现开始计算。
func (s *Set) Put(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if added, ok := s.items.Peek(id); ok && now.Sub(added) < s.ttl {
		return false
	}
	s.items.Add(id, now)
	return true
}

// Contains id 是否在窗口内
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	added, ok := s.items.Peek(id)
	if !ok {
		return false
	}
	if s.clock.Now().Sub(added) >= s.ttl {
		s.items.Remove(id)
		return false
	}
	return true
}

// Remove 移除 id
func (s *Set) Remove(id string) {
	s.mu.Lock()
	s.items.Remove(id)
	s.mu.Unlock()
}

// Prune 移除所有过期元素，返回移除数量
func (s *Set) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked()
}

func (s *Set) pruneLocked() int {
	now := s.clock.Now()
	removed := 0
	// Keys 从最旧到最新
	for _, k := range s.items.Keys() {
		added, ok := s.items.Peek(k)
		if !ok {
			continue
		}
		if now.Sub(added) < s.ttl {
			break
		}
		s.items.Remove(k)
		removed++
	}
	return removed
}

// Len 窗口内元素数量
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return s.items.Len()
}

// Clear 清空
func (s *Set) Clear() {
	s.mu.Lock()
	s.items.Purge()
	s.mu.Unlock()
}
