package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop()
	// helpers 多跳过一层调用栈，让 Info/Warn 等包级函数报告真实调用方
	helpers = global
)

// Init 根据级别与格式构建全局 logger；重复调用会替换之前的实例
func Init(level, format string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return err
	}

	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// Set 替换全局 logger（测试中可注入 zaptest/observer）
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
	helpers = l.WithOptions(zap.AddCallerSkip(1))
}

// L 返回当前全局 logger，可直接调用或派生（Named/With）
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func h() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return helpers
}

func Debug(msg string, fields ...zap.Field) { h().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { h().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { h().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { h().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { h().Fatal(msg, fields...) }

// Sync flushes buffered entries; errors from stdout/stderr sync are ignored.
func Sync() { _ = L().Sync() }
