package tracing

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry 初始化 Sentry 客户端；DSN 为空时不启用，返回 false
func InitSentry(dsn, environment string) (enabled bool, flush func(), err error) {
	if dsn == "" {
		return false, func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	}); err != nil {
		return false, func() {}, fmt.Errorf("init sentry: %w", err)
	}
	return true, func() { sentry.Flush(2 * time.Second) }, nil
}
