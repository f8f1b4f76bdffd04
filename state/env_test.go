package state

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext returned nil")
	}
	if env.Uptime() < 0 || env.Uptime() > time.Minute {
		t.Errorf("uptime looks wrong: %v", env.Uptime())
	}
}

func TestEnvFromContextPanicsWithoutEnv(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("want panic on context without env")
		}
	}()
	EnvFromContext(context.Background())
}

func TestRedirectStdLog(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))

	// no logger set, both calls must be harmless
	env.RedirectStdLog()
	env.RestoreStdLog()

	env.Log = zaptest.NewLogger(t)
	env.RedirectStdLog()
	if env.restoreStdLog == nil {
		t.Error("redirect did not install restore hook")
	}
	env.RestoreStdLog()
}
