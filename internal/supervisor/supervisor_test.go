package supervisor

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"
)

func TestIsChildReflectsEnvVar(t *testing.T) {
	old, had := os.LookupEnv(ChildEnvVar)
	defer func() {
		if had {
			os.Setenv(ChildEnvVar, old)
		} else {
			os.Unsetenv(ChildEnvVar)
		}
	}()

	os.Unsetenv(ChildEnvVar)
	if IsChild() {
		t.Error("IsChild() = true with env var unset, want false")
	}

	os.Setenv(ChildEnvVar, "1")
	if !IsChild() {
		t.Error("IsChild() = false with env var set, want true")
	}
}

func TestLaunchRejectsInvalidCount(t *testing.T) {
	if err := Launch(context.Background(), 0, zap.NewNop()); err == nil {
		t.Error("Launch(0): expected error, got nil")
	}
}
