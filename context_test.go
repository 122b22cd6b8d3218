package htlc

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/tendermint/tendermint/libs/log"
)

func TestLoggerInContext(t *testing.T) {
	ctx := context.Background()
	if got := GetLogger(ctx); got != DefaultLogger {
		t.Fatalf("want default logger, got %T", got)
	}

	var buf bytes.Buffer
	ctx = WithLogger(ctx, log.NewTMLogger(&buf))
	ctx = WithLogInfo(ctx, "program", "swap")
	GetLogger(ctx).Info("processed", "tag", 2)

	out := buf.String()
	for _, want := range []string{"processed", "program=swap", "tag=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("%q not found in %q", want, out)
		}
	}
}
