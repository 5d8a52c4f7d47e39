package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	t.Run("missing logger panics", func(t *testing.T) {
		assert.Panics(t, func() { FromContext(context.Background()) })
	})

	t.Run("With adds attributes", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
		ctx = With(ctx, "method", "Lerp")

		FromContext(ctx).Info("analyzed")
		assert.Contains(t, buf.String(), "method=Lerp")
		assert.Contains(t, buf.String(), "msg=analyzed")
	})

	t.Run("Discard drops records", func(t *testing.T) {
		ctx := Discard(context.Background())
		assert.NotPanics(t, func() { FromContext(ctx).Error("ignored") })
	})
}
