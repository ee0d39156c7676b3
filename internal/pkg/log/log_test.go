package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	color.NoColor = true
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(func() { SetOutput(color.Output) })
	return buf
}

func TestInfoWithContext_IncludesRequestID(t *testing.T) {
	buf := capture(t)

	ctx := WithRequestID(context.Background(), "abc-123")
	InfoWithContext(ctx, "created user %s", "a@x.com")

	assert.Contains(t, buf.String(), "[INFO]")
	assert.Contains(t, buf.String(), "[req_id=abc-123] created user a@x.com")
}

func TestError_WithoutRequestID(t *testing.T) {
	buf := capture(t)

	ErrorWithContext(context.Background(), "boom")

	assert.Contains(t, buf.String(), "[Error] boom")
	assert.NotContains(t, buf.String(), "req_id")
}

func TestDebug_Gated(t *testing.T) {
	buf := capture(t)

	Debug("hidden")
	assert.Empty(t, buf.String())

	SetDebug(true)
	t.Cleanup(func() { SetDebug(false) })
	Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInfoStruct_DumpsValue(t *testing.T) {
	buf := capture(t)

	InfoStruct(struct{ Email string }{Email: "a@x.com"})

	assert.Contains(t, buf.String(), "Email")
	assert.Contains(t, buf.String(), "a@x.com")
}
