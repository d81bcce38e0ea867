package sms_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/sms"
)

func TestRecorder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rec := sms.NewRecorder()

	require.NoError(t, rec.SendSMS(ctx, "+15551234567", sms.OTPMessage("123456")))
	require.NoError(t, rec.Call(ctx, "+15559876543", sms.OTPMessage("654321")))

	deliveries := rec.Deliveries()
	require.Len(t, deliveries, 2)
	assert.False(t, deliveries[0].Voice)
	assert.True(t, deliveries[1].Voice)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "+15559876543", last.Phone)

	code, ok := rec.LastCode("+15551234567")
	require.True(t, ok)
	assert.Equal(t, "123456", code)

	_, ok = rec.LastCode("+15550000000")
	assert.False(t, ok)

	rec.Reset()
	assert.Empty(t, rec.Deliveries())
}

func TestRecorderFail(t *testing.T) {
	t.Parallel()
	rec := sms.NewRecorder()
	rec.Fail = errors.New("provider down")

	err := rec.SendSMS(context.Background(), "+15551234567", "hello")
	assert.Error(t, err)
	assert.Empty(t, rec.Deliveries())
}
