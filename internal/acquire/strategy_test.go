package acquire

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaceOrderDirectControlWins(t *testing.T) {
	sess := newFakeSession().withPlaceOrder()
	var warnings []string

	require.True(t, placeOrder(context.Background(), sess, func(w string) { warnings = append(warnings, w) }))
	require.Empty(t, warnings)
	require.Equal(t, 1, sess.buttons[placeOrderLabel].clicks)
}

func TestPlaceOrderFallsBackToFrame(t *testing.T) {
	frame := newFakeSession().withPlaceOrder()
	sess := newFakeSession()
	sess.frame = frame

	var warnings []string
	require.True(t, placeOrder(context.Background(), sess, func(w string) { warnings = append(warnings, w) }))
	require.Len(t, warnings, 1, "direct-control failure is recorded before the frame succeeds")
	require.Equal(t, 1, frame.buttons[placeOrderLabel].clicks)
}

func TestPlaceOrderFallsBackToRole(t *testing.T) {
	sess := newFakeSession()
	roleButton := &fakeControl{label: placeOrderLabel}
	sess.buttons["role:"+placeOrderLabel] = roleButton

	var warnings []string
	require.True(t, placeOrder(context.Background(), sess, func(w string) { warnings = append(warnings, w) }))
	require.Len(t, warnings, 2)
	require.Equal(t, 1, roleButton.clicks)
}

func TestPlaceOrderAllStrategiesFail(t *testing.T) {
	sess := newFakeSession()

	var warnings []string
	require.False(t, placeOrder(context.Background(), sess, func(w string) { warnings = append(warnings, w) }))
	require.Len(t, warnings, 3)
}
