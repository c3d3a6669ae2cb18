package acquire

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/rec-sniper/internal/booking"
)

func TestMatchesRow(t *testing.T) {
	req := booking.Request{
		Activity:  "Drop In Badminton - Adult",
		Location:  "Cloverdale Recreation Centre",
		TimeLabel: "8:15 am",
	}

	cases := []struct {
		name      string
		text      string
		firstWord bool
		want      bool
	}{
		{
			name:      "exact row",
			text:      badmintonRow,
			firstWord: true,
			want:      true,
		},
		{
			name:      "case and zero-padding variance",
			text:      "DROP IN BADMINTON - ADULT 08:15 AM CLOVERDALE REC CENTRE",
			firstWord: true,
			want:      true,
		},
		{
			name:      "venue formatted differently, loose match tolerates",
			text:      "Drop In Badminton - Adult 8:15 am Cloverdale Rec. Ctr.",
			firstWord: true,
			want:      true,
		},
		{
			name:      "venue formatted differently, strict match rejects",
			text:      "Drop In Badminton - Adult 8:15 am Cloverdale Rec. Ctr.",
			firstWord: false,
			want:      false,
		},
		{
			name:      "wrong time label",
			text:      "Drop In Badminton - Adult 6:30 pm Cloverdale Recreation Centre",
			firstWord: true,
			want:      false,
		},
		{
			name:      "wrong activity",
			text:      "Drop In Badminton - Youth 8:15 am Cloverdale Recreation Centre",
			firstWord: true,
			want:      false,
		},
		{
			name:      "wrong venue entirely",
			text:      "Drop In Badminton - Adult 8:15 am Guildford Recreation Centre",
			firstWord: true,
			want:      false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, matchesRow(tc.text, req, tc.firstWord))
		})
	}
}

func TestResolve(t *testing.T) {
	req := booking.Request{
		Activity:  "Drop In Badminton - Adult",
		Location:  "Cloverdale Recreation Centre",
		TimeLabel: "8:15 am",
	}
	ctx := context.Background()

	t.Run("available slot claims", func(t *testing.T) {
		claim := &fakeControl{label: claimLabel}
		sess := newFakeSession()
		sess.rows = []*fakeRow{{text: badmintonRow, claim: claim}}

		status, err := resolve(ctx, sess, req, true)
		require.NoError(t, err)
		require.Equal(t, booking.SlotAvailable, status)
		require.Equal(t, 1, claim.clicks)
	})

	t.Run("waitlist declined keeps hands off", func(t *testing.T) {
		waitlist := &fakeControl{label: waitlistLabel}
		sess := newFakeSession()
		sess.rows = []*fakeRow{{text: badmintonRow, waitlist: waitlist}}

		status, err := resolve(ctx, sess, req, true)
		require.NoError(t, err)
		require.Equal(t, booking.SlotFull, status)
		require.Equal(t, 0, waitlist.clicks)
	})

	t.Run("waitlist accepted joins", func(t *testing.T) {
		waitlist := &fakeControl{label: waitlistLabel}
		sess := newFakeSession()
		sess.rows = []*fakeRow{{text: badmintonRow, waitlist: waitlist}}

		accepting := req
		accepting.AcceptWaitlist = true
		status, err := resolve(ctx, sess, accepting, true)
		require.NoError(t, err)
		require.Equal(t, booking.SlotWaitlist, status)
		require.Equal(t, 1, waitlist.clicks)
	})

	t.Run("matched row without controls is full", func(t *testing.T) {
		sess := newFakeSession()
		sess.rows = []*fakeRow{{text: badmintonRow}}

		status, err := resolve(ctx, sess, req, true)
		require.NoError(t, err)
		require.Equal(t, booking.SlotFull, status)
	})

	t.Run("no rows is not found", func(t *testing.T) {
		status, err := resolve(ctx, newFakeSession(), req, true)
		require.NoError(t, err)
		require.Equal(t, booking.SlotNotFound, status)
	})

	t.Run("click failure keeps the status", func(t *testing.T) {
		claim := &fakeControl{label: claimLabel, clickErr: errors.New("node detached")}
		sess := newFakeSession()
		sess.rows = []*fakeRow{{text: badmintonRow, claim: claim}}

		status, err := resolve(ctx, sess, req, true)
		require.Error(t, err)
		require.Equal(t, booking.SlotAvailable, status)
	})
}
