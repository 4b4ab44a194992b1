package canned

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-agent/internal/ports/assistant"
)

func TestResponder_Templates(t *testing.T) {
	r := New(0)

	cases := []struct {
		name string
		in   assistant.ReplyInput
		want string
	}{
		{
			name: "own profile",
			in:   assistant.ReplyInput{Query: "hello", OwnProfile: true},
			want: "Responding about Your Profile regarding 'hello'",
		},
		{
			name: "delegated",
			in:   assistant.ReplyInput{Query: "budget?", GrantorName: "Jane Smith", TargetUserID: "user-555"},
			want: "Responding about Jane Smith's Profile regarding 'budget?' (Permission check simulated)",
		},
		{
			name: "unresolvable context",
			in:   assistant.ReplyInput{Query: "hm"},
			want: "I'm not sure which Profile you're trying to access. Please try again.",
		},
	}

	for _, tc := range cases {
		got, err := r.Reply(context.Background(), tc.in)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
}

func TestResponder_DelayHonorsContext(t *testing.T) {
	r := New(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Reply(ctx, assistant.ReplyInput{Query: "hello", OwnProfile: true})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
