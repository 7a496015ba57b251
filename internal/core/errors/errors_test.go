package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "error pair",
			err:  &APIError{Method: "user.query", Code: "ERR-CONDUIT-CORE", Info: "bad token"},
			want: "user.query: ERR-CONDUIT-CORE: bad token",
		},
		{
			name: "http status",
			err:  &APIError{Method: "maniphest.search", Status: 502},
			want: "maniphest.search: unexpected status 502",
		},
		{
			name: "empty",
			err:  &APIError{Method: "maniphest.search"},
			want: "maniphest.search: empty result",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, Is(fmt.Errorf("wrapped: %w", tt.err), ErrAPI))
		})
	}
}

func TestIdentityNotFoundError(t *testing.T) {
	err := fmt.Errorf("resolve: %w", &IdentityNotFoundError{Username: "alice", Code: "ERR-1", Info: "no such user"})

	assert.True(t, Is(err, ErrIdentityNotFound))
	assert.False(t, Is(err, ErrAPI))

	var target *IdentityNotFoundError

	assert.True(t, As(err, &target))
	assert.Equal(t, "ERR-1", target.Code)
	assert.Contains(t, err.Error(), "no such user")
}
