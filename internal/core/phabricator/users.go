package phabricator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/lueurxax/task-stats/internal/core/domain"
	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
)

const paramNames = "names[0]"

// ResolveIdentity looks a username up and returns the first match's PHID.
// A lookup that yields no usable list is reported as
// *apperrors.IdentityNotFoundError with the service's error pair.
func (c *Client) ResolveIdentity(ctx context.Context, username string) (domain.Identity, error) {
	params := url.Values{}
	params.Set(paramNames, username)

	raw, err := c.call(ctx, c.userMethod, params)
	if err != nil {
		var apiErr *apperrors.APIError
		if apperrors.As(err, &apiErr) && (apiErr.Code != "" || apiErr.Info != "") {
			return domain.Identity{}, &apperrors.IdentityNotFoundError{Username: username, Code: apiErr.Code, Info: apiErr.Info}
		}

		return domain.Identity{}, err
	}

	var users []userRecord
	if isNull(raw) || json.Unmarshal(raw, &users) != nil || len(users) == 0 {
		return domain.Identity{}, &apperrors.IdentityNotFoundError{Username: username}
	}

	if users[0].PHID == "" {
		return domain.Identity{}, fmt.Errorf("%w: %s match for %q has no phid", apperrors.ErrDataShape, c.userMethod, username)
	}

	c.logger.Debug().Str("username", username).Str("phid", users[0].PHID).Msg("identity resolved")

	return domain.Identity{Username: username, PHID: users[0].PHID}, nil
}
