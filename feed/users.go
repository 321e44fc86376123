package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// User is the profile returned by a username lookup.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Followers int    `json:"followers"`
}

// ResolveUser looks a user up by username. A leading "@" is ignored.
func (c *Client) ResolveUser(ctx context.Context, username string) (*User, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, fmt.Errorf("resolve user: empty username")
	}
	path := fmt.Sprintf("/graphql/users/by/username/%s", url.PathEscape(username))
	resp, err := c.getJSON(ctx, path, nil, c.authHeaders())
	if err != nil {
		return nil, notFoundOn404(err, username)
	}
	result, ok := lookup(resp, "data", "user_result", "result")
	if !ok {
		return nil, &NotFoundError{Subject: username, Reason: "empty user result"}
	}
	id, ok := stringAt(result, "rest_id")
	if !ok || id == "" {
		return nil, &NotFoundError{Subject: username, Reason: "user has no id"}
	}
	u := &User{ID: id, Username: username}
	if s, ok := stringAt(result, "legacy", "screen_name"); ok {
		u.Username = s
	}
	u.Name, _ = stringAt(result, "legacy", "name")
	u.Followers, _ = numberAt(result, "legacy", "followers_count")
	return u, nil
}

// userID accepts either a numeric id, used as is, or a username to resolve.
func (c *Client) userID(ctx context.Context, subject string) (string, error) {
	subject = strings.TrimSpace(subject)
	if isDigits(subject) {
		return subject, nil
	}
	u, err := c.ResolveUser(ctx, subject)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}
