package tools

import (
	"context"
	"encoding/json"
	"strings"
)

const (
	defaultUserLimit  = 100
	defaultMatchLimit = 5
	maxMatchLimit     = 50
)

type listUsersArgs struct {
	Limit *int `json:"limit,omitempty" jsonschema:"default=100,minimum=1,maximum=200" jsonschema_description:"Maximum number of users"`
}

func listUsers(ctx context.Context, env Env, a listUsersArgs) (any, error) {
	res, err := env.API.ListUsers(ctx, env.TeamID, clampLimit(a.Limit, defaultUserLimit, maxListLimit))
	if err != nil {
		return nil, err
	}
	return res.Field("members"), nil
}

func userProfile(ctx context.Context, env Env, a userArgs) (any, error) {
	return fullResponse(env.API.UserProfile(ctx, a.UserID))
}

type findUserArgs struct {
	Email string `json:"email,omitempty" jsonschema_description:"Exact email address to look up"`
	Query string `json:"query,omitempty" jsonschema_description:"Case-insensitive fragment of a handle, name or email"`
	Limit *int   `json:"limit,omitempty" jsonschema:"default=5,minimum=1,maximum=50" jsonschema_description:"Maximum number of matches"`
}

// findUser looks a user up by exact email when one is given, otherwise scans the
// member list for fuzzy matches.
func findUser(ctx context.Context, env Env, a findUserArgs) (any, error) {
	email, query := strings.TrimSpace(a.Email), strings.TrimSpace(a.Query)
	switch {
	case email != "":
		res, err := env.API.LookupUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return []json.RawMessage{res.Field("user")}, nil
	case query == "":
		return nil, &ArgumentError{Reason: "one of email or query is required"}
	}

	res, err := env.API.ListUsers(ctx, env.TeamID, maxListLimit)
	if err != nil {
		return nil, err
	}
	var members []json.RawMessage
	if err := res.Decode("members", &members); err != nil {
		return nil, err
	}
	return matchUsers(members, query, clampLimit(a.Limit, defaultMatchLimit, maxMatchLimit)), nil
}

type member struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	RealName    string `json:"real_name"`
	Deleted     bool   `json:"deleted"`
	IsBot       bool   `json:"is_bot"`
	IsAppUser   bool   `json:"is_app_user"`
	Profile     struct {
		DisplayName string `json:"display_name"`
		RealName    string `json:"real_name"`
		Email       string `json:"email"`
	} `json:"profile"`
}

func (m member) human() bool {
	return !m.Deleted && !m.IsBot && !m.IsAppUser && m.ID != "USLACKBOT"
}

func (m member) fields() []string {
	return []string{m.Name, m.DisplayName, m.RealName, m.Profile.DisplayName, m.Profile.RealName, m.Profile.Email}
}

// matchUsers keeps active human members with any field containing query, in listing
// order, up to limit. The raw member objects are returned untouched.
func matchUsers(members []json.RawMessage, query string, limit int) []json.RawMessage {
	q := strings.ToLower(query)
	out := []json.RawMessage{}
	for _, raw := range members {
		if len(out) == limit {
			break
		}
		var m member
		if err := json.Unmarshal(raw, &m); err != nil || !m.human() {
			continue
		}
		for _, f := range m.fields() {
			if f != "" && strings.Contains(strings.ToLower(f), q) {
				out = append(out, raw)
				break
			}
		}
	}
	return out
}
