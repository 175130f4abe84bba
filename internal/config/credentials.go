package config

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"
)

// ErrMissingCredential is returned when a required Slack setting is absent.
var ErrMissingCredential = errors.New("missing credential")

// Credentials holds the Slack bot token and workspace id. The token is secret and is
// never logged or echoed; only presence is reported.
type Credentials struct {
	BotToken string `env:"SLACK_BOT_TOKEN"`
	TeamID   string `env:"SLACK_TEAM_ID"`
}

// CredentialSource yields the credentials to use for one tool call.
type CredentialSource func() Credentials

// LoadCredentials reads SLACK_BOT_TOKEN and SLACK_TEAM_ID from the environment. It is
// called per tool invocation so that a missing setting fails that call rather than
// the process.
func LoadCredentials() Credentials {
	var c Credentials
	_ = envdecode.Decode(&c)
	return c
}

// Static returns a CredentialSource that always yields c.
func Static(c Credentials) CredentialSource {
	return func() Credentials { return c }
}

func (c Credentials) HasBotToken() bool { return c.BotToken != "" }
func (c Credentials) HasTeamID() bool   { return c.TeamID != "" }

// Require fails with ErrMissingCredential naming the first absent setting.
func (c Credentials) Require() error {
	if !c.HasBotToken() {
		return fmt.Errorf("%w: Missing SLACK_BOT_TOKEN env var", ErrMissingCredential)
	}
	if !c.HasTeamID() {
		return fmt.Errorf("%w: Missing SLACK_TEAM_ID env var", ErrMissingCredential)
	}
	return nil
}
