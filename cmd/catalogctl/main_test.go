package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/GTDGit/gtd_search/internal/utils"
)

func findCommand(app *cli.App, name string) *cli.Command {
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func TestTokenCommand(t *testing.T) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out

	err := app.Run([]string{"catalogctl", "token", "--secret", "s3cret", "--subject", "ops", "--ttl", "1h"})
	require.NoError(t, err)

	claims, err := utils.ValidateJWT("s3cret", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, utils.RoleAdmin, claims.Role)
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}

	err := app.Run([]string{"catalogctl", "token"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret")
}

func TestSeedCommandDefaults(t *testing.T) {
	cmd := findCommand(newApp(), "seed")
	require.NotNil(t, cmd)

	var sourceFlag *cli.StringSliceFlag
	var replaceFlag *cli.BoolFlag
	for _, flag := range cmd.Flags {
		switch f := flag.(type) {
		case *cli.StringSliceFlag:
			if f.Name == "source" {
				sourceFlag = f
			}
		case *cli.BoolFlag:
			if f.Name == "replace" {
				replaceFlag = f
			}
		}
	}
	require.NotNil(t, sourceFlag)
	require.NotNil(t, replaceFlag)
	assert.Equal(t, []string{"dummyjson", "webscraper"}, sourceFlag.Value.Value())
	assert.True(t, replaceFlag.Value)
}

func TestCommandsRegistered(t *testing.T) {
	app := newApp()
	for _, name := range []string{"migrate", "seed", "reindex", "token"} {
		assert.NotNil(t, findCommand(app, name), name)
	}
}
