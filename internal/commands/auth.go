package commands

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLoginCommand(e *env) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a session token",
		Long:  "Save the session token issued by the Sakura web sign-in so the CLI can act as you.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return errors.New("--token is required")
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			client := e.client()
			client.Token = token
			me, err := client.Session(ctx)
			if err != nil {
				return err
			}

			e.cfg.Token = token
			e.cfg.UserID = me.ID
			e.cfg.DisplayName = me.DisplayName
			if e.server != "" {
				e.cfg.ServerURL = e.server
			}
			if err := e.cfg.Save(); err != nil {
				return err
			}

			e.printf("%s\n", color.GreenString("Logged in as %s", me.DisplayName))
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "session token")
	return cmd
}

func newLogoutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			e.cfg.Token, e.cfg.UserID, e.cfg.DisplayName = "", "", ""
			if err := e.cfg.Save(); err != nil {
				return err
			}
			e.printf("Logged out\n")
			return nil
		},
	}
}

func newWhoamiCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			me, err := e.client().Session(ctx)
			if err != nil {
				return err
			}
			e.printf("%s <%s> (%s)\n", me.DisplayName, me.Email, me.ID)
			return nil
		},
	}
}
