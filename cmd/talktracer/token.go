package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/talk-tracer/pkg/jwt"
)

func newTokenCmd() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API access token for a producer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			manager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)
			token, err := manager.GenerateAccessToken(subject, jwt.ScopePipeline)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "name of the producer the token is issued to")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
