package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/solatis/roundsapi/internal/core/auth"
	"github.com/solatis/roundsapi/internal/core/config"
	"github.com/solatis/roundsapi/internal/types"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token signed with RA_JWT_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user-id")
		handle, _ := cmd.Flags().GetString("handle")
		roles, _ := cmd.Flags().GetStringSlice("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if userID <= 0 {
			return fmt.Errorf("--user-id must be positive")
		}

		secret, err := config.JWTSecret()
		if err != nil {
			return err
		}
		if secret == nil {
			return fmt.Errorf("%s not set", config.JWTSecretEnv)
		}

		token, err := auth.NewAuthenticator(secret).IssueToken(types.Principal{UserID: userID, Handle: handle, Roles: roles}, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().Int64("user-id", 0, "user id of the principal")
	tokenCmd.Flags().String("handle", "", "handle of the principal")
	tokenCmd.Flags().StringSlice("role", nil, "role to grant (repeatable), e.g. admin")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
}
