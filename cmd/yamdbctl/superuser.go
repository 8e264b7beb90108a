package main

import (
	"errors"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/yamdb/yamdb-server/internal/service"
)

var (
	superuserName  string
	superuserEmail string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an administrator account",
	Long: `Create an account with the admin role and staff and superuser flags, and
print a confirmation code. Exchange it for a token at POST /api/v1/auth/token.

Example:
  yamdbctl createsuperuser --username root --email root@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if superuserName == "" || superuserEmail == "" {
			return errors.New("--username and --email are required")
		}
		return withContainer(func(injector do.Injector) error {
			authService, err := do.Invoke[*service.AuthService](injector)
			if err != nil {
				return err
			}

			user, code, err := authService.CreateSuperuser(cmd.Context(), superuserName, superuserEmail)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created superuser %s (id %d)\n", user.Username, user.ID)
			fmt.Fprintf(out, "confirmation code: %s\n", code)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(createSuperuserCmd)

	createSuperuserCmd.Flags().StringVar(&superuserName, "username", "", "Username")
	createSuperuserCmd.Flags().StringVar(&superuserEmail, "email", "", "Email address")
}
