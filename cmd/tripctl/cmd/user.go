package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tripdiary/tripadmin/internal/config"
	"github.com/tripdiary/tripadmin/internal/db"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/repository"
	"github.com/tripdiary/tripadmin/internal/service"
)

func UserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	userCmd.AddCommand(userCreateCmd())
	return userCmd
}

// userCreateCmd is the only way accounts are provisioned; the API only edits them
func userCreateCmd() *cobra.Command {
	var input service.UserUpdate
	var password string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an activated user with a password",
		Example: "  tripctl user create --username admin --role ADMIN --email admin@example.com\n" +
			"  echo \"$PASSWORD\" | tripctl user create --username alice",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				password, err = readPassword(cmd)
				if err != nil {
					return err
				}
			}

			cfg := config.Load()
			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer db.Close(database)

			err = db.RunMigrations(database.DB, cfg.DBDriver)
			if err != nil {
				return err
			}

			userRepository := repository.NewUserRepository(database)
			authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry)
			userService := service.NewUserService(userRepository, authService)

			user, err := userService.Create(input, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %q (id %d, role %s)\n", user.Username, user.ID, user.Role)
			return nil
		},
	}

	createCmd.Flags().StringVar(&input.Username, "username", "", "login name (required)")
	createCmd.Flags().StringVar(&input.Name, "name", "", "display name")
	createCmd.Flags().StringVar(&input.Email, "email", "", "email address")
	createCmd.Flags().StringVar(&input.Role, "role", model.RoleUser, "USER or ADMIN")
	createCmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	_ = createCmd.MarkFlagRequired("username")

	return createCmd
}

func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
