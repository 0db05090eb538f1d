package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/deviceadmin/internal/models"
)

func newIDCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Print this device's identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := e.app.Authority.DeviceID(cmd.Context())
			if e.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{"device_id": id})
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether this device is an admin (exit 1 if not)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			id := e.app.Authority.DeviceID(ctx)
			isAdmin := e.app.Authority.IsAdmin(ctx)

			if e.output == outputJSON {
				if err := printJSON(cmd.OutOrStdout(), map[string]interface{}{"device_id": id, "admin": isAdmin}); err != nil {
					return err
				}
			} else if isAdmin {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: admin\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: not admin\n", id)
			}
			if !isAdmin {
				return errNotAdmin
			}
			return nil
		},
	}
}

func newGrantCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "grant",
		Short: "Grant admin access to this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := e.app.Authority.GrantAdmin(ctx); err != nil {
				return fmt.Errorf("grant admin: %w", err)
			}
			id := e.app.Authority.DeviceID(ctx)
			if e.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"device_id": id, "admin": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: admin granted\n", id)
			return nil
		},
	}
}

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every device on the admin allow-list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := e.app.Authority.Admins(cmd.Context())
			if err != nil {
				return fmt.Errorf("list admins: %w", err)
			}
			if e.output == outputJSON {
				if list == nil {
					list = []models.AdminEntry{}
				}
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"admins": list})
			}
			for _, entry := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.DeviceID, entry.GrantedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}
