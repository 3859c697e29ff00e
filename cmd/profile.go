package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"campus-sports-cli/api"

	"github.com/spf13/cobra"
)

type ProfileOutput struct {
	api.User
	BranchLabel string `json:"branch_label"`
	CourseLabel string `json:"course_label"`
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or delete your account",
	}

	cmd.AddCommand(profileShowCmd())
	cmd.AddCommand(profileDeleteCmd())
	return cmd
}

func profileShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				user, err := a.requireUser()
				if err != nil {
					return err
				}
				output := ProfileOutput{
					User:        user,
					BranchLabel: api.BranchLabel(user.Branch),
					CourseLabel: api.CourseLabel(user.Course),
				}
				if outputJSON {
					return writeJSON(output)
				}

				writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
				fmt.Fprintf(writer, "Username\t%s\n", output.Username)
				fmt.Fprintf(writer, "Full name\t%s\n", output.FullName)
				fmt.Fprintf(writer, "Email\t%s\n", output.Email)
				fmt.Fprintf(writer, "Mobile\t%s\n", output.Mobile)
				fmt.Fprintf(writer, "Branch\t%s\n", output.BranchLabel)
				fmt.Fprintf(writer, "Course\t%s\n", output.CourseLabel)
				return writer.Flush()
			})
		},
	}

	return cmd
}

func profileDeleteCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("this permanently deletes your account. Re-run with --yes to confirm")
			}
			return withApp(func(ctx context.Context, a *app) error {
				if _, err := a.requireUser(); err != nil {
					return err
				}
				if err := client.DeleteAccount(ctx); err != nil {
					return remoteError(err, "Failed to delete account. Please try again.")
				}
				a.signOut()
				fmt.Println("Account deleted.")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm account deletion")
	return cmd
}
