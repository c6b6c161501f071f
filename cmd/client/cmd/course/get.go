package course

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coursekeeper/internal/app/client"
	"coursekeeper/internal/domain/course"
)

var GetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Показать курс",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := client.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		found, err := app.Courses().GetByID(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("ошибка получения курса: %w", err)
		}
		if !found.Found {
			return fmt.Errorf("курс %s: %w", args[0], course.ErrNotFound)
		}

		if wantJSON(cmd) {
			return printJSON(found.Course)
		}
		client.PrintCourse(os.Stdout, found.Course)
		return nil
	},
}
