package course

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coursekeeper/internal/app/client"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список курсов",
	Long:  `Текущий список курсов, новые сверху.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := client.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		courses, skipped, err := app.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения списка курсов: %w", err)
		}

		if wantJSON(cmd) {
			return printJSON(courses)
		}

		if err := client.PrintTable(os.Stdout, courses); err != nil {
			return err
		}
		if skipped > 0 {
			fmt.Fprintf(os.Stderr, "⚠️  Пропущено нечитаемых записей: %d\n", skipped)
		}
		return nil
	},
}
