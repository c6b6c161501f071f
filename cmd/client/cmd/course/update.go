package course

import (
	"fmt"

	"github.com/spf13/cobra"

	"coursekeeper/internal/app/client"
	"coursekeeper/internal/domain/course"
)

var updateFlags courseFlags

var UpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Изменить курс",
	Long: `Изменяет курс: загружает текущее значение и заменяет только поля,
переданные флагами. Время создания сохраняется.`,
	Example: `  coursekeeper course update 01hx3v7k8m2n4p6q8r0s2t4v6w --credits 4`,
	Args:    cobra.ExactArgs(1),
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

		c := found.Course
		if err := updateFlags.apply(cmd, &c); err != nil {
			return err
		}
		if c == found.Course {
			fmt.Println("Нечего изменять")
			return nil
		}

		if err := app.Courses().Update(cmd.Context(), c); err != nil {
			return fmt.Errorf("ошибка изменения курса: %w", err)
		}

		if wantJSON(cmd) {
			return printJSON(c)
		}
		fmt.Printf("✓ Курс изменен: %s\n", c.ID)
		return nil
	},
}

func init() {
	updateFlags.register(UpdateCmd)
}
