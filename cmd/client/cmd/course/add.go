package course

import (
	"fmt"

	"github.com/spf13/cobra"

	"coursekeeper/internal/app/client"
	"coursekeeper/internal/domain/course"
)

var addFlags courseFlags

var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Добавить курс",
	Example: `  coursekeeper course add --name "Linear Algebra" --code MATH201 --credits 3 --type theory
  coursekeeper course add -n Circuits -c EE110 --credits 4 -t lab`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := client.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		var c course.Course
		if err := addFlags.apply(cmd, &c); err != nil {
			return err
		}

		id, err := app.Courses().Create(cmd.Context(), c)
		if err != nil {
			return fmt.Errorf("ошибка создания курса: %w", err)
		}

		if wantJSON(cmd) {
			return printJSON(map[string]string{"id": id})
		}
		fmt.Printf("✓ Курс создан: %s\n", id)
		return nil
	},
}

func init() {
	addFlags.register(AddCmd)
}
