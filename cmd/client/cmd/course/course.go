package course

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coursekeeper/internal/domain/course"
)

// CourseCmd - родительская команда для всех операций с курсами
var CourseCmd = &cobra.Command{
	Use:   "course",
	Short: "Управление курсами",
	Long:  `Создание, просмотр, изменение и удаление курсов, наблюдение за списком.`,
}

type courseFlags struct {
	name    string
	code    string
	credits int
	typ     string
}

func (f *courseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "название курса")
	cmd.Flags().StringVarP(&f.code, "code", "c", "", "код курса")
	cmd.Flags().IntVar(&f.credits, "credits", 0, "количество кредитных часов")
	cmd.Flags().StringVarP(&f.typ, "type", "t", "", "тип курса: theory или lab")
}

// apply переносит в c только явно заданные флаги.
func (f *courseFlags) apply(cmd *cobra.Command, c *course.Course) error {
	if cmd.Flags().Changed("name") {
		c.Name = f.name
	}
	if cmd.Flags().Changed("code") {
		c.Code = f.code
	}
	if cmd.Flags().Changed("credits") {
		c.CreditHours = f.credits
	}
	if cmd.Flags().Changed("type") {
		t, err := course.ParseType(f.typ)
		if err != nil {
			return err
		}
		c.Type = t
	}
	return nil
}

func wantJSON(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("json")
	return err == nil && v
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("ошибка вывода JSON: %w", err)
	}
	return nil
}
