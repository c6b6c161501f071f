package course

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"coursekeeper/internal/app/client"
)

var ImportCmd = &cobra.Command{
	Use:   "import <file.yaml|->",
	Short: "Загрузить курсы из YAML",
	Long: `Создает курсы из YAML файла ("-" - stdin):

  courses:
    - courseName: Linear Algebra
      courseCode: MATH201
      creditHours: 3
      courseType: theory`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := client.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		var in io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("ошибка открытия файла: %w", err)
			}
			defer f.Close()
			in = f
		}

		res, err := app.Import(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("ошибка импорта: %w", err)
		}

		if wantJSON(cmd) {
			failed := make(map[int]string, len(res.Failed))
			for i, err := range res.Failed {
				failed[i+1] = err.Error()
			}
			return printJSON(map[string]any{"created": res.Created, "failed": failed})
		}

		fmt.Printf("✓ Создано курсов: %d\n", len(res.Created))
		if len(res.Failed) > 0 {
			positions := make([]int, 0, len(res.Failed))
			for i := range res.Failed {
				positions = append(positions, i)
			}
			sort.Ints(positions)
			fmt.Printf("⚠️  Пропущено: %d\n", len(res.Failed))
			for _, i := range positions {
				fmt.Printf("   #%d: %v\n", i+1, res.Failed[i])
			}
		}
		return nil
	},
}
