package course

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"coursekeeper/internal/app/client"
)

var assumeYes bool

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Удалить курс",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := client.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		if !assumeYes && term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Printf("Удалить курс %s? [y/N]: ", args[0])
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Println("Отменено")
				return nil
			}
		}

		if err := app.Courses().Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("ошибка удаления курса: %w", err)
		}

		fmt.Printf("✓ Курс удален: %s\n", args[0])
		return nil
	},
}

func init() {
	DeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "не спрашивать подтверждение")
}
