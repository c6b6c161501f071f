package course

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"coursekeeper/internal/app/client"
)

var showTable bool

var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Следить за списком курсов",
	Long: `Подписывается на коллекцию и печатает вставки, изменения и удаления
строк по мере их поступления. Ctrl+C для выхода.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := client.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := app.Watch(ctx, client.NewTerminalRenderer(os.Stdout, showTable)); err != nil {
			return fmt.Errorf("подписка прервана: %w", err)
		}
		return nil
	},
}

func init() {
	WatchCmd.Flags().BoolVar(&showTable, "table", false, "печатать весь список после каждого изменения")
}
