// cmd/client/cmd/sync/watch.go
package sync

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fieldreport/cmd/client/cmd/types"
	"fieldreport/internal/app/client"
)

var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Фоновая синхронизация",
	Long: `Запускает наблюдение за соединением и синхронизирует очередь
автоматически: при восстановлении сети и далее по интервалу.

Команда работает до прерывания (Ctrl+C).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		if !app.IsAuthenticated() {
			return fmt.Errorf("требуется аутентификация. Выполните: fieldreport auth login")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Println("=== Фоновая синхронизация запущена ===")
		fmt.Println("Очередь будет отправляться при появлении сети. Ctrl+C для выхода.")

		if err := app.Watch(ctx); err != nil {
			return fmt.Errorf("ошибка наблюдения: %w", err)
		}

		fmt.Println("\nФоновая синхронизация остановлена")
		return nil
	},
}
