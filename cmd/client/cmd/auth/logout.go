// cmd/client/cmd/auth/logout.go
package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldreport/cmd/client/cmd/types"
	"fieldreport/internal/app/client"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти из системы",
	Long: `Удаляет сохраненный токен. Локальные данные остаются на устройстве,
синхронизация будет недоступна до следующего входа.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		if err := app.ClearToken(); err != nil {
			return fmt.Errorf("ошибка удаления токена: %w", err)
		}

		fmt.Println("✅ Выход выполнен. Локальные данные сохранены.")
		return nil
	},
}
