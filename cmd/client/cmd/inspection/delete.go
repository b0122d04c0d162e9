// cmd/client/cmd/inspection/delete.go
package inspection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fieldreport/cmd/client/cmd/types"
	"fieldreport/internal/app/client"
)

var deleteForce bool

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Удалить осмотр",
	Long: `Удаляет протокол осмотра из локального хранилища вместе с его фото
и всеми поставленными в очередь задачами.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		localID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("некорректный ID осмотра: %s", args[0])
		}

		if !deleteForce {
			fmt.Printf("Удалить осмотр %d вместе с фото? [y/N]: ", localID)
			var answer string
			_, _ = fmt.Scanln(&answer)
			if strings.ToLower(answer) != "y" {
				fmt.Println("Отменено")
				return nil
			}
		}

		if err := app.DeleteInspection(localID); err != nil {
			return fmt.Errorf("ошибка удаления осмотра: %w", err)
		}

		fmt.Println("✅ Осмотр удален")
		return nil
	},
}

func init() {
	DeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "удалить без подтверждения")
}
