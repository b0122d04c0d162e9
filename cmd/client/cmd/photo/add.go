// cmd/client/cmd/photo/add.go
package photo

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fieldreport/cmd/client/cmd/types"
	"fieldreport/internal/app/client"
)

var addNCKey string

var AddCmd = &cobra.Command{
	Use:   "add <inspection-id> <file>",
	Short: "Прикрепить фото к осмотру",
	Long: `Прикрепляет файл фотографии к несоответствию осмотра.

Ключ несоответствия (--nc) должен совпадать с заголовком несоответствия
из формы осмотра. Поддерживаются форматы jpg, jpeg, png и webp.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		inspectionID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("некорректный ID осмотра: %s", args[0])
		}

		photo, err := app.AddPhoto(inspectionID, addNCKey, args[1])
		if err != nil {
			return fmt.Errorf("ошибка сохранения фото: %w", err)
		}

		fmt.Printf("✅ Фото сохранено (локальный ID: %d)\n", photo.LocalID)
		fmt.Println("Файл будет загружен на сервер при ближайшей синхронизации.")
		return nil
	},
}

func init() {
	AddCmd.Flags().StringVar(&addNCKey, "nc", "", "заголовок несоответствия, к которому относится фото")
	_ = AddCmd.MarkFlagRequired("nc")
}
