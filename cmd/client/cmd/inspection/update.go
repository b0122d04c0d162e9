// cmd/client/cmd/inspection/update.go
package inspection

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"fieldreport/cmd/client/cmd/types"
	"fieldreport/internal/app/client"
)

var (
	updateProtocol  string
	updateClientID  int64
	updateAddress   string
	updateCity      string
	updateState     string
	updateRoofModel string
	updateNotes     string
	updateFromFile  string
)

var UpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Изменить осмотр",
	Long: `Изменяет протокол осмотра в локальном хранилище и ставит в
очередь задачу обновления.

Полную форму можно заменить JSON-файлом через --file; без файла за
основу берётся сохранённая форма, флаги переопределяют её поля.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		localID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("неверный ID осмотра: %s", args[0])
		}

		existing, err := app.GetInspection(localID)
		if err != nil {
			return fmt.Errorf("осмотр не найден: %w", err)
		}

		form := existing.Form
		if updateFromFile != "" {
			data, err := os.ReadFile(updateFromFile)
			if err != nil {
				return fmt.Errorf("ошибка чтения файла формы: %w", err)
			}
			if err := json.Unmarshal(data, &form); err != nil {
				return fmt.Errorf("некорректная форма осмотра: %w", err)
			}
		}

		if updateProtocol != "" {
			form.Protocol = updateProtocol
		}
		if updateClientID != 0 {
			form.ClientLocalID = &updateClientID
		}
		if updateAddress != "" {
			form.Address = updateAddress
		}
		if updateCity != "" {
			form.City = updateCity
		}
		if updateState != "" {
			form.State = updateState
		}
		if updateRoofModel != "" {
			form.RoofModel = updateRoofModel
		}
		if updateNotes != "" {
			form.Notes = updateNotes
		}

		saved, err := app.UpdateInspection(localID, form)
		if err != nil {
			return fmt.Errorf("ошибка обновления осмотра: %w", err)
		}

		fmt.Printf("✅ Осмотр обновлён (локальный ID: %d, протокол: %s)\n",
			saved.LocalID, saved.Protocol)
		fmt.Println("Изменения будут отправлены на сервер при ближайшей синхронизации.")
		return nil
	},
}

func init() {
	UpdateCmd.Flags().StringVarP(&updateProtocol, "protocol", "p", "", "номер протокола")
	UpdateCmd.Flags().Int64VarP(&updateClientID, "client", "c", 0, "локальный ID клиента")
	UpdateCmd.Flags().StringVar(&updateAddress, "address", "", "адрес объекта")
	UpdateCmd.Flags().StringVar(&updateCity, "city", "", "город")
	UpdateCmd.Flags().StringVar(&updateState, "state", "", "штат")
	UpdateCmd.Flags().StringVar(&updateRoofModel, "roof-model", "", "модель кровли")
	UpdateCmd.Flags().StringVar(&updateNotes, "notes", "", "заметки")
	UpdateCmd.Flags().StringVarP(&updateFromFile, "file", "f", "", "JSON-файл с заполненной формой")
}
