// cmd/client/cmd/inspection/create.go
package inspection

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fieldreport/cmd/client/cmd/types"
	"fieldreport/internal/app/client"
	"fieldreport/internal/domain/inspection"
)

var (
	createProtocol  string
	createClientID  int64
	createAddress   string
	createCity      string
	createState     string
	createRoofModel string
	createNotes     string
	createFromFile  string
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать осмотр",
	Long: `Создает протокол осмотра в локальном хранилище и ставит его
в очередь на отправку.

Полную форму с черепицей и несоответствиями можно загрузить из JSON
через --file; флаги переопределяют поля формы из файла.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		var form inspection.Form

		if createFromFile != "" {
			data, err := os.ReadFile(createFromFile)
			if err != nil {
				return fmt.Errorf("ошибка чтения файла формы: %w", err)
			}
			if err := json.Unmarshal(data, &form); err != nil {
				return fmt.Errorf("некорректная форма осмотра: %w", err)
			}
		}

		if createProtocol != "" {
			form.Protocol = createProtocol
		}
		if createClientID != 0 {
			form.ClientLocalID = &createClientID
		}
		if createAddress != "" {
			form.Address = createAddress
		}
		if createCity != "" {
			form.City = createCity
		}
		if createState != "" {
			form.State = createState
		}
		if createRoofModel != "" {
			form.RoofModel = createRoofModel
		}
		if createNotes != "" {
			form.Notes = createNotes
		}

		if form.Protocol == "" {
			fmt.Print("Номер протокола: ")
			_, _ = fmt.Scanln(&form.Protocol)
		}

		saved, err := app.CreateInspection(form)
		if err != nil {
			return fmt.Errorf("ошибка создания осмотра: %w", err)
		}

		fmt.Printf("✅ Осмотр создан (локальный ID: %d, протокол: %s)\n",
			saved.LocalID, saved.Protocol)
		fmt.Printf("Черепица: %d, несоответствий: %d\n",
			len(form.Tiles), len(form.NonConformities))
		fmt.Println("Протокол будет отправлен на сервер при ближайшей синхронизации.")
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&createProtocol, "protocol", "p", "", "номер протокола")
	CreateCmd.Flags().Int64VarP(&createClientID, "client", "c", 0, "локальный ID клиента")
	CreateCmd.Flags().StringVar(&createAddress, "address", "", "адрес объекта")
	CreateCmd.Flags().StringVar(&createCity, "city", "", "город")
	CreateCmd.Flags().StringVar(&createState, "state", "", "штат")
	CreateCmd.Flags().StringVar(&createRoofModel, "roof-model", "", "модель кровли")
	CreateCmd.Flags().StringVar(&createNotes, "notes", "", "заметки")
	CreateCmd.Flags().StringVarP(&createFromFile, "file", "f", "", "JSON-файл с заполненной формой")
}
