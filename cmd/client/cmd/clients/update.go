// cmd/client/cmd/clients/update.go
package clients

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fieldreport/cmd/client/cmd/types"
	"fieldreport/internal/app/client"
)

var (
	updateName     string
	updateDocument string
	updateContact  string
	updateEmail    string
	updatePhone    string
)

var UpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Изменить клиента",
	Long: `Изменяет клиента в локальном хранилище и ставит в очередь задачу
обновления. Уже поставленные задачи сохраняют прежние данные.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		localID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("неверный ID клиента: %s", args[0])
		}

		existing, err := app.Store().GetClient(localID)
		if err != nil {
			return fmt.Errorf("клиент не найден: %w", err)
		}

		// Не указанные флаги оставляют прежние значения.
		if updateName == "" {
			updateName = existing.Name
		}
		if updateDocument == "" {
			updateDocument = existing.Document
		}
		if updateContact == "" {
			updateContact = existing.Contact
		}
		if updateEmail == "" {
			updateEmail = existing.Email
		}
		if updatePhone == "" {
			updatePhone = existing.Phone
		}

		saved, err := app.UpdateClient(localID, &client.Client{
			Name:     updateName,
			Document: updateDocument,
			Contact:  updateContact,
			Email:    updateEmail,
			Phone:    updatePhone,
		})
		if err != nil {
			return fmt.Errorf("ошибка обновления клиента: %w", err)
		}

		fmt.Printf("✅ Клиент обновлён (локальный ID: %d)\n", saved.LocalID)
		fmt.Println("Изменения будут отправлены на сервер при ближайшей синхронизации.")
		return nil
	},
}

func init() {
	UpdateCmd.Flags().StringVarP(&updateName, "name", "n", "", "имя клиента")
	UpdateCmd.Flags().StringVarP(&updateDocument, "document", "d", "", "документ клиента (CNPJ/CPF)")
	UpdateCmd.Flags().StringVar(&updateContact, "contact", "", "контактное лицо")
	UpdateCmd.Flags().StringVar(&updateEmail, "email", "", "email")
	UpdateCmd.Flags().StringVar(&updatePhone, "phone", "", "телефон")
}
