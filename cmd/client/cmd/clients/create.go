// cmd/client/cmd/clients/create.go
package clients

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldreport/cmd/client/cmd/types"
	"fieldreport/internal/app/client"
)

var (
	createName     string
	createDocument string
	createContact  string
	createEmail    string
	createPhone    string
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать клиента",
	Long: `Создает клиента в локальном хранилище и ставит его в очередь
на отправку. Команда работает без сети.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		if createName == "" {
			fmt.Print("Имя клиента: ")
			_, _ = fmt.Scanln(&createName)
		}
		if createDocument == "" {
			fmt.Print("Документ (CNPJ/CPF): ")
			_, _ = fmt.Scanln(&createDocument)
		}

		saved, err := app.CreateClient(&client.Client{
			Name:     createName,
			Document: createDocument,
			Contact:  createContact,
			Email:    createEmail,
			Phone:    createPhone,
		})
		if err != nil {
			return fmt.Errorf("ошибка создания клиента: %w", err)
		}

		fmt.Printf("✅ Клиент создан (локальный ID: %d)\n", saved.LocalID)
		fmt.Println("Запись будет отправлена на сервер при ближайшей синхронизации.")
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&createName, "name", "n", "", "имя клиента")
	CreateCmd.Flags().StringVarP(&createDocument, "document", "d", "", "документ клиента (CNPJ/CPF)")
	CreateCmd.Flags().StringVar(&createContact, "contact", "", "контактное лицо")
	CreateCmd.Flags().StringVar(&createEmail, "email", "", "email")
	CreateCmd.Flags().StringVar(&createPhone, "phone", "", "телефон")
}
