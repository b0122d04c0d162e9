package clients

import (
	"github.com/spf13/cobra"
)

// ClientsCmd - родительская команда для операций с клиентами
var ClientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Управление клиентами",
	Long: `Создание и просмотр клиентов, для которых выполняются осмотры.

Клиенты сохраняются локально и отправляются на сервер при синхронизации.`,
}
