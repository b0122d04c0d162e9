// cmd/client/cmd/clients/list.go
package clients

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fieldreport/cmd/client/cmd/types"
	"fieldreport/internal/app/client"
)

var (
	listFormat string
	listRemote bool
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список клиентов",
	Long: `Просмотр всех клиентов из локального хранилища.

С флагом --remote список запрашивается у сервера, требуется сеть.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		if listRemote {
			return listRemoteClients(cmd, app)
		}

		list, err := app.ListClients()
		if err != nil {
			return fmt.Errorf("ошибка получения списка клиентов: %w", err)
		}

		switch listFormat {
		case "json":
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(list)
		default:
			return printClientsTable(list)
		}
	},
}

func listRemoteClients(cmd *cobra.Command, app *client.App) error {
	list, err := app.RemoteClients(cmd.Context())
	if err != nil {
		return fmt.Errorf("ошибка запроса клиентов с сервера: %w", err)
	}

	if listFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(list)
	}

	if len(list) == 0 {
		fmt.Println("На сервере нет клиентов")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tИмя\tДокумент\tТелефон\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t\n")
	for _, c := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", c.ID, c.Name, c.Document, c.Phone)
	}
	w.Flush()

	fmt.Printf("\nВсего клиентов на сервере: %d\n", len(list))
	return nil
}

func printClientsTable(list []*client.Client) error {
	if len(list) == 0 {
		fmt.Println("Клиенты не найдены")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tИмя\tДокумент\tТелефон\tСтатус\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t---\t\n")

	for _, c := range list {
		status := "⏳ локально"
		if c.Synced {
			status = "✓ на сервере"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n",
			c.LocalID, c.Name, c.Document, c.Phone, status)
	}

	w.Flush()
	fmt.Printf("\nВсего клиентов: %d\n", len(list))
	return nil
}

func init() {
	ListCmd.Flags().StringVar(&listFormat, "format", "table", "формат вывода (table, json)")
	ListCmd.Flags().BoolVar(&listRemote, "remote", false, "запросить список с сервера")
}
