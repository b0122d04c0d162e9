// cmd/client/cmd/inspection/list.go
package inspection

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
	Short: "Список осмотров",
	Long: `Просмотр всех протоколов осмотра из локального хранилища.

С флагом --remote список запрашивается у сервера, требуется сеть.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		if listRemote {
			return listRemoteInspections(cmd, app)
		}

		list, err := app.ListInspections()
		if err != nil {
			return fmt.Errorf("ошибка получения списка осмотров: %w", err)
		}

		switch listFormat {
		case "json":
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(list)
		default:
			return printInspectionsTable(list)
		}
	},
}

func listRemoteInspections(cmd *cobra.Command, app *client.App) error {
	list, err := app.RemoteInspections(cmd.Context())
	if err != nil {
		return fmt.Errorf("ошибка запроса осмотров с сервера: %w", err)
	}

	if listFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(list)
	}

	if len(list) == 0 {
		fmt.Println("На сервере нет осмотров")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tПротокол\tГород\tДата\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t\n")
	for _, ins := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n",
			ins.ID, ins.Protocol, ins.City, ins.Date.Format("2006-01-02"))
	}
	w.Flush()

	fmt.Printf("\nВсего осмотров на сервере: %d\n", len(list))
	return nil
}

func printInspectionsTable(list []*client.Inspection) error {
	if len(list) == 0 {
		fmt.Println("Осмотры не найдены")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tПротокол\tГород\tДата\tСтатус\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t---\t\n")

	for _, ins := range list {
		status := "⏳ локально"
		if ins.Synced() {
			status = "✓ на сервере"
		} else if ins.ServerID != nil {
			status = "↻ частично"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n",
			ins.LocalID,
			ins.Protocol,
			ins.Form.City,
			ins.Form.Date.Format("2006-01-02"),
			status)
	}

	w.Flush()
	fmt.Printf("\nВсего осмотров: %d\n", len(list))
	return nil
}

func init() {
	ListCmd.Flags().StringVar(&listFormat, "format", "table", "формат вывода (table, json)")
	ListCmd.Flags().BoolVar(&listRemote, "remote", false, "запросить список с сервера")
}
