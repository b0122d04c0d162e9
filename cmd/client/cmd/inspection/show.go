// cmd/client/cmd/inspection/show.go
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

var showJSON bool

var ShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Показать осмотр",
	Long:  `Подробный вывод одного протокола осмотра по его локальному ID.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		localID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("некорректный ID осмотра: %s", args[0])
		}

		ins, err := app.GetInspection(localID)
		if err != nil {
			return fmt.Errorf("осмотр не найден: %w", err)
		}

		if showJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(ins)
		}

		fmt.Printf("=== Осмотр %s ===\n\n", ins.Protocol)
		fmt.Printf("Локальный ID: %d\n", ins.LocalID)
		if ins.ServerID != nil {
			fmt.Printf("Серверный ID: %d\n", *ins.ServerID)
		}
		fmt.Printf("Дата: %s\n", ins.Form.Date.Format("2006-01-02"))
		if ins.Form.Address != "" {
			fmt.Printf("Адрес: %s, %s/%s\n", ins.Form.Address, ins.Form.City, ins.Form.State)
		}
		if ins.Form.RoofModel != "" {
			fmt.Printf("Модель кровли: %s\n", ins.Form.RoofModel)
		}

		if len(ins.Form.Tiles) > 0 {
			fmt.Printf("\nЧерепица (%d):\n", len(ins.Form.Tiles))
			for _, tile := range ins.Form.Tiles {
				fmt.Printf("  • %s x%d", tile.Model, tile.Quantity)
				if tile.Area > 0 {
					fmt.Printf(" (%.1f м²)", tile.Area)
				}
				fmt.Println()
			}
		}

		if len(ins.Form.NonConformities) > 0 {
			fmt.Printf("\nНесоответствия (%d):\n", len(ins.Form.NonConformities))
			for _, nc := range ins.Form.NonConformities {
				fmt.Printf("  • %s", nc.Title)
				if nc.Description != "" {
					fmt.Printf(": %s", nc.Description)
				}
				fmt.Println()
			}
		}

		photos, err := app.Attachments().ForInspection(localID)
		if err == nil && len(photos) > 0 {
			fmt.Printf("\nФото (%d):\n", len(photos))
			for _, p := range photos {
				status := "⏳ локально"
				if p.Synced {
					status = p.ServerURL
				}
				fmt.Printf("  • #%d [%s] %s\n", p.LocalID, p.NonConformityKey, status)
			}
		}

		fmt.Println()
		if ins.Synced() {
			fmt.Printf("Статус: ✓ синхронизирован %s\n", ins.SyncedAt.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Println("Статус: ⏳ ожидает синхронизации")
		}

		return nil
	},
}

func init() {
	ShowCmd.Flags().BoolVar(&showJSON, "json", false, "вывод в формате JSON")
}
