// cmd/client/cmd/sync/sync.go
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fieldreport/cmd/client/cmd/types"
	"fieldreport/internal/app/client"
)

var (
	syncStatus    bool
	showConflicts bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Управление синхронизацией",
	Long: `Отправка накопленной офлайн-очереди на сервер.

Команда позволяет запускать синхронизацию вручную, просматривать статус
очереди и застрявшие на конфликтах задачи.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		if syncStatus {
			return showSyncStatus(cmd.Context(), app)
		}

		if showConflicts {
			return showSyncConflicts(app)
		}

		return runSync(cmd.Context(), app)
	},
}

func runSync(ctx context.Context, app *client.App) error {
	fmt.Println("=== Синхронизация данных ===")

	if !app.IsAuthenticated() {
		return fmt.Errorf("требуется аутентификация. Выполните: fieldreport auth login")
	}

	fmt.Println("Проверка соединения с сервером...")
	if err := app.CheckConnection(); err != nil {
		return fmt.Errorf("сервер недоступен: %v", err)
	}

	fmt.Println("Начало синхронизации...")
	start := time.Now()

	result, err := app.Sync(ctx)
	if err != nil {
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}

	duration := time.Since(start)

	fmt.Println()
	fmt.Println("✅ Синхронизация завершена!")
	fmt.Printf("Время выполнения: %v\n", duration.Round(time.Millisecond))
	fmt.Printf("Отправлено задач: %d\n", result.Success)

	if result.Failed > 0 {
		fmt.Printf("Временные сбои: %d (будут повторены)\n", result.Failed)
	}

	if result.Conflicts > 0 {
		fmt.Printf("Обнаружено конфликтов: %d\n", result.Conflicts)
		fmt.Println("⚠️  Конфликтные задачи исключены из повторов")
		fmt.Println("   Используйте 'fieldreport sync --conflicts' для просмотра")
	}

	if result.Pending > 0 {
		fmt.Printf("Осталось в очереди: %d\n", result.Pending)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("Ошибок при синхронизации: %d\n", len(result.Errors))
		for i, msg := range result.Errors {
			if i < 3 { // Показываем только первые 3 ошибки
				fmt.Printf("  • %s\n", msg)
			}
		}
		if len(result.Errors) > 3 {
			fmt.Printf("  ... и еще %d ошибок\n", len(result.Errors)-3)
		}
	}

	return nil
}

func showSyncStatus(ctx context.Context, app *client.App) error {
	fmt.Println("=== Статус синхронизации ===")

	status, err := app.SyncStatus(ctx)
	if err != nil {
		return fmt.Errorf("ошибка получения статуса: %w", err)
	}

	fmt.Printf("\n🌐 Соединение с сервером: ")
	if status.Online {
		fmt.Println("✅ OK")
	} else {
		fmt.Println("❌ Нет соединения")
	}

	fmt.Printf("🔐 Аутентификация: ")
	if app.IsAuthenticated() {
		fmt.Println("✅ Выполнена")
	} else {
		fmt.Println("❌ Требуется вход")
	}

	fmt.Printf("\n📊 Очередь:\n")
	fmt.Printf("  Задач в ожидании: %d\n", status.Pending)
	fmt.Printf("  Конфликтов: %d\n", len(status.Conflicts))
	if status.Syncing {
		fmt.Println("  Синхронизация выполняется прямо сейчас")
	}

	return nil
}

func showSyncConflicts(app *client.App) error {
	conflicts, err := app.Store().ConflictTasks()
	if err != nil {
		return fmt.Errorf("ошибка получения конфликтов: %w", err)
	}

	if len(conflicts) == 0 {
		fmt.Println("Конфликтов нет")
		return nil
	}

	fmt.Printf("=== Конфликты (%d) ===\n\n", len(conflicts))
	for _, task := range conflicts {
		fmt.Printf("Задача #%d [%s]\n", task.ID, task.Kind)
		fmt.Printf("  Запись: %d\n", task.RelatedLocalID)
		fmt.Printf("  Ошибка: %s\n", task.LastError)
		if task.LastAttemptAt != nil {
			fmt.Printf("  Последняя попытка: %s\n",
				task.LastAttemptAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}

	fmt.Println("Конфликт означает, что сервер отверг запись окончательно.")
	fmt.Println("Исправьте данные и создайте запись заново, затем удалите старую.")
	return nil
}

func init() {
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать статус синхронизации")
	SyncCmd.Flags().BoolVar(&showConflicts, "conflicts", false, "показать конфликтные задачи")
}
