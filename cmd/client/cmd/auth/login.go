// cmd/client/cmd/auth/login.go
package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"fieldreport/cmd/client/cmd/types"
	"fieldreport/internal/app/client"
	"fieldreport/internal/domain/user"
)

var noSync bool

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти в систему FieldReport",
	Long: `Аутентификация на сервере FieldReport.

После входа токен сохраняется локально, и накопленная офлайн-очередь
отправляется на сервер.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		fmt.Println("=== Вход в систему ===")
		fmt.Println()

		fmt.Print("Login: ")
		var login string
		_, _ = fmt.Scanln(&login)

		fmt.Print("Пароль: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("ошибка чтения пароля: %w", err)
		}
		fmt.Println()

		fmt.Println("Аутентификация...")
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		token, err := app.Login(ctx, user.BaseRequest{
			Login:    login,
			Password: string(password),
		})
		if err != nil {
			return fmt.Errorf("ошибка аутентификации: %w", err)
		}

		if err := app.SaveToken(token); err != nil {
			return fmt.Errorf("ошибка сохранения токена: %w", err)
		}

		fmt.Println()
		fmt.Println("✅ Вход выполнен успешно!")

		if noSync {
			return nil
		}

		// Отправляем накопленную очередь
		fmt.Println("Синхронизация данных...")
		result, err := app.Sync(ctx)
		if err != nil {
			fmt.Printf("⚠️  Предупреждение: ошибка синхронизации: %v\n", err)
			fmt.Println("Вы можете продолжить работу в офлайн-режиме")
		} else if result.Failed > 0 || result.Conflicts > 0 {
			fmt.Printf("⚠️  Синхронизация завершена с ошибками (%d)\n", len(result.Errors))
			fmt.Println("Подробности: fieldreport sync --status")
		} else {
			fmt.Printf("✓ Данные синхронизированы (%d задач)\n", result.Success)
		}

		return nil
	},
}

func init() {
	LoginCmd.Flags().BoolVar(&noSync, "no-sync", false, "не запускать синхронизацию после входа")
}
