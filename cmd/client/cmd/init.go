// cmd/client/cmd/init.go
package cmd

import (
	"fieldreport/cmd/client/cmd/auth"
	"fieldreport/cmd/client/cmd/clients"
	"fieldreport/cmd/client/cmd/inspection"
	"fieldreport/cmd/client/cmd/photo"
	"fieldreport/cmd/client/cmd/sync"
)

func init() {
	// Команды аутентификации
	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)

	// Клиенты
	rootCmd.AddCommand(clients.ClientsCmd)
	clients.ClientsCmd.AddCommand(clients.CreateCmd)
	clients.ClientsCmd.AddCommand(clients.UpdateCmd)
	clients.ClientsCmd.AddCommand(clients.ListCmd)

	// Осмотры
	rootCmd.AddCommand(inspection.InspectionCmd)
	inspection.InspectionCmd.AddCommand(inspection.CreateCmd)
	inspection.InspectionCmd.AddCommand(inspection.UpdateCmd)
	inspection.InspectionCmd.AddCommand(inspection.ListCmd)
	inspection.InspectionCmd.AddCommand(inspection.ShowCmd)
	inspection.InspectionCmd.AddCommand(inspection.DeleteCmd)

	// Фото несоответствий
	rootCmd.AddCommand(photo.PhotoCmd)
	photo.PhotoCmd.AddCommand(photo.AddCmd)

	// Синхронизация
	rootCmd.AddCommand(sync.SyncCmd)
	rootCmd.AddCommand(sync.WatchCmd)
}
