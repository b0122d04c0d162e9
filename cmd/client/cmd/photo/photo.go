package photo

import (
	"github.com/spf13/cobra"
)

// PhotoCmd - родительская команда для операций с фото несоответствий
var PhotoCmd = &cobra.Command{
	Use:   "photo",
	Short: "Управление фото несоответствий",
	Long: `Прикрепление фотографий к несоответствиям осмотра.

Фото хранятся локально и загружаются на сервер вместе со своим
несоответствием при синхронизации.`,
}
