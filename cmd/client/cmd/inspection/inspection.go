package inspection

import (
	"github.com/spf13/cobra"
)

// InspectionCmd - родительская команда для операций с осмотрами
var InspectionCmd = &cobra.Command{
	Use:   "inspection",
	Short: "Управление осмотрами",
	Long: `Создание, просмотр и удаление протоколов осмотра кровли.

Протокол заполняется на устройстве и сохраняется локально; черепица,
несоответствия и фото отправляются на сервер при синхронизации.`,
}
