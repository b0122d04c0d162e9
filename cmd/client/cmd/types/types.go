package types

// ContextKey типизирует ключи контекста команд, чтобы не пересекаться
// с чужими значениями.
type ContextKey string

// ClientAppKey хранит *client.App, собранный в PersistentPreRun корневой
// команды.
const ClientAppKey ContextKey = "client-app"
