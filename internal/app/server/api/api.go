//регистрация и аутентификация техников;
//прием клиентов и протоколов осмотра с полевых устройств;
//загрузка фото несоответствий;
//выдача накопленных данных владельцу по запросу.

//POST /api/auth/register                    # Регистрация (публичный)
//POST /api/auth/login                       # Логин (публичный)
//GET  /api/v1/health                        # Проверка доступности (публичный)
//GET  /api/clients                          # Список клиентов (auth)
//POST /api/clients                          # Создать клиента (auth)
//PUT  /api/clients/{id}                     # Обновить клиента (auth)
//GET  /api/inspections                      # Список осмотров (auth)
//POST /api/inspections                      # Создать осмотр (auth)
//GET  /api/inspections/{id}                 # Получить осмотр (auth)
//PUT  /api/inspections/{id}                 # Обновить осмотр (auth)
//POST /api/inspections/{id}/tiles           # Добавить черепицу (auth)
//POST /api/inspections/{id}/non-conformities # Добавить несоответствие (auth)
//POST /api/upload/photo                     # Загрузить фото (auth)

package api

import (
	customerAPI "fieldreport/internal/app/server/api/http/customer"
	healthAPI "fieldreport/internal/app/server/api/http/health"
	inspectionAPI "fieldreport/internal/app/server/api/http/inspection"
	"fieldreport/internal/app/server/api/http/middleware"
	"fieldreport/internal/app/server/api/http/middleware/auth"
	"fieldreport/internal/app/server/api/http/middleware/logger"
	uploadAPI "fieldreport/internal/app/server/api/http/upload"
	userAPI "fieldreport/internal/app/server/api/http/user"
	"fieldreport/internal/app/server/config"
	"fieldreport/internal/domain/customer"
	"fieldreport/internal/domain/inspection"
	"fieldreport/internal/domain/session"
	"fieldreport/internal/domain/user"
	"fieldreport/internal/infrastructure/storage/postgres"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type Handlers struct {
	Health     *healthAPI.Handler
	User       *userAPI.Handler
	Customer   *customerAPI.Handler
	Inspection *inspectionAPI.Handler
	Upload     *uploadAPI.Handler
}

// New создает *chi.Mux с ВСЕМИ операциями через huma.Register
func New(storage *postgres.Storage, conf *config.Config, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaConf := huma.DefaultConfig("FieldReport API", "1.0.0")
	humaConf.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConf)

	h := handlers(storage, conf, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Customer.SetupRoutes(API)
	h.Inspection.SetupRoutes(API)
	h.Upload.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, conf *config.Config, log *slog.Logger) *Handlers {
	sessionRepo := postgres.NewSessionRepository(storage, log)
	sessionService := session.NewService(sessionRepo, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	userRepo := postgres.NewUserRepository(storage.Pool(), log)
	userService := user.NewService(userRepo, user.NewCredentialsValidator(), log)
	middlewares.Add(loggerMW.Middleware())
	userHandler := userAPI.NewHandler(userService, sessionService, log, middlewares.GetAllAndClear())

	customerRepo := postgres.NewCustomerRepository(storage.Pool(), log)
	customerService := customer.NewService(customerRepo, log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	customerHandler := customerAPI.NewHandler(customerService, log, middlewares.GetAllAndClear())

	inspectionRepo := postgres.NewInspectionRepository(storage.Pool(), log)
	inspectionService := inspection.NewService(inspectionRepo, log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	inspectionHandler := inspectionAPI.NewHandler(inspectionService, log, middlewares.GetAllAndClear())

	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	uploadHandler := uploadAPI.NewHandler(conf.Uploads, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:     healthHandler,
		User:       userHandler,
		Customer:   customerHandler,
		Inspection: inspectionHandler,
		Upload:     uploadHandler,
	}
}
