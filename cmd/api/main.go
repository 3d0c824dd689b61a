package main

import (
	"fmt"
	"net/http"

	"github.com/teranga-hr/payroll-backend-go/internal/config"
	appHTTP "github.com/teranga-hr/payroll-backend-go/internal/handler/http"
	"github.com/teranga-hr/payroll-backend-go/internal/pkg/database"
	"github.com/teranga-hr/payroll-backend-go/internal/pkg/jwt"
	"github.com/teranga-hr/payroll-backend-go/internal/repository/postgresql"
	authService "github.com/teranga-hr/payroll-backend-go/internal/service/auth"
	payrunService "github.com/teranga-hr/payroll-backend-go/internal/service/payrun"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	userRepo := postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	payRunRepo := postgresql.NewPayRunRepository(db)
	payslipRepo := postgresql.NewPayslipRepository(db)
	txManager := postgresql.NewTxManager(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	authSvc := authService.NewAuthService(userRepo, jwtService)
	payrunSvc := payrunService.NewPayRunService(txManager, payRunRepo, payslipRepo, employeeRepo, attendanceRepo)

	authHandler := appHTTP.NewAuthHandler(jwtService, authSvc)
	payRunHandler := appHTTP.NewPayRunHandler(payrunSvc)

	router := appHTTP.NewRouter(jwtService, authHandler, payRunHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
