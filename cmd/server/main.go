package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"katrina-one-backend/internal/config"
	"katrina-one-backend/internal/db"
	"katrina-one-backend/internal/handler"
	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/server"
	"katrina-one-backend/internal/service"
	"katrina-one-backend/internal/service/vietqr"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// Firebase Auth + Cloud Messaging (both optional)
	var firebaseAuth *auth.Client
	var fcmClient *messaging.Client
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, firebaseOptions(cfg)...)
		if err != nil {
			logger.Error("failed to init firebase app", "err", err)
			os.Exit(1)
		}
		firebaseAuth, err = app.Auth(ctx)
		if err != nil {
			logger.Error("failed to init firebase auth", "err", err)
			os.Exit(1)
		}
		fcmClient, err = app.Messaging(ctx)
		if err != nil {
			logger.Error("failed to init firebase messaging", "err", err)
			os.Exit(1)
		}
	}

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	reportRepo := repository.ReportRepository{DB: pg}
	templateRepo := repository.TemplateRepository{DB: pg}
	scheduleRepo := repository.ScheduleRepository{DB: pg}
	salaryRepo := repository.SalaryRepository{DB: pg}
	violationRepo := repository.ViolationRepository{DB: pg}
	revenueRepo := repository.RevenueRepository{DB: pg}
	expenseRepo := repository.ExpenseRepository{DB: pg}
	eventRepo := repository.EventRepository{DB: pg}
	fcmRepo := repository.FCMRepository{DB: pg}
	notificationRepo := repository.NotificationRepository{DB: pg}
	activityLogRepo := repository.ActivityLogRepository{DB: pg}

	if err := templateRepo.SeedDefaults(ctx); err != nil {
		logger.Error("failed to seed shift templates", "err", err)
		os.Exit(1)
	}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Logger: logger, FirebaseAuth: firebaseAuth}
	pushSvc := service.PushService{Client: fcmClient, Logger: logger}

	account := vietqr.Account{
		BankBin: cfg.VietQRBankBin,
		Number:  cfg.VietQRAccountNo,
		Name:    cfg.VietQRAccountName,
	}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	reportHandler := handler.ShiftReportHandler{
		Reports:   reportRepo,
		Templates: templateRepo,
		Tokens:    fcmRepo,
		Notices:   notificationRepo,
		Logs:      activityLogRepo,
		Pusher:    pushSvc,
		Logger:    logger,
	}
	summaryHandler := handler.ShiftSummaryHandler{
		Reports:   reportRepo,
		Templates: templateRepo,
		Schedules: scheduleRepo,
		Users:     userRepo,
	}
	scheduleHandler := handler.ScheduleHandler{Repo: scheduleRepo, Logs: activityLogRepo, Logger: logger}
	checklistHandler := handler.ChecklistHandler{Templates: templateRepo}
	salaryHandler := handler.SalaryHandler{
		Repo:       salaryRepo,
		Violations: violationRepo,
		Users:      userRepo,
		Schedules:  scheduleRepo,
		Reports:    reportRepo,
		Logs:       activityLogRepo,
		Logger:     logger,
	}
	violationHandler := handler.ViolationHandler{Repo: violationRepo}
	revenueHandler := handler.RevenueHandler{Repo: revenueRepo}
	expenseHandler := handler.ExpenseHandler{Repo: expenseRepo}
	financeHandler := handler.FinanceReportHandler{Revenue: revenueRepo, Expenses: expenseRepo}
	paymentHandler := handler.PaymentHandler{Account: account}
	eventHandler := handler.EventHandler{Repo: eventRepo}
	fcmHandler := handler.FCMHandler{Repo: fcmRepo}
	notificationHandler := handler.NotificationHandler{Repo: notificationRepo}
	activityLogHandler := handler.ActivityLogHandler{Repo: activityLogRepo}
	docsHandler := handler.DocsHandler{OpenAPIPath: cfg.OpenAPIPath}
	homeHandler := handler.HomeHandler{}

	router := server.NewRouter(cfg, logger,
		healthHandler, authHandler, reportHandler, summaryHandler,
		scheduleHandler, checklistHandler, salaryHandler, violationHandler,
		revenueHandler, expenseHandler, financeHandler, paymentHandler,
		eventHandler, fcmHandler, notificationHandler, activityLogHandler,
		docsHandler, homeHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	if cfg.FirebaseCredFile == "" {
		return nil
	}

	cred := cfg.FirebaseCredFile
	// Allow inline JSON or base64-encoded JSON in env to avoid writing a file.
	if strings.HasPrefix(strings.TrimSpace(cred), "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}

	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
