package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planbuddy/internal/api/handlers/auth"
	"planbuddy/internal/api/handlers/groups"
	"planbuddy/internal/api/handlers/proposals"
	mw "planbuddy/internal/api/middlewares"
	"planbuddy/internal/api/routers"
	"planbuddy/internal/repositories"
	"planbuddy/internal/repositories/sqlconnect"
	"planbuddy/internal/services"
	"planbuddy/pkg/cron"
	"planbuddy/pkg/utils"

	"github.com/joho/godotenv"
)

func main() {
	utils.InitLogger()

	if err := godotenv.Load(); err != nil {
		utils.Logger.Warn("no .env file found, relying on the environment")
	}

	db, err := sqlconnect.Open()
	if err != nil {
		utils.Logger.Fatalf("DB connection failed: %v", err)
	}

	if err := sqlconnect.EnsureSchema(db); err != nil {
		db.Close()
		utils.Logger.Fatalf("schema setup failed: %v", err)
	}

	membershipRepo := repositories.NewMembershipRepository(db)
	proposalRepo := repositories.NewProposalRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	responseRepo := repositories.NewResponseRepository(db)
	userRepo := repositories.NewUserRepository(db)

	tokenTTL, _ := time.ParseDuration(os.Getenv("RESPONSE_TOKEN_EXP_DURATION"))
	notifier := services.NewEmailNotifier()
	coordinator := services.NewCoordinator(membershipRepo, proposalRepo, tokenRepo, responseRepo, userRepo, notifier, tokenTTL)

	authHandler := auth.NewHandler(db)
	groupsHandler := groups.NewHandler(db, membershipRepo)
	proposalsHandler := proposals.NewHandler(coordinator)

	scheduler := cron.StartCronJob(tokenRepo, proposalRepo, coordinator)

	port := os.Getenv("SERVER_PORT")

	cert := os.Getenv("CERT_FILE")
	key := os.Getenv("KEY_FILE")

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	rl := mw.NewRateLimiter(60, time.Minute)

	router := routers.MainRouter(authHandler, groupsHandler, proposalsHandler)
	jwtMiddleware := mw.MiddlewaresExcludePaths(mw.JWTMiddleware, "/users/signup", "/users/login", "/users/confirmotp", "/users/resendotp", "/respond")

	secureMux := rl.Middleware(jwtMiddleware(mw.SecurityHeaders(router)))

	server := &http.Server{
		Addr:      port,
		Handler:   secureMux,
		TLSConfig: tlsConfig,
	}

	go func() {
		utils.Logger.Info("Server is running on port ", port)
		if err := server.ListenAndServeTLS(cert, key); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatalf("Error starting the server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	utils.Logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.Logger.Errorf("Server shutdown failed: %v", err)
	}

	scheduler.Stop()

	if err := db.Close(); err != nil {
		utils.Logger.Errorf("closing database handle: %v", err)
	}
}
