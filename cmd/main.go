package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"

	"brandvoice-chat/handler"
	"brandvoice-chat/internal/integrations/anthropic"
	"brandvoice-chat/internal/integrations/paramstore"
	"brandvoice-chat/internal/prompts"
	"brandvoice-chat/internal/usecase"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "err", err)
	}

	// ---- Configuration (read only here) ----
	keyParam := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY_PARAM"))
	baseURL := envString("ANTHROPIC_BASE_URL", anthropic.DefaultBaseURL)
	model := envString("ANTHROPIC_MODEL", usecase.DefaultModel)
	maxMessageLen := envInt("MAX_MESSAGE_LENGTH", usecase.DefaultMaxContentLen)
	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))

	// ---- Credential source ----
	var keys usecase.KeySource = anthropic.NewEnvKeySource("ANTHROPIC_API_KEY")
	if keyParam != "" {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		keys, err = anthropic.NewParamStoreKeySource(ssmClient, keyParam)
		if err != nil {
			slog.Error("failed to create key source", "err", err)
			os.Exit(1)
		}
	}

	// ---- Handler ----
	chatService, err := usecase.NewChatService(keys, anthropic.NewClient(anthropic.WithBaseURL(baseURL)), model, maxMessageLen)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	slog.Info("chat handler ready", "model", model, "prompt_keys", prompts.Keys(), "max_message_length", maxMessageLen)

	if listenAddr == "" {
		lambda.Start(h.HandleFunctionURL)
		return
	}
	if err := serve(listenAddr, h); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// serve runs the handler on a plain HTTP listener until SIGINT/SIGTERM.
func serve(addr string, h http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/api/chat", h)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
