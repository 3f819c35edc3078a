package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/LubyRuffy/orchat"
	"github.com/LubyRuffy/orchat/auth"
	"github.com/LubyRuffy/orchat/backend"
	"github.com/LubyRuffy/orchat/chat"
	"github.com/LubyRuffy/orchat/chathttp"
)

func main() {
	var (
		listen     = flag.String("listen", "127.0.0.1:8080", "listen address")
		basePath   = flag.String("base-path", "/api", "base path prefix")
		system     = flag.String("system", orchat.DefaultSystemPrompt, "system prompt for new sessions")
		model      = flag.String("model", "", "model id (default: "+orchat.DefaultModel+")")
		baseURL    = flag.String("base-url", "", "chat completions url (default: "+orchat.DefaultBaseURL+")")
		authSource = flag.String("auth-source", "auto", "auth source: env|dotenv|auto")
		timeout    = flag.Duration("timeout", 120*time.Second, "per-completion timeout")
	)
	flag.Parse()

	logger := logrus.New()

	provider, err := auth.NewProvider(*authSource)
	if err != nil {
		logger.Fatalf("invalid auth-source: %v", err)
	}
	creds, err := provider.Credentials(context.Background())
	if err != nil {
		logger.Fatalf("auth failed: %v", err)
	}

	client, err := backend.NewClient(backend.Config{
		BaseURL:  orchat.ResolveBaseURL(*baseURL),
		Model:    orchat.ResolveModel(*model),
		APIKey:   creds.APIKey,
		Metadata: creds.Metadata,
		Timeout:  *timeout,
	})
	if err != nil {
		logger.Fatalf("create client failed: %v", err)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	err = chathttp.RegisterGinRoutes(r, chathttp.Config{
		BasePath:     *basePath,
		Completer:    client,
		Registry:     chat.NewRegistry(),
		SystemPrompt: *system,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatalf("register routes failed: %v", err)
	}

	srv := &http.Server{
		Addr:              *listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Infof("orchat server listening on http://%s%s", *listen, *basePath)
	logger.Infof("try: curl http://%s%s/chat -H 'Content-Type: application/json' -d '{\"prompt\":\"hi\"}'", *listen, *basePath)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error(err)
	}
}
