package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LubyRuffy/orchat"
	"github.com/LubyRuffy/orchat/auth"
	"github.com/LubyRuffy/orchat/backend"
	"github.com/LubyRuffy/orchat/chat"
)

func main() {
	var (
		prompt     = flag.String("prompt", "", "one-shot prompt; empty starts interactive mode")
		system     = flag.String("system", orchat.DefaultSystemPrompt, "system prompt")
		model      = flag.String("model", "", "model id (default: "+orchat.DefaultModel+")")
		baseURL    = flag.String("base-url", "", "chat completions url (default: "+orchat.DefaultBaseURL+")")
		authSource = flag.String("auth-source", "auto", "auth source: env|dotenv|auto")
		timeout    = flag.Duration("timeout", 60*time.Second, "per-completion timeout")
		maxRounds  = flag.Int("max-rounds", 0, "tool rounds per turn (0 = default)")
		liveStream = flag.Bool("live-stream", true, "print content deltas as they arrive")
		verbose    = flag.Bool("verbose", false, "log tool calls and debug info")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

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

	// streamedLive 标记当前回合是否真的有增量片段被打出来：
	// 非流式回退路径不会触发 onDelta，此时完整回答由 runTurn 补印。
	var streamedLive bool
	var onDelta func(string)
	if *liveStream {
		onDelta = func(delta string) {
			streamedLive = true
			fmt.Print(delta)
		}
	}

	conv, err := chat.NewConversation(chat.Config{
		Completer:     client,
		Registry:      chat.NewRegistry(&localTools{}),
		SystemPrompt:  *system,
		MaxToolRounds: *maxRounds,
		OnDelta:       onDelta,
		OnToolResult: func(result chat.ToolResult) {
			logger.WithFields(logrus.Fields{
				"tool": result.Name,
				"args": result.Arguments,
			}).Debug("tool executed")
		},
	})
	if err != nil {
		logger.Fatalf("create conversation failed: %v", err)
	}

	if *prompt != "" {
		runTurn(os.Stdout, conv, logger, *prompt, &streamedLive)
		return
	}

	fmt.Printf("orchat (%s) — 输入问题，exit 退出\n", client.Model())
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		runTurn(os.Stdout, conv, logger, line, &streamedLive)
	}
}

// runTurn 执行一个回合并打印结果。失败时 Transcript 已被 Ask 回滚，
// 直接继续下一轮输入即可重试。
// streamedLive 指向本回合的流式标记：有增量片段被打出时只补换行，
// 否则（关闭 live-stream，或走了非流式回退）打印完整回答。
func runTurn(out io.Writer, conv *chat.Conversation, logger *logrus.Logger, prompt string, streamedLive *bool) {
	*streamedLive = false
	reply, err := conv.Ask(context.Background(), prompt)
	if err != nil {
		if *streamedLive {
			fmt.Fprintln(out)
		}
		var statusErr *backend.HTTPStatusError
		if errors.As(err, &statusErr) {
			logger.Errorf("request failed: %v", statusErr)
			return
		}
		logger.Errorf("turn failed: %v", err)
		return
	}
	if *streamedLive {
		// 流式片段已经边到边打，这里只补一个换行。
		fmt.Fprintln(out)
		return
	}
	fmt.Fprintln(out, reply)
}
