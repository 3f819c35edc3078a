// Package chathttp 把对话循环暴露为 HTTP 服务。
//
// 该包对外只暴露：
// - net/http 形式的 handlers（chat/chat.stream）
// - Gin 路由注册方法
//
// 凭据不由该包读取，由调用方通过 Config 注入已经建好的补全驱动。
//
// 使用示例：
//
//	// net/http
//	chatH, streamH, _ := chathttp.Handlers(chathttp.Config{
//		Completer: client,
//		Registry:  registry,
//	})
//	mux.HandleFunc("/api/chat", chatH)
//	mux.HandleFunc("/api/chat/stream", streamH)
//
//	// gin
//	_ = chathttp.RegisterGinRoutes(r, chathttp.Config{
//		BasePath:  "/api",
//		Completer: client,
//		Registry:  registry,
//	})
package chathttp
