// Package orchat 提供基于 OpenRouter chat completions SSE 接口的流式工具对话引擎：
// 增量解码流式响应（包括分片到达的 tool_calls）、维护对话 Transcript，
// 并驱动「补全 -> 执行工具 -> 回填结果」的多轮循环，直到模型给出不再请求工具的最终回答。
//
// 该仓库主要包含三类能力：
//  1. 协议层：backend 包实现补全请求、SSE 增量解码与工具调用分片聚合，
//     同时提供可供 Eino 使用的 ToolCallingChatModel 实现
//  2. 会话层：chat 包提供 Transcript、工具注册表与对话循环状态机
//  3. 前端：chathttp 包导出 gin HTTP handlers，cmd/orchat 提供终端交互
package orchat
