// Package chat 实现对话层：对话历史（Transcript）、工具注册表（Registry）
// 与对话循环（Conversation）。Conversation 组合 backend 的补全驱动与
// 注册表里的工具，驱动「补全 -> 工具 -> 回填」循环直到模型给出最终回答。
package chat
