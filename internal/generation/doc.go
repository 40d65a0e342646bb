// Package generation defines the boundary to external AI/LLM services
// for narrative generation. It lets the application turn a task into a
// story with a reward pool without coupling to a specific provider; the
// Gemini-backed implementation lives in internal/platform/gemini.
package generation
