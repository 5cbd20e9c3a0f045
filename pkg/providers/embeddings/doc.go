// Package embeddings provides EmbeddingProvider adapters for the
// vendors with embedding endpoints: any OpenAI-compatible service
// (OpenAI, Azure OpenAI, Ollama, LM Studio), Bedrock Titan, and
// Gemini.
//
// The OpenAI and Gemini endpoints accept batches natively. Titan
// embeds one text per request, so its EmbedBatch issues sequential
// calls via providers.EmbedSequential.
package embeddings
