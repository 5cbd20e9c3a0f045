// Package translate converts the universal message and tool
// representation to and from each vendor's native wire shape.
//
// Translator functions are pure and total: given any message list they
// never fail on unknown block types. Unknown blocks are dropped, not
// fatal, so the core tolerates vendor format drift.
//
// Four content shapes are supported bidirectionally:
//
//   - plain string content
//   - Anthropic-style block lists ({type: text|image|tool_result})
//   - OpenAI-style part lists ({type: text|image_url} with data: URIs)
//   - vendor-native shapes: Gemini parts with inline_data, Ollama
//     messages with a raw base64 images array, and Cohere chat_history
//     with preamble_override
//
// Tool declarations round-trip between the OpenAI function schema
// ({type: function, function: {name, parameters}}) and the Anthropic
// schema ({name, description, input_schema}) without loss of the
// JSON-Schema payload.
package translate
