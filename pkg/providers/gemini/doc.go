// Package gemini implements the Google Gemini provider adapter on the
// genai SDK.
//
// The same adapter body serves two backends: the Gemini API (API key
// auth) and Vertex AI (project/location with application default
// credentials). The vertex package wraps this one with the Vertex
// backend preconfigured.
//
// Universal messages become genai Contents (role "model" for the
// assistant), images become inline_data blobs, and tool declarations
// pass their JSON schemas through ParametersJsonSchema untouched.
// Thinking budgets are requested through thinking_config when the
// effort level is high or max. Streaming iterates the SDK's chunk
// sequence and translates candidate parts to normalized events.
package gemini
