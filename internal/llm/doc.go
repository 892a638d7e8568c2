// Package llm is the model-backed extraction tier.
//
// A TextGenerator is any backend that streams text for a prompt: Gemini
// through google.golang.org/genai, OpenAI-compatible chat completion servers,
// or the Anthropic Messages API. Extractor builds the extraction prompt,
// collects the stream under a timeout, sanitizes and decodes the JSON reply,
// and hands the message to a fallback tier whenever any of that fails.
//
// Usage:
//
//	gen, err := llm.NewGenerator(ctx, llm.Config{Provider: "gemini", APIKey: key})
//	if err != nil {
//	    return err
//	}
//	extractor := llm.NewExtractor(gen, parser.New(), llm.ExtractorOptions{})
//	txn, err := extractor.Extract(ctx, sms)
package llm
