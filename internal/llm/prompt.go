package llm

import (
	"encoding/json"
	"fmt"

	"callcenter-insights-go/internal/aggregator"
	"callcenter-insights-go/internal/types"
)

const systemPrompt = `You are an analytics assistant for a customer call center. You have access to call records including agents, departments, categories, priorities, statuses, handle times, customer satisfaction scores and first call resolution.

Your role is to:
- Answer questions about call volume, performance and service quality
- Point out agents, departments or categories that need attention
- Suggest staffing and training actions backed by the data

Ground every number in the data provided. If the data cannot answer the question, say so instead of guessing.`

// groundingContext is the data block sent along with a question.
type groundingContext struct {
	Analytics aggregator.Snapshot `json:"analytics"`
	Calls     []types.CallRecord  `json:"calls"`
}

// BuildPrompt returns the system prompt and a user turn carrying the
// snapshot, the records and the question.
func BuildPrompt(s aggregator.Snapshot, records []types.CallRecord, question string) []Message {
	data, _ := json.MarshalIndent(groundingContext{Analytics: s, Calls: records}, "", "  ")

	user := fmt.Sprintf(`Here is the current call center data:

%s

User question: %s

Please analyze this data and provide a helpful response.`, string(data), question)

	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: user},
	}
}
