package gemini

import "google.golang.org/genai"

const receiptPrompt = "Read this receipt. Extract the merchant name, the total amount " +
	"(Philippine Peso unless another currency is printed), the date as YYYY-MM-DD, and the most " +
	"likely spending category such as Food, Transport, Utilities or Shopping. Answer in JSON."

const prioritizePrompt = `You manage a productivity backlog. Reorder the tasks below by urgency and
importance and adjust each task's priority (High, Medium or Low) where needed.

Tasks: %s

Answer with a JSON array holding exactly the same tasks, same ids, in the new order.`

const schedulePrompt = `Build a time-blocked plan for today.

Work starts at %s and ends at %s.
Energy level: %s. With high energy put demanding work first; with low energy start with lighter tasks or a break.

Pending tasks: %s

Rules:
1. Every block fits inside the working window.
2. Add short breaks.
3. Group similar tasks.
4. High priority tasks get focus blocks.

Answer with a JSON array of blocks. Times are HH:MM on a 24 hour clock. Type is one of
focus, meeting, break or admin. suggestionReason says why the block sits at that time.`

const insightsPrompt = `Here are a user's recent transactions (amounts in Philippine Peso) and productivity tasks.

Data: %s

Look for links between how they work and how they spend, for example busy high priority days
followed by convenience spending, or stress purchases.

Answer with a JSON object: "summary" is a two sentence overview, "correlations" lists three
concrete observations tying time to money, "recommendation" is one actionable tip.`

const goalPrompt = `I live in the Philippines and I am saving for a goal.
Goal: %s
Target: ₱%s
Deadline: %s

This month I earned ₱%s and spent ₱%s.

Give me a short plan in three or four bullet points, including how much I should put aside each month.`

const workflowPrompt = `My tasks: %s. In three sentences, tell me how to structure my day to get through them efficiently.`

var receiptSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"merchant": {Type: genai.TypeString},
		"total":    {Type: genai.TypeNumber},
		"date":     {Type: genai.TypeString},
		"category": {Type: genai.TypeString},
	},
}

var taskListSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":            {Type: genai.TypeString},
			"title":         {Type: genai.TypeString},
			"priority":      {Type: genai.TypeString, Enum: []string{"High", "Medium", "Low"}},
			"estimatedTime": {Type: genai.TypeString},
			"status":        {Type: genai.TypeString, Enum: []string{"todo", "in-progress", "done"}},
			"dueDate":       {Type: genai.TypeString},
		},
		Required: []string{"id", "title", "priority", "status"},
	},
}

var scheduleSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":               {Type: genai.TypeString},
			"startTime":        {Type: genai.TypeString},
			"endTime":          {Type: genai.TypeString},
			"title":            {Type: genai.TypeString},
			"type":             {Type: genai.TypeString, Enum: []string{"focus", "meeting", "break", "admin"}},
			"suggestionReason": {Type: genai.TypeString},
		},
		Required: []string{"startTime", "endTime", "title", "type"},
	},
}

var insightSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":        {Type: genai.TypeString},
		"correlations":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"recommendation": {Type: genai.TypeString},
	},
	Required: []string{"summary", "correlations", "recommendation"},
}
