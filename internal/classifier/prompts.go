package classifier

// Token limits per request kind.
const (
	concernMaxTokens = 100
	riskMaxTokens    = 50
	replyMaxTokens   = 150
)

const concernSystemPrompt = "Analyzing user conversation history."

// concernPromptHeader precedes the windowed history.
const concernPromptHeader = `Analyze the following user's conversation history for signs of psychological distress or indicators that the user might benefit from psychological analysis. Give extra weight to the most recent messages. If the most recent messages indicate improvement or resolution of previous issues, reflect that in your analysis. Respond with either:
'yes: <brief explanation>' if concern is detected, or
'no: <brief explanation>' if no concern is detected.

Recent conversation history:
`

const riskSystemPrompt = "Analyze mental health risk."

// riskPromptHeader precedes the windowed history.
const riskPromptHeader = `Based on the following user's conversation history, provide a mental health risk percentage from 0 to 100. 0 means the user is completely okay, and 100 means extremely high risk. Then, assign a risk category as follows: 0-20: Green - you are okay, 20-40: Orange - a little problem, 40-60: Yellow - moderate concern, above 60: Red - immediate help needed. Output your answer in the format: NUMBER: CATEGORY. For example, '15: Green'.

Conversation history:
`
