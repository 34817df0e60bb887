package llm

const sentimentSystemPrompt = `You score the sentiment of a market report.

Return two numbers:
- polarity: from -1 (very negative) to 1 (very positive), 0 is neutral
- subjectivity: from 0 (purely factual) to 1 (purely opinion)

Output as JSON only, no other text:
{
  "polarity": 0.0,
  "subjectivity": 0.0
}`
