package analysis

// Prompt is sent along with every recording
const Prompt = `You are a cardiologist. Analyze this recording:
1. Identify S1 (Lub) and S2 (Dub) timestamps.
2. Evaluate the rhythm regularity (Check for AFib patterns).
3. Note any murmurs or background noise artifacts.
Return a structured clinical summary.`
