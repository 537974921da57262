package handlers

// Canned assistant responses. The crisis text is returned verbatim whenever
// crisis language is detected, before anything reaches the language model.
const (
	crisisResponse = "I'm really concerned about what you're sharing. Please reach out for immediate support:\n\n" +
		"• National Suicide Prevention Lifeline: 988 (call or text)\n" +
		"• Crisis Text Line: text HOME to 741741\n" +
		"• Emergency services: 911\n\n" +
		"You don't have to go through this alone. A trained counselor is available right now, " +
		"and you can also book a session with one of our verified doctors."

	offTopicResponse = "I'm here to support you with mental health and emotional well-being. " +
		"I can't help with that topic, but if something is weighing on you — stress, relationships, " +
		"school, or anything about how you're feeling — I'm happy to talk about it."

	fallbackResponse = "I'm having trouble responding right now. Please try again in a moment, " +
		"or consider booking a session with one of our verified doctors if you'd like to talk to someone."

	assistantSystemPrompt = "You are a supportive mental health assistant for a student wellness platform. " +
		"Respond with empathy and practical coping guidance. Encourage professional help when appropriate " +
		"and remind users you are not a substitute for a licensed clinician. Keep responses concise and warm."
)
