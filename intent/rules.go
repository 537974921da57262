package intent

// DefaultRules returns the standard rule table. Crisis language is checked
// before every topical rule so that a message mentioning both a crisis phrase
// and, say, schoolwork is always escalated.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "crisis",
			Outcome:  OutcomeCrisis,
			Priority: 0,
			Any: []string{
				"suicide", "kill myself", "want to die", "end it all", "no reason to live",
				"self-harm", "cut myself", "hurt myself", "better off dead",
				"planning suicide", "suicidal thoughts", "suicidal ideation",
			},
		},
		{
			Name:     "mental-health-keywords",
			Outcome:  OutcomeForward,
			Priority: 1,
			Any: []string{
				"depression", "anxiety", "stress", "mental health", "therapy", "counseling",
				"sad", "lonely", "hopeless", "worried", "nervous", "panic", "fear",
				"mood", "emotion", "feeling", "sleep", "appetite", "energy", "motivation",
				"suicide", "self-harm", "trauma", "grief", "loss", "relationship",
				"work", "school", "family", "social", "confidence", "self-esteem",
				"meditation", "mindfulness", "breathing", "exercise", "coping",
			},
		},
		{
			Name:     "emotional-indicators",
			Outcome:  OutcomeForward,
			Priority: 2,
			Any: []string{
				"feel", "feeling", "feelings", "emotion", "emotional", "mood", "upset",
				"sad", "happy", "angry", "frustrated", "overwhelmed", "stressed",
				"worried", "concerned", "scared", "afraid", "nervous", "anxious",
				"tired", "exhausted", "burned out", "unmotivated", "hopeless",
				"lonely", "isolated", "misunderstood", "judged", "pressured",
			},
		},
		{
			Name:     "life-situations",
			Outcome:  OutcomeForward,
			Priority: 3,
			Any: []string{
				"relationship", "breakup", "divorce", "marriage", "dating", "girlfriend", "boyfriend",
				"family", "parent", "child", "sibling", "friend", "colleague",
				"work", "job", "career", "boss", "workplace", "college", "university",
				"school", "exam", "test", "assignment", "deadline", "pressure",
				"money", "financial", "bills", "debt", "housing", "moving",
				"health", "illness", "pain", "chronic", "disability",
			},
		},
		{
			Name:     "major-life-events",
			Outcome:  OutcomeForward,
			Priority: 4,
			Any: []string{
				"broke up", "breakup", "broken up", "ended relationship", "lost my",
				"failed", "failed exam", "failed test", "got fired", "lost job",
				"moved", "moving", "changed schools", "transferred", "graduated",
				"started college", "started university", "started new job",
				"death", "died", "passed away", "lost someone", "funeral",
				"accident", "injury", "hospital", "surgery", "diagnosis",
				"pregnancy", "baby", "child", "marriage", "wedding",
				"divorce", "separation", "cheating", "betrayal", "lied to me",
			},
		},
		{
			Name:     "personal-struggles",
			Outcome:  OutcomeForward,
			Priority: 5,
			Any: []string{
				"struggling", "having trouble", "can't handle", "too much",
				"overwhelmed", "stressed out", "burned out", "exhausted",
				"don't know what to do", "at a loss", "confused",
				"stuck", "trapped", "no way out", "hopeless",
				"worthless", "useless", "failure", "disappointment",
				"embarrassed", "ashamed", "guilty", "regret",
			},
		},
		{
			Name:     "social-issues",
			Outcome:  OutcomeForward,
			Priority: 6,
			Any: []string{
				"no friends", "lonely", "alone", "isolated", "left out",
				"bullied", "harassed", "teased", "made fun of", "laughed at",
				"ignored", "rejected", "abandoned", "betrayed", "lied to",
				"gossip", "rumors", "social media", "online", "cyberbullying",
				"peer pressure", "fitting in", "belonging", "accepted",
			},
		},
		{
			Name:     "question-patterns",
			Outcome:  OutcomeForward,
			Priority: 7,
			Any: []string{
				"how to", "what should i do", "why do i", "how can i", "what if",
				"is it normal", "am i", "do you think", "should i", "can you help",
				"i need help", "i need advice", "i don't know what to do",
				"i feel like", "i think i", "i wonder if", "i'm not sure",
			},
		},
		{
			Name:     "behavioral-patterns",
			Outcome:  OutcomeForward,
			Priority: 8,
			Any: []string{
				"can't sleep", "sleeping too much", "eating too much", "not eating",
				"avoiding", "procrastinating", "overthinking", "racing thoughts",
				"mind won't stop", "always worried", "never happy", "always sad",
				"don't enjoy", "lost interest", "no motivation", "can't focus",
				"easily irritated", "short temper", "crying", "emotional",
			},
		},
		{
			Name:     "personal-question",
			Outcome:  OutcomeForward,
			Priority: 9,
			Any:      personalPronouns(),
			Also:     []string{"?", "help", "advice"},
		},
		{
			Name:     "well-being",
			Outcome:  OutcomeForward,
			Priority: 10,
			Any: []string{
				"better", "improve", "change", "fix", "solve", "deal with",
				"handle", "manage", "cope", "get through", "overcome",
				"advice", "suggestion", "tip", "help", "support", "guidance",
			},
		},
		{
			Name:     "personal-distress",
			Outcome:  OutcomeForward,
			Priority: 11,
			Any:      personalPronouns(),
			Also: []string{
				"broke", "lost", "failed", "can't", "won't", "always",
				"never", "hate", "love", "miss", "want", "need",
			},
		},
	}
}

func personalPronouns() []string {
	return []string{"i", "me", "my", "myself", "i'm", "i am"}
}
