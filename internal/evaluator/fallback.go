package evaluator

import (
	"strings"

	"intervuai/backend/internal/models"
)

const defaultFollowUp = "Can you explain how you would handle edge cases in your solution?"

// question bank used when the model is unavailable
var questionBank = map[string]map[string][]string{
	"frontend": {
		"beginner": {
			"Explain the difference between let, const, and var in JavaScript.",
			"What is the purpose of CSS flexbox and how do you use it?",
			"How does event delegation work in JavaScript?",
		},
		"intermediate": {
			"Describe how React's virtual DOM works and why it exists for performance optimization.",
			"What are closures in JavaScript and can you provide a practical example?",
			"Explain the difference between call, apply, and bind methods in JavaScript.",
		},
		"advanced": {
			"How would you implement a custom React hook for managing complex state logic?",
			"Explain the concept of memoization and how React.memo differs from useMemo.",
			"Describe the differences between controlled and uncontrolled components in React.",
		},
	},
	"backend": {
		"beginner": {
			"What is the difference between SQL and NoSQL databases?",
			"Explain the concept of RESTful API and its main principles.",
			"What are middleware functions and how do they work in a web framework?",
		},
		"intermediate": {
			"How would you handle authentication in a backend service?",
			"Explain the concept of database indexing and when you should use it.",
			"What is the difference between SQL joins (INNER, LEFT, RIGHT)?",
		},
		"advanced": {
			"Design a scalable architecture for handling 1 million concurrent users.",
			"Explain how you would implement database replication and sharding.",
			"How would you optimize a slow database query with millions of records?",
		},
	},
	"fullstack": {
		"beginner": {
			"Explain the client-server architecture and how data flows between them.",
			"What is the purpose of APIs and how do they enable communication?",
			"Describe the basic flow of an HTTP request and response cycle.",
		},
		"intermediate": {
			"How would you secure sensitive data like passwords and API keys in a web application?",
			"Explain the concept of JWT (JSON Web Tokens) and how authentication flows work.",
			"What are the main differences between session-based and token-based authentication?",
		},
		"advanced": {
			"Design a real-time notification system for millions of users across multiple services.",
			"How would you implement end-to-end encryption in a messaging application?",
			"Explain how you would handle distributed transactions across microservices.",
		},
	},
	"devops": {
		"beginner": {
			"What is containerization and why is Docker useful?",
			"Explain the difference between CI/CD pipelines and their importance.",
			"What is the purpose of configuration management tools?",
		},
		"intermediate": {
			"How would you set up a Kubernetes cluster and manage deployments?",
			"Explain Infrastructure as Code and its benefits.",
			"What strategies would you use for blue-green or canary deployments?",
		},
		"advanced": {
			"Design a highly available and scalable infrastructure for a SaaS application.",
			"How would you implement disaster recovery and backup strategies?",
			"Explain how you would monitor and observe a distributed system.",
		},
	},
	"data-science": {
		"beginner": {
			"Explain the difference between supervised and unsupervised learning.",
			"What is a confusion matrix and how do you interpret it?",
			"Describe the process of data preprocessing and why it's important.",
		},
		"intermediate": {
			"How would you handle imbalanced datasets in machine learning?",
			"Explain cross-validation and why it's important for model evaluation.",
			"What techniques would you use to reduce overfitting in a model?",
		},
		"advanced": {
			"Design an end-to-end machine learning pipeline for production deployment.",
			"How would you implement distributed training across multiple GPUs?",
			"Explain how you would handle concept drift in a live ML model.",
		},
	},
}

// tracks that share another track's bank
var bankAliases = map[string]string{
	"data_scientist": "data-science",
	"ai_ml_engineer": "data-science",
	"mlops_engineer": "devops",
	"data_engineer":  "backend",
}

func fallbackQuestions(interviewType, difficulty string) []string {
	if alias, ok := bankAliases[interviewType]; ok {
		interviewType = alias
	}
	if qs := questionBank[interviewType][difficulty]; len(qs) > 0 {
		return qs
	}
	return questionBank["fullstack"]["intermediate"]
}

// heuristicEvaluation scores on answer length alone.
func heuristicEvaluation(response string) models.Evaluation {
	words := len(strings.Fields(response))

	var eval models.Evaluation
	switch {
	case words < 20:
		eval.Score = 40
		eval.Feedback = "Response too brief. Provide more details and examples. "
	case words > 100:
		eval.Score = 75
		eval.Feedback = "Comprehensive response with good detail. "
	default:
		eval.Score = 65
		eval.Feedback = "Solid response with adequate explanation. "
	}
	eval.Feedback += "Consider adding real-world examples or tradeoffs."
	eval.FollowUpQuestion = defaultFollowUp
	return eval
}
