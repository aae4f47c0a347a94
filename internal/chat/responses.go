package chat

import "github.com/lumenlearn/tutor-backend/internal/safety"

// ThrottleMessage is returned when a student exceeds the rate limit.
const ThrottleMessage = "You're asking too many questions too quickly! Take a breath and try again in a minute 😊"

// criticalResponse includes crisis resources and is used for self-harm
// verdicts. The hotline numbers must not be altered.
const criticalResponse = "I'm really concerned about what you've shared. Your safety is the most important thing.\n\n" +
	"Please talk to a trusted adult right away, such as a parent, teacher, or school counselor.\n" +
	"- Call or text 988 (Suicide & Crisis Lifeline, 24/7)\n" +
	"- Text 'HELLO' to 741741 (Crisis Text Line)\n" +
	"- Call 911 if you're in immediate danger\n\n" +
	"You don't have to face difficult feelings alone. There are people who care and want to help. 💙"

const highResponse = "I understand you're feeling strong emotions right now. " +
	"It's okay to feel frustrated, but let's try to keep things respectful and positive. " +
	"Instead of focusing on negative thoughts, how about we talk about something educational or inspiring? 🌱 " +
	"Maybe we can explore a topic you're curious about today? 🎓"

const mediumResponse = "I'm here to help with your learning! Let's keep our conversation positive and educational. " +
	"What subject or topic interests you most today? 🎓"

const lowResponse = "Let's keep our conversation focused on learning! What would you like to explore today? 🌟"

// SafeResponse returns the canned tutor reply for an unsafe verdict's
// severity tier.
func SafeResponse(severity safety.Severity) string {
	switch severity {
	case safety.SeverityCritical:
		return criticalResponse
	case safety.SeverityHigh:
		return highResponse
	case safety.SeverityMedium:
		return mediumResponse
	default:
		return lowResponse
	}
}
