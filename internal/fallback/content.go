package fallback

import "github.com/boweryconnect/companion/internal/model/crisis"

// entry is one canned safety response. The copy in this file is reviewed as
// safety-critical content; edits here are content decisions, not code changes.
type entry struct {
	message string
	actions []string
}

var table = map[crisis.Category]entry{
	crisis.CategorySuicidal: {
		message: "I hear you're in tremendous pain. Your life matters. Please call 988 right now - they're there 24/7. If you can't call, text HOME to 741741. You are not alone.",
		actions: []string{crisis.ActionCall988, crisis.ActionText741741, crisis.ActionCall911},
	},
	crisis.CategoryPsychosis: {
		message: "The voices feel very real, I know. Let's ground you: Name 5 things you can see, 4 you can touch, 3 you can hear, 2 you can smell, 1 you can taste. This helps your mind reconnect with what's real.",
		actions: []string{crisis.ActionGrounding, crisis.ActionCall988},
	},
	crisis.CategoryPanic: {
		message: "I hear you're feeling overwhelmed right now. You're safe. Let's breathe together. In for 4 seconds... hold for 4... out for 6. You're doing great.",
		actions: []string{crisis.ActionBreathing},
	},
	crisis.CategorySubstance: {
		message: "Withdrawal is hell but you can survive. Addiction is not a moral failing - it's a health condition. Call 311 for a detox bed. Drink water, eat bananas for cramps. You're stronger than you know.",
		actions: []string{crisis.ActionCall988},
	},
	crisis.CategoryShelter: {
		message: "Getting warm is priority #1. Nearest warming centers: Bowery Mission (227 Bowery), NYC Rescue Mission (90 Lafayette). Call 311 for transport. Libraries have heat too.",
		actions: []string{crisis.ActionFindShelter, crisis.ActionCallMission},
	},
	crisis.CategorySustenance: {
		message: "Free meals RIGHT NOW: Bowery Mission serves 3x daily. Holy Apostles (296 9th Ave) Mon-Fri 10:30am. Most churches do lunch.",
		actions: []string{crisis.ActionFindFood, crisis.ActionCallMission},
	},
	crisis.CategoryDisorientation: {
		message: "Feeling confused or disoriented is okay. You're talking to BoweryConnect's support system. You're in New York. Today is a new day with new possibilities. Let's orient together.",
		actions: []string{crisis.ActionGrounding},
	},
	crisis.CategoryAnger: {
		message: "Your anger is valid. Life has been unfair to you. But right now, in this moment, you're safe. What's one small thing that might feel good right now?",
	},
	crisis.CategoryLoneliness: {
		message: "You're not alone, even when it feels that way. I'm here with you. There are people in this city who want to connect with you as a human being, not as someone to fix.",
	},
	crisis.CategoryGeneral: {
		message: "I'm having trouble reaching my full support right now, but I'm still here for you. If this is an emergency, please call 911 or 988. What's happening?",
		actions: []string{crisis.ActionCall988, crisis.ActionCall911},
	},
}

// localized carries per-language overrides for canned copy. Anything missing
// falls back to English.
var localized = map[string]map[crisis.Category]string{
	"es": {
		crisis.CategoryGeneral: "Ahora mismo me cuesta conectar con todo mi apoyo, pero sigo aquí contigo. Si es una emergencia, llama al 911 o al 988. ¿Qué está pasando?",
	},
	"zh": {
		crisis.CategoryGeneral: "我现在无法连接全部支持，但我仍然在这里陪着你。如果情况紧急，请拨打911或988。发生什么事了？",
	},
}

// greetings opens a new session in the user's language.
var greetings = map[string]string{
	"en": "Hi, I'm here to support you. However you're feeling right now - angry, scared, confused, overwhelmed - it's okay. You're safe here. What's going on?",
	"es": "Hola, estoy aquí para apoyarte. Como sea que te sientas ahora - con rabia, miedo, confusión o agobio - está bien. Aquí estás a salvo. ¿Qué está pasando?",
	"zh": "你好，我在这里支持你。无论你现在感觉如何——愤怒、害怕、困惑、不知所措——都没有关系。你在这里是安全的。发生什么事了？",
}

// Hotlines are the emergency contacts surfaced with high-urgency responses.
var Hotlines = []crisis.HotlineContact{
	{Name: "988 Suicide & Crisis Lifeline", Dial: "988", Detail: "24/7, call or text"},
	{Name: "Crisis Text Line", Text: "741741", Detail: "text HOME"},
	{Name: "Emergency", Dial: "911"},
	{Name: "The Bowery Mission", Dial: "+1-212-226-6214", Detail: "227 Bowery, New York, NY 10002"},
}
